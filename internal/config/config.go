package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port      int
	DBPath    string
	JWTSecret string
	TokenTTL  time.Duration
	RedisAddr string // empty disables the cache
	CacheTTL  time.Duration
}

func LoadConfig() *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.SetDefault("server.port", 3000)
	viper.SetDefault("database.path", "ecolife.db")
	viper.SetDefault("auth.secret", "dev-secret-change-me")
	viper.SetDefault("auth.token_ttl_hours", 72)
	viper.SetDefault("redis.addr", "")
	viper.SetDefault("cache.ttl_seconds", 60)
	if err := viper.ReadInConfig(); err != nil {
		fmt.Println("No config file found, using defaults")
	}
	return &Config{
		Port:      viper.GetInt("server.port"),
		DBPath:    viper.GetString("database.path"),
		JWTSecret: viper.GetString("auth.secret"),
		TokenTTL:  time.Duration(viper.GetInt("auth.token_ttl_hours")) * time.Hour,
		RedisAddr: viper.GetString("redis.addr"),
		CacheTTL:  time.Duration(viper.GetInt("cache.ttl_seconds")) * time.Second,
	}
}
