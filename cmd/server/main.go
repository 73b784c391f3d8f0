package main

import (
	"fmt"
	"log"

	"github.com/Vihanga-02/EcoLife/internal/cache"
	"github.com/Vihanga-02/EcoLife/internal/config"
	"github.com/Vihanga-02/EcoLife/internal/handlers"
	"github.com/Vihanga-02/EcoLife/internal/store"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.LoadConfig()

	db, err := store.InitDB(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to init db: %v", err)
	}
	store.SetDB(db)

	var c *cache.Cache
	if cfg.RedisAddr != "" {
		c, err = cache.New(cfg.RedisAddr, cfg.CacheTTL)
		if err != nil {
			log.Fatalf("failed to connect redis: %v", err)
		}
	}

	r := gin.Default()
	handlers.New(cfg, c).RegisterRoutes(r)

	addr := fmt.Sprintf(":%d", cfg.Port)
	if err := r.Run(addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
