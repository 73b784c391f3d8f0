package store

import (
	"github.com/Vihanga-02/EcoLife/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var db *gorm.DB

func InitDB(path string) (*gorm.DB, error) {
	d, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := d.AutoMigrate(
		&models.User{},
		&models.Appliance{},
		&models.UsageSession{},
		&models.Tariff{},
		&models.MarketItem{},
		&models.MarketTransaction{},
		&models.WasteLog{},
		&models.RecyclingCenter{},
		&models.RecyclingSubmission{},
	); err != nil {
		return nil, err
	}
	return d, nil
}

func SetDB(d *gorm.DB) { db = d }

func GetDB() *gorm.DB { return db }
