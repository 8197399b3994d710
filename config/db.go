package config

import (
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/keerthana1830/Lacteva/store"
)

// DB is the gorm handle when running against PostgreSQL; nil in mock mode.
var DB *gorm.DB

// Store is the active persistence backend used by all handlers.
var Store store.Store

// InitStore connects to PostgreSQL when DATABASE_URL is set, otherwise falls
// back to the in-memory mock store with seeded demo devices.
func InitStore() error {
	if C.DatabaseURL == "" {
		logrus.Warn("DATABASE_URL not set, using in-memory mock store")
		mem := store.NewMemoryStore()
		mem.SeedDemoDevices()
		Store = mem
		return nil
	}

	db, err := gorm.Open(postgres.Open(C.DatabaseURL), &gorm.Config{})
	if err != nil {
		return err
	}

	gs := store.NewGormStore(db)
	if err := gs.Migrate(); err != nil {
		return err
	}

	DB = db
	Store = gs
	logrus.Info("connected to PostgreSQL")
	return nil
}
