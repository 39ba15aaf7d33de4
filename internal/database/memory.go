package database

import (
	"github.com/localnerve/fictiondb/internal/config"
	"gorm.io/gorm"
)

// OpenMemory opens a migrated and seeded in-memory database on the cgo-free sqlite driver.
// It backs unit tests and throwaway local runs.
func OpenMemory() (*gorm.DB, error) {
	db, err := Connect(&config.Config{
		DBType:     "sqlite-pure",
		DBDatabase: ":memory:",
		DBLogLevel: "silent",
	})
	if err != nil {
		return nil, err
	}
	if err := AutoMigrate(db); err != nil {
		Close(db)
		return nil, err
	}
	if err := Seed(db); err != nil {
		Close(db)
		return nil, err
	}
	return db, nil
}
