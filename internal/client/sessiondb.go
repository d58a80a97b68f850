package client

import (
	"fmt"

	"cqwealth-client/internal/session"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenSessionDB opens (and migrates) the sqlite database backing the local
// session store.
func OpenSessionDB(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open session db: %w", err)
	}

	if err := db.AutoMigrate(&session.Record{}); err != nil {
		return nil, fmt.Errorf("migrate session db: %w", err)
	}

	return db, nil
}
