package database

import (
	"fmt"
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Initialize opens the remote datastore connection. The automatic ping
// is disabled: the remote may be unreachable at boot and the
// application must still start from its local snapshot. Connectivity is
// probed per sync run instead.
func Initialize(databaseURL string) (*gorm.DB, error) {
	config := &gorm.Config{
		Logger:               logger.Default.LogMode(logger.Warn),
		DisableAutomaticPing: true,
	}

	db, err := gorm.Open(postgres.Open(databaseURL), config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Println("Remote datastore connected")
	return db, nil
}
