package database

import (
	"fmt"
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/computerwizzy/shopify-inventory-sync/internal/entities"
)

type Database struct {
	DB *gorm.DB
}

func NewDatabase(dbPath string) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto-migrate all entities
	err = db.AutoMigrate(
		&entities.FeedSource{},
		&entities.ScheduledJob{},
		&entities.SyncRun{},
		&entities.Setting{},
		&entities.AuditEvent{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Printf("Database initialized successfully at %s", dbPath)

	return &Database{DB: db}, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// GetStats returns row counts for the dashboard and health endpoints.
func (d *Database) GetStats() (totalFeeds int64, totalJobs int64, totalRuns int64, err error) {
	err = d.DB.Model(&entities.FeedSource{}).Count(&totalFeeds).Error
	if err != nil {
		return
	}
	err = d.DB.Model(&entities.ScheduledJob{}).Count(&totalJobs).Error
	if err != nil {
		return
	}
	err = d.DB.Model(&entities.SyncRun{}).Count(&totalRuns).Error
	return
}
