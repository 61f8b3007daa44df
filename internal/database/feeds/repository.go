// Package feeds provides database operations for feed sources.
//
// Passwords and HTTP headers are stored in their encrypted form; encryption
// and decryption happen in the layers above.
package feeds

import (
	"time"

	"gorm.io/gorm"

	"github.com/computerwizzy/shopify-inventory-sync/internal/entities"
)

// Repository handles all feed source database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new feeds repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateFeed persists a new feed source.
func (r *Repository) CreateFeed(feed *entities.FeedSource) error {
	return r.db.Create(feed).Error
}

// GetFeedByID retrieves a feed source by ID.
func (r *Repository) GetFeedByID(id uint) (*entities.FeedSource, error) {
	var feed entities.FeedSource
	err := r.db.First(&feed, id).Error
	if err != nil {
		return nil, err
	}
	return &feed, nil
}

// GetFeedByName retrieves a feed source by its unique name.
func (r *Repository) GetFeedByName(name string) (*entities.FeedSource, error) {
	var feed entities.FeedSource
	err := r.db.Where("name = ?", name).First(&feed).Error
	if err != nil {
		return nil, err
	}
	return &feed, nil
}

// GetAllFeeds lists every feed source ordered by name.
func (r *Repository) GetAllFeeds() ([]entities.FeedSource, error) {
	var feeds []entities.FeedSource
	err := r.db.Order("name ASC").Find(&feeds).Error
	return feeds, err
}

// GetEnabledFeeds lists feed sources available for job creation.
func (r *Repository) GetEnabledFeeds() ([]entities.FeedSource, error) {
	var feeds []entities.FeedSource
	err := r.db.Where("enabled = ?", true).Order("name ASC").Find(&feeds).Error
	return feeds, err
}

// UpdateFeed saves changes to an existing feed source.
func (r *Repository) UpdateFeed(feed *entities.FeedSource) error {
	return r.db.Save(feed).Error
}

// UpdateColumnMapping replaces only the stored mapping JSON.
func (r *Repository) UpdateColumnMapping(id uint, mappingJSON string) error {
	return r.db.Model(&entities.FeedSource{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"column_mapping": mappingJSON,
			"updated_at":     time.Now(),
		}).Error
}

// DeleteFeed removes a feed source.
func (r *Repository) DeleteFeed(id uint) error {
	return r.db.Delete(&entities.FeedSource{}, id).Error
}
