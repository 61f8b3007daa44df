package feeds

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/computerwizzy/shopify-inventory-sync/internal/entities"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.FeedSource{})
	require.NoError(t, err)

	return db
}

func TestRepository_CreateFeed(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	feed := &entities.FeedSource{
		Name:              "warehouse-sftp",
		Type:              entities.FeedTypeSFTP,
		Host:              "sftp.supplier.example.com",
		Port:              22,
		Path:              "/exports/stock.csv",
		Username:          "sync",
		EncryptedPassword: "dGVzdC1jaXBoZXJ0ZXh0",
		Enabled:           true,
	}

	err := repo.CreateFeed(feed)
	require.NoError(t, err)
	assert.NotZero(t, feed.ID)

	found, err := repo.GetFeedByID(feed.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.FeedTypeSFTP, found.Type)
	assert.Equal(t, "dGVzdC1jaXBoZXJ0ZXh0", found.EncryptedPassword)
}

func TestRepository_GetFeedByName(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	require.NoError(t, repo.CreateFeed(&entities.FeedSource{
		Name: "supplier-http", Type: entities.FeedTypeHTTP, URL: "https://supplier.example.com/feed.csv",
	}))

	found, err := repo.GetFeedByName("supplier-http")
	require.NoError(t, err)
	assert.Equal(t, "https://supplier.example.com/feed.csv", found.URL)

	_, err = repo.GetFeedByName("missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepository_GetEnabledFeeds(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	require.NoError(t, repo.CreateFeed(&entities.FeedSource{Name: "zeta", Type: entities.FeedTypeHTTP, Enabled: true}))
	require.NoError(t, repo.CreateFeed(&entities.FeedSource{Name: "alpha", Type: entities.FeedTypeHTTP, Enabled: true}))
	require.NoError(t, repo.CreateFeed(&entities.FeedSource{Name: "paused", Type: entities.FeedTypeHTTP, Enabled: false}))

	feeds, err := repo.GetEnabledFeeds()
	require.NoError(t, err)
	require.Len(t, feeds, 2)
	assert.Equal(t, "alpha", feeds[0].Name)
	assert.Equal(t, "zeta", feeds[1].Name)
}

func TestRepository_UpdateColumnMapping(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	feed := &entities.FeedSource{Name: "mapped", Type: entities.FeedTypeHTTP}
	require.NoError(t, repo.CreateFeed(feed))

	mapping := `{"Part Number":"sku","Qty On Hand":"quantity"}`
	require.NoError(t, repo.UpdateColumnMapping(feed.ID, mapping))

	found, err := repo.GetFeedByID(feed.ID)
	require.NoError(t, err)
	assert.Equal(t, mapping, found.ColumnMapping)
}

func TestRepository_DeleteFeed(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	feed := &entities.FeedSource{Name: "doomed", Type: entities.FeedTypeLocalFile, URL: "/tmp/feed.csv"}
	require.NoError(t, repo.CreateFeed(feed))
	require.NoError(t, repo.DeleteFeed(feed.ID))

	_, err := repo.GetFeedByID(feed.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
