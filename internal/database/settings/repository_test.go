package settings

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

	err = db.AutoMigrate(&entities.Setting{})
	require.NoError(t, err)

	return db
}

func TestRepository_SetAndGetSetting(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	err := repo.SetSetting(entities.SettingKeyBatchSize, "10")
	require.NoError(t, err)

	setting, err := repo.GetSetting(entities.SettingKeyBatchSize)
	require.NoError(t, err)
	assert.Equal(t, "10", setting.Value)
}

func TestRepository_SetSetting_Overwrites(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	require.NoError(t, repo.SetSetting(entities.SettingKeyFuzzyThreshold, "85"))
	require.NoError(t, repo.SetSetting(entities.SettingKeyFuzzyThreshold, "90"))

	setting, err := repo.GetSetting(entities.SettingKeyFuzzyThreshold)
	require.NoError(t, err)
	assert.Equal(t, "90", setting.Value)

	settings, err := repo.ListSettings()
	require.NoError(t, err)
	assert.Len(t, settings, 1)
}

func TestRepository_GetSetting_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	_, err := repo.GetSetting("nope")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepository_DeleteSetting(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	require.NoError(t, repo.SetSetting(entities.SettingKeySkipZeroInventory, "true"))
	require.NoError(t, repo.DeleteSetting(entities.SettingKeySkipZeroInventory))

	_, err := repo.GetSetting(entities.SettingKeySkipZeroInventory)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// Deleting an absent key is not an error
	assert.NoError(t, repo.DeleteSetting(entities.SettingKeySkipZeroInventory))
}
