package jobs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/computerwizzy/shopify-inventory-sync/internal/entities"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.FeedSource{}, &entities.ScheduledJob{})
	require.NoError(t, err)

	return db
}

func createTestFeed(t *testing.T, db *gorm.DB, name string) *entities.FeedSource {
	feed := &entities.FeedSource{
		Name:    name,
		Type:    entities.FeedTypeHTTP,
		URL:     "https://supplier.example.com/stock.csv",
		Enabled: true,
	}
	require.NoError(t, db.Create(feed).Error)
	return feed
}

func TestRepository_CreateJob(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	feed := createTestFeed(t, db, "supplier-a")

	job := &entities.ScheduledJob{
		Name:            "nightly-stock",
		FeedSourceID:    feed.ID,
		TriggerType:     entities.TriggerTypeInterval,
		IntervalMinutes: 60,
		FieldPolicy:     `{"inventory_quantity":true}`,
		Enabled:         true,
	}

	err := repo.CreateJob(job)
	require.NoError(t, err)
	assert.NotZero(t, job.ID)

	found, err := repo.GetJobByID(job.ID)
	require.NoError(t, err)
	assert.Equal(t, "nightly-stock", found.Name)
	require.NotNil(t, found.FeedSource)
	assert.Equal(t, "supplier-a", found.FeedSource.Name)
}

func TestRepository_GetJobByName(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	feed := createTestFeed(t, db, "supplier-a")

	require.NoError(t, repo.CreateJob(&entities.ScheduledJob{
		Name:         "hourly-prices",
		FeedSourceID: feed.ID,
		TriggerType:  entities.TriggerTypeCron,
		CronExpr:     "0 * * * *",
	}))

	found, err := repo.GetJobByName("hourly-prices")
	require.NoError(t, err)
	assert.Equal(t, "0 * * * *", found.CronExpr)

	_, err = repo.GetJobByName("no-such-job")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepository_GetEnabledJobs(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	feed := createTestFeed(t, db, "supplier-a")

	require.NoError(t, repo.CreateJob(&entities.ScheduledJob{
		Name: "enabled-one", FeedSourceID: feed.ID, TriggerType: entities.TriggerTypeInterval, IntervalMinutes: 15, Enabled: true,
	}))
	require.NoError(t, repo.CreateJob(&entities.ScheduledJob{
		Name: "disabled-one", FeedSourceID: feed.ID, TriggerType: entities.TriggerTypeInterval, IntervalMinutes: 15, Enabled: false,
	}))
	require.NoError(t, repo.CreateJob(&entities.ScheduledJob{
		Name: "enabled-two", FeedSourceID: feed.ID, TriggerType: entities.TriggerTypeInterval, IntervalMinutes: 30, Enabled: true,
	}))

	jobs, err := repo.GetEnabledJobs()
	require.NoError(t, err)
	assert.Len(t, jobs, 2)
	for _, j := range jobs {
		assert.True(t, j.Enabled)
	}
}

func TestRepository_SetEnabled(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	feed := createTestFeed(t, db, "supplier-a")

	job := &entities.ScheduledJob{
		Name: "toggle-me", FeedSourceID: feed.ID, TriggerType: entities.TriggerTypeInterval, IntervalMinutes: 5, Enabled: true,
	}
	require.NoError(t, repo.CreateJob(job))

	require.NoError(t, repo.SetEnabled(job.ID, false))

	found, err := repo.GetJobByID(job.ID)
	require.NoError(t, err)
	assert.False(t, found.Enabled)
	assert.Equal(t, "toggle-me", found.Name)
}

func TestRepository_RunCounters(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	feed := createTestFeed(t, db, "supplier-a")

	job := &entities.ScheduledJob{
		Name: "counted", FeedSourceID: feed.ID, TriggerType: entities.TriggerTypeInterval, IntervalMinutes: 5, Enabled: true,
	}
	require.NoError(t, repo.CreateJob(job))

	started := time.Now()
	require.NoError(t, repo.RecordRunStart(job.ID, started))
	require.NoError(t, repo.RecordRunResult(job.ID, false, "feed unreachable", time.Now()))

	found, err := repo.GetJobByID(job.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, found.RunCount)
	assert.Equal(t, 0, found.SuccessCount)
	assert.Equal(t, 1, found.ErrorCount)
	assert.Equal(t, "feed unreachable", found.LastError)
	require.NotNil(t, found.LastRunAt)

	require.NoError(t, repo.RecordRunStart(job.ID, time.Now()))
	require.NoError(t, repo.RecordRunResult(job.ID, true, "", time.Now()))

	found, err = repo.GetJobByID(job.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, found.RunCount)
	assert.Equal(t, 1, found.SuccessCount)
	assert.Equal(t, 1, found.ErrorCount)
	assert.Empty(t, found.LastError)
	require.NotNil(t, found.LastSuccess)
}

func TestRepository_CountJobsForFeed(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	feedA := createTestFeed(t, db, "supplier-a")
	feedB := createTestFeed(t, db, "supplier-b")

	require.NoError(t, repo.CreateJob(&entities.ScheduledJob{
		Name: "a-one", FeedSourceID: feedA.ID, TriggerType: entities.TriggerTypeInterval, IntervalMinutes: 5,
	}))
	require.NoError(t, repo.CreateJob(&entities.ScheduledJob{
		Name: "a-two", FeedSourceID: feedA.ID, TriggerType: entities.TriggerTypeInterval, IntervalMinutes: 10,
	}))

	count, err := repo.CountJobsForFeed(feedA.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	count, err = repo.CountJobsForFeed(feedB.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestRepository_DeleteJob(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	feed := createTestFeed(t, db, "supplier-a")

	job := &entities.ScheduledJob{
		Name: "short-lived", FeedSourceID: feed.ID, TriggerType: entities.TriggerTypeInterval, IntervalMinutes: 5,
	}
	require.NoError(t, repo.CreateJob(job))
	require.NoError(t, repo.DeleteJob(job.ID))

	_, err := repo.GetJobByID(job.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
