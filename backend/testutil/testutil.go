// Package testutil holds the fixtures shared by package tests: an isolated
// in-memory database, a quiet logger and a controllable clock.
package testutil

import (
	"sync"
	"testing"
	"time"

	"devprep/backend/config"
	"devprep/backend/models"
	"devprep/backend/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// DB opens a private in-memory sqlite database with every table migrated.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
		TranslateError: true,
	})
	require.NoError(tb, err)

	sqlDB, err := db.DB()
	require.NoError(tb, err)
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(tb, utils.Migrate(db))
	return db
}

func Logger() *utils.Logger {
	return utils.NewNopLogger()
}

// Config is a configuration suitable for wiring the app against DB.
func Config() *config.Config {
	return &config.Config{
		DBDriver:         "sqlite",
		JWTSecret:        "test-secret",
		ServerPort:       "0",
		TimeZone:         "UTC",
		CacheTTL:         time.Minute,
		CacheMaxEntries:  100,
		RecomputeWorkers: 2,
		AdminUserIDs:     []uint{1},
	}
}

func SeedQuestion(tb testing.TB, db *gorm.DB, slug, category, difficulty string) *models.Question {
	tb.Helper()
	q := &models.Question{
		Slug:       slug,
		Title:      slug,
		Category:   category,
		Difficulty: difficulty,
	}
	require.NoError(tb, db.Create(q).Error)
	return q
}

// Clock is a manually advanced time source.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}
