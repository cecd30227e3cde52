package main

import (
	"path/filepath"
	"testing"

	"devprep/backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

func setEnv(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "devprep.db")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", path)
	t.Setenv("APP_TIMEZONE", "UTC")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("LOG_FILE", "")
	return path
}

func TestRunRebuildsStats(t *testing.T) {
	path := setEnv(t)

	assert.Equal(t, 0, run(nil))

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: gormLogger.Default.LogMode(gormLogger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.QuestionProgress{
		UserID: 3, QuestionID: 1, Status: models.StatusCompleted, TimeSpent: 6, CreditedTime: 6,
	}).Error)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	assert.Equal(t, 0, run([]string{"-user", "3", "-workers", "2"}))

	db, err = gorm.Open(sqlite.Open(path), &gorm.Config{Logger: gormLogger.Default.LogMode(gormLogger.Silent)})
	require.NoError(t, err)
	var stats models.UserStats
	require.NoError(t, db.Where("user_id = ?", 3).First(&stats).Error)
	assert.Equal(t, 1, stats.TotalQuestionsCompleted)
	assert.Equal(t, 6, stats.TotalTimeSpent)
	sqlDB, err = db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
}

func TestRunReportsFailureAsExitCode(t *testing.T) {
	setEnv(t)

	assert.Equal(t, 2, run([]string{"-unknown"}))

	t.Setenv("APP_TIMEZONE", "Mars/Olympus")
	assert.Equal(t, 1, run(nil))
}
