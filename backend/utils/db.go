package utils

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"devprep/backend/config"
	"devprep/backend/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// InitDB opens the configured store and migrates the progress tables.
func InitDB(cfg *config.Config, logger *Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch strings.ToLower(cfg.DBDriver) {
	case "sqlite", "sqlite3":
		dialector = sqlite.Open(cfg.SQLitePath)
	case "", "postgres", "postgresql":
		dsn := fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName,
		)
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	gormLog := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             1 * time.Second,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormLog,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.DBDriver, err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	logger.Info("database ready", "driver", db.Dialector.Name())
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	// Completed rows written before credited_time existed get their stored time.
	// A completion always credits at least one minute, so 0 only marks those rows.
	if err := db.Model(&models.QuestionProgress{}).
		Where("status = ? AND credited_time = 0", models.StatusCompleted).
		Update("credited_time", gorm.Expr("time_spent")).Error; err != nil {
		return fmt.Errorf("backfill credited_time: %w", err)
	}
	return nil
}
