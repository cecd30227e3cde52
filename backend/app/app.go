// Package app wires configuration, storage, cache and services together for
// the HTTP server and the command-line tools.
package app

import (
	"fmt"
	"time"

	"devprep/backend/cache"
	"devprep/backend/config"
	"devprep/backend/repository"
	"devprep/backend/services"
	"devprep/backend/utils"

	"gorm.io/gorm"
)

type App struct {
	Cfg   *config.Config
	Log   *utils.Logger
	DB    *gorm.DB
	Cache cache.Cache
	Repos repository.Repos

	Calendar   *services.Calendar
	Streaks    *services.StreakCalculator
	Aggregator *services.StatsAggregator
	Recorder   *services.ProgressRecorder
	Queries    *services.ProgressQueries
	Recomputer *services.Recomputer

	closers []func() error
}

type Option func(*options)

type options struct {
	now   func() time.Time
	cache cache.Cache
}

// WithClock overrides the time source of the calendar.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithCache skips cache selection from config.
func WithCache(c cache.Cache) Option {
	return func(o *options) { o.cache = c }
}

func New(cfg *config.Config, log *utils.Logger, opts ...Option) (*App, error) {
	db, err := utils.InitDB(cfg, log)
	if err != nil {
		return nil, err
	}
	a, err := NewWithDB(cfg, log, db, opts...)
	if err != nil {
		return nil, err
	}
	if sqlDB, err := db.DB(); err == nil {
		a.closers = append(a.closers, sqlDB.Close)
	}
	return a, nil
}

// NewWithDB wires everything on top of an already opened and migrated database.
func NewWithDB(cfg *config.Config, log *utils.Logger, db *gorm.DB, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.TimeZone, err)
	}

	a := &App{Cfg: cfg, Log: log, DB: db}

	switch {
	case o.cache != nil:
		a.Cache = o.cache
	case cfg.RedisAddr != "":
		rc, err := cache.NewRedis(cfg.RedisAddr, cfg.RedisPrefix, log)
		if err != nil {
			return nil, fmt.Errorf("init redis cache: %w", err)
		}
		a.Cache = rc
		a.closers = append(a.closers, rc.Close)
	default:
		a.Cache = cache.NewMemory(cfg.CacheMaxEntries)
	}

	a.Repos = repository.New(db, log)
	a.Calendar = services.NewCalendar(loc, o.now)
	a.Streaks = services.NewStreakCalculator(a.Repos.Activity, a.Calendar)
	a.Aggregator = services.NewStatsAggregator(a.Repos, a.Streaks, a.Calendar, log)
	a.Recorder = services.NewProgressRecorder(a.Repos, a.Aggregator, a.Calendar, a.Cache, log)
	a.Queries = services.NewProgressQueries(a.Repos, a.Cache, cfg.CacheTTL, a.Calendar)
	a.Recomputer = services.NewRecomputer(a.Repos, a.Streaks, a.Cache, cfg.RecomputeWorkers, log)

	log.Info("app wired", "timezone", loc.String(), "cache_ttl", cfg.CacheTTL)
	return a, nil
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.Log.Warn("close failed", "error", err)
		}
	}
	a.Log.Sync()
}
