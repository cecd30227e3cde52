// Command recalculate_stats rebuilds UserStats and streaks from stored
// progress and daily activity.
//
// Usage:
//
//	recalculate_stats            # every user with progress or stats
//	recalculate_stats -user 42   # a single user
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"devprep/backend/app"
	"devprep/backend/config"
	"devprep/backend/utils"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run returns the exit code so deferred cleanup happens before the process exits.
func run(args []string) int {
	flags := flag.NewFlagSet("recalculate_stats", flag.ContinueOnError)
	userID := flags.Uint("user", 0, "recalculate a single user (0 means all users)")
	workers := flags.Int("workers", 0, "override RECOMPUTE_WORKERS")
	if err := flags.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Printf("Error loading config: %v", err)
		return 1
	}
	if *workers > 0 {
		cfg.RecomputeWorkers = *workers
	}

	logger, err := utils.InitLogger(utils.LoggerConfig{Mode: cfg.LogMode, File: cfg.LogFile})
	if err != nil {
		log.Printf("Error initializing logger: %v", err)
		return 1
	}
	defer logger.Sync()

	a, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("Error initializing app", "error", err)
		return 1
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *userID != 0 {
		stats, err := a.Recomputer.RecomputeUser(ctx, uint(*userID))
		if err != nil {
			logger.Error("recalculation failed", "user_id", *userID, "error", err)
			return 1
		}
		logger.Info("user stats recalculated",
			"user_id", *userID,
			"total", stats.TotalQuestionsCompleted,
			"current_streak", stats.CurrentStreak,
			"longest_streak", stats.LongestStreak)
		return 0
	}

	report, err := a.Recomputer.RecomputeAll(ctx)
	if err != nil {
		logger.Error("recalculation failed", "error", err)
		return 1
	}
	if len(report.Failed) > 0 {
		logger.Warn("some users failed", "failed", report.Failed)
		return 1
	}
	return 0
}
