package services

import (
	"context"

	"devprep/backend/apperr"
	"devprep/backend/cache"
	"devprep/backend/models"
	"devprep/backend/repository"
	"devprep/backend/utils"
)

type ProgressResult struct {
	Status        models.ProgressStatus `json:"status"`
	CurrentStreak int                   `json:"current_streak"`
	LongestStreak int                   `json:"longest_streak"`
}

// ProgressRecorder is the single write path for question progress.
//
// Accounting is forward-only: moving a question out of completed leaves the
// day's DailyActivity and the user's UserStats untouched. Only the batch
// recompute brings totals back in line with current statuses.
type ProgressRecorder struct {
	progress   repository.ProgressRepo
	activity   repository.ActivityRepo
	aggregator *StatsAggregator
	streaks    *StreakCalculator
	calendar   *Calendar
	cache      cache.Cache
	log        *utils.Logger
}

func NewProgressRecorder(repos repository.Repos, aggregator *StatsAggregator, calendar *Calendar, c cache.Cache, log *utils.Logger) *ProgressRecorder {
	return &ProgressRecorder{
		progress:   repos.Progress,
		activity:   repos.Activity,
		aggregator: aggregator,
		streaks:    aggregator.streaks,
		calendar:   calendar,
		cache:      c,
		log:        log.With("service", "ProgressRecorder"),
	}
}

func (p *ProgressRecorder) RecordProgress(ctx context.Context, userID, questionID uint, status models.ProgressStatus, timeSpentMinutes int) (*ProgressResult, error) {
	if userID == 0 {
		return nil, apperr.Validation("user id is required")
	}
	if questionID == 0 {
		return nil, apperr.Validation("question id is required")
	}
	if !status.Valid() {
		return nil, apperr.Validation("invalid status %q", status)
	}
	if timeSpentMinutes < 1 {
		return nil, apperr.Validation("time spent must be at least 1 minute, got %d", timeSpentMinutes)
	}

	now := p.calendar.Now().UTC()
	res, err := p.progress.Upsert(ctx, userID, questionID,
		func() *models.QuestionProgress {
			row := &models.QuestionProgress{Status: status, TimeSpent: timeSpentMinutes}
			if status == models.StatusCompleted {
				row.CompletedAt = &now
				row.CreditedTime = timeSpentMinutes
			}
			return row
		},
		func(row *models.QuestionProgress) {
			if timeSpentMinutes > row.TimeSpent {
				row.TimeSpent = timeSpentMinutes
			}
			switch {
			case status == models.StatusCompleted && row.Status != models.StatusCompleted:
				row.CompletedAt = &now
				row.CreditedTime = timeSpentMinutes
			case status != models.StatusCompleted:
				row.CompletedAt = nil
				row.CreditedTime = 0
			}
			row.Status = status
		},
	)
	if err != nil {
		return nil, apperr.Transient("upsert question progress", err)
	}
	defer p.invalidate(ctx, userID)

	p.log.Debug("question progress saved",
		"user_id", userID,
		"question_id", questionID,
		"op", res.Op.String(),
		"from", res.Previous,
		"to", status)

	if status == models.StatusCompleted && res.Previous != models.StatusCompleted {
		if err := p.activity.Increment(ctx, nil, userID, p.calendar.Day(now), 1, timeSpentMinutes); err != nil {
			return nil, apperr.Transient("increment daily activity", err)
		}
		stats, err := p.aggregator.RecomputeStats(ctx, userID, questionID, timeSpentMinutes)
		if err != nil {
			return nil, err
		}
		return &ProgressResult{
			Status:        status,
			CurrentStreak: stats.CurrentStreak,
			LongestStreak: stats.LongestStreak,
		}, nil
	}

	streak, err := p.streaks.Compute(ctx, userID)
	if err != nil {
		return nil, apperr.Transient("compute streak", err)
	}
	return &ProgressResult{
		Status:        status,
		CurrentStreak: streak.Current,
		LongestStreak: streak.Longest,
	}, nil
}

func (p *ProgressRecorder) invalidate(ctx context.Context, userID uint) {
	if p.cache == nil {
		return
	}
	if err := p.cache.InvalidatePattern(ctx, userCachePattern(userID)); err != nil {
		p.log.Warn("cache invalidation failed", "user_id", userID, "error", err)
	}
}
