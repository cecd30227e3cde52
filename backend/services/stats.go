package services

import (
	"context"
	"fmt"
	"time"

	"devprep/backend/apperr"
	"devprep/backend/models"
	"devprep/backend/repository"
	"devprep/backend/utils"

	"gorm.io/datatypes"
)

// StatsAggregator maintains UserStats after each completion. Counters are
// bumped with atomic increments; only the derived fields are read-modify-write.
type StatsAggregator struct {
	stats     repository.StatsRepo
	questions repository.QuestionRepo
	streaks   *StreakCalculator
	calendar  *Calendar
	log       *utils.Logger
}

func NewStatsAggregator(repos repository.Repos, streaks *StreakCalculator, calendar *Calendar, log *utils.Logger) *StatsAggregator {
	return &StatsAggregator{
		stats:     repos.Stats,
		questions: repos.Questions,
		streaks:   streaks,
		calendar:  calendar,
		log:       log.With("service", "StatsAggregator"),
	}
}

// RecomputeStats must only run for a transition into completed.
func (a *StatsAggregator) RecomputeStats(ctx context.Context, userID, questionID uint, timeSpentMinutes int) (*models.UserStats, error) {
	if err := a.stats.IncrementTotals(ctx, nil, userID, 1, timeSpentMinutes); err != nil {
		return nil, apperr.Transient("increment totals", err)
	}

	question, err := a.questions.GetByID(ctx, nil, questionID)
	if err != nil {
		return nil, apperr.Transient("load question", err)
	}
	if question == nil {
		a.log.Warn("question metadata missing, skipping category/difficulty counters",
			"user_id", userID, "question_id", questionID)
	} else {
		if question.Category != "" {
			if err := a.stats.IncrementCounter(ctx, nil, userID, models.DimensionCategory, question.Category, 1); err != nil {
				return nil, apperr.Transient("increment category", err)
			}
		}
		if question.Difficulty != "" {
			if err := a.stats.IncrementCounter(ctx, nil, userID, models.DimensionDifficulty, question.Difficulty, 1); err != nil {
				return nil, apperr.Transient("increment difficulty", err)
			}
		}
	}

	streak, err := a.streaks.Compute(ctx, userID)
	if err != nil {
		return nil, apperr.Transient("compute streak", err)
	}
	return a.refreshDerived(ctx, userID, streak)
}

func (a *StatsAggregator) refreshDerived(ctx context.Context, userID uint, streak Streak) (*models.UserStats, error) {
	row, err := a.stats.Get(ctx, nil, userID)
	if err != nil {
		return nil, apperr.Transient("load stats", err)
	}
	if row == nil {
		return nil, apperr.Transient("load stats", fmt.Errorf("user_stats row for user %d missing after increment", userID))
	}
	counts, err := a.stats.Counters(ctx, nil, userID)
	if err != nil {
		return nil, apperr.Transient("load counters", err)
	}

	derived := repository.DerivedStats{
		CurrentStreak:          streak.Current,
		LongestStreak:          streak.Longest,
		LastStudyDate:          a.calendar.Now().UTC(),
		AverageTimePerQuestion: models.AverageTime(row.TotalTimeSpent, row.TotalQuestionsCompleted),
		QuestionsByCategory:    counts.Of(models.DimensionCategory),
		QuestionsByDifficulty:  counts.Of(models.DimensionDifficulty),
	}
	if err := a.stats.UpdateDerived(ctx, nil, userID, derived); err != nil {
		return nil, apperr.Transient("update derived stats", err)
	}

	applyDerived(row, derived)
	a.log.Debug("stats refreshed",
		"user_id", userID,
		"total", row.TotalQuestionsCompleted,
		"current_streak", row.CurrentStreak,
		"longest_streak", row.LongestStreak)
	return row, nil
}

func applyDerived(row *models.UserStats, d repository.DerivedStats) {
	last := d.LastStudyDate
	row.CurrentStreak = d.CurrentStreak
	row.LongestStreak = d.LongestStreak
	row.LastStudyDate = &last
	row.AverageTimePerQuestion = d.AverageTimePerQuestion
	row.QuestionsByCategory = datatypes.NewJSONType(d.QuestionsByCategory)
	row.QuestionsByDifficulty = datatypes.NewJSONType(d.QuestionsByDifficulty)
	row.UpdatedAt = time.Now().UTC()
}
