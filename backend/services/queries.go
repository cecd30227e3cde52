package services

import (
	"context"
	"time"

	"devprep/backend/apperr"
	"devprep/backend/cache"
	"devprep/backend/models"
	"devprep/backend/repository"
)

// StatsView is what readers get for a user; it exists even before the first
// completion.
type StatsView struct {
	UserID                  uint           `json:"user_id"`
	TotalQuestionsCompleted int            `json:"total_questions_completed"`
	TotalTimeSpent          int            `json:"total_time_spent"`
	QuestionsByCategory     map[string]int `json:"questions_by_category"`
	QuestionsByDifficulty   map[string]int `json:"questions_by_difficulty"`
	CurrentStreak           int            `json:"current_streak"`
	LongestStreak           int            `json:"longest_streak"`
	LastStudyDate           *time.Time     `json:"last_study_date,omitempty"`
	AverageTimePerQuestion  float64        `json:"average_time_per_question"`
}

func NewStatsView(userID uint, row *models.UserStats) StatsView {
	view := StatsView{
		UserID:                userID,
		QuestionsByCategory:   map[string]int{},
		QuestionsByDifficulty: map[string]int{},
	}
	if row == nil {
		return view
	}
	view.TotalQuestionsCompleted = row.TotalQuestionsCompleted
	view.TotalTimeSpent = row.TotalTimeSpent
	if m := row.QuestionsByCategory.Data(); m != nil {
		view.QuestionsByCategory = m
	}
	if m := row.QuestionsByDifficulty.Data(); m != nil {
		view.QuestionsByDifficulty = m
	}
	view.CurrentStreak = row.CurrentStreak
	view.LongestStreak = row.LongestStreak
	view.LastStudyDate = row.LastStudyDate
	view.AverageTimePerQuestion = row.AverageTimePerQuestion
	return view
}

type ActivityDay struct {
	Date               string `json:"date"`
	QuestionsCompleted int    `json:"questions_completed"`
	TimeSpent          int    `json:"time_spent"`
}

// ProgressQueries serves the aggregate reads through the cache.
type ProgressQueries struct {
	repos    repository.Repos
	cache    cache.Cache
	ttl      time.Duration
	calendar *Calendar
}

func NewProgressQueries(repos repository.Repos, c cache.Cache, ttl time.Duration, calendar *Calendar) *ProgressQueries {
	return &ProgressQueries{repos: repos, cache: c, ttl: ttl, calendar: calendar}
}

func (q *ProgressQueries) Stats(ctx context.Context, userID uint) (StatsView, error) {
	return cache.GetOrLoad(ctx, q.cache, statsCacheKey(userID), q.ttl, func(ctx context.Context) (StatsView, error) {
		row, err := q.repos.Stats.Get(ctx, nil, userID)
		if err != nil {
			return StatsView{}, apperr.Transient("load stats", err)
		}
		return NewStatsView(userID, row), nil
	})
}

// Activity returns the last `days` calendar days ending today, oldest first,
// with zero-filled days the user had no row for.
func (q *ProgressQueries) Activity(ctx context.Context, userID uint, days int) ([]ActivityDay, error) {
	if days < 1 || days > 366 {
		return nil, apperr.Validation("days must be between 1 and 366, got %d", days)
	}
	return cache.GetOrLoad(ctx, q.cache, activityCacheKey(userID, days), q.ttl, func(ctx context.Context) ([]ActivityDay, error) {
		today := q.calendar.Today()
		since := today.Add(-time.Duration(days-1) * day)
		rows, err := q.repos.Activity.History(ctx, nil, userID, since)
		if err != nil {
			return nil, apperr.Transient("load activity", err)
		}

		byDay := make(map[string]*models.DailyActivity, len(rows))
		for _, row := range rows {
			byDay[row.Date.Format(time.DateOnly)] = row
		}
		out := make([]ActivityDay, 0, days)
		for d := since; !d.After(today); d = d.Add(day) {
			item := ActivityDay{Date: d.Format(time.DateOnly)}
			if row, ok := byDay[item.Date]; ok {
				item.QuestionsCompleted = row.QuestionsCompleted
				item.TimeSpent = row.TimeSpent
			}
			out = append(out, item)
		}
		return out, nil
	})
}

// QuestionProgress lists the user's progress rows; it is not cached.
func (q *ProgressQueries) QuestionProgress(ctx context.Context, userID uint, status models.ProgressStatus) ([]*models.QuestionProgress, error) {
	if status != "" && !status.Valid() {
		return nil, apperr.Validation("invalid status %q", status)
	}
	rows, err := q.repos.Progress.GetByUser(ctx, nil, userID, status)
	if err != nil {
		return nil, apperr.Transient("load question progress", err)
	}
	return rows, nil
}
