package repository

import (
	"context"
	"time"

	"devprep/backend/models"
	"devprep/backend/utils"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DerivedStats are the UserStats fields recomputed from post-increment state.
type DerivedStats struct {
	CurrentStreak          int
	LongestStreak          int
	LastStudyDate          time.Time
	AverageTimePerQuestion float64
	QuestionsByCategory    map[string]int
	QuestionsByDifficulty  map[string]int
}

// Counts is dimension -> key -> count.
type Counts map[string]map[string]int

func (c Counts) Of(dimension string) map[string]int {
	if m, ok := c[dimension]; ok {
		return m
	}
	return map[string]int{}
}

type StatsRepo interface {
	Get(ctx context.Context, tx *gorm.DB, userID uint) (*models.UserStats, error)
	IncrementTotals(ctx context.Context, tx *gorm.DB, userID uint, questions, minutes int) error
	IncrementCounter(ctx context.Context, tx *gorm.DB, userID uint, dimension, key string, by int) error
	Counters(ctx context.Context, tx *gorm.DB, userID uint) (Counts, error)
	UpdateDerived(ctx context.Context, tx *gorm.DB, userID uint, d DerivedStats) error
	// Replace overwrites a user's summary and counters in one transaction.
	Replace(ctx context.Context, stats *models.UserStats, counters []*models.UserStatCounter) error
	UserIDs(ctx context.Context, tx *gorm.DB) ([]uint, error)
}

type statsRepo struct {
	db  *gorm.DB
	log *utils.Logger
}

func NewStatsRepo(db *gorm.DB, baseLog *utils.Logger) StatsRepo {
	return &statsRepo{db: db, log: baseLog.With("repo", "StatsRepo")}
}

// Get returns nil, nil when the user has no summary yet.
func (r *statsRepo) Get(ctx context.Context, tx *gorm.DB, userID uint) (*models.UserStats, error) {
	var rows []*models.UserStats
	if err := pick(r.db, tx).WithContext(ctx).
		Where("user_id = ?", userID).
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *statsRepo) IncrementTotals(ctx context.Context, tx *gorm.DB, userID uint, questions, minutes int) error {
	now := time.Now().UTC()
	row := &models.UserStats{
		UserID:                  userID,
		TotalQuestionsCompleted: questions,
		TotalTimeSpent:          minutes,
		QuestionsByCategory:     models.EmptyCounts(),
		QuestionsByDifficulty:   models.EmptyCounts(),
		CreatedAt:               now,
		UpdatedAt:               now,
	}
	return pick(r.db, tx).WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"total_questions_completed": gorm.Expr("user_stats.total_questions_completed + ?", questions),
				"total_time_spent":          gorm.Expr("user_stats.total_time_spent + ?", minutes),
				"updated_at":                now,
			}),
		}).
		Create(row).Error
}

func (r *statsRepo) IncrementCounter(ctx context.Context, tx *gorm.DB, userID uint, dimension, key string, by int) error {
	now := time.Now().UTC()
	row := &models.UserStatCounter{
		UserID:    userID,
		Dimension: dimension,
		Key:       key,
		Count:     by,
		UpdatedAt: now,
	}
	return pick(r.db, tx).WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "dimension"}, {Name: "counter_key"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"tally":      gorm.Expr("user_stat_counters.tally + ?", by),
				"updated_at": now,
			}),
		}).
		Create(row).Error
}

func (r *statsRepo) Counters(ctx context.Context, tx *gorm.DB, userID uint) (Counts, error) {
	var rows []*models.UserStatCounter
	if err := pick(r.db, tx).WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := Counts{}
	for _, row := range rows {
		if out[row.Dimension] == nil {
			out[row.Dimension] = map[string]int{}
		}
		out[row.Dimension][row.Key] = row.Count
	}
	return out, nil
}

func (r *statsRepo) UpdateDerived(ctx context.Context, tx *gorm.DB, userID uint, d DerivedStats) error {
	return pick(r.db, tx).WithContext(ctx).
		Model(&models.UserStats{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"current_streak":            d.CurrentStreak,
			"longest_streak":            d.LongestStreak,
			"last_study_date":           d.LastStudyDate,
			"average_time_per_question": d.AverageTimePerQuestion,
			"questions_by_category":     datatypes.NewJSONType(nonNil(d.QuestionsByCategory)),
			"questions_by_difficulty":   datatypes.NewJSONType(nonNil(d.QuestionsByDifficulty)),
			"updated_at":                time.Now().UTC(),
		}).Error
}

func (r *statsRepo) Replace(ctx context.Context, stats *models.UserStats, counters []*models.UserStatCounter) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", stats.UserID).Delete(&models.UserStatCounter{}).Error; err != nil {
			return err
		}
		if len(counters) > 0 {
			if err := tx.Create(&counters).Error; err != nil {
				return err
			}
		}
		now := time.Now().UTC()
		stats.UpdatedAt = now
		if stats.CreatedAt.IsZero() {
			stats.CreatedAt = now
		}
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"total_questions_completed", "total_time_spent",
				"questions_by_category", "questions_by_difficulty",
				"current_streak", "longest_streak", "last_study_date",
				"average_time_per_question", "updated_at",
			}),
		}).Create(stats).Error
	})
}

func (r *statsRepo) UserIDs(ctx context.Context, tx *gorm.DB) ([]uint, error) {
	var ids []uint
	if err := pick(r.db, tx).WithContext(ctx).
		Model(&models.UserStats{}).
		Order("user_id asc").
		Pluck("user_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func nonNil(m map[string]int) map[string]int {
	if m == nil {
		return map[string]int{}
	}
	return m
}
