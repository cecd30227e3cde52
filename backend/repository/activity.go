package repository

import (
	"context"
	"time"

	"devprep/backend/models"
	"devprep/backend/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ActivityRepo interface {
	// Increment creates the (userID, day) row or adds to its counters atomically.
	Increment(ctx context.Context, tx *gorm.DB, userID uint, day time.Time, questions, minutes int) error
	Get(ctx context.Context, tx *gorm.DB, userID uint, day time.Time) (*models.DailyActivity, error)
	// ActiveDays returns the days with at least one completion, most recent first.
	ActiveDays(ctx context.Context, tx *gorm.DB, userID uint) ([]time.Time, error)
	History(ctx context.Context, tx *gorm.DB, userID uint, since time.Time) ([]*models.DailyActivity, error)
}

type activityRepo struct {
	db  *gorm.DB
	log *utils.Logger
}

func NewActivityRepo(db *gorm.DB, baseLog *utils.Logger) ActivityRepo {
	return &activityRepo{db: db, log: baseLog.With("repo", "ActivityRepo")}
}

func (r *activityRepo) Increment(ctx context.Context, tx *gorm.DB, userID uint, day time.Time, questions, minutes int) error {
	now := time.Now().UTC()
	row := &models.DailyActivity{
		UserID:             userID,
		Date:               day,
		QuestionsCompleted: questions,
		TimeSpent:          minutes,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	return pick(r.db, tx).WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "activity_date"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"questions_completed": gorm.Expr("daily_activities.questions_completed + ?", questions),
				"time_spent":          gorm.Expr("daily_activities.time_spent + ?", minutes),
				"updated_at":          now,
			}),
		}).
		Create(row).Error
}

func (r *activityRepo) Get(ctx context.Context, tx *gorm.DB, userID uint, day time.Time) (*models.DailyActivity, error) {
	var rows []*models.DailyActivity
	if err := pick(r.db, tx).WithContext(ctx).
		Where("user_id = ? AND activity_date = ?", userID, day).
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *activityRepo) ActiveDays(ctx context.Context, tx *gorm.DB, userID uint) ([]time.Time, error) {
	var days []time.Time
	if err := pick(r.db, tx).WithContext(ctx).
		Model(&models.DailyActivity{}).
		Where("user_id = ? AND questions_completed > 0", userID).
		Order("activity_date desc").
		Pluck("activity_date", &days).Error; err != nil {
		return nil, err
	}
	for i := range days {
		days[i] = days[i].UTC()
	}
	return days, nil
}

func (r *activityRepo) History(ctx context.Context, tx *gorm.DB, userID uint, since time.Time) ([]*models.DailyActivity, error) {
	var rows []*models.DailyActivity
	if err := pick(r.db, tx).WithContext(ctx).
		Where("user_id = ? AND activity_date >= ?", userID, since).
		Order("activity_date asc").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		row.Date = row.Date.UTC()
	}
	return rows, nil
}
