package repository

import (
	"context"
	"errors"
	"fmt"

	"devprep/backend/models"
	"devprep/backend/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProgressUpsert is the outcome of ProgressRepo.Upsert.
type ProgressUpsert struct {
	Op       UpsertOp
	Previous models.ProgressStatus
	Row      *models.QuestionProgress
}

type ProgressRepo interface {
	// Upsert keyed by (userID, questionID): create builds a fresh row when none
	// exists, update mutates the locked existing row in place.
	Upsert(ctx context.Context, userID, questionID uint, create func() *models.QuestionProgress, update func(*models.QuestionProgress)) (*ProgressUpsert, error)
	Get(ctx context.Context, tx *gorm.DB, userID, questionID uint) (*models.QuestionProgress, error)
	GetByUser(ctx context.Context, tx *gorm.DB, userID uint, status models.ProgressStatus) ([]*models.QuestionProgress, error)
	UserIDsWithCompletions(ctx context.Context, tx *gorm.DB) ([]uint, error)
}

type progressRepo struct {
	db  *gorm.DB
	log *utils.Logger
}

func NewProgressRepo(db *gorm.DB, baseLog *utils.Logger) ProgressRepo {
	return &progressRepo{db: db, log: baseLog.With("repo", "ProgressRepo")}
}

func (r *progressRepo) Upsert(ctx context.Context, userID, questionID uint, create func() *models.QuestionProgress, update func(*models.QuestionProgress)) (*ProgressUpsert, error) {
	res, err := r.upsertOnce(ctx, userID, questionID, create, update)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// A concurrent request inserted the row first; it exists now.
		r.log.Debug("progress insert raced, retrying as update", "user_id", userID, "question_id", questionID)
		return r.upsertOnce(ctx, userID, questionID, create, update)
	}
	return res, err
}

func (r *progressRepo) upsertOnce(ctx context.Context, userID, questionID uint, create func() *models.QuestionProgress, update func(*models.QuestionProgress)) (*ProgressUpsert, error) {
	var out *ProgressUpsert
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx
		if supportsRowLocks(tx) {
			query = query.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var existing []*models.QuestionProgress
		if err := query.
			Where("user_id = ? AND question_id = ?", userID, questionID).
			Limit(1).
			Find(&existing).Error; err != nil {
			return err
		}

		if len(existing) == 0 {
			row := create()
			if row == nil {
				return fmt.Errorf("progress create func returned nil")
			}
			row.UserID = userID
			row.QuestionID = questionID
			if err := tx.Create(row).Error; err != nil {
				return err
			}
			out = &ProgressUpsert{Op: OpInserted, Previous: models.StatusNotStarted, Row: row}
			return nil
		}

		row := existing[0]
		previous := row.Status
		update(row)
		if err := tx.Save(row).Error; err != nil {
			return err
		}
		out = &ProgressUpsert{Op: OpUpdated, Previous: previous, Row: row}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns nil, nil when no row exists for the pair.
func (r *progressRepo) Get(ctx context.Context, tx *gorm.DB, userID, questionID uint) (*models.QuestionProgress, error) {
	var rows []*models.QuestionProgress
	if err := pick(r.db, tx).WithContext(ctx).
		Where("user_id = ? AND question_id = ?", userID, questionID).
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// GetByUser lists a user's rows, optionally restricted to one status.
func (r *progressRepo) GetByUser(ctx context.Context, tx *gorm.DB, userID uint, status models.ProgressStatus) ([]*models.QuestionProgress, error) {
	var rows []*models.QuestionProgress
	if userID == 0 {
		return rows, nil
	}
	query := pick(r.db, tx).WithContext(ctx).Where("user_id = ?", userID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Order("question_id asc").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *progressRepo) UserIDsWithCompletions(ctx context.Context, tx *gorm.DB) ([]uint, error) {
	var ids []uint
	if err := pick(r.db, tx).WithContext(ctx).
		Model(&models.QuestionProgress{}).
		Where("status = ?", models.StatusCompleted).
		Distinct().
		Order("user_id asc").
		Pluck("user_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
