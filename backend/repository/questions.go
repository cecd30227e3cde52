package repository

import (
	"context"
	"strings"

	"devprep/backend/models"
	"devprep/backend/utils"

	"gorm.io/gorm"
)

type QuestionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, q *models.Question) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]*models.Question, error)
	List(ctx context.Context, tx *gorm.DB, filter QuestionFilter) ([]*models.Question, int64, error)
}

type QuestionFilter struct {
	Category   string
	Difficulty string
	// Search matches title or slug, case-insensitively.
	Search     string
	Page       int
	PageSize   int
}

type questionRepo struct {
	db  *gorm.DB
	log *utils.Logger
}

func NewQuestionRepo(db *gorm.DB, baseLog *utils.Logger) QuestionRepo {
	return &questionRepo{db: db, log: baseLog.With("repo", "QuestionRepo")}
}

func (r *questionRepo) Create(ctx context.Context, tx *gorm.DB, q *models.Question) error {
	return pick(r.db, tx).WithContext(ctx).Create(q).Error
}

// GetByID returns nil, nil when the question does not exist.
func (r *questionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error) {
	if id == 0 {
		return nil, nil
	}
	var rows []*models.Question
	if err := pick(r.db, tx).WithContext(ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *questionRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]*models.Question, error) {
	var rows []*models.Question
	if len(ids) == 0 {
		return rows, nil
	}
	if err := pick(r.db, tx).WithContext(ctx).
		Where("id IN ?", ids).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *questionRepo) List(ctx context.Context, tx *gorm.DB, filter QuestionFilter) ([]*models.Question, int64, error) {
	base := pick(r.db, tx).WithContext(ctx).Model(&models.Question{})
	if filter.Category != "" {
		base = base.Where("category = ?", filter.Category)
	}
	if filter.Difficulty != "" {
		base = base.Where("difficulty = ?", filter.Difficulty)
	}
	if search := strings.ToLower(strings.TrimSpace(filter.Search)); search != "" {
		like := "%" + search + "%"
		base = base.Where("LOWER(title) LIKE ? OR LOWER(slug) LIKE ?", like, like)
	}
	query := base.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}

	var rows []*models.Question
	if err := query.
		Order("id asc").
		Offset((filter.Page - 1) * filter.PageSize).
		Limit(filter.PageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
