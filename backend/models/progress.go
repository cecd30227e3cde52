package models

import (
	"time"

	"gorm.io/gorm"
)

type ProgressStatus string

const (
	StatusNotStarted ProgressStatus = "not-started"
	StatusInProgress ProgressStatus = "in-progress"
	StatusCompleted  ProgressStatus = "completed"
)

func (s ProgressStatus) Valid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// QuestionProgress is the completion state of one question for one user.
// Rows are never deleted; un-completing moves the status back to not-started.
type QuestionProgress struct {
	gorm.Model
	UserID      uint           `gorm:"not null;uniqueIndex:idx_progress_user_question" json:"user_id"`
	QuestionID  uint           `gorm:"not null;uniqueIndex:idx_progress_user_question" json:"question_id"`
	Status      ProgressStatus `gorm:"type:varchar(16);not null;default:not-started;index" json:"status"`
	TimeSpent   int            `gorm:"not null;default:0" json:"time_spent"` // minutes
	CompletedAt *time.Time     `json:"completed_at,omitempty"`

	// CreditedTime is what the current completion added to the user's
	// totals; 0 while the question is not completed.
	CreditedTime int `gorm:"not null;default:0" json:"credited_time"`
}
