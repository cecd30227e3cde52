package models

import (
	"time"

	"gorm.io/datatypes"
)

// UserStats is the denormalized per-user summary. It can always be rebuilt
// from QuestionProgress and DailyActivity.
type UserStats struct {
	ID     uint `gorm:"primaryKey" json:"-"`
	UserID uint `gorm:"not null;uniqueIndex" json:"user_id"`

	TotalQuestionsCompleted int `gorm:"not null;default:0" json:"total_questions_completed"`
	TotalTimeSpent          int `gorm:"not null;default:0" json:"total_time_spent"`

	QuestionsByCategory   datatypes.JSONType[map[string]int] `json:"questions_by_category"`
	QuestionsByDifficulty datatypes.JSONType[map[string]int] `json:"questions_by_difficulty"`

	CurrentStreak          int        `gorm:"not null;default:0" json:"current_streak"`
	LongestStreak          int        `gorm:"not null;default:0" json:"longest_streak"`
	LastStudyDate          *time.Time `json:"last_study_date,omitempty"`
	AverageTimePerQuestion float64    `gorm:"not null;default:0" json:"average_time_per_question"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

func (UserStats) TableName() string {
	return "user_stats"
}

const (
	DimensionCategory   = "category"
	DimensionDifficulty = "difficulty"
)

// UserStatCounter backs the UserStats maps with rows that can be incremented
// atomically.
type UserStatCounter struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"not null;uniqueIndex:idx_stat_counter_key"`
	Dimension string `gorm:"type:varchar(16);not null;uniqueIndex:idx_stat_counter_key"`
	Key       string `gorm:"column:counter_key;not null;uniqueIndex:idx_stat_counter_key"`
	Count     int    `gorm:"column:tally;not null;default:0"`
	UpdatedAt time.Time
}

// AverageTime is total/count, or 0 when nothing has been completed.
func AverageTime(totalTime, completed int) float64 {
	if completed <= 0 {
		return 0
	}
	return float64(totalTime) / float64(completed)
}

func EmptyCounts() datatypes.JSONType[map[string]int] {
	return datatypes.NewJSONType(map[string]int{})
}
