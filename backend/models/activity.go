package models

import "time"

// DailyActivity aggregates one user's completions on one calendar day.
type DailyActivity struct {
	ID     uint      `gorm:"primaryKey" json:"-"`
	UserID uint      `gorm:"not null;uniqueIndex:idx_daily_activity_user_date" json:"user_id"`
	Date   time.Time `gorm:"column:activity_date;not null;uniqueIndex:idx_daily_activity_user_date" json:"date"`

	QuestionsCompleted int `gorm:"not null;default:0" json:"questions_completed"`
	TimeSpent          int `gorm:"not null;default:0" json:"time_spent"` // minutes

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

func (DailyActivity) TableName() string {
	return "daily_activities"
}
