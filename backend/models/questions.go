package models

import "gorm.io/gorm"

// Question is the metadata of a library entry that progress accounting needs.
type Question struct {
	gorm.Model
	Slug       string `gorm:"uniqueIndex;not null" json:"slug"`
	Title      string `gorm:"not null" json:"title"`
	Category   string `gorm:"index" json:"category"`   // css, javascript, system-design, ...
	Difficulty string `gorm:"index" json:"difficulty"` // easy, medium, hard
}

const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

func ValidDifficulty(d string) bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// All lists every model AutoMigrate manages.
func All() []interface{} {
	return []interface{}{
		&Question{},
		&QuestionProgress{},
		&DailyActivity{},
		&UserStats{},
		&UserStatCounter{},
	}
}
