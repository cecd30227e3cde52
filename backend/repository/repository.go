// Package repository is the durable-store adapter for the progress engine.
// Every method takes an optional tx; nil means the repository's own handle.
package repository

import (
	"devprep/backend/utils"

	"gorm.io/gorm"
)

// UpsertOp records which branch an upsert took.
type UpsertOp int

const (
	OpInserted UpsertOp = iota + 1
	OpUpdated
)

func (op UpsertOp) String() string {
	switch op {
	case OpInserted:
		return "insert"
	case OpUpdated:
		return "update"
	}
	return "unknown"
}

// Repos groups the repositories the services consume.
type Repos struct {
	Questions QuestionRepo
	Progress  ProgressRepo
	Activity  ActivityRepo
	Stats     StatsRepo
}

func New(db *gorm.DB, log *utils.Logger) Repos {
	return Repos{
		Questions: NewQuestionRepo(db, log),
		Progress:  NewProgressRepo(db, log),
		Activity:  NewActivityRepo(db, log),
		Stats:     NewStatsRepo(db, log),
	}
}

func pick(db, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return db
}

// supportsRowLocks reports whether SELECT ... FOR UPDATE is valid on this dialect.
func supportsRowLocks(db *gorm.DB) bool {
	return db.Dialector.Name() != "sqlite"
}
