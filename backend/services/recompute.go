package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"devprep/backend/apperr"
	"devprep/backend/cache"
	"devprep/backend/models"
	"devprep/backend/repository"
	"devprep/backend/utils"

	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
)

type RecomputeReport struct {
	Users    int           `json:"users"`
	Failed   []uint        `json:"failed,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Recomputer rebuilds UserStats from the source rows. It repairs drift left by
// partial failures and by forward-only accounting.
type Recomputer struct {
	repos   repository.Repos
	streaks *StreakCalculator
	cache   cache.Cache
	workers int
	log     *utils.Logger
}

func NewRecomputer(repos repository.Repos, streaks *StreakCalculator, c cache.Cache, workers int, log *utils.Logger) *Recomputer {
	if workers < 1 {
		workers = 1
	}
	return &Recomputer{
		repos:   repos,
		streaks: streaks,
		cache:   c,
		workers: workers,
		log:     log.With("service", "Recomputer"),
	}
}

// RecomputeAll covers every user with a completion or an existing summary.
// A failing user is logged and reported; the sweep carries on with the rest.
func (r *Recomputer) RecomputeAll(ctx context.Context) (*RecomputeReport, error) {
	start := time.Now()

	withCompletions, err := r.repos.Progress.UserIDsWithCompletions(ctx, nil)
	if err != nil {
		return nil, apperr.Transient("list users with completions", err)
	}
	withStats, err := r.repos.Stats.UserIDs(ctx, nil)
	if err != nil {
		return nil, apperr.Transient("list users with stats", err)
	}
	userIDs := unionIDs(withCompletions, withStats)

	var (
		mu     sync.Mutex
		failed []uint
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for _, userID := range userIDs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if _, err := r.RecomputeUser(gctx, userID); err != nil {
				r.log.Error("recompute failed", "user_id", userID, "error", err)
				mu.Lock()
				failed = append(failed, userID)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(failed, func(i, j int) bool { return failed[i] < failed[j] })
	report := &RecomputeReport{
		Users:    len(userIDs),
		Failed:   failed,
		Duration: time.Since(start),
	}
	r.log.Info("stats recompute finished", "users", report.Users, "failed", len(failed), "duration", report.Duration)
	return report, nil
}

func (r *Recomputer) RecomputeUser(ctx context.Context, userID uint) (*models.UserStats, error) {
	if userID == 0 {
		return nil, apperr.Validation("user id is required")
	}

	completed, err := r.repos.Progress.GetByUser(ctx, nil, userID, models.StatusCompleted)
	if err != nil {
		return nil, apperr.Transient("load completed progress", err)
	}

	questionIDs := make([]uint, 0, len(completed))
	for _, row := range completed {
		questionIDs = append(questionIDs, row.QuestionID)
	}
	questions, err := r.repos.Questions.GetByIDs(ctx, nil, questionIDs)
	if err != nil {
		return nil, apperr.Transient("load questions", err)
	}
	byID := make(map[uint]*models.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	byCategory := map[string]int{}
	byDifficulty := map[string]int{}
	totalTime := 0
	var lastStudy *time.Time
	for _, row := range completed {
		totalTime += row.CreditedTime
		if row.CompletedAt != nil && (lastStudy == nil || row.CompletedAt.After(*lastStudy)) {
			t := row.CompletedAt.UTC()
			lastStudy = &t
		}
		q, ok := byID[row.QuestionID]
		if !ok {
			continue
		}
		if q.Category != "" {
			byCategory[q.Category]++
		}
		if q.Difficulty != "" {
			byDifficulty[q.Difficulty]++
		}
	}

	streak, err := r.streaks.Compute(ctx, userID)
	if err != nil {
		return nil, apperr.Transient("compute streak", err)
	}

	stats := &models.UserStats{
		UserID:                  userID,
		TotalQuestionsCompleted: len(completed),
		TotalTimeSpent:          totalTime,
		QuestionsByCategory:     datatypes.NewJSONType(byCategory),
		QuestionsByDifficulty:   datatypes.NewJSONType(byDifficulty),
		CurrentStreak:           streak.Current,
		LongestStreak:           streak.Longest,
		LastStudyDate:           lastStudy,
		AverageTimePerQuestion:  models.AverageTime(totalTime, len(completed)),
	}
	counters := append(
		counterRows(userID, models.DimensionCategory, byCategory),
		counterRows(userID, models.DimensionDifficulty, byDifficulty)...,
	)

	if err := r.repos.Stats.Replace(ctx, stats, counters); err != nil {
		return nil, apperr.Transient("replace stats", err)
	}
	if r.cache != nil {
		if err := r.cache.InvalidatePattern(ctx, userCachePattern(userID)); err != nil {
			r.log.Warn("cache invalidation failed", "user_id", userID, "error", err)
		}
	}
	return stats, nil
}

func counterRows(userID uint, dimension string, counts map[string]int) []*models.UserStatCounter {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	now := time.Now().UTC()
	rows := make([]*models.UserStatCounter, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, &models.UserStatCounter{
			UserID:    userID,
			Dimension: dimension,
			Key:       k,
			Count:     counts[k],
			UpdatedAt: now,
		})
	}
	return rows
}

func unionIDs(a, b []uint) []uint {
	seen := make(map[uint]struct{}, len(a)+len(b))
	out := make([]uint, 0, len(a)+len(b))
	for _, list := range [][]uint{a, b} {
		for _, id := range list {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
