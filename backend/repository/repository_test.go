package repository_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"devprep/backend/models"
	"devprep/backend/repository"
	"devprep/backend/testutil"
	"devprep/backend/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func newRepos(t *testing.T) repository.Repos {
	t.Helper()
	return repository.New(testutil.DB(t), testutil.Logger())
}

func TestProgressUpsertReportsOpAndPrevious(t *testing.T) {
	ctx := context.Background()
	repos := newRepos(t)

	set := func(status models.ProgressStatus, minutes int) *repository.ProgressUpsert {
		res, err := repos.Progress.Upsert(ctx, 1, 2,
			func() *models.QuestionProgress {
				return &models.QuestionProgress{Status: status, TimeSpent: minutes}
			},
			func(row *models.QuestionProgress) {
				row.Status = status
				row.TimeSpent = minutes
			})
		require.NoError(t, err)
		return res
	}

	first := set(models.StatusInProgress, 3)
	assert.Equal(t, repository.OpInserted, first.Op)
	assert.Equal(t, models.StatusNotStarted, first.Previous)
	assert.NotZero(t, first.Row.ID)

	second := set(models.StatusCompleted, 5)
	assert.Equal(t, repository.OpUpdated, second.Op)
	assert.Equal(t, models.StatusInProgress, second.Previous)
	assert.Equal(t, first.Row.ID, second.Row.ID)

	third := set(models.StatusNotStarted, 5)
	assert.Equal(t, models.StatusCompleted, third.Previous)
	assert.Equal(t, "update", third.Op.String())

	row, err := repos.Progress.Get(ctx, nil, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, models.StatusNotStarted, row.Status)

	missing, err := repos.Progress.Get(ctx, nil, 1, 3)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestProgressListingAndUserIDs(t *testing.T) {
	ctx := context.Background()
	repos := newRepos(t)

	put := func(userID, questionID uint, status models.ProgressStatus) {
		_, err := repos.Progress.Upsert(ctx, userID, questionID,
			func() *models.QuestionProgress { return &models.QuestionProgress{Status: status, TimeSpent: 1} },
			func(row *models.QuestionProgress) { row.Status = status })
		require.NoError(t, err)
	}
	put(5, 3, models.StatusCompleted)
	put(5, 1, models.StatusCompleted)
	put(5, 2, models.StatusInProgress)
	put(9, 1, models.StatusCompleted)
	put(4, 1, models.StatusInProgress)

	completed, err := repos.Progress.GetByUser(ctx, nil, 5, models.StatusCompleted)
	require.NoError(t, err)
	require.Len(t, completed, 2)
	assert.Equal(t, uint(1), completed[0].QuestionID)
	assert.Equal(t, uint(3), completed[1].QuestionID)

	all, err := repos.Progress.GetByUser(ctx, nil, 5, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	ids, err := repos.Progress.UserIDsWithCompletions(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, []uint{5, 9}, ids)
}

func TestActivityIncrementIsAtomic(t *testing.T) {
	ctx := context.Background()
	repos := newRepos(t)
	day := time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC)

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- repos.Activity.Increment(ctx, nil, 1, day, 1, 3)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	row, err := repos.Activity.Get(ctx, nil, 1, day)
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, 20, row.QuestionsCompleted)
	assert.Equal(t, 60, row.TimeSpent)
	assert.True(t, row.Date.Equal(day))
}

func TestActivityActiveDaysAndHistory(t *testing.T) {
	ctx := context.Background()
	repos := newRepos(t)
	d := func(n int) time.Time { return time.Date(2024, time.January, n, 0, 0, 0, 0, time.UTC) }

	require.NoError(t, repos.Activity.Increment(ctx, nil, 1, d(1), 1, 5))
	require.NoError(t, repos.Activity.Increment(ctx, nil, 1, d(3), 2, 7))
	require.NoError(t, repos.Activity.Increment(ctx, nil, 1, d(2), 1, 1))
	// a day with only time recorded is not an active day
	require.NoError(t, repos.Activity.Increment(ctx, nil, 1, d(4), 0, 4))
	require.NoError(t, repos.Activity.Increment(ctx, nil, 2, d(4), 1, 1))

	days, err := repos.Activity.ActiveDays(ctx, nil, 1)
	require.NoError(t, err)
	require.Len(t, days, 3)
	assert.True(t, days[0].Equal(d(3)))
	assert.True(t, days[2].Equal(d(1)))

	history, err := repos.Activity.History(ctx, nil, 1, d(2))
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.True(t, history[0].Date.Equal(d(2)))
	assert.Equal(t, 4, history[2].TimeSpent)
}

func TestStatsIncrementsAndCounters(t *testing.T) {
	ctx := context.Background()
	repos := newRepos(t)

	missing, err := repos.Stats.Get(ctx, nil, 3)
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, repos.Stats.IncrementTotals(ctx, nil, 3, 1, 5))
	require.NoError(t, repos.Stats.IncrementTotals(ctx, nil, 3, 1, 7))
	require.NoError(t, repos.Stats.IncrementCounter(ctx, nil, 3, models.DimensionCategory, "css", 1))
	require.NoError(t, repos.Stats.IncrementCounter(ctx, nil, 3, models.DimensionCategory, "css", 1))
	require.NoError(t, repos.Stats.IncrementCounter(ctx, nil, 3, models.DimensionDifficulty, "easy", 1))

	row, err := repos.Stats.Get(ctx, nil, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, row.TotalQuestionsCompleted)
	assert.Equal(t, 12, row.TotalTimeSpent)
	assert.Empty(t, row.QuestionsByCategory.Data())

	counts, err := repos.Stats.Counters(ctx, nil, 3)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"css": 2}, counts.Of(models.DimensionCategory))
	assert.Equal(t, map[string]int{"easy": 1}, counts.Of(models.DimensionDifficulty))
	assert.Equal(t, map[string]int{}, counts.Of("unknown"))

	last := time.Date(2024, time.January, 5, 9, 0, 0, 0, time.UTC)
	require.NoError(t, repos.Stats.UpdateDerived(ctx, nil, 3, repository.DerivedStats{
		CurrentStreak:          2,
		LongestStreak:          4,
		LastStudyDate:          last,
		AverageTimePerQuestion: 6,
		QuestionsByCategory:    counts.Of(models.DimensionCategory),
	}))

	row, err = repos.Stats.Get(ctx, nil, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, row.CurrentStreak)
	assert.Equal(t, 4, row.LongestStreak)
	assert.Equal(t, 6.0, row.AverageTimePerQuestion)
	assert.Equal(t, map[string]int{"css": 2}, row.QuestionsByCategory.Data())
	assert.Equal(t, map[string]int{}, row.QuestionsByDifficulty.Data())
	require.NotNil(t, row.LastStudyDate)
	assert.True(t, row.LastStudyDate.Equal(last))
}

func TestStatsReplace(t *testing.T) {
	ctx := context.Background()
	repos := newRepos(t)

	require.NoError(t, repos.Stats.IncrementTotals(ctx, nil, 4, 5, 50))
	require.NoError(t, repos.Stats.IncrementCounter(ctx, nil, 4, models.DimensionCategory, "js", 5))

	require.NoError(t, repos.Stats.Replace(ctx, &models.UserStats{
		UserID:                  4,
		TotalQuestionsCompleted: 1,
		TotalTimeSpent:          3,
		QuestionsByCategory:     datatypes.NewJSONType(map[string]int{"css": 1}),
		QuestionsByDifficulty:   models.EmptyCounts(),
		AverageTimePerQuestion:  3,
	}, []*models.UserStatCounter{
		{UserID: 4, Dimension: models.DimensionCategory, Key: "css", Count: 1},
	}))

	row, err := repos.Stats.Get(ctx, nil, 4)
	require.NoError(t, err)
	assert.Equal(t, 1, row.TotalQuestionsCompleted)
	assert.Equal(t, 3, row.TotalTimeSpent)
	assert.Equal(t, map[string]int{"css": 1}, row.QuestionsByCategory.Data())

	counts, err := repos.Stats.Counters(ctx, nil, 4)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"css": 1}, counts.Of(models.DimensionCategory))

	ids, err := repos.Stats.UserIDs(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, []uint{4}, ids)
}

func TestQuestionList(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	repos := repository.New(db, testutil.Logger())

	testutil.SeedQuestion(t, db, "flexbox", "css", models.DifficultyEasy)
	testutil.SeedQuestion(t, db, "grid", "css", models.DifficultyMedium)
	testutil.SeedQuestion(t, db, "closures", "js", models.DifficultyMedium)

	page, total, err := repos.Questions.List(ctx, nil, repository.QuestionFilter{Category: "css", PageSize: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, page, 1)
	assert.Equal(t, "flexbox", page[0].Slug)

	page, _, err = repos.Questions.List(ctx, nil, repository.QuestionFilter{Category: "css", Page: 2, PageSize: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "grid", page[0].Slug)

	medium, total, err := repos.Questions.List(ctx, nil, repository.QuestionFilter{Difficulty: models.DifficultyMedium})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, medium, 2)

	found, total, err := repos.Questions.List(ctx, nil, repository.QuestionFilter{Search: "FLEX"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "flexbox", found[0].Slug)

	byIDs, err := repos.Questions.GetByIDs(ctx, nil, []uint{page[0].ID, 999})
	require.NoError(t, err)
	assert.Len(t, byIDs, 1)
}

func TestMigrateBackfillsCreditedTime(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	repos := repository.New(db, testutil.Logger())

	legacy := &models.QuestionProgress{UserID: 1, QuestionID: 1, Status: models.StatusCompleted, TimeSpent: 9}
	open := &models.QuestionProgress{UserID: 1, QuestionID: 2, Status: models.StatusInProgress, TimeSpent: 4}
	credited := &models.QuestionProgress{UserID: 1, QuestionID: 3, Status: models.StatusCompleted, TimeSpent: 7, CreditedTime: 2}
	require.NoError(t, db.Create([]*models.QuestionProgress{legacy, open, credited}).Error)

	require.NoError(t, utils.Migrate(db))

	for questionID, want := range map[uint]int{1: 9, 2: 0, 3: 2} {
		row, err := repos.Progress.Get(ctx, nil, 1, questionID)
		require.NoError(t, err)
		assert.Equal(t, want, row.CreditedTime, "question %d", questionID)
	}
}
