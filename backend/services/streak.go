package services

import (
	"context"
	"time"

	"devprep/backend/repository"
)

const day = 24 * time.Hour

type Streak struct {
	Current int `json:"current_streak"`
	Longest int `json:"longest_streak"`
}

// CalculateStreak derives the streaks from distinct active days sorted most
// recent first. The current streak survives one day without activity: a user
// whose last active day is yesterday still has it.
func CalculateStreak(daysDesc []time.Time, today time.Time) Streak {
	if len(daysDesc) == 0 {
		return Streak{}
	}

	yesterday := today.Add(-day)
	current := 0
	if mostRecent := daysDesc[0]; mostRecent.Equal(today) || mostRecent.Equal(yesterday) {
		current = 1
		for i := 1; i < len(daysDesc); i++ {
			if gapDays(daysDesc[i-1], daysDesc[i]) != 1 {
				break
			}
			current++
		}
	}

	longest := max(1, current)
	running := 1
	for i := 1; i < len(daysDesc); i++ {
		if gapDays(daysDesc[i-1], daysDesc[i]) == 1 {
			running++
		} else {
			running = 1
		}
		longest = max(longest, current, running)
	}

	return Streak{Current: current, Longest: longest}
}

func gapDays(later, earlier time.Time) int {
	return int(later.Sub(earlier) / day)
}

// StreakCalculator reads a user's activity history and applies CalculateStreak.
type StreakCalculator struct {
	activity repository.ActivityRepo
	calendar *Calendar
}

func NewStreakCalculator(activity repository.ActivityRepo, calendar *Calendar) *StreakCalculator {
	return &StreakCalculator{activity: activity, calendar: calendar}
}

func (s *StreakCalculator) Compute(ctx context.Context, userID uint) (Streak, error) {
	days, err := s.activity.ActiveDays(ctx, nil, userID)
	if err != nil {
		return Streak{}, err
	}
	return CalculateStreak(days, s.calendar.Today()), nil
}
