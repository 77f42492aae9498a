package service

import (
	"testing"
	"time"

	"github.com/jayvicsanantonio/tracknstick-api-sub000/internal"
	"github.com/stretchr/testify/assert"
)

func TestComputeOverviewPartialDay(t *testing.T) {
	daily := internal.Habit{
		ID:        "a",
		StartDate: internal.NewDate(2024, time.January, 1),
		Frequency: internal.Frequency{Type: internal.FrequencyDaily},
	}
	wednesdays := internal.Habit{
		ID:        "b",
		StartDate: internal.NewDate(2024, time.January, 1),
		Frequency: internal.Frequency{Type: internal.FrequencyWeekly, Weekdays: []time.Weekday{time.Wednesday}},
	}
	// Habit a completed every day; habit b missed on Wednesday Jan 3.
	var trackers []internal.Tracker
	for d := daily.StartDate; !d.After(internal.NewDate(2024, time.January, 5)); d = d.AddDays(1) {
		trackers = append(trackers, internal.Tracker{HabitID: "a", DateTracked: d, CompletedAt: d.Time()})
	}

	overview := ComputeOverview([]internal.Habit{daily, wednesdays}, trackers, internal.NewDate(2024, time.January, 5))

	assert.Len(t, overview.History, 5)
	wed := overview.History[2]
	assert.Equal(t, internal.NewDate(2024, time.January, 3), wed.Date)
	assert.InDelta(t, 0.5, wed.CompletionRate, 1e-9)
	assert.False(t, wed.PerfectDay)

	// Perfect runs: Jan 1-2, then Jan 4-5.
	assert.Equal(t, 2, overview.CurrentStreak)
	assert.Equal(t, 2, overview.LongestStreak)
}

func TestComputeOverviewSkipsZeroDueDays(t *testing.T) {
	mondays := internal.Habit{
		ID:        "a",
		StartDate: internal.NewDate(2024, time.January, 1), // a Monday
		Frequency: internal.Frequency{Type: internal.FrequencyWeekly, Weekdays: []time.Weekday{time.Monday}},
	}
	trackers := []internal.Tracker{
		{HabitID: "a", DateTracked: internal.NewDate(2024, time.January, 1)},
		{HabitID: "a", DateTracked: internal.NewDate(2024, time.January, 8)},
	}

	overview := ComputeOverview([]internal.Habit{mondays}, trackers, internal.NewDate(2024, time.January, 9))

	// Only the two Mondays appear; the gap days neither show up nor break
	// the perfect-day streak.
	assert.Len(t, overview.History, 2)
	assert.Equal(t, 2, overview.CurrentStreak)
	assert.Equal(t, 2, overview.LongestStreak)
}

func TestComputeOverviewNoHabits(t *testing.T) {
	overview := ComputeOverview(nil, nil, internal.NewDate(2024, time.January, 1))
	assert.Empty(t, overview.History)
	assert.Zero(t, overview.CurrentStreak)
	assert.Zero(t, overview.LongestStreak)
}

func TestComputeOverviewLookbackClamp(t *testing.T) {
	old := internal.Habit{
		ID:        "a",
		StartDate: internal.NewDate(2020, time.January, 1),
		Frequency: internal.Frequency{Type: internal.FrequencyDaily},
	}
	today := internal.NewDate(2024, time.June, 1)
	overview := ComputeOverview([]internal.Habit{old}, nil, today)
	assert.Len(t, overview.History, lookbackDays)
	assert.Equal(t, today.AddDays(-(lookbackDays-1)), overview.History[0].Date)
}

func TestFilterHistoryDoesNotChangeValues(t *testing.T) {
	daily := internal.Habit{
		ID:        "a",
		StartDate: internal.NewDate(2024, time.January, 1),
		Frequency: internal.Frequency{Type: internal.FrequencyDaily},
	}
	var trackers []internal.Tracker
	for d := daily.StartDate; !d.After(internal.NewDate(2024, time.January, 10)); d = d.AddDays(1) {
		trackers = append(trackers, internal.Tracker{HabitID: "a", DateTracked: d})
	}
	today := internal.NewDate(2024, time.January, 10)
	full := ComputeOverview([]internal.Habit{daily}, trackers, today)

	from := internal.NewDate(2024, time.January, 8)
	filtered := FilterHistory(full.History, &from, nil)

	assert.Len(t, filtered, 3)
	for i, day := range filtered {
		assert.Equal(t, full.History[7+i], day)
	}
	// The streaks were computed over the full window and are unaffected
	// by any display range.
	assert.Equal(t, 10, full.CurrentStreak)
	assert.Equal(t, 10, full.LongestStreak)
}

func TestFilterHistoryBounds(t *testing.T) {
	history := []OverviewDay{
		{Date: internal.NewDate(2024, time.January, 1), CompletionRate: 1, PerfectDay: true},
		{Date: internal.NewDate(2024, time.January, 2), CompletionRate: 0.5},
		{Date: internal.NewDate(2024, time.January, 3), CompletionRate: 1, PerfectDay: true},
	}
	from := internal.NewDate(2024, time.January, 2)
	to := internal.NewDate(2024, time.January, 2)
	filtered := FilterHistory(history, &from, &to)
	assert.Len(t, filtered, 1)
	assert.InDelta(t, 0.5, filtered[0].CompletionRate, 1e-9)

	assert.Len(t, FilterHistory(history, nil, nil), 3)
}
