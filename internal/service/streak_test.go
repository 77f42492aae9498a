package service

import (
	"testing"
	"time"

	"github.com/jayvicsanantonio/tracknstick-api-sub000/internal"
	"github.com/stretchr/testify/assert"
)

func trackersOn(habitID string, dates ...internal.Date) []internal.Tracker {
	trackers := make([]internal.Tracker, 0, len(dates))
	for i, d := range dates {
		trackers = append(trackers, internal.Tracker{
			ID:          d.String(),
			HabitID:     habitID,
			UserID:      "u1",
			CompletedAt: d.Time().Add(time.Duration(8+i) * time.Hour),
			DateTracked: d,
		})
	}
	return trackers
}

func TestRecomputeStreakMissedMidweek(t *testing.T) {
	// Exercise: Mon/Wed/Fri from 2024-01-01 (a Monday). Completed Jan 1,
	// 3, 5, 8; missed Jan 10. As of Jan 11 the current streak is broken
	// but the longest run of four still stands.
	h := &internal.Habit{
		ID:        "h1",
		StartDate: internal.NewDate(2024, time.January, 1),
		Frequency: internal.Frequency{
			Type:     internal.FrequencyWeekly,
			Weekdays: []time.Weekday{time.Monday, time.Wednesday, time.Friday},
		},
	}
	trackers := trackersOn("h1",
		internal.NewDate(2024, time.January, 1),
		internal.NewDate(2024, time.January, 3),
		internal.NewDate(2024, time.January, 5),
		internal.NewDate(2024, time.January, 8),
	)

	fields := RecomputeStreak(h, trackers, internal.NewDate(2024, time.January, 11))
	assert.Equal(t, 0, fields.CurrentStreak)
	assert.Equal(t, 4, fields.LongestStreak)
	assert.Equal(t, 4, fields.TotalCompletions)
	assert.NotNil(t, fields.LastCompleted)
	assert.Equal(t, internal.NewDate(2024, time.January, 8), internal.DateOf(*fields.LastCompleted, time.UTC))
}

func TestRecomputeStreakAllDueCompleted(t *testing.T) {
	h := &internal.Habit{
		ID:        "h1",
		StartDate: internal.NewDate(2024, time.January, 1),
		Frequency: internal.Frequency{Type: internal.FrequencyDaily},
	}
	var dates []internal.Date
	for d := h.StartDate; !d.After(internal.NewDate(2024, time.January, 7)); d = d.AddDays(1) {
		dates = append(dates, d)
	}
	fields := RecomputeStreak(h, trackersOn("h1", dates...), internal.NewDate(2024, time.January, 7))
	assert.Equal(t, 7, fields.CurrentStreak)
	assert.Equal(t, 7, fields.LongestStreak)
}

func TestRecomputeStreakUnitsAreDueOccurrences(t *testing.T) {
	// A custom every-7-days habit: three completions in a row count as a
	// streak of three even though 21 calendar days elapsed.
	h := &internal.Habit{
		ID:        "h1",
		StartDate: internal.NewDate(2024, time.January, 1),
		Frequency: internal.Frequency{Type: internal.FrequencyCustom, IntervalDays: 7},
	}
	trackers := trackersOn("h1",
		internal.NewDate(2024, time.January, 1),
		internal.NewDate(2024, time.January, 8),
		internal.NewDate(2024, time.January, 15),
	)
	fields := RecomputeStreak(h, trackers, internal.NewDate(2024, time.January, 15))
	assert.Equal(t, 3, fields.CurrentStreak)
	assert.Equal(t, 3, fields.LongestStreak)
}

func TestRecomputeStreakLongestNeverBelowCurrent(t *testing.T) {
	h := &internal.Habit{
		ID:        "h1",
		StartDate: internal.NewDate(2024, time.January, 1),
		Frequency: internal.Frequency{Type: internal.FrequencyDaily},
	}
	trackers := trackersOn("h1",
		internal.NewDate(2024, time.January, 2),
		internal.NewDate(2024, time.January, 4),
		internal.NewDate(2024, time.January, 5),
	)
	fields := RecomputeStreak(h, trackers, internal.NewDate(2024, time.January, 5))
	assert.GreaterOrEqual(t, fields.LongestStreak, fields.CurrentStreak)
	assert.Equal(t, 2, fields.CurrentStreak)
	assert.Equal(t, 2, fields.LongestStreak)
}

func TestRecomputeStreakNoTrackers(t *testing.T) {
	h := &internal.Habit{
		ID:        "h1",
		StartDate: internal.NewDate(2024, time.January, 1),
		Frequency: internal.Frequency{Type: internal.FrequencyDaily},
	}
	fields := RecomputeStreak(h, nil, internal.NewDate(2024, time.January, 10))
	assert.Zero(t, fields.CurrentStreak)
	assert.Zero(t, fields.LongestStreak)
	assert.Zero(t, fields.TotalCompletions)
	assert.Nil(t, fields.LastCompleted)
}
