package service

import (
	"context"
	"time"

	"github.com/jayvicsanantonio/tracknstick-api-sub000/internal"
	"github.com/jayvicsanantonio/tracknstick-api-sub000/internal/cache"
	"github.com/jayvicsanantonio/tracknstick-api-sub000/internal/storage"
)

// lookbackDays caps the progress calculation window when a user's oldest
// habit predates it.
const lookbackDays = 366

type OverviewDay struct {
	Date           internal.Date `json:"date"`
	CompletionRate float64       `json:"completion_rate"`
	PerfectDay     bool          `json:"is_perfect_day"`
}

type Overview struct {
	History       []OverviewDay `json:"history"`
	CurrentStreak int           `json:"current_streak"`
	LongestStreak int           `json:"longest_streak"`
}

// ComputeOverview builds the daily completion-rate series and perfect-day
// streaks for one user over the full calculation window: from the earliest
// habit start date (capped by lookbackDays) through today.
//
// Days on which no habit is due are excluded entirely; they appear neither
// in the history nor as a break in a perfect-day streak.
func ComputeOverview(habits []internal.Habit, trackers []internal.Tracker, today internal.Date) Overview {
	overview := Overview{History: []OverviewDay{}}
	if len(habits) == 0 {
		return overview
	}

	start := habits[0].StartDate
	for _, h := range habits[1:] {
		if h.StartDate.Before(start) {
			start = h.StartDate
		}
	}
	if floor := today.AddDays(-(lookbackDays - 1)); start.Before(floor) {
		start = floor
	}
	if start.After(today) {
		return overview
	}

	type habitDate struct {
		habitID string
		date    internal.Date
	}
	completed := make(map[habitDate]bool, len(trackers))
	for i := range trackers {
		completed[habitDate{trackers[i].HabitID, trackers[i].DateTracked}] = true
	}

	run := 0
	for d := start; !d.After(today); d = d.AddDays(1) {
		due, done := 0, 0
		for i := range habits {
			h := &habits[i]
			if !IsDue(h, d) {
				continue
			}
			due++
			if completed[habitDate{h.ID, d}] {
				done++
			}
		}
		if due == 0 {
			// Not a success, not a break.
			continue
		}

		rate := float64(done) / float64(due)
		perfect := done == due
		overview.History = append(overview.History, OverviewDay{
			Date:           d,
			CompletionRate: rate,
			PerfectDay:     perfect,
		})

		if perfect {
			run++
			if run > overview.LongestStreak {
				overview.LongestStreak = run
			}
		} else {
			run = 0
		}
	}
	// Zero-due days never reset the run, so the final run is exactly the
	// backward scan from today.
	overview.CurrentStreak = run
	return overview
}

// FilterHistory narrows a computed history to a display range. Filtering
// happens strictly on the output; the streak numbers computed over the
// full window are untouched by it.
func FilterHistory(history []OverviewDay, from, to *internal.Date) []OverviewDay {
	if from == nil && to == nil {
		return history
	}
	filtered := make([]OverviewDay, 0, len(history))
	for _, day := range history {
		if from != nil && day.Date.Before(*from) {
			continue
		}
		if to != nil && day.Date.After(*to) {
			continue
		}
		filtered = append(filtered, day)
	}
	return filtered
}

// GetProgressOverview loads the user's habits and trackers, computes the
// full-window overview (through the result cache), then applies the
// optional display range to the returned history only.
func GetProgressOverview(ctx context.Context, store storage.Store, results *cache.Cache, ttl time.Duration,
	userID, timezone, startDate, endDate string) (*Overview, error) {

	loc, err := LoadTimezone(timezone)
	if err != nil {
		return nil, err
	}
	var from, to *internal.Date
	if startDate != "" {
		d, err := internal.ParseDate(startDate)
		if err != nil {
			return nil, internal.NewValidationError("invalid start_date: " + startDate)
		}
		from = &d
	}
	if endDate != "" {
		d, err := internal.ParseDate(endDate)
		if err != nil {
			return nil, internal.NewValidationError("invalid end_date: " + endDate)
		}
		to = &d
	}

	today := internal.Today(loc)
	key := "overview:" + userID + ":" + today.String()
	value, err := results.GetOrCompute(userID, key, ttl, func() (any, error) {
		habits, err := store.ListHabits(ctx, userID)
		if err != nil {
			return nil, err
		}
		var trackers []internal.Tracker
		if len(habits) > 0 {
			trackers, err = store.ListTrackersForUser(ctx, userID, today.AddDays(-(lookbackDays-1)), today)
			if err != nil {
				return nil, err
			}
		}
		overview := ComputeOverview(habits, trackers, today)
		return &overview, nil
	})
	if err != nil {
		return nil, err
	}

	full := value.(*Overview)
	return &Overview{
		History:       FilterHistory(full.History, from, to),
		CurrentStreak: full.CurrentStreak,
		LongestStreak: full.LongestStreak,
	}, nil
}
