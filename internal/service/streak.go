package service

import (
	"github.com/jayvicsanantonio/tracknstick-api-sub000/internal"
)

// RecomputeStreak derives a habit's streak fields from its tracker ledger
// as of today. Streak units are due-occurrences, not calendar days: a
// weekly habit's streak of 5 means five consecutive scheduled days
// completed, whatever the gaps between them.
//
// Tracker dates were fixed when each tracker was created; they are used
// as stored and never re-derived, so a later timezone change cannot shift
// historical streaks.
func RecomputeStreak(h *internal.Habit, trackers []internal.Tracker, today internal.Date) internal.StreakFields {
	fields := internal.StreakFields{TotalCompletions: len(trackers)}

	done := make(map[internal.Date]bool, len(trackers))
	for i := range trackers {
		t := &trackers[i]
		done[t.DateTracked] = true
		if fields.LastCompleted == nil || t.CompletedAt.After(*fields.LastCompleted) {
			ts := t.CompletedAt
			fields.LastCompleted = &ts
		}
	}

	due := DueDates(h, today)

	// Longest: forward scan, run resets on a due-but-missed occurrence.
	run := 0
	for _, d := range due {
		if done[d] {
			run++
			if run > fields.LongestStreak {
				fields.LongestStreak = run
			}
		} else {
			run = 0
		}
	}

	// Current: backward scan from today until the first miss.
	for i := len(due) - 1; i >= 0; i-- {
		if !done[due[i]] {
			break
		}
		fields.CurrentStreak++
	}

	return fields
}
