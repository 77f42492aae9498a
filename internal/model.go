package internal

import (
	"fmt"
	"time"
)

type User struct {
	ID    string `json:"id"`
	Token string `json:"token"`
	Name  string `json:"name"`
}

// FrequencyType discriminates the frequency descriptor variants.
type FrequencyType string

const (
	FrequencyDaily   FrequencyType = "daily"
	FrequencyWeekly  FrequencyType = "weekly"
	FrequencyMonthly FrequencyType = "monthly"
	FrequencyCustom  FrequencyType = "custom"
)

// Frequency describes which calendar days a habit is due. Exactly one
// variant payload is meaningful, selected by Type.
type Frequency struct {
	Type         FrequencyType  `json:"type"`
	Weekdays     []time.Weekday `json:"weekdays,omitempty"`      // weekly: 0=Sunday .. 6=Saturday
	MonthDays    []int          `json:"month_days,omitempty"`    // monthly: 1..31
	IntervalDays int            `json:"interval_days,omitempty"` // custom: every N days from start date
}

// Validate rejects malformed descriptors before any scheduling math runs.
func (f Frequency) Validate() error {
	switch f.Type {
	case FrequencyDaily:
		return nil
	case FrequencyWeekly:
		if len(f.Weekdays) == 0 {
			return NewValidationError("weekly frequency requires at least one weekday")
		}
		for _, wd := range f.Weekdays {
			if wd < time.Sunday || wd > time.Saturday {
				return NewValidationError(fmt.Sprintf("invalid weekday %d", wd))
			}
		}
		return nil
	case FrequencyMonthly:
		if len(f.MonthDays) == 0 {
			return NewValidationError("monthly frequency requires at least one day of month")
		}
		for _, md := range f.MonthDays {
			if md < 1 || md > 31 {
				return NewValidationError(fmt.Sprintf("invalid day of month %d", md))
			}
		}
		return nil
	case FrequencyCustom:
		if f.IntervalDays < 1 {
			return NewValidationError("custom frequency requires interval_days >= 1")
		}
		return nil
	default:
		return NewValidationError(fmt.Sprintf("unknown frequency type %q", f.Type))
	}
}

// Habit is a recurring habit owned by a user. The streak fields are
// derived from the tracker ledger by the streak calculator and must never
// be edited directly.
type Habit struct {
	ID               string     `json:"id"`
	UserID           string     `json:"user_id"`
	Name             string     `json:"name"`
	Icon             string     `json:"icon,omitempty"`
	Frequency        Frequency  `json:"frequency"`
	StartDate        Date       `json:"start_date"`
	EndDate          *Date      `json:"end_date,omitempty"`
	CurrentStreak    int        `json:"current_streak"`
	LongestStreak    int        `json:"longest_streak"`
	TotalCompletions int        `json:"total_completions"`
	LastCompleted    *time.Time `json:"last_completed,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// Tracker is a single completion of a habit on a calendar date.
// DateTracked is fixed at creation from the timezone active at that
// moment; it is never re-derived afterwards.
type Tracker struct {
	ID          string    `json:"id"`
	HabitID     string    `json:"habit_id"`
	UserID      string    `json:"user_id"`
	CompletedAt time.Time `json:"completed_at"`
	DateTracked Date      `json:"date_tracked"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// StreakFields is the derived per-habit state written back after every
// ledger mutation.
type StreakFields struct {
	CurrentStreak    int        `json:"current_streak"`
	LongestStreak    int        `json:"longest_streak"`
	TotalCompletions int        `json:"total_completions"`
	LastCompleted    *time.Time `json:"last_completed,omitempty"`
}
