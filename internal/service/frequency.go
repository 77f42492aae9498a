package service

import (
	"time"

	"github.com/jayvicsanantonio/tracknstick-api-sub000/internal"
)

// IsDue reports whether the habit is due on the given calendar date. It is
// a pure function of the habit's frequency descriptor and active window.
//
// A monthly day that does not exist in a month (31 in February) is simply
// skipped; there is no roll to month end.
func IsDue(h *internal.Habit, d internal.Date) bool {
	if d.Before(h.StartDate) {
		return false
	}
	if h.EndDate != nil && d.After(*h.EndDate) {
		return false
	}
	switch h.Frequency.Type {
	case internal.FrequencyDaily:
		return true
	case internal.FrequencyWeekly:
		return containsWeekday(h.Frequency.Weekdays, d.Weekday())
	case internal.FrequencyMonthly:
		return containsInt(h.Frequency.MonthDays, d.Day())
	case internal.FrequencyCustom:
		if h.Frequency.IntervalDays < 1 {
			return false
		}
		return d.DaysSince(h.StartDate)%h.Frequency.IntervalDays == 0
	default:
		return false
	}
}

// DueDates enumerates the habit's due dates from its start date through
// the given date, inclusive, clamped to the habit's end date.
func DueDates(h *internal.Habit, through internal.Date) []internal.Date {
	end := through
	if h.EndDate != nil && h.EndDate.Before(end) {
		end = *h.EndDate
	}
	if end.Before(h.StartDate) {
		return nil
	}

	var due []internal.Date
	if h.Frequency.Type == internal.FrequencyCustom {
		if h.Frequency.IntervalDays < 1 {
			return nil
		}
		for d := h.StartDate; !d.After(end); d = d.AddDays(h.Frequency.IntervalDays) {
			due = append(due, d)
		}
		return due
	}
	for d := h.StartDate; !d.After(end); d = d.AddDays(1) {
		if IsDue(h, d) {
			due = append(due, d)
		}
	}
	return due
}

// LoadTimezone resolves a tzdata identifier, rejecting bad input before
// any computation runs.
func LoadTimezone(name string) (*time.Location, error) {
	if name == "" {
		return nil, internal.NewValidationError("timezone is required")
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, internal.NewValidationError("unrecognized timezone " + name)
	}
	return loc, nil
}

func containsWeekday(days []time.Weekday, wd time.Weekday) bool {
	for _, d := range days {
		if d == wd {
			return true
		}
	}
	return false
}

func containsInt(vals []int, v int) bool {
	for _, x := range vals {
		if x == v {
			return true
		}
	}
	return false
}
