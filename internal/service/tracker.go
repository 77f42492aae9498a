package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jayvicsanantonio/tracknstick-api-sub000/internal"
	"github.com/jayvicsanantonio/tracknstick-api-sub000/internal/cache"
	"github.com/jayvicsanantonio/tracknstick-api-sub000/internal/storage"
)

type ToggleRequest struct {
	Date     string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Timezone string `json:"timezone" validate:"required"`
	Notes    string `json:"notes,omitempty" validate:"omitempty,max=500"`
}

func ValidateToggleRequest(req *ToggleRequest) error {
	if err := validate.Struct(req); err != nil {
		return internal.NewValidationError(err.Error())
	}
	return nil
}

type ToggleAction string

const (
	ToggleCreated ToggleAction = "created"
	ToggleDeleted ToggleAction = "deleted"
)

// ToggleResult reports which branch the toggle took. Tracker is nil when
// the action was a deletion.
type ToggleResult struct {
	Action  ToggleAction          `json:"action"`
	Tracker *internal.Tracker     `json:"tracker,omitempty"`
	Streak  internal.StreakFields `json:"streak"`
}

// ToggleCompletion creates or deletes the tracker for (habit, date) and
// rewrites the habit's derived streak fields, all in one transaction.
// Invoking it twice with the same arguments returns the ledger to its
// prior state.
//
// When no date is supplied it is derived from the current instant in the
// caller's timezone; once stored it is never re-derived.
func ToggleCompletion(ctx context.Context, store storage.Store, results *cache.Cache,
	user *internal.User, habitID string, req *ToggleRequest) (*ToggleResult, error) {

	loc, err := LoadTimezone(req.Timezone)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	date := internal.DateOf(now, loc)
	if req.Date != "" {
		if date, err = internal.ParseDate(req.Date); err != nil {
			return nil, internal.NewValidationError("invalid date: " + req.Date)
		}
	}

	var result *ToggleResult
	err = store.WithTx(ctx, func(ledger storage.Ledger) error {
		habit, err := ledger.GetHabit(ctx, user.ID, habitID)
		if err != nil {
			return err
		}

		result = &ToggleResult{}
		_, err = ledger.GetTracker(ctx, habitID, date)
		switch {
		case err == nil:
			if err := ledger.DeleteTracker(ctx, habitID, date); err != nil {
				return err
			}
			result.Action = ToggleDeleted
		case internal.IsNotFound(err):
			tracker := &internal.Tracker{
				ID:          uuid.NewString(),
				HabitID:     habitID,
				UserID:      user.ID,
				CompletedAt: now,
				DateTracked: date,
				Notes:       req.Notes,
				CreatedAt:   now,
			}
			if err := ledger.InsertTracker(ctx, tracker); err != nil {
				return err
			}
			result.Action = ToggleCreated
			result.Tracker = tracker
		default:
			return err
		}

		trackers, err := ledger.ListTrackers(ctx, habitID)
		if err != nil {
			return err
		}
		result.Streak = RecomputeStreak(habit, trackers, internal.Today(loc))
		return ledger.WriteStreakFields(ctx, habitID, result.Streak)
	})
	if err != nil {
		return nil, err
	}

	results.InvalidateUser(user.ID)
	return result, nil
}

// HabitStats is the derived per-habit view returned to callers.
type HabitStats struct {
	Streak           int        `json:"streak"`
	LongestStreak    int        `json:"longest_streak"`
	TotalCompletions int        `json:"total_completions"`
	LastCompleted    *time.Time `json:"last_completed,omitempty"`
}

// GetHabitStats reads the habit's stored derived fields, through the
// result cache.
func GetHabitStats(ctx context.Context, store storage.Store, results *cache.Cache, ttl time.Duration,
	userID, habitID string) (*HabitStats, error) {

	value, err := results.GetOrCompute(userID, "stats:"+userID+":"+habitID, ttl, func() (any, error) {
		habit, err := store.GetHabit(ctx, userID, habitID)
		if err != nil {
			return nil, err
		}
		return &HabitStats{
			Streak:           habit.CurrentStreak,
			LongestStreak:    habit.LongestStreak,
			TotalCompletions: habit.TotalCompletions,
			LastCompleted:    habit.LastCompleted,
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return value.(*HabitStats), nil
}
