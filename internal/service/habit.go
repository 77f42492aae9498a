package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jayvicsanantonio/tracknstick-api-sub000/internal"
	"github.com/jayvicsanantonio/tracknstick-api-sub000/internal/cache"
	"github.com/jayvicsanantonio/tracknstick-api-sub000/internal/storage"
)

var validate = validator.New()

type HabitRequest struct {
	Name      string             `json:"name" validate:"required,max=255"`
	Icon      string             `json:"icon,omitempty" validate:"omitempty,max=64"`
	Frequency internal.Frequency `json:"frequency"`
	StartDate string             `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string             `json:"end_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Timezone  string             `json:"timezone" validate:"required"`
}

func ValidateHabitRequest(req *HabitRequest) error {
	if err := validate.Struct(req); err != nil {
		return internal.NewValidationError(err.Error())
	}
	if err := req.Frequency.Validate(); err != nil {
		return err
	}
	if req.EndDate != "" {
		start, err := internal.ParseDate(req.StartDate)
		if err != nil {
			return internal.NewValidationError("invalid start_date: " + req.StartDate)
		}
		end, err := internal.ParseDate(req.EndDate)
		if err != nil {
			return internal.NewValidationError("invalid end_date: " + req.EndDate)
		}
		if end.Before(start) {
			return internal.NewValidationError("end_date must not be before start_date")
		}
	}
	return nil
}

func CreateHabit(ctx context.Context, store storage.Store, results *cache.Cache,
	user *internal.User, req *HabitRequest) (*internal.Habit, error) {

	if _, err := LoadTimezone(req.Timezone); err != nil {
		return nil, err
	}
	start, err := internal.ParseDate(req.StartDate)
	if err != nil {
		return nil, internal.NewValidationError("invalid start_date: " + req.StartDate)
	}
	habit := &internal.Habit{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Name:      req.Name,
		Icon:      req.Icon,
		Frequency: req.Frequency,
		StartDate: start,
		CreatedAt: time.Now(),
	}
	if req.EndDate != "" {
		end, err := internal.ParseDate(req.EndDate)
		if err != nil {
			return nil, internal.NewValidationError("invalid end_date: " + req.EndDate)
		}
		habit.EndDate = &end
	}
	if err := store.CreateHabit(ctx, habit); err != nil {
		return nil, err
	}
	results.InvalidateUser(user.ID)
	return habit, nil
}

// UpdateHabit rewrites a habit's mutable fields. Frequency and window
// changes alter the due-date sequence, so the streak fields are recomputed
// in the same transaction.
func UpdateHabit(ctx context.Context, store storage.Store, results *cache.Cache,
	user *internal.User, habitID string, req *HabitRequest) (*internal.Habit, error) {

	loc, err := LoadTimezone(req.Timezone)
	if err != nil {
		return nil, err
	}
	start, err := internal.ParseDate(req.StartDate)
	if err != nil {
		return nil, internal.NewValidationError("invalid start_date: " + req.StartDate)
	}
	var end *internal.Date
	if req.EndDate != "" {
		d, err := internal.ParseDate(req.EndDate)
		if err != nil {
			return nil, internal.NewValidationError("invalid end_date: " + req.EndDate)
		}
		end = &d
	}

	var updated *internal.Habit
	err = store.WithTx(ctx, func(ledger storage.Ledger) error {
		habit, err := ledger.GetHabit(ctx, user.ID, habitID)
		if err != nil {
			return err
		}
		habit.Name = req.Name
		habit.Icon = req.Icon
		habit.Frequency = req.Frequency
		habit.StartDate = start
		habit.EndDate = end
		if err := ledger.UpdateHabit(ctx, habit); err != nil {
			return err
		}

		trackers, err := ledger.ListTrackers(ctx, habitID)
		if err != nil {
			return err
		}
		fields := RecomputeStreak(habit, trackers, internal.Today(loc))
		if err := ledger.WriteStreakFields(ctx, habitID, fields); err != nil {
			return err
		}
		habit.CurrentStreak = fields.CurrentStreak
		habit.LongestStreak = fields.LongestStreak
		habit.TotalCompletions = fields.TotalCompletions
		habit.LastCompleted = fields.LastCompleted
		updated = habit
		return nil
	})
	if err != nil {
		return nil, err
	}
	results.InvalidateUser(user.ID)
	return updated, nil
}

func DeleteHabit(ctx context.Context, store storage.Store, results *cache.Cache,
	user *internal.User, habitID string) error {

	if err := store.DeleteHabit(ctx, user.ID, habitID); err != nil {
		return err
	}
	results.InvalidateUser(user.ID)
	return nil
}

// ListHabits returns the user's habits through the result cache, optionally
// narrowed to those whose active window contains asOf.
func ListHabits(ctx context.Context, store storage.Store, results *cache.Cache, ttl time.Duration,
	user *internal.User, asOf *internal.Date) ([]internal.Habit, error) {

	value, err := results.GetOrCompute(user.ID, "habits:"+user.ID, ttl, func() (any, error) {
		return store.ListHabits(ctx, user.ID)
	})
	if err != nil {
		return nil, err
	}
	habits := value.([]internal.Habit)
	if asOf == nil {
		return habits, nil
	}

	filtered := make([]internal.Habit, 0, len(habits))
	for _, h := range habits {
		if asOf.Before(h.StartDate) {
			continue
		}
		if h.EndDate != nil && asOf.After(*h.EndDate) {
			continue
		}
		filtered = append(filtered, h)
	}
	return filtered, nil
}
