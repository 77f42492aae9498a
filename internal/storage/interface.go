package storage

import (
	"context"

	"github.com/jayvicsanantonio/tracknstick-api-sub000/internal"
)

type HabitRepository interface {
	CreateHabit(ctx context.Context, habit *internal.Habit) error
	GetHabit(ctx context.Context, userID, habitID string) (*internal.Habit, error)
	ListHabits(ctx context.Context, userID string) ([]internal.Habit, error)
	UpdateHabit(ctx context.Context, habit *internal.Habit) error
	DeleteHabit(ctx context.Context, userID, habitID string) error
	WriteStreakFields(ctx context.Context, habitID string, fields internal.StreakFields) error
}

type TrackerRepository interface {
	InsertTracker(ctx context.Context, tracker *internal.Tracker) error
	DeleteTracker(ctx context.Context, habitID string, date internal.Date) error
	GetTracker(ctx context.Context, habitID string, date internal.Date) (*internal.Tracker, error)
	ListTrackers(ctx context.Context, habitID string) ([]internal.Tracker, error)
	ListTrackersForUser(ctx context.Context, userID string, from, to internal.Date) ([]internal.Tracker, error)
}

// Ledger is the habit/completion ledger a single backend exposes.
type Ledger interface {
	HabitRepository
	TrackerRepository
}

// Store is a Ledger plus a transactional unit of work. Everything run
// inside WithTx commits or rolls back as one: the toggle mutation and the
// streak write-back are never persisted separately.
type Store interface {
	Ledger
	WithTx(ctx context.Context, fn func(Ledger) error) error
	Close()
}
