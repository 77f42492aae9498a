package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/jayvicsanantonio/tracknstick-api-sub000/internal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *SQLiteStorage {
	t.Helper()
	logger := internal.NewZapLogger(zap.NewNop().Sugar())
	store, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "storage_test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(store.Close)
	return store
}

func testHabit(userID string) *internal.Habit {
	end := internal.NewDate(2024, time.December, 31)
	return &internal.Habit{
		ID:     "h1",
		UserID: userID,
		Name:   "Read",
		Icon:   "book",
		Frequency: internal.Frequency{
			Type:     internal.FrequencyWeekly,
			Weekdays: []time.Weekday{time.Monday, time.Friday},
		},
		StartDate: internal.NewDate(2024, time.January, 1),
		EndDate:   &end,
		CreatedAt: time.Now().UTC(),
	}
}

func TestHabitRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	habit := testHabit("u1")
	require.NoError(t, store.CreateHabit(ctx, habit))

	got, err := store.GetHabit(ctx, "u1", "h1")
	require.NoError(t, err)
	assert.Equal(t, habit.Name, got.Name)
	assert.Equal(t, habit.Frequency, got.Frequency)
	assert.Equal(t, habit.StartDate, got.StartDate)
	require.NotNil(t, got.EndDate)
	assert.Equal(t, *habit.EndDate, *got.EndDate)

	// Scoped reads: another user cannot see it.
	_, err = store.GetHabit(ctx, "u2", "h1")
	assert.True(t, internal.IsNotFound(err))
}

func TestWriteStreakFields(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.CreateHabit(ctx, testHabit("u1")))

	last := time.Date(2024, time.January, 8, 7, 30, 0, 0, time.UTC)
	fields := internal.StreakFields{CurrentStreak: 2, LongestStreak: 4, TotalCompletions: 6, LastCompleted: &last}
	require.NoError(t, store.WriteStreakFields(ctx, "h1", fields))

	got, err := store.GetHabit(ctx, "u1", "h1")
	require.NoError(t, err)
	assert.Equal(t, 2, got.CurrentStreak)
	assert.Equal(t, 4, got.LongestStreak)
	assert.Equal(t, 6, got.TotalCompletions)
	require.NotNil(t, got.LastCompleted)
	assert.True(t, got.LastCompleted.Equal(last))
}

func TestWithTxRollsBackOnError(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.CreateHabit(ctx, testHabit("u1")))

	boom := errors.New("boom")
	err := store.WithTx(ctx, func(ledger Ledger) error {
		tracker := &internal.Tracker{
			ID:          "t1",
			HabitID:     "h1",
			UserID:      "u1",
			CompletedAt: time.Now().UTC(),
			DateTracked: internal.NewDate(2024, time.January, 1),
			CreatedAt:   time.Now().UTC(),
		}
		if err := ledger.InsertTracker(ctx, tracker); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	trackers, err := store.ListTrackers(ctx, "h1")
	require.NoError(t, err)
	assert.Empty(t, trackers)
}

func TestTrackerUniquePerHabitDate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.CreateHabit(ctx, testHabit("u1")))

	tracker := &internal.Tracker{
		ID:          "t1",
		HabitID:     "h1",
		UserID:      "u1",
		CompletedAt: time.Now().UTC(),
		DateTracked: internal.NewDate(2024, time.January, 1),
		CreatedAt:   time.Now().UTC(),
	}
	require.NoError(t, store.InsertTracker(ctx, tracker))

	dup := *tracker
	dup.ID = "t2"
	assert.Error(t, store.InsertTracker(ctx, &dup))
}

func TestListTrackersForUserRange(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.CreateHabit(ctx, testHabit("u1")))

	for _, day := range []int{1, 5, 8} {
		tracker := &internal.Tracker{
			ID:          internal.NewDate(2024, time.January, day).String(),
			HabitID:     "h1",
			UserID:      "u1",
			CompletedAt: time.Now().UTC(),
			DateTracked: internal.NewDate(2024, time.January, day),
			CreatedAt:   time.Now().UTC(),
		}
		require.NoError(t, store.InsertTracker(ctx, tracker))
	}

	trackers, err := store.ListTrackersForUser(ctx, "u1",
		internal.NewDate(2024, time.January, 2), internal.NewDate(2024, time.January, 8))
	require.NoError(t, err)
	require.Len(t, trackers, 2)
	assert.Equal(t, internal.NewDate(2024, time.January, 5), trackers[0].DateTracked)
	assert.Equal(t, internal.NewDate(2024, time.January, 8), trackers[1].DateTracked)
}
