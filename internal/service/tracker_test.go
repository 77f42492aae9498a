package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jayvicsanantonio/tracknstick-api-sub000/internal"
	"github.com/jayvicsanantonio/tracknstick-api-sub000/internal/cache"
	"github.com/jayvicsanantonio/tracknstick-api-sub000/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupStore(t *testing.T) (storage.Store, *cache.Cache) {
	t.Helper()
	logger := internal.NewZapLogger(zap.NewNop().Sugar())
	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"), logger)
	require.NoError(t, err)
	results := cache.New(logger, 0)
	t.Cleanup(func() {
		results.Close()
		store.Close()
	})
	return store, results
}

func seedHabit(t *testing.T, store storage.Store, userID string, freq internal.Frequency, start internal.Date) *internal.Habit {
	t.Helper()
	habit := &internal.Habit{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      "Exercise",
		Frequency: freq,
		StartDate: start,
		CreatedAt: time.Now(),
	}
	require.NoError(t, store.CreateHabit(context.Background(), habit))
	return habit
}

func TestToggleCompletionPairRestoresLedger(t *testing.T) {
	store, results := setupStore(t)
	user := &internal.User{ID: "u1"}
	today := internal.Today(time.UTC)
	habit := seedHabit(t, store, "u1", internal.Frequency{Type: internal.FrequencyDaily}, today.AddDays(-30))

	date := today.AddDays(-1)
	req := &ToggleRequest{Date: date.String(), Timezone: "UTC"}

	first, err := ToggleCompletion(context.Background(), store, results, user, habit.ID, req)
	require.NoError(t, err)
	assert.Equal(t, ToggleCreated, first.Action)
	require.NotNil(t, first.Tracker)
	assert.Equal(t, date, first.Tracker.DateTracked)
	assert.Equal(t, 1, first.Streak.TotalCompletions)
	assert.Equal(t, 1, first.Streak.LongestStreak)
	// Today's due occurrence is still open, so yesterday alone does not
	// reach today in the backward scan.
	assert.Equal(t, 0, first.Streak.CurrentStreak)

	// The derived fields were written in the same transaction.
	stored, err := store.GetHabit(context.Background(), "u1", habit.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Streak.TotalCompletions, stored.TotalCompletions)
	assert.Equal(t, first.Streak.LongestStreak, stored.LongestStreak)

	second, err := ToggleCompletion(context.Background(), store, results, user, habit.ID, req)
	require.NoError(t, err)
	assert.Equal(t, ToggleDeleted, second.Action)
	assert.Nil(t, second.Tracker)
	assert.Zero(t, second.Streak.TotalCompletions)
	assert.Zero(t, second.Streak.LongestStreak)

	_, err = store.GetTracker(context.Background(), habit.ID, date)
	assert.True(t, internal.IsNotFound(err))
}

func TestToggleCompletionUnknownHabit(t *testing.T) {
	store, results := setupStore(t)
	req := &ToggleRequest{Date: "2024-01-01", Timezone: "UTC"}
	_, err := ToggleCompletion(context.Background(), store, results, &internal.User{ID: "u1"}, "missing", req)
	assert.True(t, internal.IsNotFound(err))
}

func TestToggleCompletionRejectsBadTimezone(t *testing.T) {
	store, results := setupStore(t)
	habit := seedHabit(t, store, "u1", internal.Frequency{Type: internal.FrequencyDaily},
		internal.Today(time.UTC).AddDays(-5))

	req := &ToggleRequest{Date: "2024-01-01", Timezone: "Mars/Olympus"}
	_, err := ToggleCompletion(context.Background(), store, results, &internal.User{ID: "u1"}, habit.ID, req)
	assert.True(t, internal.IsValidation(err))

	trackers, err := store.ListTrackers(context.Background(), habit.ID)
	require.NoError(t, err)
	assert.Empty(t, trackers)
}

func TestToggleCompletionScopedToOwner(t *testing.T) {
	store, results := setupStore(t)
	habit := seedHabit(t, store, "u1", internal.Frequency{Type: internal.FrequencyDaily},
		internal.Today(time.UTC).AddDays(-5))

	req := &ToggleRequest{Date: internal.Today(time.UTC).String(), Timezone: "UTC"}
	_, err := ToggleCompletion(context.Background(), store, results, &internal.User{ID: "u2"}, habit.ID, req)
	assert.True(t, internal.IsNotFound(err))
}

func TestGetHabitStatsScopedToRequester(t *testing.T) {
	store, results := setupStore(t)
	user := &internal.User{ID: "u1"}
	today := internal.Today(time.UTC)
	habit := seedHabit(t, store, "u1", internal.Frequency{Type: internal.FrequencyDaily}, today.AddDays(-10))

	req := &ToggleRequest{Date: today.String(), Timezone: "UTC"}
	_, err := ToggleCompletion(context.Background(), store, results, user, habit.ID, req)
	require.NoError(t, err)

	// The owner's read primes the cache.
	stats, err := GetHabitStats(context.Background(), store, results, time.Minute, "u1", habit.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalCompletions)

	// A cached entry must not satisfy another user's request for the same
	// habit ID; the ownership check still runs.
	_, err = GetHabitStats(context.Background(), store, results, time.Minute, "u2", habit.ID)
	assert.True(t, internal.IsNotFound(err))
}

func TestGetHabitStatsReflectsToggle(t *testing.T) {
	store, results := setupStore(t)
	user := &internal.User{ID: "u1"}
	today := internal.Today(time.UTC)
	habit := seedHabit(t, store, "u1", internal.Frequency{Type: internal.FrequencyDaily}, today.AddDays(-10))

	stats, err := GetHabitStats(context.Background(), store, results, time.Minute, "u1", habit.ID)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalCompletions)

	req := &ToggleRequest{Date: today.String(), Timezone: "UTC"}
	_, err = ToggleCompletion(context.Background(), store, results, user, habit.ID, req)
	require.NoError(t, err)

	// The toggle invalidated the cached stats entry.
	stats, err = GetHabitStats(context.Background(), store, results, time.Minute, "u1", habit.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalCompletions)
	assert.Equal(t, 1, stats.Streak)
	assert.NotNil(t, stats.LastCompleted)
}
