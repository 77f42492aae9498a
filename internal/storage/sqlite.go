package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jayvicsanantonio/tracknstick-api-sub000/internal"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS habits (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	name TEXT NOT NULL,
	icon TEXT NOT NULL DEFAULT '',
	frequency TEXT NOT NULL,
	start_date TEXT NOT NULL,
	end_date TEXT,
	current_streak INTEGER NOT NULL DEFAULT 0,
	longest_streak INTEGER NOT NULL DEFAULT 0,
	total_completions INTEGER NOT NULL DEFAULT 0,
	last_completed TEXT,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_habits_user ON habits (user_id);

CREATE TABLE IF NOT EXISTS trackers (
	id TEXT PRIMARY KEY,
	habit_id TEXT NOT NULL REFERENCES habits (id) ON DELETE CASCADE,
	user_id TEXT NOT NULL,
	completed_at TEXT NOT NULL,
	date_tracked TEXT NOT NULL,
	notes TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL,
	UNIQUE (habit_id, date_tracked)
);
CREATE INDEX IF NOT EXISTS idx_trackers_user_date ON trackers (user_id, date_tracked);
`

// sqQuerier is satisfied by both *sql.DB and *sql.Tx.
type sqQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type SQLiteStorage struct {
	db     *sql.DB
	q      sqQuerier
	logger internal.Logger
}

func NewSQLiteStorage(path string, logger internal.Logger) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=foreign_keys(1)")
	if err != nil {
		logger.Errorf("failed to open sqlite database: %v", err)
		return nil, err
	}
	// The modernc driver serializes writes; a single connection avoids
	// SQLITE_BUSY under concurrent requests.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(context.Background(), sqliteSchema); err != nil {
		logger.Errorf("failed to apply sqlite schema: %v", err)
		db.Close()
		return nil, err
	}
	return &SQLiteStorage{db: db, q: db, logger: logger}, nil
}

func (s *SQLiteStorage) Close() {
	if s.db != nil {
		s.db.Close()
	}
}

func (s *SQLiteStorage) WithTx(ctx context.Context, fn func(Ledger) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Errorf("failed to begin transaction: %v", err)
		return internal.NewDatabaseError("begin tx", err)
	}
	defer tx.Rollback()

	if err := fn(&SQLiteStorage{db: s.db, q: tx, logger: s.logger}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		s.logger.Errorf("failed to commit transaction: %v", err)
		return internal.NewDatabaseError("commit tx", err)
	}
	return nil
}

// --- HabitRepository ---

const sqliteHabitColumns = `id, user_id, name, icon, frequency, start_date, end_date,
	current_streak, longest_streak, total_completions, last_completed, created_at`

func (s *SQLiteStorage) CreateHabit(ctx context.Context, h *internal.Habit) error {
	freq, err := json.Marshal(h.Frequency)
	if err != nil {
		return internal.NewDatabaseError("marshal frequency", err)
	}
	_, err = s.q.ExecContext(ctx, `INSERT INTO habits (`+sqliteHabitColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		h.ID, h.UserID, h.Name, h.Icon, string(freq), h.StartDate.String(), dateText(h.EndDate),
		h.CurrentStreak, h.LongestStreak, h.TotalCompletions, timeText(h.LastCompleted),
		h.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		s.logger.Errorf("failed to insert habit: %v", err)
		return internal.NewDatabaseError("insert habit", err)
	}
	return nil
}

func (s *SQLiteStorage) GetHabit(ctx context.Context, userID, habitID string) (*internal.Habit, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+sqliteHabitColumns+` FROM habits
		WHERE user_id = ? AND id = ?`, userID, habitID)
	h, err := scanSQLiteHabit(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, internal.NewNotFoundError("habit", habitID)
		}
		s.logger.Errorf("failed to scan habit: %v", err)
		return nil, internal.NewDatabaseError("get habit", err)
	}
	return h, nil
}

func (s *SQLiteStorage) ListHabits(ctx context.Context, userID string) ([]internal.Habit, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT `+sqliteHabitColumns+` FROM habits
		WHERE user_id = ? ORDER BY created_at`, userID)
	if err != nil {
		s.logger.Errorf("failed to query habits: %v", err)
		return nil, internal.NewDatabaseError("list habits", err)
	}
	defer rows.Close()

	var habits []internal.Habit
	for rows.Next() {
		h, err := scanSQLiteHabit(rows.Scan)
		if err != nil {
			s.logger.Errorf("failed to scan habit: %v", err)
			return nil, internal.NewDatabaseError("scan habit", err)
		}
		habits = append(habits, *h)
	}
	if err := rows.Err(); err != nil {
		return nil, internal.NewDatabaseError("list habits", err)
	}
	return habits, nil
}

func (s *SQLiteStorage) UpdateHabit(ctx context.Context, h *internal.Habit) error {
	freq, err := json.Marshal(h.Frequency)
	if err != nil {
		return internal.NewDatabaseError("marshal frequency", err)
	}
	res, err := s.q.ExecContext(ctx, `UPDATE habits SET name = ?, icon = ?, frequency = ?,
		start_date = ?, end_date = ? WHERE user_id = ? AND id = ?`,
		h.Name, h.Icon, string(freq), h.StartDate.String(), dateText(h.EndDate), h.UserID, h.ID)
	if err != nil {
		s.logger.Errorf("failed to update habit: %v", err)
		return internal.NewDatabaseError("update habit", err)
	}
	return requireRow(res, "habit", h.ID)
}

func (s *SQLiteStorage) DeleteHabit(ctx context.Context, userID, habitID string) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM habits WHERE user_id = ? AND id = ?`, userID, habitID)
	if err != nil {
		s.logger.Errorf("failed to delete habit: %v", err)
		return internal.NewDatabaseError("delete habit", err)
	}
	return requireRow(res, "habit", habitID)
}

func (s *SQLiteStorage) WriteStreakFields(ctx context.Context, habitID string, f internal.StreakFields) error {
	res, err := s.q.ExecContext(ctx, `UPDATE habits SET current_streak = ?, longest_streak = ?,
		total_completions = ?, last_completed = ? WHERE id = ?`,
		f.CurrentStreak, f.LongestStreak, f.TotalCompletions, timeText(f.LastCompleted), habitID)
	if err != nil {
		s.logger.Errorf("failed to write streak fields: %v", err)
		return internal.NewDatabaseError("write streak fields", err)
	}
	return requireRow(res, "habit", habitID)
}

// --- TrackerRepository ---

const sqliteTrackerColumns = `id, habit_id, user_id, completed_at, date_tracked, notes, created_at`

func (s *SQLiteStorage) InsertTracker(ctx context.Context, t *internal.Tracker) error {
	_, err := s.q.ExecContext(ctx, `INSERT INTO trackers (`+sqliteTrackerColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.HabitID, t.UserID, t.CompletedAt.Format(time.RFC3339Nano),
		t.DateTracked.String(), t.Notes, t.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		s.logger.Errorf("failed to insert tracker: %v", err)
		return internal.NewDatabaseError("insert tracker", err)
	}
	return nil
}

func (s *SQLiteStorage) DeleteTracker(ctx context.Context, habitID string, date internal.Date) error {
	_, err := s.q.ExecContext(ctx, `DELETE FROM trackers WHERE habit_id = ? AND date_tracked = ?`,
		habitID, date.String())
	if err != nil {
		s.logger.Errorf("failed to delete tracker: %v", err)
		return internal.NewDatabaseError("delete tracker", err)
	}
	return nil
}

func (s *SQLiteStorage) GetTracker(ctx context.Context, habitID string, date internal.Date) (*internal.Tracker, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+sqliteTrackerColumns+` FROM trackers
		WHERE habit_id = ? AND date_tracked = ?`, habitID, date.String())
	t, err := scanSQLiteTracker(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, internal.NewNotFoundError("tracker", "")
		}
		s.logger.Errorf("failed to scan tracker: %v", err)
		return nil, internal.NewDatabaseError("get tracker", err)
	}
	return t, nil
}

func (s *SQLiteStorage) ListTrackers(ctx context.Context, habitID string) ([]internal.Tracker, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT `+sqliteTrackerColumns+` FROM trackers
		WHERE habit_id = ? ORDER BY date_tracked`, habitID)
	if err != nil {
		s.logger.Errorf("failed to query trackers: %v", err)
		return nil, internal.NewDatabaseError("list trackers", err)
	}
	defer rows.Close()
	return collectSQLiteTrackers(rows)
}

func (s *SQLiteStorage) ListTrackersForUser(ctx context.Context, userID string, from, to internal.Date) ([]internal.Tracker, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT `+sqliteTrackerColumns+` FROM trackers
		WHERE user_id = ? AND date_tracked >= ? AND date_tracked <= ? ORDER BY date_tracked`,
		userID, from.String(), to.String())
	if err != nil {
		s.logger.Errorf("failed to query user trackers: %v", err)
		return nil, internal.NewDatabaseError("list user trackers", err)
	}
	defer rows.Close()
	return collectSQLiteTrackers(rows)
}

// --- scanning helpers ---

func scanSQLiteHabit(scan func(dest ...any) error) (*internal.Habit, error) {
	var (
		h             internal.Habit
		freq          string
		startDate     string
		endDate       sql.NullString
		lastCompleted sql.NullString
		createdAt     string
	)
	err := scan(&h.ID, &h.UserID, &h.Name, &h.Icon, &freq, &startDate, &endDate,
		&h.CurrentStreak, &h.LongestStreak, &h.TotalCompletions, &lastCompleted, &createdAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(freq), &h.Frequency); err != nil {
		return nil, err
	}
	if h.StartDate, err = internal.ParseDate(startDate); err != nil {
		return nil, err
	}
	if endDate.Valid {
		d, err := internal.ParseDate(endDate.String)
		if err != nil {
			return nil, err
		}
		h.EndDate = &d
	}
	if lastCompleted.Valid {
		t, err := time.Parse(time.RFC3339Nano, lastCompleted.String)
		if err != nil {
			return nil, err
		}
		h.LastCompleted = &t
	}
	if h.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, err
	}
	return &h, nil
}

func scanSQLiteTracker(scan func(dest ...any) error) (*internal.Tracker, error) {
	var (
		t           internal.Tracker
		completedAt string
		tracked     string
		createdAt   string
	)
	err := scan(&t.ID, &t.HabitID, &t.UserID, &completedAt, &tracked, &t.Notes, &createdAt)
	if err != nil {
		return nil, err
	}
	if t.CompletedAt, err = time.Parse(time.RFC3339Nano, completedAt); err != nil {
		return nil, err
	}
	if t.DateTracked, err = internal.ParseDate(tracked); err != nil {
		return nil, err
	}
	if t.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, err
	}
	return &t, nil
}

func collectSQLiteTrackers(rows *sql.Rows) ([]internal.Tracker, error) {
	var trackers []internal.Tracker
	for rows.Next() {
		t, err := scanSQLiteTracker(rows.Scan)
		if err != nil {
			return nil, internal.NewDatabaseError("scan tracker", err)
		}
		trackers = append(trackers, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, internal.NewDatabaseError("read trackers", err)
	}
	return trackers, nil
}

func requireRow(res sql.Result, resource, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return internal.NewDatabaseError("rows affected", err)
	}
	if n == 0 {
		return internal.NewNotFoundError(resource, id)
	}
	return nil
}

func dateText(d *internal.Date) any {
	if d == nil {
		return nil
	}
	return d.String()
}

func timeText(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339Nano)
}

var _ Store = (*SQLiteStorage)(nil)
