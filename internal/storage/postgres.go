package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jayvicsanantonio/tracknstick-api-sub000/internal"
)

// pgQuerier is satisfied by both *pgxpool.Pool and pgx.Tx, so every query
// method works identically inside and outside a transaction.
type pgQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PostgresStorage struct {
	pool   *pgxpool.Pool
	q      pgQuerier
	logger internal.Logger
}

func NewPostgresStorage(dsn string, logger internal.Logger) (*PostgresStorage, error) {
	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		logger.Errorf("failed to connect to postgres: %v", err)
		return nil, err
	}
	return &PostgresStorage{pool: pool, q: pool, logger: logger}, nil
}

func (p *PostgresStorage) Close() {
	if p.pool != nil {
		p.pool.Close()
	}
}

// WithTx runs fn against a transactional view of the store. A non-nil
// error from fn rolls everything back.
func (p *PostgresStorage) WithTx(ctx context.Context, fn func(Ledger) error) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		p.logger.Errorf("failed to begin transaction: %v", err)
		return internal.NewDatabaseError("begin tx", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&PostgresStorage{pool: p.pool, q: tx, logger: p.logger}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		p.logger.Errorf("failed to commit transaction: %v", err)
		return internal.NewDatabaseError("commit tx", err)
	}
	return nil
}

// --- HabitRepository ---

const habitColumns = `id, user_id, name, icon, frequency, start_date, end_date,
	current_streak, longest_streak, total_completions, last_completed, created_at`

func (p *PostgresStorage) CreateHabit(ctx context.Context, h *internal.Habit) error {
	freq, err := json.Marshal(h.Frequency)
	if err != nil {
		return internal.NewDatabaseError("marshal frequency", err)
	}
	_, err = p.q.Exec(ctx, `INSERT INTO habits (`+habitColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		h.ID, h.UserID, h.Name, h.Icon, freq, h.StartDate.Time(), endDateArg(h.EndDate),
		h.CurrentStreak, h.LongestStreak, h.TotalCompletions, h.LastCompleted, h.CreatedAt)
	if err != nil {
		p.logger.Errorf("failed to insert habit: %v", err)
		return internal.NewDatabaseError("insert habit", err)
	}
	return nil
}

func (p *PostgresStorage) GetHabit(ctx context.Context, userID, habitID string) (*internal.Habit, error) {
	row := p.q.QueryRow(ctx, `SELECT `+habitColumns+` FROM habits WHERE user_id = $1 AND id = $2`,
		userID, habitID)
	h, err := scanHabit(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, internal.NewNotFoundError("habit", habitID)
		}
		p.logger.Errorf("failed to scan habit: %v", err)
		return nil, internal.NewDatabaseError("get habit", err)
	}
	return h, nil
}

func (p *PostgresStorage) ListHabits(ctx context.Context, userID string) ([]internal.Habit, error) {
	rows, err := p.q.Query(ctx, `SELECT `+habitColumns+` FROM habits WHERE user_id = $1 ORDER BY created_at`,
		userID)
	if err != nil {
		p.logger.Errorf("failed to query habits: %v", err)
		return nil, internal.NewDatabaseError("list habits", err)
	}
	defer rows.Close()

	var habits []internal.Habit
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			p.logger.Errorf("failed to scan habit: %v", err)
			return nil, internal.NewDatabaseError("scan habit", err)
		}
		habits = append(habits, *h)
	}
	if err := rows.Err(); err != nil {
		return nil, internal.NewDatabaseError("list habits", err)
	}
	return habits, nil
}

func (p *PostgresStorage) UpdateHabit(ctx context.Context, h *internal.Habit) error {
	freq, err := json.Marshal(h.Frequency)
	if err != nil {
		return internal.NewDatabaseError("marshal frequency", err)
	}
	tag, err := p.q.Exec(ctx, `UPDATE habits SET name = $1, icon = $2, frequency = $3,
		start_date = $4, end_date = $5 WHERE user_id = $6 AND id = $7`,
		h.Name, h.Icon, freq, h.StartDate.Time(), endDateArg(h.EndDate), h.UserID, h.ID)
	if err != nil {
		p.logger.Errorf("failed to update habit: %v", err)
		return internal.NewDatabaseError("update habit", err)
	}
	if tag.RowsAffected() == 0 {
		return internal.NewNotFoundError("habit", h.ID)
	}
	return nil
}

func (p *PostgresStorage) DeleteHabit(ctx context.Context, userID, habitID string) error {
	tag, err := p.q.Exec(ctx, `DELETE FROM habits WHERE user_id = $1 AND id = $2`, userID, habitID)
	if err != nil {
		p.logger.Errorf("failed to delete habit: %v", err)
		return internal.NewDatabaseError("delete habit", err)
	}
	if tag.RowsAffected() == 0 {
		return internal.NewNotFoundError("habit", habitID)
	}
	return nil
}

func (p *PostgresStorage) WriteStreakFields(ctx context.Context, habitID string, f internal.StreakFields) error {
	tag, err := p.q.Exec(ctx, `UPDATE habits SET current_streak = $1, longest_streak = $2,
		total_completions = $3, last_completed = $4 WHERE id = $5`,
		f.CurrentStreak, f.LongestStreak, f.TotalCompletions, f.LastCompleted, habitID)
	if err != nil {
		p.logger.Errorf("failed to write streak fields: %v", err)
		return internal.NewDatabaseError("write streak fields", err)
	}
	if tag.RowsAffected() == 0 {
		return internal.NewNotFoundError("habit", habitID)
	}
	return nil
}

// --- TrackerRepository ---

const trackerColumns = `id, habit_id, user_id, completed_at, date_tracked, notes, created_at`

func (p *PostgresStorage) InsertTracker(ctx context.Context, t *internal.Tracker) error {
	_, err := p.q.Exec(ctx, `INSERT INTO trackers (`+trackerColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		t.ID, t.HabitID, t.UserID, t.CompletedAt, t.DateTracked.Time(), t.Notes, t.CreatedAt)
	if err != nil {
		p.logger.Errorf("failed to insert tracker: %v", err)
		return internal.NewDatabaseError("insert tracker", err)
	}
	return nil
}

func (p *PostgresStorage) DeleteTracker(ctx context.Context, habitID string, date internal.Date) error {
	_, err := p.q.Exec(ctx, `DELETE FROM trackers WHERE habit_id = $1 AND date_tracked = $2`,
		habitID, date.Time())
	if err != nil {
		p.logger.Errorf("failed to delete tracker: %v", err)
		return internal.NewDatabaseError("delete tracker", err)
	}
	return nil
}

func (p *PostgresStorage) GetTracker(ctx context.Context, habitID string, date internal.Date) (*internal.Tracker, error) {
	row := p.q.QueryRow(ctx, `SELECT `+trackerColumns+` FROM trackers
		WHERE habit_id = $1 AND date_tracked = $2`, habitID, date.Time())
	t, err := scanTracker(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, internal.NewNotFoundError("tracker", "")
		}
		p.logger.Errorf("failed to scan tracker: %v", err)
		return nil, internal.NewDatabaseError("get tracker", err)
	}
	return t, nil
}

func (p *PostgresStorage) ListTrackers(ctx context.Context, habitID string) ([]internal.Tracker, error) {
	rows, err := p.q.Query(ctx, `SELECT `+trackerColumns+` FROM trackers
		WHERE habit_id = $1 ORDER BY date_tracked`, habitID)
	if err != nil {
		p.logger.Errorf("failed to query trackers: %v", err)
		return nil, internal.NewDatabaseError("list trackers", err)
	}
	defer rows.Close()
	return collectTrackers(rows)
}

func (p *PostgresStorage) ListTrackersForUser(ctx context.Context, userID string, from, to internal.Date) ([]internal.Tracker, error) {
	rows, err := p.q.Query(ctx, `SELECT `+trackerColumns+` FROM trackers
		WHERE user_id = $1 AND date_tracked >= $2 AND date_tracked <= $3 ORDER BY date_tracked`,
		userID, from.Time(), to.Time())
	if err != nil {
		p.logger.Errorf("failed to query user trackers: %v", err)
		return nil, internal.NewDatabaseError("list user trackers", err)
	}
	defer rows.Close()
	return collectTrackers(rows)
}

// --- scanning helpers ---

func scanHabit(row pgx.Row) (*internal.Habit, error) {
	var (
		h         internal.Habit
		freq      []byte
		startDate time.Time
		endDate   *time.Time
	)
	err := row.Scan(&h.ID, &h.UserID, &h.Name, &h.Icon, &freq, &startDate, &endDate,
		&h.CurrentStreak, &h.LongestStreak, &h.TotalCompletions, &h.LastCompleted, &h.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(freq, &h.Frequency); err != nil {
		return nil, err
	}
	h.StartDate = internal.DateOf(startDate, time.UTC)
	if endDate != nil {
		d := internal.DateOf(*endDate, time.UTC)
		h.EndDate = &d
	}
	return &h, nil
}

func scanTracker(row pgx.Row) (*internal.Tracker, error) {
	var (
		t       internal.Tracker
		tracked time.Time
	)
	err := row.Scan(&t.ID, &t.HabitID, &t.UserID, &t.CompletedAt, &tracked, &t.Notes, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	t.DateTracked = internal.DateOf(tracked, time.UTC)
	return &t, nil
}

func collectTrackers(rows pgx.Rows) ([]internal.Tracker, error) {
	var trackers []internal.Tracker
	for rows.Next() {
		t, err := scanTracker(rows)
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

func endDateArg(d *internal.Date) any {
	if d == nil {
		return nil
	}
	return d.Time()
}

var _ Store = (*PostgresStorage)(nil)
