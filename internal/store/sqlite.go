package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"
)

// NewFiringID generates a new ULID-based firing identifier.
func NewFiringID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}

// SQLiteStore implements FiringStore backed by SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens the SQLite database at dbPath and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use by other packages.
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

const timeFormat = time.RFC3339Nano

func formatTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeFormat, s)
}

// RecordFiring inserts a firing record, assigning an ID and creation time
// when absent.
func (s *SQLiteStore) RecordFiring(ctx context.Context, f *Firing) error {
	if f.ID == "" {
		f.ID = NewFiringID()
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}
	if f.Trigger == "" {
		f.Trigger = "schedule"
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO firings (
			id, schedule_name, interval_start, interval_end, run_after,
			fired_at, trigger_type, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		f.ID,
		f.ScheduleName,
		formatTime(f.IntervalStart),
		formatTime(f.IntervalEnd),
		formatTime(f.RunAfter),
		formatTime(f.FiredAt),
		f.Trigger,
		formatTime(f.CreatedAt),
	)
	return err
}

func (s *SQLiteStore) scanFiring(row interface{ Scan(...any) error }) (*Firing, error) {
	var f Firing
	var intervalStart, intervalEnd, runAfter, firedAt, createdAt string

	err := row.Scan(
		&f.ID,
		&f.ScheduleName,
		&intervalStart,
		&intervalEnd,
		&runAfter,
		&firedAt,
		&f.Trigger,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	for _, col := range []struct {
		name string
		raw  string
		dst  *time.Time
	}{
		{"interval_start", intervalStart, &f.IntervalStart},
		{"interval_end", intervalEnd, &f.IntervalEnd},
		{"run_after", runAfter, &f.RunAfter},
		{"fired_at", firedAt, &f.FiredAt},
		{"created_at", createdAt, &f.CreatedAt},
	} {
		t, err := parseTime(col.raw)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", col.name, err)
		}
		*col.dst = t
	}

	return &f, nil
}

const selectFiringCols = `id, schedule_name, interval_start, interval_end,
	run_after, fired_at, trigger_type, created_at`

// GetFiring retrieves a single firing by ID.
func (s *SQLiteStore) GetFiring(ctx context.Context, id string) (*Firing, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+selectFiringCols+" FROM firings WHERE id = ?", id)
	f, err := s.scanFiring(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return f, err
}

// ListFirings returns firings matching the given options, ordered by
// fired_at descending.
func (s *SQLiteStore) ListFirings(ctx context.Context, opts ListOpts) ([]*Firing, error) {
	query := "SELECT " + selectFiringCols + " FROM firings"
	var args []any

	if opts.ScheduleName != "" {
		query += " WHERE schedule_name = ?"
		args = append(args, opts.ScheduleName)
	}
	query += " ORDER BY fired_at DESC"

	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}
	if opts.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, opts.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var firings []*Firing
	for rows.Next() {
		f, err := s.scanFiring(rows)
		if err != nil {
			return nil, err
		}
		firings = append(firings, f)
	}
	return firings, rows.Err()
}

// LastFiring returns the most recent scheduled firing for a schedule, used
// to seed the next-interval search across restarts. Manual firings are
// excluded so an operator trigger never shifts the schedule's phase.
func (s *SQLiteStore) LastFiring(ctx context.Context, scheduleName string) (*Firing, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+selectFiringCols+` FROM firings
		WHERE schedule_name = ? AND trigger_type = 'schedule'
		ORDER BY interval_end DESC LIMIT 1`, scheduleName)
	f, err := s.scanFiring(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return f, err
}

// GetScheduleStats returns aggregate statistics for a schedule.
func (s *SQLiteStore) GetScheduleStats(ctx context.Context, scheduleName string) (*ScheduleStats, error) {
	var stats ScheduleStats
	var lastFired sql.NullString
	var scheduled, manual sql.NullInt64

	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*) AS total_firings,
			SUM(CASE WHEN trigger_type = 'schedule' THEN 1 ELSE 0 END) AS scheduled,
			SUM(CASE WHEN trigger_type = 'manual' THEN 1 ELSE 0 END) AS manual,
			MAX(fired_at) AS last_fired_at
		FROM firings
		WHERE schedule_name = ?`, scheduleName).Scan(
		&stats.TotalFirings,
		&scheduled,
		&manual,
		&lastFired,
	)
	if err != nil {
		return nil, err
	}
	if scheduled.Valid {
		stats.Scheduled = int(scheduled.Int64)
	}
	if manual.Valid {
		stats.Manual = int(manual.Int64)
	}
	if lastFired.Valid {
		t, err := parseTime(lastFired.String)
		if err != nil {
			return nil, fmt.Errorf("parse last_fired_at: %w", err)
		}
		stats.LastFiredAt = &t
	}

	return &stats, nil
}
