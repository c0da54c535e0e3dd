package store

import "database/sql"

const migrationSQL = `
CREATE TABLE IF NOT EXISTS firings (
    id TEXT PRIMARY KEY,
    schedule_name TEXT NOT NULL,
    interval_start TEXT NOT NULL,
    interval_end TEXT NOT NULL,
    run_after TEXT NOT NULL,
    fired_at TEXT NOT NULL,
    trigger_type TEXT NOT NULL DEFAULT 'schedule',
    created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
);
CREATE INDEX IF NOT EXISTS idx_firings_schedule_name ON firings(schedule_name);
CREATE INDEX IF NOT EXISTS idx_firings_fired_at ON firings(fired_at);
`

// RunMigrations applies the database schema migrations.
func RunMigrations(db *sql.DB) error {
	_, err := db.Exec(migrationSQL)
	return err
}
