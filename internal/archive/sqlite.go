// Package archive is the analytics backend the event reporter forwards
// to: an append-only SQLite event sink with aggregate stats queries for
// the dashboard and CLI.
package archive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

var ErrNotFound = errors.New("not found")

type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS events (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    test_id TEXT NOT NULL,
    variant_id TEXT NOT NULL,
    event_name TEXT NOT NULL,
    visitor_id TEXT NOT NULL,
    value REAL,
    created_at INTEGER NOT NULL DEFAULT (unixepoch())
);

CREATE INDEX IF NOT EXISTS idx_events_test ON events(test_id);
CREATE INDEX IF NOT EXISTS idx_events_test_name ON events(test_id, event_name);
CREATE UNIQUE INDEX IF NOT EXISTS idx_events_dedup ON events(test_id, visitor_id, event_name);
`

func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Apply schema
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// RecordEvent appends one event. Repeats of the same event name from
// the same visitor are dropped via the unique index, so replayed
// beacons cannot inflate counts.
func (s *Store) RecordEvent(ctx context.Context, testID, variantID, eventName, visitorID string, value *float64) error {
	now := time.Now().Unix()

	var v sql.NullFloat64
	if value != nil {
		v = sql.NullFloat64{Float64: *value, Valid: true}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO events (test_id, variant_id, event_name, visitor_id, value, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		testID, variantID, eventName, visitorID, v, now,
	)
	if err != nil {
		return fmt.Errorf("failed to record event: %w", err)
	}

	return nil
}

// VariantStats returns exposure and conversion counts per variant for
// one test, ordered by variant id.
func (s *Store) VariantStats(ctx context.Context, testID string) ([]VariantStats, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			variant_id,
			COUNT(DISTINCT CASE WHEN event_name = 'assignment' THEN visitor_id END) as exposures,
			COUNT(DISTINCT CASE WHEN event_name = 'conversion' THEN visitor_id END) as conversions
		FROM events
		WHERE test_id = ?
		GROUP BY variant_id
		ORDER BY variant_id
	`, testID)
	if err != nil {
		return nil, fmt.Errorf("failed to get variant stats: %w", err)
	}
	defer rows.Close()

	var stats []VariantStats
	for rows.Next() {
		var st VariantStats
		if err := rows.Scan(&st.VariantID, &st.Exposures, &st.Conversions); err != nil {
			return nil, fmt.Errorf("failed to scan stats: %w", err)
		}
		stats = append(stats, st)
	}

	return stats, rows.Err()
}

// Events returns all archived events for one test, newest first.
func (s *Store) Events(ctx context.Context, testID string) ([]*Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, test_id, variant_id, event_name, visitor_id, value, created_at
		 FROM events WHERE test_id = ? ORDER BY created_at DESC, id DESC`,
		testID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get events: %w", err)
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		var e Event
		var value sql.NullFloat64
		var createdAt int64
		if err := rows.Scan(&e.ID, &e.TestID, &e.VariantID, &e.EventName, &e.VisitorID, &value, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		if value.Valid {
			v := value.Float64
			e.Value = &v
		}
		e.CreatedAt = time.Unix(createdAt, 0)
		events = append(events, &e)
	}

	return events, rows.Err()
}

// TestIDs returns the distinct test ids seen in the archive, most
// recently active first.
func (s *Store) TestIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT test_id FROM events GROUP BY test_id ORDER BY MAX(created_at) DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list test ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan test id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// DB returns the underlying database connection for health checks
func (s *Store) DB() *sql.DB {
	return s.db
}
