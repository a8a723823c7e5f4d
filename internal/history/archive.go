package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Archive mirrors history events into SQLite for ad hoc queries that the
// flat KV log is too coarse for (per-actor, per-tab, date ranges).
type Archive struct {
	db *sql.DB
}

// OpenArchive opens (or creates) the archive database under basePath.
// Pass ":memory:" for an ephemeral archive.
func OpenArchive(basePath string) (*Archive, error) {
	var dbPath string
	if basePath == ":memory:" {
		dbPath = ":memory:"
	} else {
		dbPath = filepath.Join(basePath, "history.db")
		if err := os.MkdirAll(basePath, 0o755); err != nil {
			return nil, fmt.Errorf("create archive directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	a := &Archive{db: db}
	if err := a.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return a, nil
}

func (a *Archive) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS events (
		id TEXT PRIMARY KEY,
		at TEXT NOT NULL,
		actor TEXT,
		action TEXT NOT NULL,
		tab TEXT,
		task_id TEXT,
		detail TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_events_at ON events(at);
	CREATE INDEX IF NOT EXISTS idx_events_tab ON events(tab);
	`
	_, err := a.db.Exec(schema)
	return err
}

// Record inserts an event. Replaying the same event id is a no-op so the
// archive can be rebuilt from the KV log.
func (a *Archive) Record(e Event) error {
	_, err := a.db.Exec(
		`INSERT OR IGNORE INTO events (id, at, actor, action, tab, task_id, detail) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.At.UTC().Format(time.RFC3339Nano), e.Actor, e.Action, e.Tab, e.TaskID, e.Detail,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// Events returns up to limit events, newest first. A non-empty tab filters
// by tab.
func (a *Archive) Events(tab string, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `SELECT id, at, actor, action, tab, task_id, detail FROM events`
	args := []interface{}{}
	if tab != "" {
		query += ` WHERE tab = ?`
		args = append(args, tab)
	}
	query += ` ORDER BY at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := a.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []Event
	for rows.Next() {
		var e Event
		var at string
		if err := rows.Scan(&e.ID, &at, &e.Actor, &e.Action, &e.Tab, &e.TaskID, &e.Detail); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		if parsed, perr := time.Parse(time.RFC3339Nano, at); perr == nil {
			e.At = parsed
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Prune deletes events older than the cutoff, mirroring the KV log's
// retention policy.
func (a *Archive) Prune(before time.Time) error {
	_, err := a.db.Exec(`DELETE FROM events WHERE at < ?`, before.UTC().Format(time.RFC3339Nano))
	return err
}

// Close releases the database handle.
func (a *Archive) Close() error {
	return a.db.Close()
}
