// Package history keeps an audit ledger of migration passes in SQLite
// (modernc.org/sqlite driver, CGO-free). The ledger is optional: callers
// with no DB path configured simply never open one.
package history

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/loykin/relaunch/internal/migrate"
)

// Entry is one recorded step outcome.
type Entry struct {
	ID        int64     `json:"id"`
	Step      string    `json:"step"`
	Changed   bool      `json:"changed"`
	AppliedAt time.Time `json:"applied_at"`
}

// Ledger wraps the SQLite database holding migration history.
type Ledger struct {
	db *sql.DB
}

// Open opens (or creates) the ledger database at path. Use ":memory:" for
// an in-memory ledger.
func Open(path string) (*Ledger, error) {
	p := strings.TrimSpace(path)
	if p == "" {
		return nil, errors.New("empty history db path")
	}
	d, err := sql.Open("sqlite", p)
	if err != nil {
		return nil, err
	}
	// busy timeout helps with short concurrent locks
	_, _ = d.Exec("PRAGMA busy_timeout=3000;")
	return &Ledger{db: d}, nil
}

func (l *Ledger) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS migration_history(
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			step TEXT NOT NULL,
			changed BOOLEAN NOT NULL,
			applied_at TIMESTAMP NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_migration_history_step ON migration_history(step);`,
	}
	for _, q := range stmts {
		if _, err := l.db.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

func (l *Ledger) Close() error { return l.db.Close() }

// RecordPass stores every step result of one migration pass atomically.
func (l *Ledger) RecordPass(ctx context.Context, results []migrate.StepResult) error {
	if len(results) == 0 {
		return nil
	}
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, r := range results {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO migration_history(step, changed, applied_at)
			VALUES(?, ?, ?);`,
			r.Step, r.Changed, r.AppliedAt.UTC()); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// Recent returns the most recent entries, newest first, capped at limit.
func (l *Ledger) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, step, changed, applied_at
		FROM migration_history
		ORDER BY id DESC
		LIMIT ?;`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Step, &e.Changed, &e.AppliedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
