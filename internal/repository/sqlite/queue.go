package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cmlabs-hris/academy-shift-go/internal/domain/offline"
	"github.com/cmlabs-hris/academy-shift-go/internal/domain/shift"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// Queue is the device-local offline action store.
// It survives process restarts and is shared by every command that opens the same file.
type Queue struct {
	db  *sql.DB
	now func() time.Time
}

var _ offline.Queue = (*Queue)(nil)

// OpenQueue opens or creates the queue database at path.
// Use ":memory:" for a throwaway queue.
func OpenQueue(path string) (*Queue, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("failed to create queue directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open queue database: %w", err)
	}

	// One writer; also keeps an in-memory database on a single connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", offline.ErrQueueUnavailable, err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply queue schema: %w", err)
	}

	return &Queue{db: db, now: time.Now}, nil
}

func (q *Queue) Close() error {
	return q.db.Close()
}

// Enqueue implements offline.Queue.
func (q *Queue) Enqueue(ctx context.Context, actionType shift.ActionType, clientTimestamp string) (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate action id: %w", err)
	}

	_, err = q.db.ExecContext(ctx,
		`INSERT INTO queued_actions (id, type, client_timestamp, queued_at) VALUES (?, ?, ?, ?)`,
		id.String(), string(actionType), clientTimestamp, q.now().UnixMilli(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to enqueue action: %w", err)
	}
	return id.String(), nil
}

// ListAll implements offline.Queue.
func (q *Queue) ListAll(ctx context.Context) ([]offline.QueuedAction, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, type, client_timestamp, queued_at FROM queued_actions ORDER BY queued_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list queued actions: %w", err)
	}
	defer rows.Close()

	var actions []offline.QueuedAction
	for rows.Next() {
		var (
			a          offline.QueuedAction
			actionType string
		)
		if err := rows.Scan(&a.ID, &actionType, &a.ClientTimestamp, &a.QueuedAt); err != nil {
			return nil, fmt.Errorf("failed to scan queued action: %w", err)
		}
		a.Type = shift.ActionType(actionType)
		actions = append(actions, a)
	}
	return actions, rows.Err()
}

// Remove implements offline.Queue.
func (q *Queue) Remove(ctx context.Context, id string) error {
	if _, err := q.db.ExecContext(ctx, `DELETE FROM queued_actions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to remove queued action %s: %w", id, err)
	}
	return nil
}

// Count returns the number of buffered actions.
func (q *Queue) Count(ctx context.Context) (int, error) {
	var n int
	if err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM queued_actions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count queued actions: %w", err)
	}
	return n, nil
}
