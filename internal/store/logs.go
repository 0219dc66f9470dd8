package store

import (
	"context"
	"fmt"
)

// LogEntry is one row flushed from a thread's per-tick warning queue
// (internal/warnlog) or an ambient error.
type LogEntry struct {
	ThreadID int64
	Level    string
	Message  string
}

// InsertLogs flushes a batch of log entries in one round trip, used at
// the end of each tick to drain a module's accumulated warnings.
func (db *DB) InsertLogs(ctx context.Context, entries []LogEntry) error {
	if len(entries) == 0 {
		return nil
	}

	batch := &pgxBatch{}
	for _, e := range entries {
		batch.queue(`INSERT INTO logs (thread_id, level, message) VALUES ($1, $2, $3)`, e.ThreadID, e.Level, e.Message)
	}

	if err := batch.send(ctx, db.Pool); err != nil {
		return fmt.Errorf("insert logs: %w", err)
	}

	return nil
}
