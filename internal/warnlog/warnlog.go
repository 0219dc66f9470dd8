// Package warnlog is the per-tick warning queue shared by Crawler,
// Extractor and Analyzer: non-fatal problems (a failed query, a parse
// error, a skipped filter miss) are pushed during the tick and flushed
// to the logs table once, at the tick's end, instead of one round trip
// per warning.
package warnlog

import (
	"context"
	"sync"

	"github.com/crawlserv/crawlservpp-sub000/internal/store"
)

// Level mirrors the severity vocabulary the teacher's zerolog calls use.
type Level string

const (
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// entry is one queued log line awaiting flush.
type entry struct {
	level   Level
	message string
}

// Queue accumulates warnings for one thread across one tick.
type Queue struct {
	mu       sync.Mutex
	threadID int64
	entries  []entry
}

// New returns a Queue bound to one thread record.
func New(threadID int64) *Queue {
	return &Queue{threadID: threadID}
}

// Push queues a warning-level message.
func (q *Queue) Push(message string) {
	q.push(LevelWarn, message)
}

// PushError queues an error-level message.
func (q *Queue) PushError(message string) {
	q.push(LevelError, message)
}

func (q *Queue) push(level Level, message string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.entries = append(q.entries, entry{level: level, message: message})
}

// Len reports how many messages are queued.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.entries)
}

// Drain removes and returns every queued message, resetting the queue
// for the next tick.
func (q *Queue) Drain() []string {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]string, len(q.entries))
	for i, e := range q.entries {
		out[i] = string(e.level) + ": " + e.message
	}

	q.entries = nil

	return out
}

// logSink is the persistence surface Flush needs; satisfied by
// *store.DB, narrowed so callers can substitute a fake in tests.
type logSink interface {
	InsertLogs(ctx context.Context, entries []store.LogEntry) error
}

// Flush writes every queued message to the logs table in one batch and
// resets the queue, whether or not any messages were queued.
func (q *Queue) Flush(ctx context.Context, db logSink) error {
	q.mu.Lock()
	pending := q.entries
	q.entries = nil
	q.mu.Unlock()

	if len(pending) == 0 {
		return nil
	}

	out := make([]store.LogEntry, len(pending))
	for i, e := range pending {
		out[i] = store.LogEntry{ThreadID: q.threadID, Level: string(e.level), Message: e.message}
	}

	return db.InsertLogs(ctx, out)
}
