package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// CreateThreadRecord persists a new thread in the "created" state.
func (db *DB) CreateThreadRecord(ctx context.Context, t ThreadRecord) (ThreadRecord, error) {
	row := db.Pool.QueryRow(ctx,
		`INSERT INTO thread_records (module, website_id, url_list_id, config_id, status, status_message, paused, last_url_id, progress)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, module, website_id, url_list_id, config_id, status, status_message, paused, last_url_id, progress`,
		t.Module, t.WebsiteID, t.URLListID, t.ConfigID, ThreadCreated, t.StatusMessage, t.Paused, t.LastURLID, t.Progress,
	)

	return scanThreadRecord(row)
}

// GetThreadRecord fetches a thread record by id.
func (db *DB) GetThreadRecord(ctx context.Context, id int64) (ThreadRecord, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT id, module, website_id, url_list_id, config_id, status, status_message, paused, last_url_id, progress
		 FROM thread_records WHERE id = $1`, id)

	return scanThreadRecord(row)
}

// ListRunnableThreadRecords returns every thread record not in the
// "finished" state, used to resume work after a restart.
func (db *DB) ListRunnableThreadRecords(ctx context.Context) ([]ThreadRecord, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, module, website_id, url_list_id, config_id, status, status_message, paused, last_url_id, progress
		 FROM thread_records WHERE status != $1 ORDER BY id`, ThreadFinished)
	if err != nil {
		return nil, fmt.Errorf("list runnable thread records: %w", err)
	}
	defer rows.Close()

	var out []ThreadRecord

	for rows.Next() {
		t, err := scanThreadRecord(rows)
		if err != nil {
			return nil, err
		}

		out = append(out, t)
	}

	return out, rows.Err()
}

// UpdateThreadStatus persists the current lifecycle state and message.
func (db *DB) UpdateThreadStatus(ctx context.Context, id int64, status ThreadStatus, message string, paused bool) error {
	tag, err := db.Pool.Exec(ctx,
		`UPDATE thread_records SET status = $2, status_message = $3, paused = $4 WHERE id = $1`,
		id, status, message, paused,
	)
	if err != nil {
		return fmt.Errorf("update thread status: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// UpdateThreadCursor persists the resume point so a restarted thread
// can continue without reprocessing completed URLs.
func (db *DB) UpdateThreadCursor(ctx context.Context, id, lastURLID int64, progress float64) error {
	tag, err := db.Pool.Exec(ctx,
		`UPDATE thread_records SET last_url_id = $2, progress = $3 WHERE id = $1`,
		id, lastURLID, progress,
	)
	if err != nil {
		return fmt.Errorf("update thread cursor: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// DeleteThreadRecord removes a finished thread's record.
func (db *DB) DeleteThreadRecord(ctx context.Context, id int64) error {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM thread_records WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete thread record: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func scanThreadRecord(row rowScanner) (ThreadRecord, error) {
	var t ThreadRecord

	err := row.Scan(&t.ID, &t.Module, &t.WebsiteID, &t.URLListID, &t.ConfigID, &t.Status, &t.StatusMessage, &t.Paused, &t.LastURLID, &t.Progress)
	if errors.Is(err, pgx.ErrNoRows) {
		return ThreadRecord{}, ErrNotFound
	}
	if err != nil {
		return ThreadRecord{}, fmt.Errorf("scan thread record: %w", err)
	}

	return t, nil
}
