package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// CreateQuery inserts a query definition.
func (db *DB) CreateQuery(ctx context.Context, q QueryRecord) (QueryRecord, error) {
	var websiteID any
	if q.WebsiteID != 0 {
		websiteID = q.WebsiteID
	}

	row := db.Pool.QueryRow(ctx,
		`INSERT INTO queries (website_id, type, text, result_bool, result_single, result_multi, result_sub, text_only)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, type, text, result_bool, result_single, result_multi, result_sub, text_only`,
		websiteID, q.Type, q.Text, q.ResultBool, q.ResultSingle, q.ResultMulti, q.ResultSub, q.TextOnly,
	)

	return scanQuery(row)
}

// GetQuery fetches a query definition by id.
func (db *DB) GetQuery(ctx context.Context, id int64) (QueryRecord, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT id, type, text, result_bool, result_single, result_multi, result_sub, text_only
		 FROM queries WHERE id = $1`, id)

	return scanQuery(row)
}

// DeleteQuery removes a query definition.
func (db *DB) DeleteQuery(ctx context.Context, id int64) error {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM queries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete query: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func scanQuery(row rowScanner) (QueryRecord, error) {
	var q QueryRecord

	err := row.Scan(&q.ID, &q.Type, &q.Text, &q.ResultBool, &q.ResultSingle, &q.ResultMulti, &q.ResultSub, &q.TextOnly)
	if errors.Is(err, pgx.ErrNoRows) {
		return QueryRecord{}, ErrNotFound
	}
	if err != nil {
		return QueryRecord{}, fmt.Errorf("scan query: %w", err)
	}

	return q, nil
}
