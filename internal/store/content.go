package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// InsertContent stores a fetched response body for a URL. A live crawl
// result passes source="" and archivedAt=nil; a Memento snapshot passes
// a non-empty source and its capture timestamp.
func (db *DB) InsertContent(ctx context.Context, websiteNamespace, listNamespace string, c ContentBlob) (int64, error) {
	table, err := listTableName(websiteNamespace, listNamespace)
	if err != nil {
		return 0, err
	}

	sql := fmt.Sprintf(`
		INSERT INTO %s (url_id, response_code, content_type, body, archived_at, source)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`, quoteIdent(table+"_content"))

	var id int64

	err = db.Pool.QueryRow(ctx, sql,
		c.URLID, c.ResponseCode, c.ContentType, c.Body, c.ArchivedAt, c.Source,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert content: %w", err)
	}

	return id, nil
}

// LatestContent returns the most recently fetched live (non-archived)
// blob for a URL.
func (db *DB) LatestContent(ctx context.Context, websiteNamespace, listNamespace string, urlID int64) (ContentBlob, error) {
	table, err := listTableName(websiteNamespace, listNamespace)
	if err != nil {
		return ContentBlob{}, err
	}

	sql := fmt.Sprintf(`
		SELECT id, url_id, response_code, content_type, body, fetched_at, archived_at, source
		FROM %s
		WHERE url_id = $1 AND archived_at IS NULL
		ORDER BY fetched_at DESC
		LIMIT 1`, quoteIdent(table+"_content"))

	row := db.Pool.QueryRow(ctx, sql, urlID)

	return scanContent(row)
}

func scanContent(row rowScanner) (ContentBlob, error) {
	var c ContentBlob

	err := row.Scan(&c.ID, &c.URLID, &c.ResponseCode, &c.ContentType, &c.Body, &c.FetchedAt, &c.ArchivedAt, &c.Source)
	if errors.Is(err, pgx.ErrNoRows) {
		return ContentBlob{}, ErrNotFound
	}
	if err != nil {
		return ContentBlob{}, fmt.Errorf("scan content: %w", err)
	}

	return c, nil
}
