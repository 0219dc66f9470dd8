package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// InsertURL inserts one URL into a list's physical table, skipping rows
// whose path already exists (the table's UNIQUE(path) constraint).
// Returns (id, true) when inserted, (0, false) when the path was
// already present.
func (db *DB) InsertURL(ctx context.Context, websiteNamespace, listNamespace string, u URL) (int64, bool, error) {
	table, err := listTableName(websiteNamespace, listNamespace)
	if err != nil {
		return 0, false, err
	}

	var id int64

	sql := fmt.Sprintf(`
		INSERT INTO %s (path, hash)
		VALUES ($1, $2)
		ON CONFLICT (path) DO NOTHING
		RETURNING id`, quoteIdent(table))

	err = db.Pool.QueryRow(ctx, sql, u.Path, u.Hash).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("insert url: %w", err)
	}

	return id, true, nil
}

// InsertURLsChunked inserts URLs in fixed-size batches (grounded on the
// teacher's chunked-insert style in internal/crawler/queue.go), skipping
// duplicate paths. Returns the count actually inserted.
func (db *DB) InsertURLsChunked(ctx context.Context, websiteNamespace, listNamespace string, urls []URL, chunkSize int) (int, error) {
	if chunkSize <= 0 {
		chunkSize = 500
	}

	inserted := 0

	for start := 0; start < len(urls); start += chunkSize {
		end := start + chunkSize
		if end > len(urls) {
			end = len(urls)
		}

		for _, u := range urls[start:end] {
			_, ok, err := db.InsertURL(ctx, websiteNamespace, listNamespace, u)
			if err != nil {
				return inserted, err
			}

			if ok {
				inserted++
			}
		}
	}

	return inserted, nil
}

// GetURLByPath fetches a URL row by its exact path, used by the Crawler
// to check whether a manual/start-page URL has already been crawled
// before deciding whether re-crawl applies (spec.md §4.7.1 phases 2-3).
func (db *DB) GetURLByPath(ctx context.Context, websiteNamespace, listNamespace, path string) (URL, error) {
	table, err := listTableName(websiteNamespace, listNamespace)
	if err != nil {
		return URL{}, err
	}

	sql := fmt.Sprintf(`
		SELECT id, path, hash, crawled, parsed, extracted, analyzed, created_at
		FROM %s WHERE path = $1`, quoteIdent(table))

	row := db.Pool.QueryRow(ctx, sql, path)

	return scanURL(row)
}

// GetURL fetches a URL row by id.
func (db *DB) GetURL(ctx context.Context, websiteNamespace, listNamespace string, id int64) (URL, error) {
	table, err := listTableName(websiteNamespace, listNamespace)
	if err != nil {
		return URL{}, err
	}

	sql := fmt.Sprintf(`
		SELECT id, path, hash, crawled, parsed, extracted, analyzed, created_at
		FROM %s WHERE id = $1`, quoteIdent(table))

	row := db.Pool.QueryRow(ctx, sql, id)

	return scanURL(row)
}

// NextUnlockedURL returns the lowest-id URL greater than afterID in the
// list matching the given predicate column (e.g. "crawled" is false)
// that currently has no live lock row, for breadth-first automatic
// queue selection filling the worker's URL cache in ascending id order
// (spec.md §4.2 Ordering).
func (db *DB) NextUnlockedURL(ctx context.Context, websiteNamespace, listNamespace, doneColumn string, afterID int64, now time.Time) (URL, error) {
	table, err := listTableName(websiteNamespace, listNamespace)
	if err != nil {
		return URL{}, err
	}

	col, err := sanitizeIdentifierPart(doneColumn)
	if err != nil {
		return URL{}, err
	}

	sql := fmt.Sprintf(`
		SELECT u.id, u.path, u.hash, u.crawled, u.parsed, u.extracted, u.analyzed, u.created_at
		FROM %[1]s u
		LEFT JOIN %[2]s l ON l.url_id = u.id AND l.expires_at >= $1
		WHERE u.%[3]s = false AND u.id > $2 AND l.id IS NULL
		ORDER BY u.id ASC
		LIMIT 1`, quoteIdent(table), quoteIdent(table+"_locks"), quoteIdent(col))

	row := db.Pool.QueryRow(ctx, sql, now, afterID)

	return scanURL(row)
}

func scanURL(row rowScanner) (URL, error) {
	var u URL

	err := row.Scan(&u.ID, &u.Path, &u.Hash, &u.Crawled, &u.Parsed, &u.Extracted, &u.Analyzed, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return URL{}, ErrNotFound
	}
	if err != nil {
		return URL{}, fmt.Errorf("scan url: %w", err)
	}

	return u, nil
}

// MarkURLDone flips one of the crawled/parsed/extracted/analyzed flags.
func (db *DB) MarkURLDone(ctx context.Context, websiteNamespace, listNamespace string, urlID int64, column string) error {
	table, err := listTableName(websiteNamespace, listNamespace)
	if err != nil {
		return err
	}

	col, err := sanitizeIdentifierPart(column)
	if err != nil {
		return err
	}

	sql := fmt.Sprintf(`UPDATE %s SET %s = true WHERE id = $1`, quoteIdent(table), quoteIdent(col))

	tag, err := db.Pool.Exec(ctx, sql, urlID)
	if err != nil {
		return fmt.Errorf("mark url done: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// ResetURLListColumn clears one of the crawled/parsed/extracted/analyzed
// flags across every URL in a list, implementing the command channel's
// reset-parsing/extracting/analyzing verb (spec.md §6). Resetting
// "extracted" also clears "analyzed", since an analysis built on stale
// extracted data is itself stale.
func (db *DB) ResetURLListColumn(ctx context.Context, websiteNamespace, listNamespace, column string) (int64, error) {
	table, err := listTableName(websiteNamespace, listNamespace)
	if err != nil {
		return 0, err
	}

	col, err := sanitizeIdentifierPart(column)
	if err != nil {
		return 0, err
	}

	sql := fmt.Sprintf(`UPDATE %s SET %s = false`, quoteIdent(table), quoteIdent(col))
	if col == "extracted" {
		sql = fmt.Sprintf(`UPDATE %s SET extracted = false, analyzed = false`, quoteIdent(table))
	}

	tag, err := db.Pool.Exec(ctx, sql)
	if err != nil {
		return 0, fmt.Errorf("reset url list column: %w", err)
	}

	return tag.RowsAffected(), nil
}
