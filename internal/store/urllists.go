package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// CreateURLList inserts a URL List row and provisions its physical URL
// and content-blob tables, namespaced "<website-namespace>_<list-
// namespace>" per spec.md §"Persisted state layout".
func (db *DB) CreateURLList(ctx context.Context, websiteNamespace string, l URLList) (URLList, error) {
	tableName, err := listTableName(websiteNamespace, l.Namespace)
	if err != nil {
		return URLList{}, err
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return URLList{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	row := tx.QueryRow(ctx,
		`INSERT INTO url_lists (website_id, namespace, name, case_sensitive)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, website_id, namespace, name, case_sensitive, created_at`,
		l.WebsiteID, l.Namespace, l.Name, l.CaseSensitive,
	)

	out, err := scanURLList(row)
	if err != nil {
		return URLList{}, err
	}

	if err := createURLTable(ctx, tx, tableName); err != nil {
		return URLList{}, err
	}

	if err := createContentTable(ctx, tx, tableName); err != nil {
		return URLList{}, err
	}

	if err := createLocksTable(ctx, tx, tableName); err != nil {
		return URLList{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return URLList{}, fmt.Errorf("commit: %w", err)
	}

	return out, nil
}

func createURLTable(ctx context.Context, tx txExecutor, tableName string) error {
	_, err := tx.Exec(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id         BIGSERIAL PRIMARY KEY,
			path       TEXT NOT NULL,
			hash       TEXT NOT NULL,
			crawled    BOOLEAN NOT NULL DEFAULT false,
			parsed     BOOLEAN NOT NULL DEFAULT false,
			extracted  BOOLEAN NOT NULL DEFAULT false,
			analyzed   BOOLEAN NOT NULL DEFAULT false,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (path)
		)`, quoteIdent(tableName)))
	if err != nil {
		return fmt.Errorf("create url table %s: %w", tableName, err)
	}

	return nil
}

// createLocksTable provisions the per-list lock table. url_id is
// deliberately not UNIQUE: an unclean shutdown (or a bug in an older
// server version) can leave more than one live-looking lock row behind,
// and RepairDuplicateLocks is what reconciles that at startup.
func createLocksTable(ctx context.Context, tx txExecutor, tableName string) error {
	_, err := tx.Exec(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id         BIGSERIAL PRIMARY KEY,
			url_id     BIGINT NOT NULL REFERENCES %s(id) ON DELETE CASCADE,
			lease_id   TEXT NOT NULL,
			expires_at TIMESTAMPTZ NOT NULL
		)`, quoteIdent(tableName+"_locks"), quoteIdent(tableName)))
	if err != nil {
		return fmt.Errorf("create locks table %s_locks: %w", tableName, err)
	}

	return nil
}

func createContentTable(ctx context.Context, tx txExecutor, tableName string) error {
	_, err := tx.Exec(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id            BIGSERIAL PRIMARY KEY,
			url_id        BIGINT NOT NULL REFERENCES %s(id) ON DELETE CASCADE,
			response_code INTEGER NOT NULL,
			content_type  TEXT NOT NULL DEFAULT '',
			body          BYTEA NOT NULL,
			fetched_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
			archived_at   TIMESTAMPTZ,
			source        TEXT NOT NULL DEFAULT ''
		)`, quoteIdent(tableName+"_content"), quoteIdent(tableName)))
	if err != nil {
		return fmt.Errorf("create content table %s_content: %w", tableName, err)
	}

	return nil
}

// txExecutor is satisfied by both pgx.Tx and *pgxpool.Pool, so schema
// helpers can run inside or outside a transaction.
type txExecutor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// GetURLList fetches a URL List by id.
func (db *DB) GetURLList(ctx context.Context, id int64) (URLList, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT id, website_id, namespace, name, case_sensitive, created_at
		 FROM url_lists WHERE id = $1`, id)

	return scanURLList(row)
}

// DeleteURLList removes the catalog row; the caller is responsible for
// dropping the physical tables (dropping is not automatic, matching the
// teacher's caution around irreversible DDL — see DESIGN.md).
func (db *DB) DeleteURLList(ctx context.Context, id int64) error {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM url_lists WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete url list: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func scanURLList(row rowScanner) (URLList, error) {
	var l URLList

	err := row.Scan(&l.ID, &l.WebsiteID, &l.Namespace, &l.Name, &l.CaseSensitive, &l.CreatedAt)
	if err != nil {
		return URLList{}, fmt.Errorf("scan url list: %w", err)
	}

	return l, nil
}
