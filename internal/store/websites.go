package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// ErrNotFound is returned by lookups that find no matching row.
var ErrNotFound = errors.New("store: not found")

// CreateWebsite inserts a new website row.
func (db *DB) CreateWebsite(ctx context.Context, w Website) (Website, error) {
	row := db.Pool.QueryRow(ctx,
		`INSERT INTO websites (namespace, name, domain)
		 VALUES ($1, $2, $3)
		 RETURNING id, namespace, name, domain, created_at`,
		w.Namespace, w.Name, w.Domain,
	)

	return scanWebsite(row)
}

// GetWebsite fetches a website by id.
func (db *DB) GetWebsite(ctx context.Context, id int64) (Website, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT id, namespace, name, domain, created_at FROM websites WHERE id = $1`, id)

	return scanWebsite(row)
}

// UpdateWebsite updates the mutable fields of a website.
func (db *DB) UpdateWebsite(ctx context.Context, w Website) error {
	tag, err := db.Pool.Exec(ctx,
		`UPDATE websites SET name = $2, domain = $3 WHERE id = $1`,
		w.ID, w.Name, w.Domain,
	)
	if err != nil {
		return fmt.Errorf("update website: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// DeleteWebsite removes a website; URL lists, URLs and dependent rows
// cascade via foreign keys.
func (db *DB) DeleteWebsite(ctx context.Context, id int64) error {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM websites WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete website: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// ListWebsites returns every website, ordered by id.
func (db *DB) ListWebsites(ctx context.Context) ([]Website, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, namespace, name, domain, created_at FROM websites ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list websites: %w", err)
	}
	defer rows.Close()

	var out []Website

	for rows.Next() {
		w, err := scanWebsite(rows)
		if err != nil {
			return nil, err
		}

		out = append(out, w)
	}

	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWebsite(row rowScanner) (Website, error) {
	var w Website

	err := row.Scan(&w.ID, &w.Namespace, &w.Name, &w.Domain, &w.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Website{}, ErrNotFound
	}
	if err != nil {
		return Website{}, fmt.Errorf("scan website: %w", err)
	}

	return w, nil
}
