package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// CreateConfiguration inserts a new configuration version.
func (db *DB) CreateConfiguration(ctx context.Context, c Configuration) (Configuration, error) {
	row := db.Pool.QueryRow(ctx,
		`INSERT INTO configurations (module, name, version, json)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, module, name, version, json`,
		c.Module, c.Name, c.Version, c.JSON,
	)

	return scanConfiguration(row)
}

// GetConfiguration fetches a configuration by id.
func (db *DB) GetConfiguration(ctx context.Context, id int64) (Configuration, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT id, module, name, version, json FROM configurations WHERE id = $1`, id)

	return scanConfiguration(row)
}

// UpdateConfiguration replaces the JSON body and bumps the version.
func (db *DB) UpdateConfiguration(ctx context.Context, id int64, json []byte) (Configuration, error) {
	row := db.Pool.QueryRow(ctx,
		`UPDATE configurations SET json = $2, version = version + 1
		 WHERE id = $1
		 RETURNING id, module, name, version, json`,
		id, json,
	)

	return scanConfiguration(row)
}

// DeleteConfiguration removes a configuration, rejected if referenced by
// a thread record (foreign key without cascade).
func (db *DB) DeleteConfiguration(ctx context.Context, id int64) error {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM configurations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete configuration: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func scanConfiguration(row rowScanner) (Configuration, error) {
	var c Configuration

	err := row.Scan(&c.ID, &c.Module, &c.Name, &c.Version, &c.JSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return Configuration{}, ErrNotFound
	}
	if err != nil {
		return Configuration{}, fmt.Errorf("scan configuration: %w", err)
	}

	return c, nil
}
