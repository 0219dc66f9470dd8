package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// RepairStaleHashes recomputes the path hash for every URL row whose
// stored hash does not match its path, and corrects it in place. A
// mismatch only occurs if a URL's path was edited directly against the
// database outside of the system (spec.md §3's hash-repair sweep);
// running this before any worker starts keeps every stored hash equal
// to HashPath of its path.
func (db *DB) RepairStaleHashes(ctx context.Context, websiteNamespace, listNamespace string) (int64, error) {
	table, err := listTableName(websiteNamespace, listNamespace)
	if err != nil {
		return 0, err
	}

	rows, err := db.Pool.Query(ctx, fmt.Sprintf(`SELECT id, path, hash FROM %s`, quoteIdent(table)))
	if err != nil {
		return 0, fmt.Errorf("scan urls for hash repair: %w", err)
	}
	defer rows.Close()

	type mismatch struct {
		id   int64
		hash string
	}

	var toFix []mismatch

	for rows.Next() {
		var (
			id         int64
			path, hash string
		)

		if err := rows.Scan(&id, &path, &hash); err != nil {
			return 0, fmt.Errorf("scan url row: %w", err)
		}

		want := HashPath(path)
		if want != hash {
			toFix = append(toFix, mismatch{id: id, hash: want})
		}
	}

	if err := rows.Err(); err != nil {
		return 0, err
	}

	if len(toFix) == 0 {
		return 0, nil
	}

	batch := &pgxBatch{}
	for _, m := range toFix {
		batch.queue(fmt.Sprintf(`UPDATE %s SET hash = $2 WHERE id = $1`, quoteIdent(table)), m.id, m.hash)
	}

	if err := batch.send(ctx, db.Pool); err != nil {
		return 0, fmt.Errorf("apply hash repairs: %w", err)
	}

	return int64(len(toFix)), nil
}

// HashPath computes the content-addressable hash stored alongside a
// URL's path.
func HashPath(path string) string {
	sum := sha256.Sum256([]byte(path))
	return hex.EncodeToString(sum[:])
}
