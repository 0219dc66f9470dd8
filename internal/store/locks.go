package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrVersionConflict is returned by claim/renew/release operations that
// lose a race against another worker holding the lease.
var ErrVersionConflict = errors.New("store: lock version conflict")

// ClaimURL implements lock_if_ok: it succeeds when the URL has no live
// lock row, when its lock is expired, or when priorLease matches the
// lock currently held (so the same caller can extend across a claim
// boundary). On success a fresh lease id and expiry are written and
// returned. Grounded on the teacher's Solr `_version_` optimistic-claim
// pattern (internal/crawler/queue.go's claimURLs/ConditionalUpdate),
// translated to a Postgres CAS: delete whatever row currently qualifies
// as "not live", then insert the new one, inside one transaction so a
// concurrent claim either sees the row before deletion (and loses) or
// after insertion (and loses) but never both at once.
func (db *DB) ClaimURL(ctx context.Context, websiteNamespace, listNamespace string, urlID int64, priorLease string, ttl time.Duration, now time.Time) (string, error) {
	table, err := listTableName(websiteNamespace, listNamespace)
	if err != nil {
		return "", err
	}

	locksTable := quoteIdent(table + "_locks")

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var (
		existingLease string
		expiresAt     time.Time
	)

	selectSQL := fmt.Sprintf(`SELECT lease_id, expires_at FROM %s WHERE url_id = $1 FOR UPDATE`, locksTable)

	err = tx.QueryRow(ctx, selectSQL, urlID).Scan(&existingLease, &expiresAt)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		// no live lock: free to claim
	case err != nil:
		return "", fmt.Errorf("claim url: %w", err)
	default:
		live := now.Before(expiresAt)
		owned := existingLease == priorLease && priorLease != ""

		if live && !owned {
			return "", ErrVersionConflict
		}

		if _, err := tx.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE url_id = $1`, locksTable), urlID); err != nil {
			return "", fmt.Errorf("claim url: clear prior lock: %w", err)
		}
	}

	lease := uuid.NewString()

	insertSQL := fmt.Sprintf(`INSERT INTO %s (url_id, lease_id, expires_at) VALUES ($1, $2, $3)`, locksTable)

	if _, err := tx.Exec(ctx, insertSQL, urlID, lease, now.Add(ttl)); err != nil {
		return "", fmt.Errorf("claim url: insert lock: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("claim url: commit: %w", err)
	}

	return lease, nil
}

// RenewLock implements renew_if_ok: extends an already-held lease,
// verified by lease id, without changing the lease id itself.
func (db *DB) RenewLock(ctx context.Context, websiteNamespace, listNamespace string, urlID int64, leaseID string, ttl time.Duration, now time.Time) error {
	table, err := listTableName(websiteNamespace, listNamespace)
	if err != nil {
		return err
	}

	sql := fmt.Sprintf(`
		UPDATE %s SET expires_at = $3
		WHERE url_id = $1 AND lease_id = $2`, quoteIdent(table+"_locks"))

	tag, err := db.Pool.Exec(ctx, sql, urlID, leaseID, now.Add(ttl))
	if err != nil {
		return fmt.Errorf("renew lock: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrVersionConflict
	}

	return nil
}

// ReleaseLock implements unlock_if_ok: deletes the lock row only if the
// caller's lease matches; otherwise it is a no-op, because another
// worker may already hold a fresh claim on that url.
func (db *DB) ReleaseLock(ctx context.Context, websiteNamespace, listNamespace string, urlID int64, leaseID string) error {
	table, err := listTableName(websiteNamespace, listNamespace)
	if err != nil {
		return err
	}

	sql := fmt.Sprintf(`DELETE FROM %s WHERE url_id = $1 AND lease_id = $2`, quoteIdent(table+"_locks"))

	if _, err := db.Pool.Exec(ctx, sql, urlID, leaseID); err != nil {
		return fmt.Errorf("release lock: %w", err)
	}

	return nil
}

// ReleaseLocksIfOK implements unlock_many_if_ok: deletes every lock in
// urlIDs currently held under sharedLease, skipping any not held under
// that lease.
func (db *DB) ReleaseLocksIfOK(ctx context.Context, websiteNamespace, listNamespace string, urlIDs []int64, sharedLease string) error {
	table, err := listTableName(websiteNamespace, listNamespace)
	if err != nil {
		return err
	}

	sql := fmt.Sprintf(`DELETE FROM %s WHERE url_id = ANY($1) AND lease_id = $2`, quoteIdent(table+"_locks"))

	if _, err := db.Pool.Exec(ctx, sql, urlIDs, sharedLease); err != nil {
		return fmt.Errorf("release locks if ok: %w", err)
	}

	return nil
}

// SetFinishedIfOK atomically flips the given status column (one of
// crawled/parsed/extracted/analyzed) on the URL and releases its lock,
// but only if leaseID matches the lock currently held.
func (db *DB) SetFinishedIfOK(ctx context.Context, websiteNamespace, listNamespace string, urlID int64, leaseID, statusColumn string) error {
	table, err := listTableName(websiteNamespace, listNamespace)
	if err != nil {
		return err
	}

	col, err := sanitizeIdentifierPart(statusColumn)
	if err != nil {
		return err
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	delSQL := fmt.Sprintf(`DELETE FROM %s WHERE url_id = $1 AND lease_id = $2`, quoteIdent(table+"_locks"))

	tag, err := tx.Exec(ctx, delSQL, urlID, leaseID)
	if err != nil {
		return fmt.Errorf("set finished if ok: release: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrVersionConflict
	}

	updSQL := fmt.Sprintf(`UPDATE %[1]s SET %[2]s = true WHERE id = $1`, quoteIdent(table), quoteIdent(col))

	if _, err := tx.Exec(ctx, updSQL, urlID); err != nil {
		return fmt.Errorf("set finished if ok: update: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("set finished if ok: commit: %w", err)
	}

	return nil
}

// RepairDuplicateLocks implements the startup duplicate-lock sweep: for
// every url_id with more than one lock row, keeps the one with the
// latest expires_at and deletes the rest, returning the number deleted.
func (db *DB) RepairDuplicateLocks(ctx context.Context, websiteNamespace, listNamespace string) (int64, error) {
	table, err := listTableName(websiteNamespace, listNamespace)
	if err != nil {
		return 0, err
	}

	locksTable := quoteIdent(table + "_locks")

	sql := fmt.Sprintf(`
		DELETE FROM %[1]s
		WHERE id NOT IN (
			SELECT DISTINCT ON (url_id) id
			FROM %[1]s
			ORDER BY url_id, expires_at DESC
		)`, locksTable)

	tag, err := db.Pool.Exec(ctx, sql)
	if err != nil {
		return 0, fmt.Errorf("repair duplicate locks: %w", err)
	}

	return tag.RowsAffected(), nil
}
