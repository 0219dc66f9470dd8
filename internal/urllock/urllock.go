// Package urllock exposes the URL-Lock Coordinator contract
// (lock_if_ok, renew_if_ok, unlock_if_ok, unlock_many_if_ok,
// set_finished_if_ok) as a thin, typed wrapper over internal/store,
// so callers in internal/crawler, internal/extractor and
// internal/analyzer never construct table names or SQL themselves.
package urllock

import (
	"context"
	"time"

	"github.com/crawlserv/crawlservpp-sub000/internal/store"
)

// Coordinator mediates exclusive access to URLs within one URL list.
type Coordinator struct {
	db               *store.DB
	websiteNamespace string
	listNamespace    string
}

// New returns a Coordinator scoped to one URL list.
func New(db *store.DB, websiteNamespace, listNamespace string) *Coordinator {
	return &Coordinator{db: db, websiteNamespace: websiteNamespace, listNamespace: listNamespace}
}

// LockIfOK acquires or renews a lease on urlID. priorLease may be empty
// (no lease held yet) or the lease id the caller already believes it
// holds. Returns the new lease id on success, store.ErrVersionConflict
// if another worker holds a live lease.
func (c *Coordinator) LockIfOK(ctx context.Context, urlID int64, priorLease string, duration time.Duration) (string, error) {
	return c.db.ClaimURL(ctx, c.websiteNamespace, c.listNamespace, urlID, priorLease, duration, time.Now())
}

// RenewIfOK extends an already-held lease without changing its id.
func (c *Coordinator) RenewIfOK(ctx context.Context, urlID int64, leaseID string, duration time.Duration) error {
	return c.db.RenewLock(ctx, c.websiteNamespace, c.listNamespace, urlID, leaseID, duration, time.Now())
}

// UnlockIfOK releases urlID's lease if leaseID matches; otherwise it is
// a no-op, since another worker may already hold a fresh claim.
func (c *Coordinator) UnlockIfOK(ctx context.Context, urlID int64, leaseID string) error {
	return c.db.ReleaseLock(ctx, c.websiteNamespace, c.listNamespace, urlID, leaseID)
}

// UnlockManyIfOK releases every lease in urlIDs held under sharedLease.
func (c *Coordinator) UnlockManyIfOK(ctx context.Context, urlIDs []int64, sharedLease string) error {
	return c.db.ReleaseLocksIfOK(ctx, c.websiteNamespace, c.listNamespace, urlIDs, sharedLease)
}

// Status columns accepted by SetFinishedIfOK, one per module.
const (
	StatusCrawled   = "crawled"
	StatusParsed    = "parsed"
	StatusExtracted = "extracted"
	StatusAnalyzed  = "analyzed"
)

// SetFinishedIfOK atomically marks urlID done for one module and
// releases the caller's lock, but only while leaseID still matches.
func (c *Coordinator) SetFinishedIfOK(ctx context.Context, urlID int64, leaseID, statusColumn string) error {
	return c.db.SetFinishedIfOK(ctx, c.websiteNamespace, c.listNamespace, urlID, leaseID, statusColumn)
}

// NextUnlocked returns the lowest-id URL greater than afterID not yet
// marked done under doneColumn and not currently locked, filling the
// worker's URL cache in ascending id order (spec.md §4.2 Ordering).
func (c *Coordinator) NextUnlocked(ctx context.Context, doneColumn string, afterID int64) (store.URL, error) {
	return c.db.NextUnlockedURL(ctx, c.websiteNamespace, c.listNamespace, doneColumn, afterID, time.Now())
}

// RepairDuplicateLocks runs the startup sweep described in spec.md
// §4.2: scans the lock table, deletes every duplicate (same url-id)
// entry keeping the one with the latest expiry, and returns the number
// of rows deleted so the caller can log it.
func (c *Coordinator) RepairDuplicateLocks(ctx context.Context) (int64, error) {
	return c.db.RepairDuplicateLocks(ctx, c.websiteNamespace, c.listNamespace)
}
