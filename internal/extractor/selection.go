package extractor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/crawlserv/crawlservpp-sub000/internal/store"
)

const defaultLockTTL = 2 * time.Minute

// pendingURL remembers a URL this Module holds a live lease on across a
// retry-after-reset tick, mirroring internal/crawler's generalization of
// spec.md §4.7.1 phase 1 ("manual retry") to every selection origin.
type pendingURL struct {
	url     store.URL
	leaseID string
}

// selectURL picks the next URL to extract from: a pending retry first,
// otherwise the next unlocked, not-yet-extracted URL in ascending id
// order. Unlike the Crawler, the Extractor has no manual queue or start
// page (spec.md §4.8 describes no such phases) — every URL enters the
// extraction pipeline purely by automatic selection over URLs the
// Crawler has already produced.
func (m *Module) selectURL(ctx context.Context) (store.URL, string, bool, error) {
	if m.pending != nil {
		u, lease, ok := m.tryRetryPending(ctx)
		if ok {
			return u, lease, false, nil
		}
	}

	return m.tryAutomatic(ctx)
}

func (m *Module) tryRetryPending(ctx context.Context) (store.URL, string, bool) {
	p := m.pending
	m.pending = nil

	if err := m.lock.RenewIfOK(ctx, p.url.ID, p.leaseID, m.lockTTL()); err != nil {
		return store.URL{}, "", false
	}

	return p.url, p.leaseID, true
}

func (m *Module) tryAutomatic(ctx context.Context) (store.URL, string, bool, error) {
	attempts := m.cfg.MaxSelectionAttempts
	if attempts <= 0 {
		attempts = DefaultMaxSelectionAttempts
	}

	afterID := m.afterID

	for i := 0; i < attempts; i++ {
		u, err := m.lock.NextUnlocked(ctx, urlDoneColumn, afterID)
		if errors.Is(err, store.ErrNotFound) {
			return store.URL{}, "", true, nil
		}
		if err != nil {
			return store.URL{}, "", false, fmt.Errorf("select next url: %w", err)
		}

		lease, lerr := m.lock.LockIfOK(ctx, u.ID, "", m.lockTTL())
		if lerr != nil {
			afterID = u.ID
			continue
		}

		m.afterID = u.ID

		return u, lease, false, nil
	}

	return store.URL{}, "", true, nil
}

func (m *Module) lockTTL() time.Duration {
	if m.cfg.LockTTL > 0 {
		return m.cfg.LockTTL
	}

	return defaultLockTTL
}

const urlDoneColumn = "extracted"
