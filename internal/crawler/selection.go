package crawler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/crawlserv/crawlservpp-sub000/internal/store"
)

// defaultLockTTL is used when Config.LockTTL is unset.
const defaultLockTTL = 2 * time.Minute

// selectURL implements spec.md §4.7.1's four ordered phases. It returns
// (url, leaseID, false, nil) on a successful selection, (zero, "", true,
// nil) when every phase is exhausted ("idle"), or a non-nil error for a
// problem worth retrying the whole tick over.
func (m *Module) selectURL(ctx context.Context) (store.URL, string, bool, error) {
	if m.pending != nil { // phase 1: manual retry
		if u, lease, ok := m.tryRetryPending(ctx); ok {
			return u, lease, false, nil
		}
	}

	tokens, err := m.resolveTokens(ctx)
	if err != nil {
		m.warn.Push(fmt.Sprintf("resolve tokens: %v", err))
	}

	if u, lease, ok := m.tryManualQueue(ctx, tokens); ok { // phase 2
		return u, lease, false, nil
	}

	if u, lease, ok := m.tryStartPage(ctx, tokens); ok { // phase 3
		return u, lease, false, nil
	}

	return m.tryAutomatic(ctx) // phase 4
}

func (m *Module) tryRetryPending(ctx context.Context) (store.URL, string, bool) {
	p := m.pending

	if err := m.lock.RenewIfOK(ctx, p.url.ID, p.leaseID, m.lockTTL()); err != nil {
		m.warn.Push(fmt.Sprintf("renew pending lock on %d: %v", p.url.ID, err))
		m.pending = nil

		return store.URL{}, "", false
	}

	m.pending = nil

	return p.url, p.leaseID, true
}

func (m *Module) tryManualQueue(ctx context.Context, tokens map[string]string) (store.URL, string, bool) {
	expanded := expandManualURLs(m.cfg.ManualURLs, m.cfg.Counters)

	for _, entry := range expanded {
		path := substituteTokens(entry.Template, tokens)

		existing, err := m.lookupByPath(ctx, path)

		if err == nil && existing.Crawled && !entry.ReCrawl {
			continue
		}

		u := existing
		if err != nil {
			id, _, ierr := m.db.InsertURL(ctx, m.websiteNamespace, m.listNamespace, store.URL{Path: path})
			if ierr != nil {
				m.warn.Push(fmt.Sprintf("insert manual url %q: %v", path, ierr))
				continue
			}

			u = store.URL{ID: id, Path: path}
		}

		lease, lerr := m.lock.LockIfOK(ctx, u.ID, "", m.lockTTL())
		if lerr != nil {
			continue // lock contention: skip for this tick, per spec.md §4.7.1 phase 2
		}

		return u, lease, true
	}

	return store.URL{}, "", false
}

func (m *Module) tryStartPage(ctx context.Context, tokens map[string]string) (store.URL, string, bool) {
	if m.cfg.StartPageURL == "" {
		return store.URL{}, "", false
	}

	path := substituteTokens(m.cfg.StartPageURL, tokens)

	existing, err := m.lookupByPath(ctx, path)

	if err == nil && existing.Crawled && !m.cfg.ReCrawlStart {
		return store.URL{}, "", false
	}

	u := existing
	if err != nil {
		id, _, ierr := m.db.InsertURL(ctx, m.websiteNamespace, m.listNamespace, store.URL{Path: path})
		if ierr != nil {
			m.warn.Push(fmt.Sprintf("insert start page %q: %v", path, ierr))

			return store.URL{}, "", false
		}

		u = store.URL{ID: id, Path: path}
	}

	lease, lerr := m.lock.LockIfOK(ctx, u.ID, "", m.lockTTL())
	if lerr != nil {
		return store.URL{}, "", false
	}

	return u, lease, true
}

// tryAutomatic implements phase 4, retrying past lock contention up to
// Config.MaxSelectionAttempts before reporting "idle".
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
			afterID = u.ID // contended: move past it and try the next candidate

			continue
		}

		m.afterID = u.ID

		return u, lease, false, nil
	}

	return store.URL{}, "", true, nil
}

func (m *Module) lookupByPath(ctx context.Context, path string) (store.URL, error) {
	return m.db.GetURLByPath(ctx, m.websiteNamespace, m.listNamespace, path)
}

func (m *Module) lockTTL() time.Duration {
	if m.cfg.LockTTL > 0 {
		return m.cfg.LockTTL
	}

	return defaultLockTTL
}

const urlDoneColumn = "crawled"
