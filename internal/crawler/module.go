// Package crawler implements the Crawler worker (spec.md §4.7): per
// tick it selects the next URL, fetches it, applies URL/content-type/
// content filters, optionally tidies the HTML, extracts links, and
// enqueues newly discovered URLs — grounded on the teacher's
// internal/crawler/crawler.go processURL/discoverURLs shape,
// restructured from a Solr work queue onto the Postgres URL list this
// rewrite persists state in.
package crawler

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/crawlserv/crawlservpp-sub000/internal/netclient"
	"github.com/crawlserv/crawlservpp-sub000/internal/parsecache"
	"github.com/crawlserv/crawlservpp-sub000/internal/store"
	"github.com/crawlserv/crawlservpp-sub000/internal/supervisor"
	"github.com/crawlserv/crawlservpp-sub000/internal/urllock"
	"github.com/crawlserv/crawlservpp-sub000/internal/urlresolve"
	"github.com/crawlserv/crawlservpp-sub000/internal/warnlog"
)

// pendingURL remembers a URL this Module holds a live lease on across a
// retry-after-reset tick, so the next tick's selection phase (§4.7.1
// phase 1, "manual retry") can try to renew and resume it before
// falling through to fresh selection. Generalized here to cover every
// selection origin, not only manual/start-page URLs, since nothing in
// the automatic phase should be treated worse on a transient failure.
type pendingURL struct {
	url     store.URL
	leaseID string
}

// Module is one Crawler worker bound to a single Thread Record's
// website/url-list/configuration.
type Module struct {
	cfg Config

	db      *store.DB
	lock    *urllock.Coordinator
	client  *netclient.Client
	archive *netclient.Client
	resolve *urlresolve.Resolver
	cache   *parsecache.Cache
	filters *compiledFilters
	warn    *warnlog.Queue
	logger  *zerolog.Logger

	websiteNamespace string
	listNamespace    string

	afterID int64 // automatic-selection cursor (spec.md §4.7.1 phase 4)
	pending *pendingURL
}

// Deps bundles the collaborators Module needs beyond Config, all
// already constructed by cmd/crawlservd at startup.
type Deps struct {
	DB               *store.DB
	Lock             *urllock.Coordinator
	Client           *netclient.Client
	Archive          *netclient.Client
	Resolver         *urlresolve.Resolver
	Cache            *parsecache.Cache
	Warnings         *warnlog.Queue
	Logger           *zerolog.Logger
	WebsiteNamespace string
	ListNamespace    string
}

// New builds a Module, resuming from lastURLID (the Thread Record's
// persisted cursor) and compiling the configured filter patterns once.
func New(cfg Config, deps Deps, lastURLID int64) (*Module, error) {
	filters, err := newCompiledFilters(cfg)
	if err != nil {
		return nil, fmt.Errorf("compile filters: %w", err)
	}

	logger := deps.Logger
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	return &Module{
		cfg:              cfg,
		db:               deps.DB,
		lock:             deps.Lock,
		client:           deps.Client,
		archive:          deps.Archive,
		resolve:          deps.Resolver,
		cache:            deps.Cache,
		filters:          filters,
		warn:             deps.Warnings,
		logger:           logger,
		websiteNamespace: deps.WebsiteNamespace,
		listNamespace:    deps.ListNamespace,
		afterID:          lastURLID,
	}, nil
}

// Pausable implements supervisor.Module: a Crawler may always pause
// between URLs.
func (m *Module) Pausable() bool { return true }

// Warpable implements supervisor.Module: a Crawler can seek its
// automatic-selection cursor.
func (m *Module) Warpable() bool { return true }

// Warp implements supervisor.Warper: drop whatever URL is currently
// held and reset the automatic cursor to targetURLID (spec.md §4.7
// step 2).
func (m *Module) Warp(ctx context.Context, targetURLID int64) error {
	m.dropPending(ctx)
	m.afterID = targetURLID

	return nil
}

func (m *Module) dropPending(ctx context.Context) {
	if m.pending == nil {
		return
	}

	if err := m.lock.UnlockIfOK(ctx, m.pending.url.ID, m.pending.leaseID); err != nil {
		m.warn.Push(fmt.Sprintf("unlock %d on warp: %v", m.pending.url.ID, err))
	}

	m.pending = nil
}

// Tick implements supervisor.Module, running the twelve steps of
// spec.md §4.7 for one URL.
func (m *Module) Tick(ctx context.Context) supervisor.TickResult {
	m.cache.Reset() // step 1

	target, leaseID, idle, err := m.selectURL(ctx) // step 3
	if err != nil {
		return supervisor.TickResult{Outcome: supervisor.TickRetry, Message: "selection error", Err: err}
	}

	if idle {
		return supervisor.TickResult{Outcome: supervisor.TickIdle, Progress: -1}
	}

	resp, outcome, err := m.client.Get(ctx, m.fullURL(target.Path), false) // step 4
	switch outcome {
	case netclient.OutcomeRetryAfterReset:
		m.pending = &pendingURL{url: target, leaseID: leaseID}

		if rerr := m.client.Reset(); rerr != nil {
			m.warn.Push(fmt.Sprintf("reset client: %v", rerr))
		}

		return supervisor.TickResult{Outcome: supervisor.TickRetry, Message: "fetch failed", Err: err}
	case netclient.OutcomeSkip:
		m.unlockOnly(ctx, target.ID, leaseID)

		return supervisor.TickResult{
			Outcome: supervisor.TickSkip, LastURLID: target.ID,
			Message: "fetch skipped", Err: err,
		}
	}

	if !m.filters.urlAllowed(target.Path) || !m.filters.contentTypeAllowed(resp.ContentType) { // step 5
		m.unlockOnly(ctx, target.ID, leaseID)

		return supervisor.TickResult{Outcome: supervisor.TickSkip, LastURLID: target.ID, Message: "filtered by url/content-type"}
	}

	if allowed, cerr := m.filters.contentAllowed(ctx, resp.Body); cerr != nil { // step 6
		m.warn.Push(fmt.Sprintf("content filter: %v", cerr))
	} else if !allowed {
		m.unlockOnly(ctx, target.ID, leaseID)

		return supervisor.TickResult{Outcome: supervisor.TickSkip, LastURLID: target.ID, Message: "filtered by content"}
	}

	body := resp.Body

	if m.cfg.TidyHTML { // step 7
		tidied, terr := tidyHTML(body)
		if terr != nil {
			m.warn.Push(fmt.Sprintf("tidy html: %v", terr))
		} else {
			body = tidied
		}
	}

	if _, err := m.db.InsertContent(ctx, m.websiteNamespace, m.listNamespace, store.ContentBlob{
		URLID: target.ID, ResponseCode: resp.StatusCode, ContentType: resp.ContentType, Body: body,
	}); err != nil {
		m.warn.Push(fmt.Sprintf("insert content: %v", err))
	}

	links, err := m.extractLinks(ctx, body) // step 8
	if err != nil {
		m.warn.Push(fmt.Sprintf("link extraction: %v", err))
	}

	m.checkExpectedCount(ctx, body, len(links)) // step 9

	inserted, err := m.db.InsertURLsChunked(ctx, m.websiteNamespace, m.listNamespace, links, m.chunkSize()) // step 10
	if err != nil {
		m.warn.Push(fmt.Sprintf("insert discovered urls: %v", err))
	} else if inserted > 0 {
		m.logger.Debug().Int("inserted", inserted).Int64("url_id", target.ID).Msg("discovered urls")
	}

	if len(m.cfg.ArchiveSources) > 0 { // step 11
		m.crawlArchives(ctx, target)
	}

	if err := m.lock.SetFinishedIfOK(ctx, target.ID, leaseID, urllock.StatusCrawled); err != nil { // step 12
		m.warn.Push(fmt.Sprintf("set finished: %v", err))
	}

	if err := m.warn.Flush(ctx, m.db); err != nil {
		m.logger.Warn().Err(err).Msg("flush warnings")
	}

	return supervisor.TickResult{Outcome: supervisor.TickAdvanced, LastURLID: target.ID, Progress: -1}
}

func (m *Module) unlockOnly(ctx context.Context, urlID int64, leaseID string) {
	if err := m.lock.UnlockIfOK(ctx, urlID, leaseID); err != nil {
		m.warn.Push(fmt.Sprintf("unlock %d: %v", urlID, err))
	}

	if err := m.warn.Flush(ctx, m.db); err != nil {
		m.logger.Warn().Err(err).Msg("flush warnings")
	}
}

func (m *Module) fullURL(path string) string {
	if m.cfg.BaseURL == "" {
		return path
	}

	return m.cfg.BaseURL + path
}

func (m *Module) chunkSize() int {
	if m.cfg.ChunkSize > 0 {
		return m.cfg.ChunkSize
	}

	return DefaultChunkSize
}

// checkExpectedCount implements spec.md §4.7 step 9.
func (m *Module) checkExpectedCount(ctx context.Context, body []byte, got int) {
	if m.cfg.ExpectedCountQuery == nil {
		return
	}

	want, err := m.cfg.ExpectedCountQuery.First(ctx, body)
	if err != nil {
		m.warn.Push(fmt.Sprintf("expected-count query: %v", err))
		return
	}

	expected := m.cfg.ExpectedCount
	if want != "" {
		if n, perr := strconv.Atoi(want); perr == nil {
			expected = n
		}
	}

	switch {
	case got < expected:
		msg := fmt.Sprintf("extracted %d links, expected at least %d", got, expected)

		switch m.cfg.ExpectedCountPolicy {
		case CountPolicyFailIfSmaller:
			m.warn.PushError(msg)
		default:
			m.warn.Push(msg)
		}
	case got > expected:
		msg := fmt.Sprintf("extracted %d links, expected at most %d", got, expected)

		switch m.cfg.ExpectedCountPolicy {
		case CountPolicyFailIfLarger:
			m.warn.PushError(msg)
		default:
			m.warn.Push(msg)
		}
	}
}

// extractLinks implements spec.md §4.7 step 8: run every configured
// link-extraction query, resolve each hit through the URL Resolver, and
// dedup.
func (m *Module) extractLinks(ctx context.Context, body []byte) ([]store.URL, error) {
	seen := make(map[string]bool)

	var out []store.URL

	for _, q := range m.cfg.LinkQueries {
		hrefs, err := q.All(ctx, body)
		if err != nil {
			return out, fmt.Errorf("run link query: %w", err)
		}

		for _, href := range hrefs {
			resolved, rerr := m.resolve.Resolve(href)
			if rerr != nil {
				continue // not an error: out-of-scope/malformed hrefs are simply dropped
			}

			if seen[resolved] {
				continue
			}

			seen[resolved] = true

			u := store.URL{Path: resolved}
			if m.cfg.DuplicateHashCheck {
				u.Hash = store.HashPath(resolved)
			}

			out = append(out, u)
		}
	}

	return out, nil
}
