// Package extractor implements the Extractor worker (spec.md §4.8): per
// tick it selects the next crawled-but-unextracted URL, resolves
// variables and tokens, walks a paging loop fetching and extracting
// id/datetime/fields from each page, and commits the resulting rows to
// the module's target table — grounded on the teacher's
// internal/process/pipeline multi-stage per-item shape, generalized
// from its enrichment-specific stages to this module's variable/token/
// paging pipeline.
package extractor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/crawlserv/crawlservpp-sub000/internal/netclient"
	"github.com/crawlserv/crawlservpp-sub000/internal/platform/metrics"
	"github.com/crawlserv/crawlservpp-sub000/internal/parsecache"
	"github.com/crawlserv/crawlservpp-sub000/internal/store"
	"github.com/crawlserv/crawlservpp-sub000/internal/supervisor"
	"github.com/crawlserv/crawlservpp-sub000/internal/urllock"
	"github.com/crawlserv/crawlservpp-sub000/internal/warnlog"
)

// Module is one Extractor worker bound to a single Thread Record's
// website/url-list/configuration.
type Module struct {
	cfg Config

	db     *store.DB
	lock   *urllock.Coordinator
	client *netclient.Client
	cache  *parsecache.Cache
	warn   *warnlog.Queue
	logger *zerolog.Logger

	websiteNamespace string
	listNamespace    string

	afterID     int64
	pending     *pendingURL
	targetTable string
}

// Deps bundles the collaborators Module needs beyond Config.
type Deps struct {
	DB               *store.DB
	Lock             *urllock.Coordinator
	Client           *netclient.Client
	Cache            *parsecache.Cache
	Warnings         *warnlog.Queue
	Logger           *zerolog.Logger
	WebsiteNamespace string
	ListNamespace    string
}

// New builds a Module starting from the beginning of the URL list;
// Resume applies the Thread Record's persisted cursor (lastURLID).
func New(cfg Config, deps Deps) *Module {
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
		cache:            deps.Cache,
		warn:             deps.Warnings,
		logger:           logger,
		websiteNamespace: deps.WebsiteNamespace,
		listNamespace:    deps.ListNamespace,
	}
}

// Resume sets the automatic-selection cursor from the Thread Record's
// persisted LastURLID at startup.
func (m *Module) Resume(lastURLID int64) { m.afterID = lastURLID }

// Pausable implements supervisor.Module: an Extractor may always pause
// between URLs.
func (m *Module) Pausable() bool { return true }

// Warpable implements supervisor.Module: an Extractor can seek its
// automatic-selection cursor.
func (m *Module) Warpable() bool { return true }

// Warp implements supervisor.Warper: drop whatever URL is currently
// held and reset the automatic cursor to targetURLID.
func (m *Module) Warp(ctx context.Context, targetURLID int64) error {
	if m.pending != nil {
		if err := m.lock.UnlockIfOK(ctx, m.pending.url.ID, m.pending.leaseID); err != nil {
			m.warn.Push(fmt.Sprintf("unlock %d on warp: %v", m.pending.url.ID, err))
		}

		m.pending = nil
	}

	m.afterID = targetURLID

	return nil
}

// Tick implements supervisor.Module, running spec.md §4.8's per-URL
// algorithm once.
func (m *Module) Tick(ctx context.Context) supervisor.TickResult {
	m.cache.Reset() // step 1

	target, leaseID, idle, err := m.selectURL(ctx)
	if err != nil {
		return supervisor.TickResult{Outcome: supervisor.TickRetry, Message: "selection error", Err: err}
	}

	if idle {
		return supervisor.TickResult{Outcome: supervisor.TickIdle, Progress: -1}
	}

	content, err := m.db.LatestContent(ctx, m.websiteNamespace, m.listNamespace, target.ID) // step 2
	if errors.Is(err, store.ErrNotFound) {
		m.unlockOnly(ctx, target.ID, leaseID)

		return supervisor.TickResult{Outcome: supervisor.TickSkip, LastURLID: target.ID, Message: "no crawled content"}
	}
	if err != nil {
		m.warn.PushError(fmt.Sprintf("load content: %v", err))
		m.unlockOnly(ctx, target.ID, leaseID)

		return supervisor.TickResult{Outcome: supervisor.TickSkip, LastURLID: target.ID, Message: "content lookup failed", Err: err}
	}

	values, err := m.resolveVariables(ctx, content.Body, target.Path) // step 3
	if err != nil {
		m.warn.Push(fmt.Sprintf("resolve variables: %v", err))
	}

	if err := m.resolveGlobalTokens(ctx, values); err != nil { // step 4
		m.warn.Push(fmt.Sprintf("resolve tokens: %v", err))
	}

	if err := m.ensureTargetTable(ctx); err != nil {
		m.warn.PushError(fmt.Sprintf("ensure target table: %v", err))
		m.unlockOnly(ctx, target.ID, leaseID)

		return supervisor.TickResult{Outcome: supervisor.TickRetry, Message: "target table unavailable", Err: err}
	}

	rows, retry := m.runPageLoop(ctx, target, leaseID, values) // steps 5-6
	if retry {
		return supervisor.TickResult{Outcome: supervisor.TickRetry, Message: "page fetch failed"}
	}

	if err := m.commit(ctx, target.ID, rows); err != nil { // step 7
		m.warn.PushError(fmt.Sprintf("commit extraction rows: %v", err))
	}

	if err := m.lock.SetFinishedIfOK(ctx, target.ID, leaseID, urllock.StatusExtracted); err != nil {
		m.warn.Push(fmt.Sprintf("set finished: %v", err))
	}

	if err := m.warn.Flush(ctx, m.db); err != nil {
		m.logger.Warn().Err(err).Msg("flush warnings")
	}

	return supervisor.TickResult{Outcome: supervisor.TickAdvanced, LastURLID: target.ID, Progress: -1}
}

type extractedRow struct {
	id       string
	datetime *time.Time
	fields   []any
}

// runPageLoop implements spec.md §4.8 steps 5-6. A transport failure
// classified as retry-after-reset abandons the tick entirely (nothing
// is committed) and asks the supervisor to retry; the Module remembers
// the URL's lease so the next tick's selection resumes it.
func (m *Module) runPageLoop(ctx context.Context, target store.URL, leaseID string, values map[string]string) ([]extractedRow, bool) {
	var rows []extractedRow

	page := m.cfg.PagingFirstValue

	maxPages := m.cfg.MaxPages
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}

	for i := 0; i < maxPages; i++ {
		pageValues := m.pagingValues(values, page) // step 6b (paging var/alias)

		if err := m.resolvePageTokens(ctx, pageValues); err != nil { // step 6a
			m.warn.Push(fmt.Sprintf("resolve page tokens: %v", err))
		}

		template := m.cfg.PagingURL
		if i == 0 {
			template = m.cfg.PagingFirstURL
		}

		sourceURL := substituteTokens(template, pageValues) // step 5
		if sourceURL == "" {
			break
		}

		cookie := substituteTokens(m.cfg.CookieTemplate, pageValues)

		resp, outcome, err := m.client.GetWithCookie(ctx, sourceURL, false, cookie) // step 6c (fetch)
		if outcome == netclient.OutcomeRetryAfterReset {
			m.pending = &pendingURL{url: target, leaseID: leaseID}

			if rerr := m.client.Reset(); rerr != nil {
				m.warn.Push(fmt.Sprintf("reset client: %v", rerr))
			}

			return nil, true
		}
		if outcome == netclient.OutcomeSkip {
			m.warn.Push(fmt.Sprintf("fetch page %d: %v", page, err))
			break
		}

		row := m.extractRow(ctx, resp.Body)
		rows = append(rows, row) // step 6d

		cont, next, cerr := m.shouldContinue(ctx, resp.Body, page) // step 6e
		if cerr != nil {
			m.warn.Push(fmt.Sprintf("paging continuation: %v", cerr))
			break
		}

		if !cont {
			break
		}

		page = next
	}

	return rows, false
}

func (m *Module) extractRow(ctx context.Context, body []byte) extractedRow {
	id, err := m.extractID(ctx, body)
	if err != nil {
		m.warn.Push(fmt.Sprintf("extract id: %v", err))
	}

	dt, err := m.extractDatetime(ctx, body)
	if err != nil {
		m.warn.Push(fmt.Sprintf("extract datetime: %v", err))
	}

	var dtPtr *time.Time
	if !dt.IsZero() {
		dtPtr = &dt
	}

	fields := make([]any, len(m.cfg.Fields))

	for i, f := range m.cfg.Fields {
		v, ferr := m.extractField(ctx, f, body)
		if ferr != nil {
			m.warn.Push(fmt.Sprintf("extract field: %v", ferr))
		}

		fields[i] = v
	}

	return extractedRow{id: id, datetime: dtPtr, fields: fields}
}

// commit implements spec.md §4.8 step 7.
func (m *Module) commit(ctx context.Context, urlID int64, rows []extractedRow) error {
	if len(rows) == 0 {
		return nil
	}

	specs := m.allFieldSpecs()

	for _, r := range rows {
		values := make([]any, 0, len(specs))
		values = append(values, r.id, r.datetime)
		values = append(values, r.fields...)

		if err := m.db.InsertTargetRow(ctx, m.targetTable, specs, urlID, values); err != nil {
			return err
		}

		metrics.ExtractionRowsTotal.WithLabelValues(m.targetTable).Inc()
	}

	return m.db.TouchTargetTable(ctx, m.targetTable, urlID, time.Now())
}

func (m *Module) allFieldSpecs() []store.FieldSpec {
	specs := make([]store.FieldSpec, 0, len(reservedFields)+len(m.cfg.TargetFields))
	specs = append(specs, reservedFields...)
	specs = append(specs, m.cfg.TargetFields...)

	return specs
}

func (m *Module) ensureTargetTable(ctx context.Context) error {
	if m.targetTable != "" {
		return nil
	}

	table, err := m.db.EnsureTargetTable(ctx, m.websiteNamespace, m.listNamespace, m.cfg.ResultName, m.allFieldSpecs())
	if err != nil {
		return err
	}

	m.targetTable = table

	return nil
}

func (m *Module) unlockOnly(ctx context.Context, urlID int64, leaseID string) {
	if err := m.lock.UnlockIfOK(ctx, urlID, leaseID); err != nil {
		m.warn.Push(fmt.Sprintf("unlock %d: %v", urlID, err))
	}

	if err := m.warn.Flush(ctx, m.db); err != nil {
		m.logger.Warn().Err(err).Msg("flush warnings")
	}
}
