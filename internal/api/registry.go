// Package api is the command channel spec.md §6 describes: one JSON
// command per HTTP request, one JSON reply, translating requests into
// calls on internal/supervisor.Supervisor and the CRUD surface of
// internal/store.DB. Grounded on the teacher's bare http.ServeMux idiom
// (internal/observability.Server has no web framework either).
package api

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/crawlserv/crawlservpp-sub000/internal/analyzer"
	"github.com/crawlserv/crawlservpp-sub000/internal/crawler"
	"github.com/crawlserv/crawlservpp-sub000/internal/extractor"
	"github.com/crawlserv/crawlservpp-sub000/internal/moduleconfig"
	"github.com/crawlserv/crawlservpp-sub000/internal/netclient"
	"github.com/crawlserv/crawlservpp-sub000/internal/parsecache"
	"github.com/crawlserv/crawlservpp-sub000/internal/store"
	"github.com/crawlserv/crawlservpp-sub000/internal/supervisor"
	"github.com/crawlserv/crawlservpp-sub000/internal/urllock"
	"github.com/crawlserv/crawlservpp-sub000/internal/urlresolve"
	"github.com/crawlserv/crawlservpp-sub000/internal/warnlog"
)

// NetworkOptions configures every worker's netclient.Client, shared
// across threads since spec.md §4.6 describes it as per-worker
// configuration drawn from process-level settings, not per-website ones.
type NetworkOptions struct {
	UserAgent  string
	Timeout    time.Duration
	MinRPS     float64
	ErrorDelay time.Duration
}

// Registry tracks every live Thread Supervisor by its Thread Record id,
// the in-process analogue of the teacher's single long-lived bot
// process — here, one control process hosting many worker threads
// (spec.md §2).
type Registry struct {
	db     *store.DB
	logger *zerolog.Logger
	net    NetworkOptions

	mu      sync.Mutex
	threads map[int64]*runningThread
}

type runningThread struct {
	record     store.ThreadRecord
	supervisor *supervisor.Supervisor
}

// NewRegistry builds an empty Registry bound to db.
func NewRegistry(db *store.DB, logger *zerolog.Logger, net NetworkOptions) *Registry {
	return &Registry{db: db, logger: logger, net: net, threads: make(map[int64]*runningThread)}
}

// Resume reconstructs and starts a Supervisor for every thread record
// the store reports as runnable, called once at cmd/crawlservd startup
// so in-flight work survives a restart (spec.md §3 "Thread Records
// survive server restart so work can resume").
func (r *Registry) Resume(ctx context.Context) error {
	records, err := r.db.ListRunnableThreadRecords(ctx)
	if err != nil {
		return fmt.Errorf("list runnable thread records: %w", err)
	}

	for _, rec := range records {
		if _, err := r.start(ctx, rec); err != nil {
			r.logger.Error().Err(err).Int64("thread_id", rec.ID).Msg("resume thread")
		}
	}

	return nil
}

// StartNew creates a Thread Record and starts its Supervisor.
func (r *Registry) StartNew(ctx context.Context, module string, websiteID, urlListID, configID int64) (store.ThreadRecord, error) {
	rec, err := r.db.CreateThreadRecord(ctx, store.ThreadRecord{
		Module: module, WebsiteID: websiteID, URLListID: urlListID, ConfigID: configID, Status: store.ThreadCreated,
	})
	if err != nil {
		return store.ThreadRecord{}, fmt.Errorf("create thread record: %w", err)
	}

	return r.start(ctx, rec)
}

// start builds the configured module and wraps it in a Supervisor,
// keyed by rec.ID, then calls Start.
func (r *Registry) start(ctx context.Context, rec store.ThreadRecord) (store.ThreadRecord, error) {
	website, err := r.db.GetWebsite(ctx, rec.WebsiteID)
	if err != nil {
		return store.ThreadRecord{}, fmt.Errorf("load website: %w", err)
	}

	list, err := r.db.GetURLList(ctx, rec.URLListID)
	if err != nil {
		return store.ThreadRecord{}, fmt.Errorf("load url list: %w", err)
	}

	cfgRow, err := r.db.GetConfiguration(ctx, rec.ConfigID)
	if err != nil {
		return store.ThreadRecord{}, fmt.Errorf("load configuration: %w", err)
	}

	warn := warnlog.New(rec.ID)

	client, err := netclient.New(netclient.Options{
		UserAgent: r.net.UserAgent, Timeout: r.net.Timeout, MinRPS: r.net.MinRPS, ErrorDelay: r.net.ErrorDelay,
	})
	if err != nil {
		return store.ThreadRecord{}, fmt.Errorf("build network client: %w", err)
	}

	lock := urllock.New(r.db, website.Namespace, list.Namespace)

	var mod supervisor.Module

	switch rec.Module {
	case "crawler":
		mod, err = r.buildCrawler(ctx, cfgRow, website, list, client, lock, warn, rec.LastURLID)
	case "extractor":
		mod, err = r.buildExtractor(ctx, cfgRow, website, list, client, lock, warn, rec.LastURLID)
	case "analyzer":
		mod, err = r.buildAnalyzer(ctx, cfgRow, website, list, warn)
	default:
		err = fmt.Errorf("unknown module %q", rec.Module)
	}

	if err != nil {
		return store.ThreadRecord{}, err
	}

	sup := supervisor.New(r.db, r.logger, rec, mod)

	r.mu.Lock()
	r.threads[rec.ID] = &runningThread{record: rec, supervisor: sup}
	r.mu.Unlock()

	if err := sup.Start(ctx); err != nil {
		return store.ThreadRecord{}, fmt.Errorf("start thread: %w", err)
	}

	return rec, nil
}

func (r *Registry) buildCrawler(ctx context.Context, cfgRow store.Configuration, website store.Website, list store.URLList, client *netclient.Client, lock *urllock.Coordinator, warn *warnlog.Queue, lastURLID int64) (supervisor.Module, error) {
	cfg, err := moduleconfig.LoadCrawlerConfig(ctx, r.db, website.Namespace, list.Namespace, cfgRow.JSON)
	if err != nil {
		return nil, err
	}

	resolver, err := urlresolve.New(cfg.BaseURL, cfg.ResolverOpts)
	if err != nil {
		return nil, fmt.Errorf("build url resolver: %w", err)
	}

	archiveClient, err := netclient.New(netclient.Options{
		UserAgent: r.net.UserAgent, Timeout: r.net.Timeout, MinRPS: r.net.MinRPS, ErrorDelay: r.net.ErrorDelay,
	})
	if err != nil {
		return nil, fmt.Errorf("build archive network client: %w", err)
	}

	mod, err := crawler.New(cfg, crawler.Deps{
		DB: r.db, Lock: lock, Client: client, Archive: archiveClient, Resolver: resolver,
		Cache: parsecache.New(), Warnings: warn, Logger: r.logger,
		WebsiteNamespace: website.Namespace, ListNamespace: list.Namespace,
	}, lastURLID)
	if err != nil {
		return nil, fmt.Errorf("build crawler module: %w", err)
	}

	return mod, nil
}

func (r *Registry) buildExtractor(ctx context.Context, cfgRow store.Configuration, website store.Website, list store.URLList, client *netclient.Client, lock *urllock.Coordinator, warn *warnlog.Queue, lastURLID int64) (supervisor.Module, error) {
	cfg, err := moduleconfig.LoadExtractorConfig(ctx, r.db, website.Namespace, list.Namespace, cfgRow.JSON)
	if err != nil {
		return nil, err
	}

	mod := extractor.New(cfg, extractor.Deps{
		DB: r.db, Lock: lock, Client: client, Cache: parsecache.New(), Warnings: warn, Logger: r.logger,
		WebsiteNamespace: website.Namespace, ListNamespace: list.Namespace,
	})
	mod.Resume(lastURLID)

	return mod, nil
}

func (r *Registry) buildAnalyzer(ctx context.Context, cfgRow store.Configuration, website store.Website, list store.URLList, warn *warnlog.Queue) (supervisor.Module, error) {
	cfg, err := moduleconfig.LoadAnalyzerConfig(ctx, r.db, website.Namespace, list.Namespace, cfgRow.JSON)
	if err != nil {
		return nil, err
	}

	return analyzer.New(cfg, analyzer.Deps{DB: r.db, Warnings: warn, Logger: r.logger}), nil
}

func (r *Registry) get(id int64) (*runningThread, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.threads[id]

	return t, ok
}

// Pause, Unpause, Stop and WarpTo forward to the named thread's
// Supervisor, returning an error if no such thread is running.
func (r *Registry) Pause(ctx context.Context, id int64) error {
	t, ok := r.get(id)
	if !ok {
		return fmt.Errorf("thread %d is not running", id)
	}

	return t.supervisor.Pause(ctx)
}

func (r *Registry) Unpause(ctx context.Context, id int64) error {
	t, ok := r.get(id)
	if !ok {
		return fmt.Errorf("thread %d is not running", id)
	}

	return t.supervisor.Unpause(ctx)
}

func (r *Registry) Stop(ctx context.Context, id int64) error {
	t, ok := r.get(id)
	if !ok {
		return fmt.Errorf("thread %d is not running", id)
	}

	return t.supervisor.Stop(ctx)
}

func (r *Registry) WarpTo(id, targetURLID int64) error {
	t, ok := r.get(id)
	if !ok {
		return fmt.Errorf("thread %d is not running", id)
	}

	return t.supervisor.WarpTo(targetURLID)
}
