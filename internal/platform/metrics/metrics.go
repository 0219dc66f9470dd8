// Package metrics declares the Prometheus series cmd/crawlservd exposes
// on /metrics (internal/platform/observability), grounded on the
// teacher's internal/research/metrics.go promauto idiom: one
// package-level var block of promauto constructors, no metrics
// registry plumbed through by hand.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TicksTotal counts every Supervisor.runLoop Module.Tick call, by
	// module kind and outcome (spec.md §5 "Tick" glossary entry).
	TicksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crawlserv_ticks_total",
		Help: "Total number of Module.Tick calls, by module and outcome.",
	}, []string{"module", "outcome"})

	// TickDuration times one Module.Tick call, by module kind.
	TickDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "crawlserv_tick_duration_seconds",
		Help:    "Duration of one Module.Tick call, by module.",
		Buckets: prometheus.DefBuckets,
	}, []string{"module"})

	// RunningThreads tracks live Thread Supervisors, by module kind.
	RunningThreads = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "crawlserv_running_threads",
		Help: "Number of live Thread Supervisors, by module.",
	}, []string{"module"})

	// IdleThreads tracks Thread Supervisors currently reporting
	// TickIdle, by module kind.
	IdleThreads = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "crawlserv_idle_threads",
		Help: "Number of Thread Supervisors currently idle (no work available), by module.",
	}, []string{"module"})

	// HTTPFetchesTotal counts Network Client fetches, by outcome
	// (netclient.Outcome's string form).
	HTTPFetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crawlserv_http_fetches_total",
		Help: "Total HTTP fetches issued by the Network Client, by outcome.",
	}, []string{"outcome"})

	// ExtractionRowsTotal counts rows committed to Extractor target
	// tables, by table name.
	ExtractionRowsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crawlserv_extraction_rows_total",
		Help: "Total rows committed to Extractor target tables.",
	}, []string{"table"})

	// AnalyzerCorpusTokens reports the token count of the most recently
	// built Analyzer corpus, by source table.
	AnalyzerCorpusTokens = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "crawlserv_analyzer_corpus_tokens",
		Help: "Token count of the most recently built Analyzer corpus, by source table.",
	}, []string{"table"})
)
