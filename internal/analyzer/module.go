// Package analyzer implements the Analyzer worker (spec.md §4.9): a
// one-shot, read-only pass over an already-extracted corpus that emits
// one of four illustrative aggregate algorithms into a module-specific
// target table. Grounded on internal/extractor's Module shape, adapted
// from per-URL ticking to the single build-corpus-then-save tick this
// module's algorithms perform (spec.md §4.9: "ticks once per corpus
// plus once to save").
package analyzer

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/crawlserv/crawlservpp-sub000/internal/platform/metrics"
	"github.com/crawlserv/crawlservpp-sub000/internal/store"
	"github.com/crawlserv/crawlservpp-sub000/internal/supervisor"
	"github.com/crawlserv/crawlservpp-sub000/internal/warnlog"
)

// Module is one Analyzer worker bound to a single Thread Record's
// website/url-list/configuration.
type Module struct {
	cfg Config

	db     *store.DB
	warn   *warnlog.Queue
	logger *zerolog.Logger

	categories []Category

	done bool // the algorithm has already run; further ticks are idle
}

// New builds a Module. Category configuration is validated immediately
// so a bad configuration surfaces as warnings at construction.
func New(cfg Config, deps Deps) *Module {
	logger := deps.Logger
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	return &Module{
		cfg:        cfg,
		db:         deps.DB,
		warn:       deps.Warnings,
		logger:     logger,
		categories: ValidateCategories(cfg.CategoryLabels, cfg.CategoryQueries, deps.Warnings),
	}
}

// Pausable implements supervisor.Module. The original ExtractIds,
// WordsOverTime and Assoc constructors all call disallowPausing() while
// building the corpus; since this rewrite's one Tick call does the
// entire build-and-save pass in one step, there is never a safe
// mid-algorithm pause point.
func (m *Module) Pausable() bool { return false }

// Warpable implements supervisor.Module. An Analyzer has no per-URL
// cursor to seek — it consumes a whole source table in one pass.
func (m *Module) Warpable() bool { return false }

// Tick implements supervisor.Module: reads the source table into a
// Corpus, runs the configured algorithm, and writes its aggregate rows.
// The whole pass is one Tick call; every later call is idle.
func (m *Module) Tick(ctx context.Context) supervisor.TickResult {
	if m.done {
		return supervisor.TickResult{Outcome: supervisor.TickIdle, Progress: -1}
	}

	rows, err := m.db.ReadTargetTextRows(ctx, m.cfg.SourceTable, m.cfg.SourceIDColumn, m.cfg.SourceDateColumn, m.cfg.SourceTextColumns)
	if err != nil {
		m.done = true

		return supervisor.TickResult{Outcome: supervisor.TickFatal, Message: "read corpus", Err: err}
	}

	corpus := BuildCorpus(rows)

	metrics.AnalyzerCorpusTokens.WithLabelValues(m.cfg.SourceTable).Set(float64(len(corpus.Tokens)))

	targetTable, fields, err := m.ensureTargetTable(ctx)
	if err != nil {
		m.done = true

		return supervisor.TickResult{Outcome: supervisor.TickFatal, Message: "ensure target table", Err: err}
	}

	writeErr := m.runAlgorithm(ctx, corpus, targetTable, fields)

	m.done = true

	if flushErr := m.warn.Flush(ctx, m.db); flushErr != nil {
		m.logger.Warn().Err(flushErr).Msg("flush warnings")
	}

	if writeErr != nil {
		return supervisor.TickResult{Outcome: supervisor.TickFatal, Message: "write aggregates", Err: writeErr}
	}

	return supervisor.TickResult{Outcome: supervisor.TickAdvanced, Progress: 1, Message: "analysis complete"}
}

func (m *Module) runAlgorithm(ctx context.Context, corpus Corpus, table string, fields []store.FieldSpec) error {
	switch m.cfg.Kind {
	case AlgoCoOccurrence:
		return m.runCoOccurrence(ctx, corpus, table, fields)
	case AlgoCoOccurrenceOverTime:
		return m.runCoOccurrenceOverTime(ctx, corpus, table, fields)
	case AlgoWordsOverTime:
		return m.runWordsOverTime(ctx, corpus, table, fields)
	case AlgoExtractIDs:
		return m.runExtractIDs(ctx, corpus, table, fields)
	default:
		return fmt.Errorf("unknown algorithm kind %d", m.cfg.Kind)
	}
}

func (m *Module) runCoOccurrence(ctx context.Context, corpus Corpus, table string, fields []store.FieldSpec) error {
	rows, err := CoOccurrence(ctx, corpus, m.cfg.Keyword, m.categories, m.cfg.Window)
	if err != nil {
		return err
	}

	for _, r := range rows {
		values := make([]any, 0, len(fields))
		values = append(values, r.ArticleID, r.Date, int64(r.Occurrences))

		for _, c := range r.CategoryCounts {
			values = append(values, int64(c))
		}

		if err := m.db.InsertAnalysisRow(ctx, table, fields, values); err != nil {
			return err
		}
	}

	return nil
}

func (m *Module) runCoOccurrenceOverTime(ctx context.Context, corpus Corpus, table string, fields []store.FieldSpec) error {
	rows, err := CoOccurrenceOverTime(ctx, corpus, m.cfg.Keyword, m.categories, m.cfg.Window, m.cfg.Resolution, m.cfg.FillGaps)
	if err != nil {
		return err
	}

	for _, r := range rows {
		values := make([]any, 0, len(fields))
		values = append(values, r.Date, int64(r.Occurrences))

		for _, c := range r.CategoryCounts {
			values = append(values, int64(c))
		}

		if err := m.db.InsertAnalysisRow(ctx, table, fields, values); err != nil {
			return err
		}
	}

	return nil
}

func (m *Module) runWordsOverTime(ctx context.Context, corpus Corpus, table string, fields []store.FieldSpec) error {
	rows, err := WordsOverTime(corpus, m.cfg.Resolution)
	if err != nil {
		return err
	}

	for _, r := range rows {
		values := []any{r.Date, int64(r.Articles), int64(r.Sentences), int64(r.Tokens)}

		if err := m.db.InsertAnalysisRow(ctx, table, fields, values); err != nil {
			return err
		}
	}

	return nil
}

func (m *Module) runExtractIDs(ctx context.Context, corpus Corpus, table string, fields []store.FieldSpec) error {
	for _, id := range ExtractArticleIDs(corpus) {
		if err := m.db.InsertAnalysisRow(ctx, table, fields, []any{id}); err != nil {
			return err
		}
	}

	return nil
}

// ensureTargetTable declares the field schema for the configured
// algorithm (spec.md §4.9 "each algorithm declares a target schema")
// and creates the table on first use.
func (m *Module) ensureTargetTable(ctx context.Context) (string, []store.FieldSpec, error) {
	fields := m.targetFields()

	table, err := m.db.EnsureAnalysisTable(ctx, m.cfg.WebsiteNamespace, m.cfg.ListNamespace, m.cfg.ResultName, fields)
	if err != nil {
		return "", nil, err
	}

	return table, fields, nil
}

func (m *Module) targetFields() []store.FieldSpec {
	switch m.cfg.Kind {
	case AlgoCoOccurrence:
		fields := []store.FieldSpec{
			{Name: "article_id", Type: "TEXT"},
			{Name: "date", Type: "TEXT"},
			{Name: "occurrences", Type: "BIGINT"},
		}

		return append(fields, categoryFields(m.categories)...)
	case AlgoCoOccurrenceOverTime:
		fields := []store.FieldSpec{
			{Name: "date", Type: "TEXT"},
			{Name: "occurrences", Type: "BIGINT"},
		}

		return append(fields, categoryFields(m.categories)...)
	case AlgoWordsOverTime:
		return []store.FieldSpec{
			{Name: "date", Type: "TEXT"},
			{Name: "articles", Type: "BIGINT"},
			{Name: "sentences", Type: "BIGINT"},
			{Name: "tokens", Type: "BIGINT"},
		}
	default: // AlgoExtractIDs
		return []store.FieldSpec{{Name: "article_id", Type: "TEXT"}}
	}
}

func categoryFields(categories []Category) []store.FieldSpec {
	fields := make([]store.FieldSpec, len(categories))
	for i, c := range categories {
		fields[i] = store.FieldSpec{Name: "cat_" + c.Label, Type: "BIGINT"}
	}

	return fields
}
