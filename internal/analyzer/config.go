package analyzer

import (
	"github.com/rs/zerolog"

	"github.com/crawlserv/crawlservpp-sub000/internal/store"
	"github.com/crawlserv/crawlservpp-sub000/internal/warnlog"
)

// AlgorithmKind selects which of spec.md §4.9's four illustrative
// algorithms a Module instance runs.
type AlgorithmKind int

const (
	AlgoCoOccurrence AlgorithmKind = iota
	AlgoCoOccurrenceOverTime
	AlgoWordsOverTime
	AlgoExtractIDs
)

// Config holds everything one Analyzer Module instance needs, resolved
// once at construction from a Thread Record's configuration rows —
// mirroring internal/extractor.Config's shape.
type Config struct {
	WebsiteNamespace string
	ListNamespace    string

	// SourceTable is the already-populated target table (typically an
	// Extractor's result table) this Analyzer reads its corpus from.
	SourceTable       string
	SourceIDColumn    string // e.g. "extracted_id"
	SourceDateColumn  string // e.g. "extracted_datetime"
	SourceTextColumns []string

	Kind AlgorithmKind

	// Co-occurrence / Co-occurrence-over-time configuration. Keyword and
	// CategoryQueries hold query.Query values in practice (compiled by
	// internal/query), narrowed to Matcher since these algorithms
	// only ever call Bool.
	Keyword         Matcher
	CategoryLabels  []string
	CategoryQueries []Matcher
	Window          int
	Resolution      DateResolution
	FillGaps        bool

	ResultName string
}

// Deps bundles the collaborators Module needs beyond Config.
type Deps struct {
	DB       *store.DB
	Warnings *warnlog.Queue
	Logger   *zerolog.Logger
}
