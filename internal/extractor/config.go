package extractor

import (
	"time"

	"github.com/crawlserv/crawlservpp-sub000/internal/query"
	"github.com/crawlserv/crawlservpp-sub000/internal/store"
)

// VariableSource names where a configured variable's value comes from
// (spec.md §4.8 step 3). There is no separate Parser module in this
// rewrite to populate previously-parsed columns (see DESIGN.md), so
// SourceColumn degrades to querying the crawled content blob exactly
// like SourceContent — kept as a distinct constant so a future Parser
// module can be wired in without changing Variable's shape.
type VariableSource int

const (
	SourceColumn VariableSource = iota
	SourceContent
	SourceURL
)

// Variable is one configured extraction variable, optionally aliased to
// a sibling (spec.md §4.8 step 3, "Variable aliases").
type Variable struct {
	Name      string
	Source    VariableSource
	Query     query.Query // nil for SourceURL, where the URL text is the value
	AliasName string
	AliasAdd  int
}

// ResultShape is the shape one extracted field value takes in its
// target table column (spec.md §4.8 "Result shapes").
type ResultShape int

const (
	ResultSingle ResultShape = iota
	ResultBool
)

// Field is one configured extraction target column.
type Field struct {
	Name        string
	Query       query.Query
	Shape       ResultShape
	Tidy        bool
	WarnIfEmpty bool
}

// TokenSource mirrors the Crawler's token configuration shape (spec.md
// §4.8 step 4): an auxiliary HTTP request plus a query, substituted
// into every subsequent URL/cookie template. PagingVarDep defers
// resolution to the per-page loop (step 6a) instead of the once-per-
// tick pass (step 4).
type TokenSource struct {
	Name         string
	SourceURL    string
	UsePost      bool
	Query        query.Query
	BoolResult   bool
	PagingVarDep bool
}

// Config holds everything one Extractor Module instance needs, resolved
// once at construction from a Thread Record's configuration rows.
type Config struct {
	WebsiteNamespace string
	ListNamespace    string

	Variables []Variable
	Tokens    []TokenSource

	PagingFirstURL string // source URL template for page 1
	PagingURL      string // source URL template for page >1
	CookieTemplate string

	PagingVariable    string // e.g. "page"; substituted as ${page}
	PagingAliasName   string
	PagingAliasAdd    int
	PagingFirstValue  int
	PagingIsNextQuery query.Query
	PagingNextQuery   query.Query
	PagingNumberQuery query.Query
	MaxPages          int // safety bound against a pathological continuation predicate

	IDQueries       []query.Query
	DatetimeQueries []query.Query
	DatetimeFormat  string // Go time layout; falls back to "2006-01-02 15:04:05"

	Fields []Field

	ResultName   string // target table's result-set name
	TargetFields []store.FieldSpec

	LockTTL time.Duration

	MaxSelectionAttempts int
}

// DefaultMaxPages bounds the page loop when a continuation predicate
// never terminates on its own.
const DefaultMaxPages = 1000

// DefaultMaxSelectionAttempts mirrors internal/crawler's bound on
// lock-contention retries during automatic selection.
const DefaultMaxSelectionAttempts = 20

// reservedFields are the columns every extraction result row carries
// beyond the module's configured Fields (spec.md §4.8 step 6d: id,
// datetime, then one column per configured field).
var reservedFields = []store.FieldSpec{
	{Name: "extracted_id", Type: "TEXT"},
	{Name: "extracted_datetime", Type: "TIMESTAMPTZ"},
}
