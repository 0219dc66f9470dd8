package crawler

import (
	"time"

	"github.com/crawlserv/crawlservpp-sub000/internal/query"
	"github.com/crawlserv/crawlservpp-sub000/internal/urlresolve"
)

// CountPolicy governs how a link-count mismatch against an expected-
// count query is handled (spec.md §4.7 step 9).
type CountPolicy int

const (
	CountPolicyWarn CountPolicy = iota
	CountPolicyFailIfSmaller
	CountPolicyFailIfLarger
)

// ManualURL is one entry of the configured manual URL queue (spec.md
// §4.7.1 phase 2). Template may contain ${NAME} token placeholders and
// ${V} counter variables, expanded by expandManualURLs before the URL
// is locked.
type ManualURL struct {
	Template string
	ReCrawl  bool
}

// TokenSource is one named value fetched via an auxiliary HTTP request
// and a query against its body (spec.md §4.7.1 "Token substitution").
type TokenSource struct {
	Name         string
	SourceURL    string
	UsePost      bool
	Query        query.Query
	BoolResult   bool // true: Query.Bool; false: Query.First
	PagingVarDep bool // depends on the paging variable; the Crawler has no page loop and skips such tokens
}

// Counter expands one custom URL template into a sequence of integer
// substitutions (spec.md §4.7.1 "Counters").
type Counter struct {
	Variable  string
	Start     int
	End       int
	Step      int
	AliasName string
	AliasAdd  int
	Global    bool // true: multiplies every template; false: one template only
}

// ArchiveSource is one configured Memento timemap/memento pair (spec.md
// §4.7.2).
type ArchiveSource struct {
	Name               string
	TimemapURL         string
	MementoURLTemplate string
}

// Config holds everything one Crawler Module instance needs, resolved
// once at construction from a Thread Record's website/url-list/query
// configuration rows.
type Config struct {
	WebsiteNamespace string
	ListNamespace    string

	StartPageURL string
	ReCrawlStart bool

	ManualURLs []ManualURL
	Tokens     []TokenSource
	Counters   []Counter

	URLWhitelist, URLBlacklist                 []string // regex patterns
	ContentTypeWhitelist, ContentTypeBlacklist []string // regex patterns
	ContentWhitelist, ContentBlacklist         []query.Query

	TidyHTML bool

	LinkQueries         []query.Query
	ExpectedCountQuery  query.Query
	ExpectedCount       int
	ExpectedCountPolicy CountPolicy

	ChunkSize          int
	DuplicateHashCheck bool

	ArchiveSources          []ArchiveSource
	MaxMementoRedirectDepth int

	LockTTL time.Duration

	ResolverOpts urlresolve.Options
	BaseURL      string

	MaxSelectionAttempts int // bound on lock-contention retries during automatic selection
}

// DefaultMaxMementoRedirectDepth is the bound spec.md §9 Open Question 3
// settles on for nested archive "found capture at" redirects.
const DefaultMaxMementoRedirectDepth = 8

// DefaultChunkSize matches internal/store's own InsertURLsChunked default.
const DefaultChunkSize = 500

// DefaultMaxSelectionAttempts bounds how many automatic candidates one
// tick will try to lock before reporting idle, preventing a pathological
// run of contended rows from starving forward progress entirely.
const DefaultMaxSelectionAttempts = 20
