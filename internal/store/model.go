// Package store provides PostgreSQL-backed persistence for websites, URL
// lists, URLs, URL locks, content blobs, queries, configurations, thread
// records and per-module target tables.
//
// It wraps a pgxpool.Pool and exposes hand-written, context-aware query
// methods rather than a code-generated query layer: the retrieval pack
// this rewrite is grounded on references a sqlc-generated package whose
// generated source is not itself checked in anywhere in the corpus, so
// there is nothing to adapt. Writing the queries directly against
// pgxpool.Pool keeps the same driver and pool idioms the teacher uses
// (pgxpool.Config, pgtype conversions, goose migrations) without
// depending on generated code this rewrite cannot produce.
package store

import "time"

// Website is a crawled site: a namespace plus an optional domain. An
// empty Domain marks a cross-domain website, where every URL carries its
// own host instead of sharing one.
type Website struct {
	ID        int64
	Namespace string
	Name      string
	Domain    string
	CreatedAt time.Time
}

// CrossDomain reports whether the website has no fixed domain.
func (w Website) CrossDomain() bool {
	return w.Domain == ""
}

// URLList is a named collection of URLs belonging to one website.
type URLList struct {
	ID          int64
	WebsiteID   int64
	Namespace   string
	Name        string
	CaseSensitive bool
	CreatedAt   time.Time
}

// URL is one crawlable address inside a URL list.
type URL struct {
	ID         int64
	ListID     int64
	Path       string
	Hash       string
	Crawled    bool
	Parsed     bool
	Extracted  bool
	Analyzed   bool
	CreatedAt  time.Time
}

// URLLock is an at-most-one-live-lock lease on a URL row.
type URLLock struct {
	URLID     int64
	LeaseID   string
	ExpiresAt time.Time
}

// Expired reports whether the lock's lease has run out as of now.
func (l URLLock) Expired(now time.Time) bool {
	return now.After(l.ExpiresAt)
}

// ContentBlob is one fetched response body for a URL. A URL may have at
// most one non-archived blob (the crawled content) and any number of
// archived blobs distinguished by (Source, ArchivedAt).
type ContentBlob struct {
	ID           int64
	URLID        int64
	ResponseCode int
	ContentType  string
	Body         []byte
	FetchedAt    time.Time
	ArchivedAt   *time.Time
	Source       string
}

// IsArchive reports whether this blob is a Memento snapshot rather than
// the live crawl.
func (c ContentBlob) IsArchive() bool {
	return c.ArchivedAt != nil
}

// QueryType enumerates the four supported query languages.
type QueryType string

const (
	QueryTypeRegex       QueryType = "regex"
	QueryTypeXPath       QueryType = "xpath"
	QueryTypeJSONPointer QueryType = "jsonpointer"
	QueryTypeJSONPath    QueryType = "jsonpath"
)

// QueryRecord is a compiled-on-demand query definition, immutable once
// stored. ResultBool/Single/Multi/Sub mirror the independent result
// shapes a query can be evaluated for — see internal/query.
type QueryRecord struct {
	ID           int64
	WebsiteID    int64 // 0 means global (usable by any website)
	Type         QueryType
	Text         string
	ResultBool   bool
	ResultSingle bool
	ResultMulti  bool
	ResultSub    bool
	TextOnly     bool // XPath-only
}

// Configuration is an opaque, module-typed JSON document.
type Configuration struct {
	ID      int64
	Module  string
	Name    string
	Version int
	JSON    []byte
}

// ThreadStatus is the lifecycle state of a Thread Record.
type ThreadStatus string

const (
	ThreadCreated  ThreadStatus = "created"
	ThreadRunning  ThreadStatus = "running"
	ThreadPaused   ThreadStatus = "paused"
	ThreadStopping ThreadStatus = "stopping"
	ThreadFinished ThreadStatus = "finished"
)

// ThreadRecord persists one worker's identity and resume point across
// server restarts.
type ThreadRecord struct {
	ID            int64
	Module        string // "crawler" | "extractor" | "analyzer"
	WebsiteID     int64
	URLListID     int64
	ConfigID      int64
	Status        ThreadStatus
	StatusMessage string
	Paused        bool
	LastURLID     int64
	Progress      float64
}
