package crawler

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/crawlserv/crawlservpp-sub000/internal/netclient"
	"github.com/crawlserv/crawlservpp-sub000/internal/store"
)

// mementoRedirectPrefix is the literal Memento convention a capture's
// body starts with when it is itself a pointer to a different snapshot
// timestamp (spec.md §4.7.2 step 3).
const mementoRedirectPrefix = "found capture at "

// crawlArchives implements spec.md §4.7.2 for every configured archive
// source. A failure here never invalidates the live crawl of liveURL —
// callers always still call set_finished_if_ok for it regardless of
// what happens here (spec.md §4.7.2 "Retries are per-memento").
func (m *Module) crawlArchives(ctx context.Context, liveURL store.URL) {
	for _, src := range m.cfg.ArchiveSources {
		if err := m.crawlOneArchiveSource(ctx, liveURL, src); err != nil {
			m.warn.Push(fmt.Sprintf("archive source %q: %v", src.Name, err))
		}
	}
}

func (m *Module) crawlOneArchiveSource(ctx context.Context, liveURL store.URL, src ArchiveSource) error {
	timemapURL := src.TimemapURL
	visited := make(map[string]bool)

	for timemapURL != "" && !visited[timemapURL] {
		visited[timemapURL] = true

		resp, outcome, err := m.archive.Get(ctx, timemapURL, false) // step 1
		if err != nil || outcome != netclient.OutcomeOK {
			return fmt.Errorf("fetch timemap: %w", err)
		}

		entries := parseLinkFormat(resp.Body)

		nextTimemap := ""

		for _, e := range entries {
			// rel values are often compound ("first memento", "last
			// timemap"), so membership is tested by substring, not
			// equality.
			switch {
			case strings.Contains(e.Rel, "memento"):
				m.crawlOneMemento(ctx, liveURL, src, e) // steps 2-4
			case strings.Contains(e.Rel, "timemap"):
				nextTimemap = e.URI // step 5: pagination
			}
		}

		timemapURL = nextTimemap
	}

	return nil
}

func (m *Module) crawlOneMemento(ctx context.Context, liveURL store.URL, src ArchiveSource, e linkFormatEntry) {
	capturedAt, err := dateparse.ParseAny(e.Datetime)
	if err != nil {
		m.warn.Push(fmt.Sprintf("parse memento datetime %q: %v", e.Datetime, err))
		return
	}

	mementoURL := e.URI
	if src.MementoURLTemplate != "" {
		mementoURL = substituteTokens(src.MementoURLTemplate, map[string]string{
			"TIMESTAMP": compactTimestamp(capturedAt),
			"URI":       e.URI,
		})
	}

	body, finalTime, err := m.fetchMementoFollowingRedirects(ctx, mementoURL, capturedAt, 0)
	if err != nil {
		m.warn.Push(fmt.Sprintf("fetch memento for %s: %v", liveURL.Path, err))
		return
	}

	if _, err := m.db.InsertContent(ctx, m.websiteNamespace, m.listNamespace, store.ContentBlob{
		URLID: liveURL.ID, Body: body, Source: src.Name, ArchivedAt: &finalTime,
	}); err != nil {
		m.warn.Push(fmt.Sprintf("insert archived content: %v", err))
		return
	}

	links := extractArchiveLinks(body, src.TimemapURL)

	if inserted, err := m.db.InsertURLsChunked(ctx, m.websiteNamespace, m.listNamespace, links, m.chunkSize()); err != nil {
		m.warn.Push(fmt.Sprintf("insert archived links: %v", err))
	} else if inserted > 0 {
		m.logger.Debug().Int("inserted", inserted).Str("archive", src.Name).Msg("discovered archived urls")
	}
}

// fetchMementoFollowingRedirects implements spec.md §4.7.2 step 3: a
// capture whose body is literally "found capture at <timestamp>" is a
// pointer to a different snapshot, followed up to
// Config.MaxMementoRedirectDepth times before giving up.
func (m *Module) fetchMementoFollowingRedirects(ctx context.Context, mementoURL string, at time.Time, depth int) ([]byte, time.Time, error) {
	maxDepth := m.cfg.MaxMementoRedirectDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxMementoRedirectDepth
	}

	if depth > maxDepth {
		return nil, at, fmt.Errorf("exceeded max memento redirect depth (%d)", maxDepth)
	}

	resp, outcome, err := m.archive.Get(ctx, mementoURL, false)
	if err != nil || outcome != netclient.OutcomeOK {
		return nil, at, fmt.Errorf("fetch memento: %w", err)
	}

	if target, ok := strings.CutPrefix(string(resp.Body), mementoRedirectPrefix); ok {
		target = strings.TrimSpace(target)

		redirectAt, perr := dateparse.ParseAny(target)
		if perr != nil {
			return nil, at, fmt.Errorf("parse redirect timestamp %q: %w", target, perr)
		}

		rewritten := strings.Replace(mementoURL, compactTimestamp(at), compactTimestamp(redirectAt), 1)

		return m.fetchMementoFollowingRedirects(ctx, rewritten, redirectAt, depth+1)
	}

	return resp.Body, at, nil
}

func compactTimestamp(t time.Time) string {
	return t.UTC().Format("20060102150405")
}

// extractArchiveLinks implements spec.md §4.7.2 step 4's relaxed rule:
// only absolute http(s) URLs found behind the archive's own path prefix
// are kept, unescaped once.
func extractArchiveLinks(body []byte, archivePrefix string) []store.URL {
	var out []store.URL

	seen := make(map[string]bool)

	for _, raw := range extractAbsoluteHTTPURLs(body) {
		if archivePrefix != "" && !strings.Contains(raw, archivePrefix) {
			continue
		}

		path := archiveRelativePath(raw, archivePrefix)
		if path == "" || seen[path] {
			continue
		}

		seen[path] = true
		out = append(out, store.URL{Path: path})
	}

	return out
}

// archiveRelativePath strips everything up to and including the
// archive's own path prefix, leaving the embedded original URL.
func archiveRelativePath(raw, archivePrefix string) string {
	if archivePrefix == "" {
		return raw
	}

	idx := strings.Index(raw, archivePrefix)
	if idx < 0 {
		return ""
	}

	return raw[idx+len(archivePrefix):]
}

func extractAbsoluteHTTPURLs(body []byte) []string {
	const quote = `"'`

	var out []string

	s := string(body)

	for _, scheme := range []string{"http://", "https://"} {
		start := 0

		for {
			i := strings.Index(s[start:], scheme)
			if i < 0 {
				break
			}

			from := start + i
			end := from

			for end < len(s) && !strings.ContainsRune(quote+" <>\t\n", rune(s[end])) {
				end++
			}

			link := s[from:end]
			if unescaped, err := url.PathUnescape(link); err == nil {
				link = unescaped
			}

			out = append(out, link)
			start = end
		}
	}

	return out
}
