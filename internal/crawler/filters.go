package crawler

import (
	"context"
	"fmt"

	"github.com/dlclark/regexp2"

	"github.com/crawlserv/crawlservpp-sub000/internal/query"
)

// compiledFilters holds the regex programs and query filters configured
// for one Crawler Module, compiled once at construction rather than per
// tick (spec.md §4.7 step 5-6: URL/content-type/content filters).
type compiledFilters struct {
	urlWhitelist, urlBlacklist                 []*regexp2.Regexp
	contentTypeWhitelist, contentTypeBlacklist []*regexp2.Regexp
	contentWhitelist, contentBlacklist         []query.Query
}

func newCompiledFilters(cfg Config) (*compiledFilters, error) {
	f := &compiledFilters{
		contentWhitelist: cfg.ContentWhitelist,
		contentBlacklist: cfg.ContentBlacklist,
	}

	var err error

	if f.urlWhitelist, err = compileAll(cfg.URLWhitelist); err != nil {
		return nil, fmt.Errorf("url whitelist: %w", err)
	}

	if f.urlBlacklist, err = compileAll(cfg.URLBlacklist); err != nil {
		return nil, fmt.Errorf("url blacklist: %w", err)
	}

	if f.contentTypeWhitelist, err = compileAll(cfg.ContentTypeWhitelist); err != nil {
		return nil, fmt.Errorf("content-type whitelist: %w", err)
	}

	if f.contentTypeBlacklist, err = compileAll(cfg.ContentTypeBlacklist); err != nil {
		return nil, fmt.Errorf("content-type blacklist: %w", err)
	}

	return f, nil
}

func compileAll(patterns []string) ([]*regexp2.Regexp, error) {
	out := make([]*regexp2.Regexp, 0, len(patterns))

	for _, p := range patterns {
		re, err := regexp2.Compile(p, regexp2.None)
		if err != nil {
			return nil, fmt.Errorf("compile %q: %w", p, err)
		}

		out = append(out, re)
	}

	return out, nil
}

// matchesAny reports whether s matches any of the given programs.
func matchesAny(programs []*regexp2.Regexp, s string) bool {
	for _, re := range programs {
		if ok, err := re.MatchString(s); err == nil && ok {
			return true
		}
	}

	return false
}

// passesWhiteBlack applies whitelist-wins-over-blacklist semantics: if a
// whitelist is configured, s must match it; else, if a blacklist is
// configured, s must not match it; else s passes unconditionally.
func passesWhiteBlack(whitelist, blacklist []*regexp2.Regexp, s string) bool {
	if len(whitelist) > 0 {
		return matchesAny(whitelist, s)
	}

	if len(blacklist) > 0 {
		return !matchesAny(blacklist, s)
	}

	return true
}

func (f *compiledFilters) urlAllowed(rawURL string) bool {
	return passesWhiteBlack(f.urlWhitelist, f.urlBlacklist, rawURL)
}

func (f *compiledFilters) contentTypeAllowed(contentType string) bool {
	return passesWhiteBlack(f.contentTypeWhitelist, f.contentTypeBlacklist, contentType)
}

// contentAllowed applies the configured content filters (spec.md §4.7
// step 6): if any whitelist query is configured, at least one must match
// the body; else if any blacklist query is configured, none may match.
func (f *compiledFilters) contentAllowed(ctx context.Context, body []byte) (bool, error) {
	if len(f.contentWhitelist) > 0 {
		for _, q := range f.contentWhitelist {
			ok, err := q.Bool(ctx, body)
			if err != nil {
				return false, fmt.Errorf("content whitelist query: %w", err)
			}

			if ok {
				return true, nil
			}
		}

		return false, nil
	}

	for _, q := range f.contentBlacklist {
		ok, err := q.Bool(ctx, body)
		if err != nil {
			return false, fmt.Errorf("content blacklist query: %w", err)
		}

		if ok {
			return false, nil
		}
	}

	return true, nil
}
