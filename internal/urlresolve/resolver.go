// Package urlresolve turns a raw href into a canonical sub-URL (same-
// domain mode) or absolute URL (cross-domain mode), implementing the
// ten-step algorithm of spec.md §4.5 on top of stdlib net/url — there is
// no ecosystem RFC 3986 implementation exercised anywhere in the
// retrieval pack (see DESIGN.md), so normalization beyond what net/url
// gives for free is done by hand, the way every retrieved crawler in
// the pack handles URL bookkeeping directly.
package urlresolve

import (
	"fmt"
	"net/url"
	"strings"
)

// Mode selects same-domain vs. cross-domain resolution (spec.md §4.5
// step 6).
type Mode int

const (
	// SameDomain rejects hosts other than the configured domain and
	// returns only path + query.
	SameDomain Mode = iota
	// CrossDomain returns host + path + query for any host.
	CrossDomain
)

// Options configures one Resolver.
type Options struct {
	Mode      Mode
	Domain    string // required in SameDomain mode
	Whitelist []string
	Blacklist []string
	MaxLength int
	// FileExtensionLog receives a warning string when href looks like a
	// file-with-extension (step 10); nil disables the check.
	FileExtensionLog func(href string)
}

// Resolver resolves hrefs relative to a fixed base URL.
type Resolver struct {
	base *url.URL
	opts Options
}

// New parses baseURL once and returns a Resolver for it.
func New(baseURL string, opts Options) (*Resolver, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	return &Resolver{base: base, opts: opts}, nil
}

// ErrTooLong is returned when the resolved URL exceeds opts.MaxLength.
var ErrTooLong = fmt.Errorf("urlresolve: resolved url exceeds maximum length")

// ErrWrongDomain is returned in SameDomain mode when the resolved host
// differs from opts.Domain.
var ErrWrongDomain = fmt.Errorf("urlresolve: resolved host does not match website domain")

// Resolve implements spec.md §4.5 steps 1-10.
func (r *Resolver) Resolve(href string) (string, error) {
	href = stripFragment(href)     // step 1
	href = strings.TrimSpace(href) // step 2
	href = escapeReserved(href)    // step 3

	parsed, err := url.Parse(href) // step 4 (parse)
	if err != nil {
		return "", fmt.Errorf("parse href: %w", err)
	}

	resolved := r.base.ResolveReference(parsed) // step 4 (resolve)

	normalize(resolved) // step 5

	out, err := r.buildOutput(resolved) // steps 6-7
	if err != nil {
		return "", err
	}

	out = strings.ReplaceAll(out, "&amp;", "&") // step 8

	if r.opts.MaxLength > 0 && len(out) > r.opts.MaxLength { // step 9
		return "", ErrTooLong
	}

	if r.opts.FileExtensionLog != nil && looksLikeFile(resolved.Path) { // step 10
		r.opts.FileExtensionLog(href)
	}

	return out, nil
}

func stripFragment(href string) string {
	if i := strings.IndexByte(href, '#'); i >= 0 {
		return href[:i]
	}

	return href
}

// escapeReserved percent-escapes spaces and other characters unsafe in
// a URL while leaving the sub-delimiters and "%" spec.md §4.5 step 3
// names verbatim, since blind url.Parse would otherwise choke on raw
// spaces in a malformed href.
func escapeReserved(href string) string {
	var b strings.Builder

	for _, r := range href {
		switch {
		case strings.ContainsRune(";/?:@=&#%", r):
			b.WriteRune(r)
		case r > 32 && r < 127:
			b.WriteRune(r)
		default:
			b.WriteString(url.PathEscape(string(r)))
		}
	}

	return b.String()
}

func normalize(u *url.URL) {
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Path = cleanDotSegments(u.Path)
}

func cleanDotSegments(path string) string {
	if path == "" {
		return path
	}

	segments := strings.Split(path, "/")

	var out []string

	for _, seg := range segments {
		switch seg {
		case ".":
			continue
		case "..":
			if len(out) > 0 {
				out = out[:len(out)-1]
			}
		default:
			out = append(out, seg)
		}
	}

	cleaned := strings.Join(out, "/")
	if !strings.HasPrefix(cleaned, "/") && strings.HasPrefix(path, "/") {
		cleaned = "/" + cleaned
	}

	return cleaned
}

func (r *Resolver) buildOutput(resolved *url.URL) (string, error) {
	query := r.filterQuery(resolved.RawQuery)

	switch r.opts.Mode {
	case SameDomain:
		if !strings.EqualFold(resolved.Host, r.opts.Domain) {
			return "", ErrWrongDomain
		}

		out := resolved.Path
		if out == "" {
			out = "/"
		}

		if query != "" {
			out += "?" + query
		}

		return out, nil
	default: // CrossDomain
		out := resolved.Host + resolved.Path
		if query != "" {
			out += "?" + query
		}

		return out, nil
	}
}

// filterQuery applies step 7: whitelist wins if configured, else
// blacklist, preserving original parameter order.
func (r *Resolver) filterQuery(rawQuery string) string {
	if rawQuery == "" {
		return ""
	}

	pairs := strings.Split(rawQuery, "&")

	allow := toSet(r.opts.Whitelist)
	deny := toSet(r.opts.Blacklist)

	var kept []string

	for _, pair := range pairs {
		key := pair
		if i := strings.IndexByte(pair, '='); i >= 0 {
			key = pair[:i]
		}

		switch {
		case len(allow) > 0:
			if allow[key] {
				kept = append(kept, pair)
			}
		case len(deny) > 0:
			if !deny[key] {
				kept = append(kept, pair)
			}
		default:
			kept = append(kept, pair)
		}
	}

	return strings.Join(kept, "&")
}

func toSet(keys []string) map[string]bool {
	if len(keys) == 0 {
		return nil
	}

	set := make(map[string]bool, len(keys))
	for _, k := range keys {
		set[k] = true
	}

	return set
}

var fileExtensions = []string{
	".pdf", ".jpg", ".jpeg", ".png", ".gif", ".zip", ".gz", ".tar",
	".doc", ".docx", ".xls", ".xlsx", ".mp3", ".mp4", ".avi", ".css", ".js",
}

func looksLikeFile(path string) bool {
	lower := strings.ToLower(path)

	for _, ext := range fileExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}

	return false
}
