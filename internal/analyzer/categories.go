package analyzer

import (
	"fmt"

	"github.com/crawlserv/crawlservpp-sub000/internal/warnlog"
)

// Category pairs one co-occurrence category label with its compiled
// query (spec.md §4.9 "Category configuration is validated"). Query
// only needs query.Query's Bool method here, since co-occurrence
// matching is a per-token boolean test (see matchPositions); any
// query.Query value satisfies Matcher.
type Category struct {
	Label string
	Query Matcher
}

// ValidateCategories enforces spec.md §4.9's validation rule: mismatched
// label/query array lengths are truncated with a warning, and any
// remaining entry with an empty label or a nil query is removed with a
// warning. This resolves the related Open Question in favor of the
// spec's own stated default (truncate, don't refuse to start) — see
// DESIGN.md.
func ValidateCategories(labels []string, queries []Matcher, warn *warnlog.Queue) []Category {
	n := len(labels)
	if len(queries) < n {
		n = len(queries)
	}

	if len(labels) != len(queries) {
		warn.Push(fmt.Sprintf(
			"category label/query length mismatch (%d labels, %d queries): truncated to %d",
			len(labels), len(queries), n,
		))
	}

	categories := make([]Category, 0, n)

	for i := 0; i < n; i++ {
		if labels[i] == "" || queries[i] == nil {
			warn.Push(fmt.Sprintf("category %d has an empty label or query: removed", i))
			continue
		}

		categories = append(categories, Category{Label: labels[i], Query: queries[i]})
	}

	return categories
}
