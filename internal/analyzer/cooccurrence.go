package analyzer

import (
	"context"
	"sort"
)

// CoOccurrenceRow is one per-article result of the Co-occurrence
// algorithm (spec.md §4.9): the keyword's occurrence count in the
// article plus one count per configured category.
type CoOccurrenceRow struct {
	ArticleID      string
	Date           string
	Occurrences    int
	CategoryCounts []int
}

// CoOccurrence implements spec.md §4.9's "Co-occurrence (per article)":
// for each article, for each keyword occurrence, for each category,
// count category occurrences within [occ-window, occ+window] — matches
// are restricted to the keyword occurrence's own article, since the
// algorithm is defined per article. Rows are sorted by article id.
func CoOccurrence(ctx context.Context, corpus Corpus, keyword Matcher, categories []Category, window int) ([]CoOccurrenceRow, error) {
	keywordPositions, err := matchPositions(ctx, corpus.Tokens, keyword)
	if err != nil {
		return nil, err
	}

	catPositions := make([][]int, len(categories))

	for i, c := range categories {
		catPositions[i], err = matchPositions(ctx, corpus.Tokens, c.Query)
		if err != nil {
			return nil, err
		}
	}

	rows := make([]CoOccurrenceRow, 0, len(corpus.ArticleMap))

	for _, a := range corpus.ArticleMap {
		kwInArticle := positionsWithin(keywordPositions, a.Start, a.End())

		counts := make([]int, len(categories))

		for _, k := range kwInArticle {
			lo, hi := k-window, k+window

			for ci, positions := range catPositions {
				for _, cp := range positions {
					if cp < a.Start || cp >= a.End() {
						continue
					}

					if cp >= lo && cp <= hi {
						counts[ci]++
					}
				}
			}
		}

		rows = append(rows, CoOccurrenceRow{
			ArticleID:      a.Value,
			Date:           valueAtPosition(corpus.DateMap, a.Start),
			Occurrences:    len(kwInArticle),
			CategoryCounts: counts,
		})
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].ArticleID < rows[j].ArticleID })

	return rows, nil
}

// positionsWithin returns the subset of a sorted positions slice lying
// in [start, end).
func positionsWithin(positions []int, start, end int) []int {
	var out []int

	for _, p := range positions {
		if p >= start && p < end {
			out = append(out, p)
		}
	}

	return out
}
