package analyzer

import (
	"context"
	"sort"
)

// CoOccurrenceTimeRow is one reduced-date group's result of the
// Co-occurrence-over-time algorithm (spec.md §4.9).
type CoOccurrenceTimeRow struct {
	Date           string
	Occurrences    int
	CategoryCounts []int
}

// CoOccurrenceOverTime implements spec.md §4.9's "Co-occurrence over
// time": the same keyword/category window counts as CoOccurrence, but
// summed across the whole corpus grouped by reduced date instead of
// per article. When fillGaps is true, reporting gaps between
// consecutive reduced dates are filled with zero rows for the
// resolution's successor dates.
func CoOccurrenceOverTime(
	ctx context.Context,
	corpus Corpus,
	keyword Matcher,
	categories []Category,
	window int,
	resolution DateResolution,
	fillGaps bool,
) ([]CoOccurrenceTimeRow, error) {
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

	groups := map[string]*CoOccurrenceTimeRow{}

	for _, k := range keywordPositions {
		// the date span holding k bounds the window, just as the article
		// bounds it in CoOccurrence
		var span MapEntry

		for _, e := range corpus.DateMap {
			if k >= e.Start && k < e.End() {
				span = e
				break
			}
		}

		raw := span.Value
		if raw == "" {
			continue
		}

		reduced, err := reduceDate(raw, resolution)
		if err != nil {
			return nil, err
		}

		g, ok := groups[reduced]
		if !ok {
			g = &CoOccurrenceTimeRow{Date: reduced, CategoryCounts: make([]int, len(categories))}
			groups[reduced] = g
		}

		g.Occurrences++

		lo, hi := max(k-window, span.Start), min(k+window, span.End()-1)

		for ci, positions := range catPositions {
			for _, cp := range positions {
				if cp >= lo && cp <= hi {
					g.CategoryCounts[ci]++
				}
			}
		}
	}

	rows := make([]CoOccurrenceTimeRow, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, *g)
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].Date < rows[j].Date })

	if fillGaps {
		rows = fillDateGaps(rows, resolution, len(categories))
	}

	return rows, nil
}
