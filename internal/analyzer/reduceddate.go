package analyzer

import (
	"fmt"
	"time"

	"github.com/araddon/dateparse"
)

// DateResolution names the granularity "Co-occurrence over time" and
// "Words-over-time" group reduced dates at (spec.md §4.9).
type DateResolution int

const (
	ResolutionYear DateResolution = iota
	ResolutionMonth
	ResolutionDay
)

const (
	yearLayout  = "2006"
	monthLayout = "2006-01"
	dayLayout   = "2006-01-02"
)

// maxGapFill bounds successor-date stepping so a malformed date can
// never spin fillDateGaps forever.
const maxGapFill = 100000

// reduceDate truncates raw (any format dateparse.ParseAny accepts,
// including the RFC3339 strings Corpus.DateMap stores) to res's
// granularity.
func reduceDate(raw string, res DateResolution) (string, error) {
	t, err := dateparse.ParseAny(raw)
	if err != nil {
		return "", fmt.Errorf("reduce date %q: %w", raw, err)
	}

	return formatReduced(t, res), nil
}

func formatReduced(t time.Time, res DateResolution) string {
	switch res {
	case ResolutionYear:
		return t.Format(yearLayout)
	case ResolutionMonth:
		return t.Format(monthLayout)
	default:
		return t.Format(dayLayout)
	}
}

// successorDate computes the next reduced date after reduced at res's
// resolution — e.g. "2020-01" → "2020-02", "2020-12" → "2021-01".
func successorDate(reduced string, res DateResolution) (string, error) {
	switch res {
	case ResolutionYear:
		t, err := time.Parse(yearLayout, reduced)
		if err != nil {
			return "", err
		}

		return formatReduced(t.AddDate(1, 0, 0), res), nil
	case ResolutionMonth:
		t, err := time.Parse(monthLayout, reduced)
		if err != nil {
			return "", err
		}

		return formatReduced(t.AddDate(0, 1, 0), res), nil
	default:
		t, err := time.Parse(dayLayout, reduced)
		if err != nil {
			return "", err
		}

		return formatReduced(t.AddDate(0, 0, 1), res), nil
	}
}

// fillDateGaps inserts zero rows for every reduced date strictly
// between consecutive rows that the resolution's successor sequence
// would otherwise skip (spec.md §4.9: "Optionally fill reporting gaps
// between consecutive reduced dates using zero rows for the
// resolution's successor dates").
func fillDateGaps(rows []CoOccurrenceTimeRow, res DateResolution, numCategories int) []CoOccurrenceTimeRow {
	if len(rows) < 2 {
		return rows
	}

	out := make([]CoOccurrenceTimeRow, 0, len(rows))

	for i, r := range rows {
		out = append(out, r)

		if i == len(rows)-1 {
			break
		}

		next := rows[i+1].Date

		cursor, err := successorDate(r.Date, res)
		for steps := 0; err == nil && cursor != next && steps < maxGapFill; steps++ {
			out = append(out, CoOccurrenceTimeRow{Date: cursor, CategoryCounts: make([]int, numCategories)})

			cursor, err = successorDate(cursor, res)
		}
	}

	return out
}
