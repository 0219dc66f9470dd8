package analyzer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// literalMatcher is a Matcher stub that matches tokens equal to
// one of its values.
type literalMatcher struct{ values map[string]bool }

func (l literalMatcher) Bool(ctx context.Context, input []byte) (bool, error) {
	return l.values[string(input)], nil
}

func newLiteralMatcher(values ...string) literalMatcher {
	m := literalMatcher{values: map[string]bool{}}
	for _, v := range values {
		m.values[v] = true
	}

	return m
}

// TestCoOccurrenceWindowExample reproduces spec.md §8's worked example:
// tokens k,a,b,c,k,a with one category matching "a" and window=2 — the
// keyword "k" at t0 sees "a" at t1 (within [-2,2]), and "k" at t4 sees
// "a" at t5 (within [2,6]); each keyword occurrence contributes one
// category match, for a total category count of 2.
func TestCoOccurrenceWindowExample(t *testing.T) {
	corpus := Corpus{
		Tokens:     []string{"k", "a", "b", "c", "k", "a"},
		ArticleMap: []MapEntry{{Start: 0, Length: 6, Value: "art1"}},
		DateMap:    []MapEntry{{Start: 0, Length: 6, Value: "2020-01-01"}},
	}

	categories := []Category{{Label: "catA", Query: newLiteralMatcher("a")}}

	rows, err := CoOccurrence(context.Background(), corpus, newLiteralMatcher("k"), categories, 2)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "art1", rows[0].ArticleID)
	require.Equal(t, 2, rows[0].Occurrences)
	require.Equal(t, []int{2}, rows[0].CategoryCounts)
}

func TestCoOccurrenceSortsByArticleID(t *testing.T) {
	corpus := Corpus{
		Tokens: []string{"k", "k"},
		ArticleMap: []MapEntry{
			{Start: 1, Length: 1, Value: "b"},
			{Start: 0, Length: 1, Value: "a"},
		},
	}

	rows, err := CoOccurrence(context.Background(), corpus, newLiteralMatcher("k"), nil, 1)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "a", rows[0].ArticleID)
	require.Equal(t, "b", rows[1].ArticleID)
}

func TestCoOccurrenceOverTimeGroupsAndSums(t *testing.T) {
	corpus := Corpus{
		Tokens: []string{"k", "a", "k", "a"},
		DateMap: []MapEntry{
			{Start: 0, Length: 2, Value: "2020-01-01T00:00:00Z"},
			{Start: 2, Length: 2, Value: "2020-01-01T12:00:00Z"},
		},
	}

	categories := []Category{{Label: "catA", Query: newLiteralMatcher("a")}}

	rows, err := CoOccurrenceOverTime(context.Background(), corpus, newLiteralMatcher("k"), categories, 1, ResolutionDay, false)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "2020-01-01", rows[0].Date)
	require.Equal(t, 2, rows[0].Occurrences)
	require.Equal(t, []int{2}, rows[0].CategoryCounts)
}

func TestCoOccurrenceOverTimeFillsGaps(t *testing.T) {
	corpus := Corpus{
		Tokens: []string{"k", "k"},
		DateMap: []MapEntry{
			{Start: 0, Length: 1, Value: "2020-01-01T00:00:00Z"},
			{Start: 1, Length: 1, Value: "2020-01-03T00:00:00Z"},
		},
	}

	rows, err := CoOccurrenceOverTime(context.Background(), corpus, newLiteralMatcher("k"), nil, 0, ResolutionDay, true)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, "2020-01-01", rows[0].Date)
	require.Equal(t, "2020-01-02", rows[1].Date)
	require.Equal(t, 0, rows[1].Occurrences)
	require.Equal(t, "2020-01-03", rows[2].Date)
}
