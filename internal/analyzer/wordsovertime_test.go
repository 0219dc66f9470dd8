package analyzer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWordsOverTimeCountsPerReducedDate(t *testing.T) {
	corpus := Corpus{
		Tokens: []string{"a", "", "b", "c"},
		DateMap: []MapEntry{
			{Start: 0, Length: 2, Value: "2020-01-01T00:00:00Z"},
			{Start: 2, Length: 2, Value: "2020-01-01T12:00:00Z"},
		},
		ArticleMap: []MapEntry{
			{Start: 0, Length: 2, Value: "art1"},
			{Start: 2, Length: 2, Value: "art2"},
		},
		SentenceMap: []MapEntry{
			{Start: 0, Length: 2},
			{Start: 2, Length: 2},
		},
	}

	rows, err := WordsOverTime(corpus, ResolutionDay)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "2020-01-01", rows[0].Date)
	require.Equal(t, 2, rows[0].Articles)
	require.Equal(t, 2, rows[0].Sentences)
	require.Equal(t, 3, rows[0].Tokens) // "a", "b", "c" — the empty token doesn't count
}

func TestWordsOverTimeSkipsAllEmptySentence(t *testing.T) {
	corpus := Corpus{
		Tokens:      []string{"", ""},
		DateMap:     []MapEntry{{Start: 0, Length: 2, Value: "2020-01-01T00:00:00Z"}},
		SentenceMap: []MapEntry{{Start: 0, Length: 2}},
	}

	rows, err := WordsOverTime(corpus, ResolutionDay)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, 0, rows[0].Sentences)
	require.Equal(t, 0, rows[0].Tokens)
}

func TestExtractArticleIDsSortedAndDeduplicated(t *testing.T) {
	corpus := Corpus{ArticleMap: []MapEntry{
		{Value: "b"}, {Value: "a"}, {Value: "b"},
	}}

	require.Equal(t, []string{"a", "b"}, ExtractArticleIDs(corpus))
}
