package analyzer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/crawlserv/crawlservpp-sub000/internal/store"
)

func TestBuildCorpusOneArticleOneSentence(t *testing.T) {
	dt := time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)
	rows := []store.TargetTextRow{
		{ArticleID: "a1", Datetime: &dt, Text: "hello world."},
	}

	c := BuildCorpus(rows)

	require.Equal(t, []string{"hello", "world."}, c.Tokens)
	require.Len(t, c.ArticleMap, 1)
	require.Equal(t, "a1", c.ArticleMap[0].Value)
	require.Equal(t, 0, c.ArticleMap[0].Start)
	require.Equal(t, 2, c.ArticleMap[0].Length)
	require.Len(t, c.DateMap, 1)
	require.Len(t, c.SentenceMap, 1)
}

func TestBuildCorpusMultipleSentencesAndArticles(t *testing.T) {
	dt1 := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	dt2 := time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)
	rows := []store.TargetTextRow{
		{ArticleID: "a1", Datetime: &dt1, Text: "one. two."},
		{ArticleID: "a2", Datetime: &dt2, Text: "three."},
	}

	c := BuildCorpus(rows)

	require.Equal(t, []string{"one.", "two.", "three."}, c.Tokens)
	require.Len(t, c.ArticleMap, 2)
	require.Equal(t, "a2", c.ArticleMap[1].Value)
	require.Equal(t, 2, c.ArticleMap[1].Start)
	require.Len(t, c.SentenceMap, 3)
}

func TestBuildCorpusEmptyTextContributesNoSpans(t *testing.T) {
	rows := []store.TargetTextRow{{ArticleID: "a1", Text: ""}}

	c := BuildCorpus(rows)

	require.Empty(t, c.Tokens)
	require.Empty(t, c.ArticleMap)
}

func TestValueAtPositionFindsCoveringEntry(t *testing.T) {
	m := []MapEntry{{Start: 0, Length: 2, Value: "a"}, {Start: 2, Length: 3, Value: "b"}}

	require.Equal(t, "a", valueAtPosition(m, 1))
	require.Equal(t, "b", valueAtPosition(m, 4))
	require.Equal(t, "", valueAtPosition(m, 5))
}
