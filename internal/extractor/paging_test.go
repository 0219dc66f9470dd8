package extractor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPagingValuesSubstitutesVariableAndAlias(t *testing.T) {
	m := &Module{cfg: Config{PagingVariable: "page", PagingAliasName: "offset", PagingAliasAdd: -1}}

	out := m.pagingValues(map[string]string{"section": "news"}, 3)

	require.Equal(t, "news", out["section"])
	require.Equal(t, "3", out["page"])
	require.Equal(t, "2", out["offset"])
}

func TestPagingValuesNoPagingVariableLeavesMapUnchanged(t *testing.T) {
	m := &Module{cfg: Config{}}

	out := m.pagingValues(map[string]string{"a": "b"}, 5)

	require.Equal(t, map[string]string{"a": "b"}, out)
}

func TestShouldContinuePrefersIsNextQuery(t *testing.T) {
	m := &Module{cfg: Config{PagingIsNextQuery: fakeBoolQuery{value: true}}}

	cont, next, err := m.shouldContinue(context.Background(), nil, 2)
	require.NoError(t, err)
	require.True(t, cont)
	require.Equal(t, 3, next)
}

func TestShouldContinueFallsBackToNextQuery(t *testing.T) {
	m := &Module{cfg: Config{PagingNextQuery: fakeFirstQuery{value: "7"}}}

	cont, next, err := m.shouldContinue(context.Background(), nil, 2)
	require.NoError(t, err)
	require.True(t, cont)
	require.Equal(t, 7, next)
}

func TestShouldContinueEmptyNextStops(t *testing.T) {
	m := &Module{cfg: Config{PagingNextQuery: fakeFirstQuery{value: ""}}}

	cont, _, err := m.shouldContinue(context.Background(), nil, 2)
	require.NoError(t, err)
	require.False(t, cont)
}

func TestShouldContinueNoQueriesStopsAfterOnePage(t *testing.T) {
	m := &Module{cfg: Config{}}

	cont, _, err := m.shouldContinue(context.Background(), nil, 1)
	require.NoError(t, err)
	require.False(t, cont)
}
