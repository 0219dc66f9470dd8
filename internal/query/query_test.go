package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/crawlserv/crawlservpp-sub000/internal/store"
)

func TestRegexQuery(t *testing.T) {
	q, err := Compile(store.QueryRecord{Type: store.QueryTypeRegex, Text: `\d+`})
	require.NoError(t, err)

	ctx := context.Background()

	ok, err := q.Bool(ctx, []byte("order 42 shipped"))
	require.NoError(t, err)
	require.True(t, ok)

	first, err := q.First(ctx, []byte("a1 b22 c333"))
	require.NoError(t, err)
	require.Equal(t, "1", first)

	all, err := q.All(ctx, []byte("a1 b22 c333"))
	require.NoError(t, err)
	require.Equal(t, []string{"1", "22", "333"}, all)
}

func TestRegexQueryNoMatch(t *testing.T) {
	q, err := Compile(store.QueryRecord{Type: store.QueryTypeRegex, Text: `zzz`})
	require.NoError(t, err)

	ctx := context.Background()

	ok, err := q.Bool(ctx, []byte("nothing here"))
	require.NoError(t, err)
	require.False(t, ok)

	first, err := q.First(ctx, []byte("nothing here"))
	require.NoError(t, err)
	require.Equal(t, "", first)

	all, err := q.All(ctx, []byte("nothing here"))
	require.NoError(t, err)
	require.Empty(t, all)
}

func TestRegexQueryBackreference(t *testing.T) {
	// RE2 cannot express backreferences; regexp2 must.
	q, err := Compile(store.QueryRecord{Type: store.QueryTypeRegex, Text: `(\w)\1`})
	require.NoError(t, err)

	ok, err := q.Bool(context.Background(), []byte("hello"))
	require.NoError(t, err)
	require.True(t, ok, "expected backreference match on double letter")
}

func TestJSONPointerWildcard(t *testing.T) {
	q, err := Compile(store.QueryRecord{Type: store.QueryTypeJSONPointer, Text: "/items/$$/name"})
	require.NoError(t, err)

	doc := []byte(`{"items":[{"name":"a"},{"name":"b"},{"name":"c"}]}`)

	all, err := q.All(context.Background(), doc)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "c"}, all)
}

func TestJSONPointerWildcardStopsAtFirstMissing(t *testing.T) {
	q, err := Compile(store.QueryRecord{Type: store.QueryTypeJSONPointer, Text: "/items/$$/name"})
	require.NoError(t, err)

	doc := []byte(`{"items":[{"name":"a"}]}`)

	all, err := q.All(context.Background(), doc)
	require.NoError(t, err)
	require.Equal(t, []string{"a"}, all)
}

func TestJSONPointerSingle(t *testing.T) {
	q, err := Compile(store.QueryRecord{Type: store.QueryTypeJSONPointer, Text: "/title"})
	require.NoError(t, err)

	first, err := q.First(context.Background(), []byte(`{"title":"hello"}`))
	require.NoError(t, err)
	require.Equal(t, "hello", first)
}
