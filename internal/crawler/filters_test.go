package crawler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/crawlserv/crawlservpp-sub000/internal/query"
	"github.com/crawlserv/crawlservpp-sub000/internal/store"
)

func mustQuery(t *testing.T, pattern string) query.Query {
	t.Helper()

	q, err := query.Compile(store.QueryRecord{Type: store.QueryTypeRegex, Text: pattern})
	require.NoError(t, err)

	return q
}

func TestURLFilterWhitelistWins(t *testing.T) {
	f, err := newCompiledFilters(Config{
		URLWhitelist: []string{`^/news/`},
		URLBlacklist: []string{`^/news/`}, // ignored while a whitelist is set
	})
	require.NoError(t, err)

	require.True(t, f.urlAllowed("/news/1"))
	require.False(t, f.urlAllowed("/sports/1"))
}

func TestURLFilterBlacklistOnly(t *testing.T) {
	f, err := newCompiledFilters(Config{URLBlacklist: []string{`\.pdf$`}})
	require.NoError(t, err)

	require.True(t, f.urlAllowed("/a.html"))
	require.False(t, f.urlAllowed("/a.pdf"))
}

func TestURLFilterNoPatternsAllowsEverything(t *testing.T) {
	f, err := newCompiledFilters(Config{})
	require.NoError(t, err)

	require.True(t, f.urlAllowed("/anything"))
}

func TestContentTypeFilter(t *testing.T) {
	f, err := newCompiledFilters(Config{ContentTypeWhitelist: []string{`^text/html`}})
	require.NoError(t, err)

	require.True(t, f.contentTypeAllowed("text/html; charset=utf-8"))
	require.False(t, f.contentTypeAllowed("application/pdf"))
}

func TestContentFilterWhitelist(t *testing.T) {
	f := &compiledFilters{contentWhitelist: []query.Query{mustQuery(t, `breaking`)}}

	ok, err := f.contentAllowed(context.Background(), []byte("breaking news today"))
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = f.contentAllowed(context.Background(), []byte("nothing relevant"))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestContentFilterBlacklist(t *testing.T) {
	f := &compiledFilters{contentBlacklist: []query.Query{mustQuery(t, `spam`)}}

	ok, err := f.contentAllowed(context.Background(), []byte("clean content"))
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = f.contentAllowed(context.Background(), []byte("this is spam"))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestContentFilterNoQueriesAllowsEverything(t *testing.T) {
	f := &compiledFilters{}

	ok, err := f.contentAllowed(context.Background(), []byte("anything"))
	require.NoError(t, err)
	require.True(t, ok)
}

func TestCompiledFiltersRejectsInvalidPattern(t *testing.T) {
	_, err := newCompiledFilters(Config{URLWhitelist: []string{"(unterminated"}})
	require.Error(t, err)
}
