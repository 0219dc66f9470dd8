package crawler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/crawlserv/crawlservpp-sub000/internal/query"
	"github.com/crawlserv/crawlservpp-sub000/internal/store"
	"github.com/crawlserv/crawlservpp-sub000/internal/urlresolve"
	"github.com/crawlserv/crawlservpp-sub000/internal/warnlog"
)

// fakeAllQuery is a query.Query stub whose All() always returns a fixed
// set of results, used to exercise extractLinks without a real query
// backend.
type fakeAllQuery struct{ results []string }

func (f fakeAllQuery) Bool(ctx context.Context, input []byte) (bool, error) { return len(f.results) > 0, nil }
func (f fakeAllQuery) First(ctx context.Context, input []byte) (string, error) {
	if len(f.results) == 0 {
		return "", nil
	}
	return f.results[0], nil
}
func (f fakeAllQuery) All(ctx context.Context, input []byte) ([]string, error) { return f.results, nil }
func (f fakeAllQuery) Subsets(ctx context.Context, input []byte) ([]string, error) {
	return f.results, nil
}

// fakeFirstQuery is a query.Query stub whose First() always returns a
// fixed value, used to exercise checkExpectedCount.
type fakeFirstQuery struct{ value string }

func (f fakeFirstQuery) Bool(ctx context.Context, input []byte) (bool, error) { return f.value != "", nil }
func (f fakeFirstQuery) First(ctx context.Context, input []byte) (string, error) {
	return f.value, nil
}
func (f fakeFirstQuery) All(ctx context.Context, input []byte) ([]string, error) {
	return []string{f.value}, nil
}
func (f fakeFirstQuery) Subsets(ctx context.Context, input []byte) ([]string, error) {
	return []string{f.value}, nil
}

func newTestModule(t *testing.T, cfg Config) *Module {
	t.Helper()

	resolver, err := urlresolve.New("https://example.com", urlresolve.Options{Mode: urlresolve.SameDomain, Domain: "example.com"})
	require.NoError(t, err)

	return &Module{cfg: cfg, resolve: resolver, warn: warnlog.New(1)}
}

func TestFullURLPrefixesBaseURL(t *testing.T) {
	m := newTestModule(t, Config{BaseURL: "https://example.com"})

	require.Equal(t, "https://example.com/a", m.fullURL("/a"))
}

func TestFullURLNoBaseURLReturnsPathUnchanged(t *testing.T) {
	m := newTestModule(t, Config{})

	require.Equal(t, "/a", m.fullURL("/a"))
}

func TestChunkSizeDefault(t *testing.T) {
	m := newTestModule(t, Config{})
	require.Equal(t, DefaultChunkSize, m.chunkSize())
}

func TestChunkSizeConfigured(t *testing.T) {
	m := newTestModule(t, Config{ChunkSize: 10})
	require.Equal(t, 10, m.chunkSize())
}

func TestExtractLinksResolvesAndDedups(t *testing.T) {
	q := fakeAllQuery{results: []string{"/a", "/a", "/b", "https://other.example/x"}}

	m := newTestModule(t, Config{LinkQueries: []query.Query{q}})

	links, err := m.extractLinks(context.Background(), []byte("<html></html>"))
	require.NoError(t, err)

	var paths []string
	for _, l := range links {
		paths = append(paths, l.Path)
	}

	require.ElementsMatch(t, []string{"/a", "/b"}, paths) // cross-domain href dropped by SameDomain resolver
}

func TestExtractLinksComputesHashWhenDuplicateCheckEnabled(t *testing.T) {
	q := fakeAllQuery{results: []string{"/a"}}

	m := newTestModule(t, Config{LinkQueries: []query.Query{q}, DuplicateHashCheck: true})

	links, err := m.extractLinks(context.Background(), []byte("<html></html>"))
	require.NoError(t, err)
	require.Len(t, links, 1)
	require.Equal(t, store.HashPath("/a"), links[0].Hash)
}

func TestCheckExpectedCountWarnPolicy(t *testing.T) {
	m := newTestModule(t, Config{ExpectedCountQuery: fakeFirstQuery{value: "5"}, ExpectedCountPolicy: CountPolicyWarn})

	m.checkExpectedCount(context.Background(), nil, 2)

	require.Equal(t, 1, m.warn.Len())
	msgs := m.warn.Drain()
	require.Contains(t, msgs[0], "warn:")
}

func TestCheckExpectedCountFailIfSmallerEscalatesToError(t *testing.T) {
	m := newTestModule(t, Config{ExpectedCountQuery: fakeFirstQuery{value: "5"}, ExpectedCountPolicy: CountPolicyFailIfSmaller})

	m.checkExpectedCount(context.Background(), nil, 2)

	msgs := m.warn.Drain()
	require.Contains(t, msgs[0], "error:")
}

func TestCheckExpectedCountMatchesProducesNoWarning(t *testing.T) {
	m := newTestModule(t, Config{ExpectedCountQuery: fakeFirstQuery{value: "2"}})

	m.checkExpectedCount(context.Background(), nil, 2)

	require.Zero(t, m.warn.Len())
}
