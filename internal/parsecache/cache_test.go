package parsecache

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCacheParsesOncePerTick(t *testing.T) {
	c := New()

	tree1, ok := c.XML([]byte(`<html><body>hi</body></html>`), "text/html")
	require.True(t, ok)
	require.NotNil(t, tree1)

	tree2, ok := c.XML([]byte(`<html><body>should not reparse</body></html>`), "text/html")
	require.True(t, ok)
	require.Same(t, tree1, tree2, "second call within the same tick must reuse the cached tree")
}

func TestCacheResetStartsFresh(t *testing.T) {
	c := New()

	tree1, _ := c.XML([]byte(`<a/>`), "text/html")
	c.Reset()

	tree2, ok := c.XML([]byte(`<b/>`), "text/html")
	require.True(t, ok)
	require.NotSame(t, tree1, tree2)
}

func TestCacheJSONDOMParseErrorIsNotFatal(t *testing.T) {
	c := New()

	_, ok := c.JSONDOM([]byte(`not json`))
	require.False(t, ok)
	require.Error(t, c.JSONDOMError())
}

func TestCacheJSONDOMAndCursorAreIndependent(t *testing.T) {
	c := New()

	dom, ok := c.JSONDOM([]byte(`{"a":1}`))
	require.True(t, ok)
	require.NotNil(t, dom)

	cursor, ok := c.JSONCursor([]byte(`{"a":1}`))
	require.True(t, ok)
	require.NotNil(t, cursor)
}
