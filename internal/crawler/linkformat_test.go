package crawler

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLinkFormat(t *testing.T) {
	body := `<http://example.com/>; rel="original",
<http://web.archive.org/web/timemap/link/http://example.com/>; rel="self"; type="application/link-format",
<http://web.archive.org/web/20090101000000/http://example.com/>; rel="first memento"; datetime="Thu, 01 Jan 2009 00:00:00 GMT",
<http://web.archive.org/web/20100101000000/http://example.com/>; rel="memento"; datetime="Fri, 01 Jan 2010 00:00:00 GMT"`

	entries := parseLinkFormat([]byte(body))

	require.Len(t, entries, 4)
	require.Equal(t, "http://example.com/", entries[0].URI)
	require.Equal(t, "original", entries[0].Rel)

	require.Equal(t, "first memento", entries[2].Rel)
	require.Equal(t, "Thu, 01 Jan 2009 00:00:00 GMT", entries[2].Datetime)

	require.Equal(t, "memento", entries[3].Rel)
	require.Equal(t, "http://web.archive.org/web/20100101000000/http://example.com/", entries[3].URI)
}

func TestParseLinkFormatEmpty(t *testing.T) {
	require.Empty(t, parseLinkFormat([]byte("")))
}

func TestSplitTopLevelIgnoresSeparatorsInsideAngleBracketsAndQuotes(t *testing.T) {
	parts := splitTopLevel(`<http://a,b/>; datetime="x, y", <http://c/>; rel="memento"`, ',')

	require.Len(t, parts, 2)
}
