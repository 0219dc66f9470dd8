package crawler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCompactTimestamp(t *testing.T) {
	at := time.Date(2010, 1, 2, 3, 4, 5, 0, time.UTC)

	require.Equal(t, "20100102030405", compactTimestamp(at))
}

func TestExtractAbsoluteHTTPURLs(t *testing.T) {
	body := `<a href="http://web.archive.org/web/20100101000000/http://example.com/a">link</a>
	and https://web.archive.org/web/20100101000000/http://example.com/b standalone`

	urls := extractAbsoluteHTTPURLs([]byte(body))

	require.Contains(t, urls, "http://web.archive.org/web/20100101000000/http://example.com/a")
	require.Contains(t, urls, "https://web.archive.org/web/20100101000000/http://example.com/b")
}

func TestExtractArchiveLinksKeepsOnlyURLsBehindPrefix(t *testing.T) {
	body := `<a href="http://web.archive.org/web/20100101000000/http://example.com/article-1">a</a>
	<a href="http://unrelated.example/ad">ad</a>`

	links := extractArchiveLinks([]byte(body), "http://web.archive.org/web/20100101000000/")

	require.Len(t, links, 1)
	require.Equal(t, "http://example.com/article-1", links[0].Path)
}

func TestExtractArchiveLinksDedups(t *testing.T) {
	body := `<a href="http://web.archive.org/web/x/http://example.com/a">a</a>
	<a href="http://web.archive.org/web/x/http://example.com/a">a again</a>`

	links := extractArchiveLinks([]byte(body), "http://web.archive.org/web/x/")

	require.Len(t, links, 1)
}
