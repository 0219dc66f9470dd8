package urlresolve

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveSameDomain(t *testing.T) {
	r, err := New("https://example.com/news/", Options{Mode: SameDomain, Domain: "example.com"})
	require.NoError(t, err)

	out, err := r.Resolve("/articles/42")
	require.NoError(t, err)
	require.Equal(t, "/articles/42", out)
}

func TestResolveSameDomainRejectsOtherHost(t *testing.T) {
	r, err := New("https://example.com/news/", Options{Mode: SameDomain, Domain: "example.com"})
	require.NoError(t, err)

	_, err = r.Resolve("https://other.example/page")
	require.ErrorIs(t, err, ErrWrongDomain)
}

func TestResolveCrossDomain(t *testing.T) {
	r, err := New("https://example.com/news/", Options{Mode: CrossDomain})
	require.NoError(t, err)

	out, err := r.Resolve("https://other.example/page")
	require.NoError(t, err)
	require.Equal(t, "other.example/page", out)
}

func TestResolveStripsFragment(t *testing.T) {
	r, err := New("https://example.com/", Options{Mode: SameDomain, Domain: "example.com"})
	require.NoError(t, err)

	out, err := r.Resolve("/page#section-2")
	require.NoError(t, err)
	require.Equal(t, "/page", out)
}

func TestResolveDotSegments(t *testing.T) {
	r, err := New("https://example.com/a/b/", Options{Mode: SameDomain, Domain: "example.com"})
	require.NoError(t, err)

	out, err := r.Resolve("../c")
	require.NoError(t, err)
	require.Equal(t, "/a/c", out)
}

func TestResolveQueryWhitelist(t *testing.T) {
	r, err := New("https://example.com/", Options{
		Mode: SameDomain, Domain: "example.com", Whitelist: []string{"id"},
	})
	require.NoError(t, err)

	out, err := r.Resolve("/page?id=1&session=abc")
	require.NoError(t, err)
	require.Equal(t, "/page?id=1", out)
}

func TestResolveQueryBlacklist(t *testing.T) {
	r, err := New("https://example.com/", Options{
		Mode: SameDomain, Domain: "example.com", Blacklist: []string{"session"},
	})
	require.NoError(t, err)

	out, err := r.Resolve("/page?id=1&session=abc")
	require.NoError(t, err)
	require.Equal(t, "/page?id=1", out)
}

func TestResolveAmpEscaping(t *testing.T) {
	r, err := New("https://example.com/", Options{Mode: SameDomain, Domain: "example.com"})
	require.NoError(t, err)

	out, err := r.Resolve("/page?a=1&amp;b=2")
	require.NoError(t, err)
	require.Equal(t, "/page?a=1&b=2", out)
}

func TestResolveMaxLength(t *testing.T) {
	r, err := New("https://example.com/", Options{Mode: SameDomain, Domain: "example.com", MaxLength: 10})
	require.NoError(t, err)

	_, err = r.Resolve("/a-very-long-path-indeed")
	require.ErrorIs(t, err, ErrTooLong)
}

func TestResolveFileExtensionLogged(t *testing.T) {
	var logged string

	r, err := New("https://example.com/", Options{
		Mode: SameDomain, Domain: "example.com",
		FileExtensionLog: func(href string) { logged = href },
	})
	require.NoError(t, err)

	_, err = r.Resolve("/files/report.pdf")
	require.NoError(t, err)
	require.Equal(t, "/files/report.pdf", logged)
}
