package extractor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSubstituteTokensReplacesKnownPlaceholders(t *testing.T) {
	out := substituteTokens("https://example.com/${section}?page=${page}", map[string]string{
		"section": "news",
		"page":    "3",
	})

	require.Equal(t, "https://example.com/news?page=3", out)
}

func TestSubstituteTokensLeavesUnknownPlaceholdersUntouched(t *testing.T) {
	out := substituteTokens("${known}/${unknown}", map[string]string{"known": "a"})

	require.Equal(t, "a/${unknown}", out)
}

func TestSubstituteTokensNoValuesReturnsUnchanged(t *testing.T) {
	require.Equal(t, "${x}", substituteTokens("${x}", nil))
}
