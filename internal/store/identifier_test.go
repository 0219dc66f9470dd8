package store

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSanitizeIdentifierPart(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"lowercase ok", "example_news", false},
		{"digits ok", "list42", false},
		{"empty rejected", "", true},
		{"uppercase rejected", "Example", true},
		{"semicolon rejected", "news; DROP TABLE x", true},
		{"space rejected", "news list", true},
		{"dash rejected", "news-list", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := sanitizeIdentifierPart(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tt.input, got)
		})
	}
}

func TestListTableName(t *testing.T) {
	name, err := listTableName("example", "news")
	require.NoError(t, err)
	require.Equal(t, "example_news", name)

	_, err = listTableName("Example", "news")
	require.Error(t, err)
}

func TestTargetTableName(t *testing.T) {
	name, err := targetTableName("example", "news", "sentiment")
	require.NoError(t, err)
	require.Equal(t, "example_news_sentiment", name)
}

func TestHashPathStableAndDistinct(t *testing.T) {
	require.Equal(t, HashPath("/a"), HashPath("/a"))
	require.NotEqual(t, HashPath("/a"), HashPath("/b"))
}
