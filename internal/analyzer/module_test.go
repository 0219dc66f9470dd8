package analyzer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/crawlserv/crawlservpp-sub000/internal/store"
)

func TestModuleIsNeverPausableOrWarpable(t *testing.T) {
	m := &Module{}

	require.False(t, m.Pausable())
	require.False(t, m.Warpable())
}

func TestTargetFieldsPerAlgorithmKind(t *testing.T) {
	m := &Module{cfg: Config{Kind: AlgoWordsOverTime}}
	require.Equal(t, []string{"date", "articles", "sentences", "tokens"}, fieldNames(m.targetFields()))

	m = &Module{cfg: Config{Kind: AlgoExtractIDs}}
	require.Equal(t, []string{"article_id"}, fieldNames(m.targetFields()))

	m = &Module{cfg: Config{Kind: AlgoCoOccurrence}, categories: []Category{{Label: "x"}}}
	require.Equal(t, []string{"article_id", "date", "occurrences", "cat_x"}, fieldNames(m.targetFields()))
}

func fieldNames(specs []store.FieldSpec) []string {
	names := make([]string, len(specs))
	for i, s := range specs {
		names[i] = s.Name
	}

	return names
}
