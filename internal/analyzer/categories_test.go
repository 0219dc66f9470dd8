package analyzer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/crawlserv/crawlservpp-sub000/internal/warnlog"
)

func TestValidateCategoriesTruncatesMismatchedLengths(t *testing.T) {
	warn := warnlog.New(1)
	labels := []string{"a", "b", "c"}
	queries := []Matcher{newLiteralMatcher("a"), newLiteralMatcher("b")}

	cats := ValidateCategories(labels, queries, warn)

	require.Len(t, cats, 2)
	require.Equal(t, 1, warn.Len())
}

func TestValidateCategoriesDropsEmptyLabelOrNilQuery(t *testing.T) {
	warn := warnlog.New(1)
	labels := []string{"", "ok"}
	queries := []Matcher{newLiteralMatcher("x"), nil}

	cats := ValidateCategories(labels, queries, warn)

	require.Empty(t, cats)
	require.Equal(t, 2, warn.Len())
}

func TestValidateCategoriesKeepsValidEntries(t *testing.T) {
	warn := warnlog.New(1)
	labels := []string{"ok"}
	queries := []Matcher{newLiteralMatcher("x")}

	cats := ValidateCategories(labels, queries, warn)

	require.Len(t, cats, 1)
	require.Equal(t, 0, warn.Len())
	require.Equal(t, "ok", cats[0].Label)
}
