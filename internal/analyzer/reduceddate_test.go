package analyzer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReduceDateTruncatesToResolution(t *testing.T) {
	raw := "2020-03-15T10:20:30Z"

	year, err := reduceDate(raw, ResolutionYear)
	require.NoError(t, err)
	require.Equal(t, "2020", year)

	month, err := reduceDate(raw, ResolutionMonth)
	require.NoError(t, err)
	require.Equal(t, "2020-03", month)

	day, err := reduceDate(raw, ResolutionDay)
	require.NoError(t, err)
	require.Equal(t, "2020-03-15", day)
}

func TestSuccessorDateCarriesOverMonthAndYear(t *testing.T) {
	next, err := successorDate("2020-12", ResolutionMonth)
	require.NoError(t, err)
	require.Equal(t, "2021-01", next)

	next, err = successorDate("2020-12-31", ResolutionDay)
	require.NoError(t, err)
	require.Equal(t, "2021-01-01", next)

	next, err = successorDate("2020", ResolutionYear)
	require.NoError(t, err)
	require.Equal(t, "2021", next)
}

func TestFillDateGapsNoopWhenContiguous(t *testing.T) {
	rows := []CoOccurrenceTimeRow{{Date: "2020-01-01"}, {Date: "2020-01-02"}}

	require.Equal(t, rows, fillDateGaps(rows, ResolutionDay, 0))
}
