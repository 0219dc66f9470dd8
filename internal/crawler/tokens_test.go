package crawler

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSubstituteTokens(t *testing.T) {
	out := substituteTokens("https://example.com/${SLUG}?id=${ID}", map[string]string{
		"SLUG": "news",
		"ID":   "42",
	})

	require.Equal(t, "https://example.com/news?id=42", out)
}

func TestSubstituteTokensLeavesUnknownPlaceholders(t *testing.T) {
	out := substituteTokens("${KNOWN}-${UNKNOWN}", map[string]string{"KNOWN": "a"})

	require.Equal(t, "a-${UNKNOWN}", out)
}

func TestExpandManualURLsNoCounters(t *testing.T) {
	manual := []ManualURL{{Template: "/a"}, {Template: "/b", ReCrawl: true}}

	out := expandManualURLs(manual, nil)

	require.Equal(t, []ManualURL{{Template: "/a"}, {Template: "/b", ReCrawl: true}}, out)
}

func TestExpandManualURLsLocalCounter(t *testing.T) {
	manual := []ManualURL{{Template: "/page/${P}", ReCrawl: true}, {Template: "/static"}}
	counters := []Counter{{Variable: "P", Start: 1, End: 3, Step: 1}}

	out := expandManualURLs(manual, counters)

	require.Equal(t, []ManualURL{
		{Template: "/page/1", ReCrawl: true},
		{Template: "/page/2", ReCrawl: true},
		{Template: "/page/3", ReCrawl: true},
		{Template: "/static"},
	}, out)
}

func TestExpandManualURLsGlobalCounterMultipliesEverything(t *testing.T) {
	manual := []ManualURL{{Template: "/a/${Y}"}, {Template: "/b/${Y}"}}
	counters := []Counter{{Variable: "Y", Start: 2020, End: 2021, Step: 1, Global: true}}

	out := expandManualURLs(manual, counters)

	require.Equal(t, []ManualURL{
		{Template: "/a/2020"},
		{Template: "/a/2021"},
		{Template: "/b/2020"},
		{Template: "/b/2021"},
	}, out)
}

func TestExpandManualURLsAlias(t *testing.T) {
	manual := []ManualURL{{Template: "/page/${P}/next/${N}"}}
	counters := []Counter{{Variable: "P", Start: 1, End: 2, Step: 1, AliasName: "N", AliasAdd: 1}}

	out := expandManualURLs(manual, counters)

	require.Equal(t, []ManualURL{
		{Template: "/page/1/next/2"},
		{Template: "/page/2/next/3"},
	}, out)
}

func TestExpandManualURLsDedupsAndSorts(t *testing.T) {
	manual := []ManualURL{{Template: "/p/${N}"}}
	counters := []Counter{
		{Variable: "N", Start: 1, End: 2, Step: 1},
		{Variable: "N", Start: 2, End: 1, Step: -1, Global: true},
	}

	out := expandManualURLs(manual, counters)

	var templates []string
	for _, e := range out {
		templates = append(templates, e.Template)
	}

	require.Equal(t, []string{"/p/1", "/p/2"}, templates)
}

func TestCounterRangeNegativeStep(t *testing.T) {
	values := counterRange(Counter{Variable: "N", Start: 5, End: 3, Step: -1})

	require.Equal(t, []int{5, 4, 3}, values)
}

func TestCounterRangeZeroStepIsSingleValue(t *testing.T) {
	values := counterRange(Counter{Variable: "N", Start: 7})

	require.Equal(t, []int{7}, values)
}
