package extractor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/crawlserv/crawlservpp-sub000/internal/query"
	"github.com/crawlserv/crawlservpp-sub000/internal/warnlog"
)

func newTestModuleForFields(cfg Config) *Module {
	return &Module{cfg: cfg, warn: warnlog.New(1)}
}

func TestExtractIDReturnsFirstNonEmptyMatch(t *testing.T) {
	m := newTestModuleForFields(Config{IDQueries: []query.Query{
		fakeFirstQuery{value: ""},
		fakeFirstQuery{value: "id-42"},
	}})

	id, err := m.extractID(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, "id-42", id)
}

func TestExtractDatetimeUsesConfiguredFormat(t *testing.T) {
	m := newTestModuleForFields(Config{
		DatetimeQueries: []query.Query{fakeFirstQuery{value: "2020/01/02"}},
		DatetimeFormat:  "2006/01/02",
	})

	dt, err := m.extractDatetime(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC), dt)
}

func TestExtractDatetimeFallsBackToDefaultFormat(t *testing.T) {
	m := newTestModuleForFields(Config{
		DatetimeQueries: []query.Query{fakeFirstQuery{value: "2020-01-02 03:04:05"}},
	})

	dt, err := m.extractDatetime(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, 2020, dt.Year())
	require.Equal(t, 3, dt.Hour())
}

func TestExtractDatetimeFallsBackToLenientParsing(t *testing.T) {
	m := newTestModuleForFields(Config{
		DatetimeQueries: []query.Query{fakeFirstQuery{value: "Jan 2, 2020"}},
	})

	dt, err := m.extractDatetime(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, 2020, dt.Year())
}

func TestExtractFieldSingleValueTidied(t *testing.T) {
	m := newTestModuleForFields(Config{})
	f := Field{Name: "body", Query: fakeFirstQuery{value: "  hello   world  "}, Tidy: true}

	v, err := m.extractField(context.Background(), f, nil)
	require.NoError(t, err)
	require.Equal(t, "hello world", v)
}

func TestExtractFieldEmptyWarnsWhenConfigured(t *testing.T) {
	m := newTestModuleForFields(Config{})
	f := Field{Name: "body", Query: fakeFirstQuery{value: ""}, WarnIfEmpty: true}

	v, err := m.extractField(context.Background(), f, nil)
	require.NoError(t, err)
	require.Nil(t, v)
	require.Equal(t, 1, m.warn.Len())
}

func TestExtractFieldBoolShape(t *testing.T) {
	m := newTestModuleForFields(Config{})
	f := Field{Name: "flag", Query: fakeBoolQuery{value: true}, Shape: ResultBool}

	v, err := m.extractField(context.Background(), f, nil)
	require.NoError(t, err)
	require.Equal(t, true, v)
}

func TestTidyTextCollapsesWhitespace(t *testing.T) {
	require.Equal(t, "a b c", tidyText("  a\n\tb   c  "))
}
