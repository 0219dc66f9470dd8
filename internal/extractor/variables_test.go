package extractor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/crawlserv/crawlservpp-sub000/internal/warnlog"
)

func newTestModuleForVars() *Module {
	return &Module{warn: warnlog.New(1)}
}

func TestResolveVariablesFromContentAndURL(t *testing.T) {
	m := newTestModuleForVars()
	m.cfg = Config{Variables: []Variable{
		{Name: "title", Source: SourceContent, Query: fakeFirstQuery{value: "Breaking News"}},
		{Name: "path", Source: SourceURL},
	}}

	values, err := m.resolveVariables(context.Background(), []byte("ignored"), "/news/1")
	require.NoError(t, err)
	require.Equal(t, "Breaking News", values["title"])
	require.Equal(t, "/news/1", values["path"])
}

func TestResolveVariablesNumericAliasAddsOffset(t *testing.T) {
	m := newTestModuleForVars()
	m.cfg = Config{Variables: []Variable{
		{Name: "page", Source: SourceContent, Query: fakeFirstQuery{value: "5"}, AliasName: "nextPage", AliasAdd: 1},
	}}

	values, err := m.resolveVariables(context.Background(), nil, "")
	require.NoError(t, err)
	require.Equal(t, "5", values["page"])
	require.Equal(t, "6", values["nextPage"])
}

func TestResolveVariablesNonNumericAliasCopiesValueAndWarns(t *testing.T) {
	m := newTestModuleForVars()
	m.cfg = Config{Variables: []Variable{
		{Name: "title", Source: SourceContent, Query: fakeFirstQuery{value: "abc"}, AliasName: "titleAlias", AliasAdd: 1},
	}}

	values, err := m.resolveVariables(context.Background(), nil, "")
	require.NoError(t, err)
	require.Equal(t, "abc", values["titleAlias"])
	require.Equal(t, 1, m.warn.Len())
}

func TestResolveVariablesQueryErrorReportedOnce(t *testing.T) {
	m := newTestModuleForVars()
	m.cfg = Config{Variables: []Variable{
		{Name: "a", Source: SourceContent, Query: fakeErrQuery{err: require.AnError}},
		{Name: "b", Source: SourceContent, Query: fakeErrQuery{err: require.AnError}},
	}}

	_, err := m.resolveVariables(context.Background(), nil, "")
	require.Error(t, err)
}
