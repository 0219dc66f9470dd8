package extractor

import (
	"context"
	"fmt"

	"github.com/crawlserv/crawlservpp-sub000/internal/netclient"
)

// resolveGlobalTokens implements spec.md §4.8 step 4: every token not
// dependent on the paging variable is resolved once per tick, with its
// own source URL subject to variable substitution.
func (m *Module) resolveGlobalTokens(ctx context.Context, values map[string]string) error {
	return m.resolveTokens(ctx, values, func(t TokenSource) bool { return !t.PagingVarDep })
}

// resolvePageTokens implements spec.md §4.8 step 6a: tokens that depend
// on the paging variable are resolved fresh for every page, with the
// current page's values already substituted into values.
func (m *Module) resolvePageTokens(ctx context.Context, values map[string]string) error {
	return m.resolveTokens(ctx, values, func(t TokenSource) bool { return t.PagingVarDep })
}

func (m *Module) resolveTokens(ctx context.Context, values map[string]string, include func(TokenSource) bool) error {
	var firstErr error

	for _, t := range m.cfg.Tokens {
		if !include(t) {
			continue
		}

		sourceURL := substituteTokens(t.SourceURL, values)

		resp, outcome, err := m.client.Get(ctx, sourceURL, t.UsePost)
		if err != nil || outcome != netclient.OutcomeOK {
			if firstErr == nil {
				firstErr = fmt.Errorf("fetch token %q: %w", t.Name, err)
			}

			continue
		}

		value, err := evaluateTokenQuery(ctx, t, resp.Body)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("evaluate token %q: %w", t.Name, err)
			}

			continue
		}

		values[t.Name] = value
	}

	return firstErr
}

func evaluateTokenQuery(ctx context.Context, t TokenSource, body []byte) (string, error) {
	if t.BoolResult {
		ok, err := t.Query.Bool(ctx, body)
		if err != nil {
			return "", err
		}

		return boolString(ok), nil
	}

	return t.Query.First(ctx, body)
}

func boolString(b bool) string {
	if b {
		return "true"
	}

	return "false"
}
