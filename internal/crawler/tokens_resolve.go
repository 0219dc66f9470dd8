package crawler

import (
	"context"
	"fmt"

	"github.com/crawlserv/crawlservpp-sub000/internal/netclient"
)

// resolveTokens fetches and evaluates every configured token source not
// dependent on a paging variable (spec.md §4.7.1 "Token substitution");
// paging-variable-dependent tokens are an Extractor-only concept (spec.md
// §4.8 step 6a) since the Crawler has no page loop. Values already
// resolved earlier in the list are available to substitute into later
// source URLs, so token definition order matters.
func (m *Module) resolveTokens(ctx context.Context) (map[string]string, error) {
	values := make(map[string]string, len(m.cfg.Tokens))

	var firstErr error

	for _, t := range m.cfg.Tokens {
		if t.PagingVarDep {
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

		var value string

		if t.BoolResult {
			ok, berr := t.Query.Bool(ctx, resp.Body)
			if berr != nil {
				if firstErr == nil {
					firstErr = fmt.Errorf("evaluate token %q: %w", t.Name, berr)
				}

				continue
			}

			value = boolString(ok)
		} else {
			value, err = t.Query.First(ctx, resp.Body)
			if err != nil {
				if firstErr == nil {
					firstErr = fmt.Errorf("evaluate token %q: %w", t.Name, err)
				}

				continue
			}
		}

		values[t.Name] = value
	}

	return values, firstErr
}

func boolString(b bool) string {
	if b {
		return "true"
	}

	return "false"
}
