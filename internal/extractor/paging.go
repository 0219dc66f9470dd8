package extractor

import (
	"context"
	"strconv"
)

// shouldContinue implements spec.md §4.8 step 6e: a paging-is-next
// query takes priority and is evaluated as a boolean on the current
// page; otherwise a paging-next or paging-number query extracts the
// following page's value directly; with none configured the loop stops
// after one page.
func (m *Module) shouldContinue(ctx context.Context, body []byte, currentPage int) (bool, int, error) {
	if m.cfg.PagingIsNextQuery != nil {
		ok, err := m.cfg.PagingIsNextQuery.Bool(ctx, body)
		if err != nil {
			return false, 0, err
		}

		return ok, currentPage + 1, nil
	}

	q := m.cfg.PagingNextQuery
	if q == nil {
		q = m.cfg.PagingNumberQuery
	}

	if q == nil {
		return false, 0, nil
	}

	raw, err := q.First(ctx, body)
	if err != nil {
		return false, 0, err
	}

	if raw == "" {
		return false, 0, nil
	}

	next, err := strconv.Atoi(raw)
	if err != nil {
		return false, 0, nil // a non-numeric "next page" value can't drive another iteration
	}

	return true, next, nil
}

// pagingValues returns a copy of values with the paging variable (and
// its alias, if configured) substituted for page, implementing spec.md
// §4.8 step 6b.
func (m *Module) pagingValues(values map[string]string, page int) map[string]string {
	out := make(map[string]string, len(values)+2)
	for k, v := range values {
		out[k] = v
	}

	if m.cfg.PagingVariable == "" {
		return out
	}

	pageStr := strconv.Itoa(page)
	out[m.cfg.PagingVariable] = pageStr

	if m.cfg.PagingAliasName != "" {
		out[m.cfg.PagingAliasName] = strconv.Itoa(page + m.cfg.PagingAliasAdd)
	}

	return out
}
