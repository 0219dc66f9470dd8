// Package moduleconfig decodes a store.Configuration's opaque JSON
// document into one module's Config struct, resolving every referenced
// query id through query.Compile(store.QueryRecord) along the way —
// the wiring store.Configuration's doc comment describes and that,
// before this package, no code in the tree actually performed.
package moduleconfig

import (
	"context"
	"fmt"

	"github.com/crawlserv/crawlservpp-sub000/internal/query"
	"github.com/crawlserv/crawlservpp-sub000/internal/store"
)

// queryResolver fetches and compiles query records by id, narrowed so
// tests can substitute a fake catalog instead of a live *store.DB.
type queryResolver interface {
	GetQuery(ctx context.Context, id int64) (store.QueryRecord, error)
}

func compileQuery(ctx context.Context, db queryResolver, id int64) (query.Query, error) {
	if id == 0 {
		return nil, nil
	}

	rec, err := db.GetQuery(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load query %d: %w", id, err)
	}

	q, err := query.Compile(rec)
	if err != nil {
		return nil, fmt.Errorf("compile query %d: %w", id, err)
	}

	return q, nil
}

func compileQueries(ctx context.Context, db queryResolver, ids []int64) ([]query.Query, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	queries := make([]query.Query, 0, len(ids))

	for _, id := range ids {
		q, err := compileQuery(ctx, db, id)
		if err != nil {
			return nil, err
		}

		queries = append(queries, q)
	}

	return queries, nil
}
