package query

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/dolthub/jsonpath"

	"github.com/crawlserv/crawlservpp-sub000/internal/store"
)

// jsonPathQuery evaluates against a cursor-style JSON tree (decoded
// with encoding/json.Decoder into interface{}), distinct from the
// JSONPointer variant's DOM-tree resolution, per spec.md §4.3.
type jsonPathQuery struct {
	compiled *jsonpath.Compiled
}

func compileJSONPath(rec store.QueryRecord) (Query, error) {
	c, err := jsonpath.Compile(rec.Text)
	if err != nil {
		return nil, &CompileError{Type: rec.Type, Text: rec.Text, Err: err}
	}

	return &jsonPathQuery{compiled: c}, nil
}

func (q *jsonPathQuery) cursor(input []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(input))

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}

	return doc, nil
}

// matches returns every leaf the path selects, in document order.
// jsonpath.Lookup returns a single value for a fully-indexed path and a
// []interface{} when any step is a wildcard or slice; both are
// normalized to a flat ordered list here.
func (q *jsonPathQuery) matches(input []byte) ([]any, error) {
	doc, err := q.cursor(input)
	if err != nil {
		return nil, err
	}

	val, err := q.compiled.Lookup(doc)
	if err != nil {
		return nil, nil //nolint:nilerr // no match is a valid empty result, not an error
	}

	if list, ok := val.([]any); ok {
		return list, nil
	}

	return []any{val}, nil
}

func (q *jsonPathQuery) Bool(_ context.Context, input []byte) (bool, error) {
	matches, err := q.matches(input)
	if err != nil {
		return false, err
	}

	return len(matches) > 0, nil
}

func (q *jsonPathQuery) First(_ context.Context, input []byte) (string, error) {
	matches, err := q.matches(input)
	if err != nil {
		return "", err
	}

	if len(matches) == 0 {
		return "", nil
	}

	return stringify(matches[0]), nil
}

func (q *jsonPathQuery) All(_ context.Context, input []byte) ([]string, error) {
	matches, err := q.matches(input)
	if err != nil {
		return nil, err
	}

	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = stringify(m)
	}

	return out, nil
}

func (q *jsonPathQuery) Subsets(ctx context.Context, input []byte) ([]string, error) {
	return q.All(ctx, input)
}
