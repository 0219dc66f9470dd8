package query

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-openapi/jsonpointer"

	"github.com/crawlserv/crawlservpp-sub000/internal/store"
)

// wildcardToken is the array-index wildcard extension: evaluating "all
// matches" substitutes increasing integers for this token and stops at
// the first index that does not resolve, mirroring the original's
// pointerStringMulti/counter loop (Query/JsonPointer.cpp).
const wildcardToken = "$$"

type jsonPointerQuery struct {
	text       string
	isWildcard bool
}

func compileJSONPointer(rec store.QueryRecord) (Query, error) {
	if !strings.Contains(rec.Text, wildcardToken) {
		if _, err := jsonpointer.New(rec.Text); err != nil {
			return nil, &CompileError{Type: rec.Type, Text: rec.Text, Err: err}
		}

		return &jsonPointerQuery{text: rec.Text}, nil
	}

	// validate the pointer shape with index 0 substituted
	if _, err := jsonpointer.New(strings.Replace(rec.Text, wildcardToken, "0", 1)); err != nil {
		return nil, &CompileError{Type: rec.Type, Text: rec.Text, Err: err}
	}

	return &jsonPointerQuery{text: rec.Text, isWildcard: true}, nil
}

func (q *jsonPointerQuery) dom(input []byte) (any, error) {
	var doc any
	if err := json.Unmarshal(input, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal json: %w", err)
	}

	return doc, nil
}

func (q *jsonPointerQuery) resolve(doc any, pointerText string) (any, bool) {
	ptr, err := jsonpointer.New(pointerText)
	if err != nil {
		return nil, false
	}

	val, _, err := ptr.Get(doc)
	if err != nil {
		return nil, false
	}

	return val, true
}

func (q *jsonPointerQuery) matches(input []byte) ([]any, error) {
	doc, err := q.dom(input)
	if err != nil {
		return nil, err
	}

	if !q.isWildcard {
		val, ok := q.resolve(doc, q.text)
		if !ok {
			return nil, nil
		}

		return []any{val}, nil
	}

	var out []any

	for i := 0; ; i++ {
		pointerText := strings.Replace(q.text, wildcardToken, strconv.Itoa(i), 1)

		val, ok := q.resolve(doc, pointerText)
		if !ok {
			break
		}

		out = append(out, val)
	}

	return out, nil
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}

	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}

	return string(b)
}

func (q *jsonPointerQuery) Bool(_ context.Context, input []byte) (bool, error) {
	matches, err := q.matches(input)
	if err != nil {
		return false, err
	}

	return len(matches) > 0, nil
}

func (q *jsonPointerQuery) First(_ context.Context, input []byte) (string, error) {
	matches, err := q.matches(input)
	if err != nil {
		return "", err
	}

	if len(matches) == 0 {
		return "", nil
	}

	return stringify(matches[0]), nil
}

func (q *jsonPointerQuery) All(_ context.Context, input []byte) ([]string, error) {
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

// Subsets returns each wildcard match's full serialized body, same as
// All for JSONPointer — a match is always a single JSON sub-document,
// so flattening and sub-document serialization coincide.
func (q *jsonPointerQuery) Subsets(ctx context.Context, input []byte) ([]string, error) {
	return q.All(ctx, input)
}
