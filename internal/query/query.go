// Package query normalizes the four query languages the system
// supports (Perl-compatible regular expressions, XPath 1.0, JSONPointer
// with an array-wildcard extension, and JSONPath) behind one Query
// interface: compile once, evaluate many.
package query

import (
	"context"
	"fmt"

	"github.com/crawlserv/crawlservpp-sub000/internal/store"
)

// Query is the unified contract every variant implements. Bool, First,
// All and Subsets are independent result shapes a caller may request in
// any combination — none of them are mutually exclusive (spec.md §9,
// resolved: resultBool and resultSingle are both honored).
type Query interface {
	// Bool reports whether the expression matches at all, without
	// materializing match text.
	Bool(ctx context.Context, input []byte) (bool, error)
	// First returns the first match in document order, flattened to a
	// string, or the empty string if there is no match.
	First(ctx context.Context, input []byte) (string, error)
	// All returns every match in document order. A zero-length slice is
	// a valid result, distinct from an error.
	All(ctx context.Context, input []byte) ([]string, error)
	// Subsets returns every match as its full serialized sub-document
	// rather than flattened text — e.g. a JSON object matched by a
	// JSONPointer `$$` wildcard comes back as its JSON body, not a
	// leaf-only string. Supplements spec.md with the original's
	// getSubSets behavior (Query/JsonPointer.cpp).
	Subsets(ctx context.Context, input []byte) ([]string, error)
}

// CompileError is returned by Compile; compile errors are fatal to the
// enclosing configuration and surface as structured warnings at
// component init (spec.md §4.3 Errors).
type CompileError struct {
	Type store.QueryType
	Text string
	Err  error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compile %s query %q: %v", e.Type, e.Text, e.Err)
}

func (e *CompileError) Unwrap() error { return e.Err }

// Compile builds the Query variant matching rec.Type.
func Compile(rec store.QueryRecord) (Query, error) {
	switch rec.Type {
	case store.QueryTypeRegex:
		return compileRegex(rec)
	case store.QueryTypeXPath:
		return compileXPath(rec)
	case store.QueryTypeJSONPointer:
		return compileJSONPointer(rec)
	case store.QueryTypeJSONPath:
		return compileJSONPath(rec)
	default:
		return nil, &CompileError{Type: rec.Type, Text: rec.Text, Err: fmt.Errorf("unknown query type")}
	}
}
