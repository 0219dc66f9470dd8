package query

import (
	"context"

	"github.com/dlclark/regexp2"

	"github.com/crawlserv/crawlservpp-sub000/internal/store"
)

// regexQuery wraps two compiled regexp2 programs — one dedicated to
// first-match lookups, one to full iteration — because regexp2.Regexp's
// FindNextMatch cursor is not safely reentrant across interleaved
// first-vs-all calls against the same compiled program (spec.md §4.3:
// "Compiles two internal programs when both first and all are
// requested").
type regexQuery struct {
	firstProgram *regexp2.Regexp
	allProgram   *regexp2.Regexp
}

func compileRegex(rec store.QueryRecord) (Query, error) {
	// regexp2's default options already give Perl-compatible semantics
	// (backreferences, lookaround) as opposed to stdlib regexp's RE2
	// engine; no special option flags are needed.
	first, err := regexp2.Compile(rec.Text, regexp2.None)
	if err != nil {
		return nil, &CompileError{Type: rec.Type, Text: rec.Text, Err: err}
	}

	all, err := regexp2.Compile(rec.Text, regexp2.None)
	if err != nil {
		return nil, &CompileError{Type: rec.Type, Text: rec.Text, Err: err}
	}

	return &regexQuery{firstProgram: first, allProgram: all}, nil
}

func (q *regexQuery) Bool(_ context.Context, input []byte) (bool, error) {
	m, err := q.firstProgram.FindStringMatch(string(input))
	if err != nil {
		return false, err
	}

	return m != nil, nil
}

func (q *regexQuery) First(_ context.Context, input []byte) (string, error) {
	m, err := q.firstProgram.FindStringMatch(string(input))
	if err != nil {
		return "", err
	}

	if m == nil {
		return "", nil
	}

	return m.String(), nil
}

func (q *regexQuery) All(_ context.Context, input []byte) ([]string, error) {
	var out []string

	m, err := q.allProgram.FindStringMatch(string(input))
	if err != nil {
		return nil, err
	}

	for m != nil {
		out = append(out, m.String())

		m, err = q.allProgram.FindNextMatch(m)
		if err != nil {
			return nil, err
		}
	}

	return out, nil
}

// Subsets has no distinct meaning for regular expressions (a match has
// no sub-document, only matched text); it is equivalent to All.
func (q *regexQuery) Subsets(ctx context.Context, input []byte) ([]string, error) {
	return q.All(ctx, input)
}
