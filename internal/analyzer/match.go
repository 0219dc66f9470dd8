package analyzer

import "context"

// Matcher is the subset of query.Query a token-level match needs.
// Category and keyword queries are evaluated once per non-empty token,
// matching spec.md §4.9's token-position model (a regex-style query
// compiled once, evaluated against each token's bytes).
type Matcher interface {
	Bool(ctx context.Context, input []byte) (bool, error)
}

// matchPositions returns the token positions where q matches, in
// ascending order. Empty tokens are skipped: spec.md §4.9 "Empty tokens
// contribute to position but never to counts".
func matchPositions(ctx context.Context, tokens []string, q Matcher) ([]int, error) {
	var positions []int

	for i, t := range tokens {
		if t == "" {
			continue
		}

		ok, err := q.Bool(ctx, []byte(t))
		if err != nil {
			return nil, err
		}

		if ok {
			positions = append(positions, i)
		}
	}

	return positions, nil
}
