package analyzer

import "sort"

// WordsOverTimeRow is one reduced-date group's result of the
// Words-over-time algorithm (spec.md §4.9), matching the original
// implementation's target schema (original_source/crawlserv/src/Module/
// Analyzer/Algo/WordsOverTime.cpp onAlgoInitTarget: date, articles,
// sentences, tokens).
type WordsOverTimeRow struct {
	Date      string
	Articles  int
	Sentences int
	Tokens    int
}

// WordsOverTime implements spec.md §4.9's "Words-over-time": per
// reduced-date group, the distinct article count, the count of
// sentence-map entries containing at least one non-empty token, and
// the count of non-empty tokens.
func WordsOverTime(corpus Corpus, resolution DateResolution) ([]WordsOverTimeRow, error) {
	type agg struct {
		articles  map[string]struct{}
		sentences int
		tokens    int
	}

	groups := map[string]*agg{}

	group := func(reduced string) *agg {
		g, ok := groups[reduced]
		if !ok {
			g = &agg{articles: map[string]struct{}{}}
			groups[reduced] = g
		}

		return g
	}

	for _, d := range corpus.DateMap {
		reduced, err := reduceDate(d.Value, resolution)
		if err != nil {
			return nil, err
		}

		g := group(reduced)

		for pos := d.Start; pos < d.End() && pos < len(corpus.Tokens); pos++ {
			if corpus.Tokens[pos] != "" {
				g.tokens++
			}
		}
	}

	for _, a := range corpus.ArticleMap {
		raw := valueAtPosition(corpus.DateMap, a.Start)
		if raw == "" {
			continue
		}

		reduced, err := reduceDate(raw, resolution)
		if err != nil {
			return nil, err
		}

		group(reduced).articles[a.Value] = struct{}{}
	}

	for _, s := range corpus.SentenceMap {
		hasNonEmpty := false

		for pos := s.Start; pos < s.End() && pos < len(corpus.Tokens); pos++ {
			if corpus.Tokens[pos] != "" {
				hasNonEmpty = true
				break
			}
		}

		if !hasNonEmpty {
			continue
		}

		raw := valueAtPosition(corpus.DateMap, s.Start)
		if raw == "" {
			continue
		}

		reduced, err := reduceDate(raw, resolution)
		if err != nil {
			return nil, err
		}

		group(reduced).sentences++
	}

	rows := make([]WordsOverTimeRow, 0, len(groups))
	for date, g := range groups {
		rows = append(rows, WordsOverTimeRow{Date: date, Articles: len(g.articles), Sentences: g.sentences, Tokens: g.tokens})
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].Date < rows[j].Date })

	return rows, nil
}
