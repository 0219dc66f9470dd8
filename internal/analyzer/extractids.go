package analyzer

import "sort"

// ExtractArticleIDs implements spec.md §4.9's "Article-id extraction":
// the set of article-map values from a corpus, as a sorted list
// (original_source/crawlserv/src/Module/Analyzer/Algo/ExtractIds.cpp).
func ExtractArticleIDs(corpus Corpus) []string {
	seen := make(map[string]struct{}, len(corpus.ArticleMap))

	for _, a := range corpus.ArticleMap {
		seen[a.Value] = struct{}{}
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	return ids
}
