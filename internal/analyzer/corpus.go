// Package analyzer implements the Analyzer algorithms (spec.md §4.9):
// read-only consumers of an already-extracted corpus that build
// in-memory token/date/article/sentence index structures and emit
// aggregated rows into an algorithm-specific target table. Grounded on
// the original implementation's Module::Analyzer::Algo::{Assoc,
// AssocOverTime,ExtractIds,WordsOverTime} (original_source/crawlserv/
// src/Module/Analyzer/Algo), generalized to this rewrite's query.Query
// and store.DB surfaces the way internal/extractor generalizes the
// teacher's per-item pipeline shape.
package analyzer

import (
	"strings"
	"time"

	"github.com/crawlserv/crawlservpp-sub000/internal/store"
)

// MapEntry is one disjoint, position-sorted span within a side-map
// (spec.md §4.9): Start/Length index into Corpus.Tokens, Value carries
// the span's payload — the full RFC3339 datetime string for the date
// map (reduced later by each algorithm), an article id for the article
// map, or unused for the sentence map.
type MapEntry struct {
	Start  int
	Length int
	Value  string
}

// End returns the exclusive end position of the span.
func (e MapEntry) End() int { return e.Start + e.Length }

// Corpus is an ordered token sequence plus its three side-maps
// (spec.md §4.9 glossary: "An ordered sequence of tokens plus three
// side-maps (date, article, sentence) over token positions").
type Corpus struct {
	Tokens      []string
	DateMap     []MapEntry
	ArticleMap  []MapEntry
	SentenceMap []MapEntry
}

// BuildCorpus assembles one Corpus from a target table's rows, in the
// order given: each row contributes one article span, one date span
// (when its datetime is set), and one sentence span per sentence found
// in its text. Rows that tokenize to nothing contribute no spans,
// matching the invariant that the article/date/sentence maps may leave
// tokens uncovered.
func BuildCorpus(rows []store.TargetTextRow) Corpus {
	var c Corpus

	for _, row := range rows {
		articleStart := len(c.Tokens)

		for _, sentence := range splitSentences(row.Text) {
			sentStart := len(c.Tokens)

			tokens := splitTokens(sentence)
			c.Tokens = append(c.Tokens, tokens...)

			if len(tokens) > 0 {
				c.SentenceMap = append(c.SentenceMap, MapEntry{Start: sentStart, Length: len(tokens)})
			}
		}

		articleLen := len(c.Tokens) - articleStart
		if articleLen == 0 {
			continue
		}

		if row.ArticleID != "" {
			c.ArticleMap = append(c.ArticleMap, MapEntry{Start: articleStart, Length: articleLen, Value: row.ArticleID})
		}

		if row.Datetime != nil {
			c.DateMap = append(c.DateMap, MapEntry{
				Start: articleStart, Length: articleLen, Value: row.Datetime.UTC().Format(time.RFC3339),
			})
		}
	}

	return c
}

// splitSentences breaks text on a trailing '.', '!' or '?', keeping the
// terminator attached to its sentence. No sentence-segmentation library
// appears anywhere in the retrieval pack (see DESIGN.md), so this is a
// deliberately small stdlib scan rather than a full NLP tokenizer.
func splitSentences(text string) []string {
	var sentences []string

	start := 0

	for i, r := range text {
		if r == '.' || r == '!' || r == '?' {
			end := i + 1
			sentences = append(sentences, text[start:end])
			start = end
		}
	}

	if start < len(text) {
		sentences = append(sentences, text[start:])
	}

	return sentences
}

// splitTokens splits one sentence on single spaces. Consecutive spaces
// yield empty-string tokens that still occupy a position — spec.md
// §4.9's "Empty tokens contribute to position but never to counts".
func splitTokens(sentence string) []string {
	sentence = strings.Trim(sentence, " ")
	if sentence == "" {
		return nil
	}

	return strings.Split(sentence, " ")
}

// valueAtPosition returns the Value of the map entry covering pos, or
// "" if pos is uncovered. Entries are disjoint and sorted, so this
// could binary-search; a linear scan matches the small per-article
// corpora these algorithms are designed around.
func valueAtPosition(m []MapEntry, pos int) string {
	for _, e := range m {
		if pos >= e.Start && pos < e.End() {
			return e.Value
		}

		if e.Start > pos {
			break
		}
	}

	return ""
}
