package moduleconfig

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/crawlserv/crawlservpp-sub000/internal/analyzer"
)

type analyzerDoc struct {
	SourceTable       string   `json:"sourceTable"`
	SourceIDColumn    string   `json:"sourceIdColumn"`
	SourceDateColumn  string   `json:"sourceDateColumn"`
	SourceTextColumns []string `json:"sourceTextColumns"`

	Algorithm string `json:"algorithm"` // "cooccurrence" | "cooccurrence_over_time" | "words_over_time" | "extract_ids"

	KeywordQueryID int64 `json:"keywordQueryId"`

	CategoryLabels     []string `json:"categoryLabels"`
	CategoryQueryIDs   []int64  `json:"categoryQueryIds"`

	Window     int    `json:"window"`
	Resolution string `json:"resolution"` // "year" | "month" | "day"
	FillGaps   bool   `json:"fillGaps"`

	ResultName string `json:"resultName"`
}

func algorithmKindFromString(s string) analyzer.AlgorithmKind {
	switch s {
	case "cooccurrence_over_time":
		return analyzer.AlgoCoOccurrenceOverTime
	case "words_over_time":
		return analyzer.AlgoWordsOverTime
	case "extract_ids":
		return analyzer.AlgoExtractIDs
	default:
		return analyzer.AlgoCoOccurrence
	}
}

func dateResolutionFromString(s string) analyzer.DateResolution {
	switch s {
	case "month":
		return analyzer.ResolutionMonth
	case "day":
		return analyzer.ResolutionDay
	default:
		return analyzer.ResolutionYear
	}
}

// LoadAnalyzerConfig decodes raw into an analyzer.Config, compiling the
// keyword query and every category query.
func LoadAnalyzerConfig(ctx context.Context, db queryResolver, websiteNamespace, listNamespace string, raw []byte) (analyzer.Config, error) {
	var doc analyzerDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return analyzer.Config{}, fmt.Errorf("decode analyzer configuration: %w", err)
	}

	cfg := analyzer.Config{
		WebsiteNamespace:  websiteNamespace,
		ListNamespace:     listNamespace,
		SourceTable:       doc.SourceTable,
		SourceIDColumn:    doc.SourceIDColumn,
		SourceDateColumn:  doc.SourceDateColumn,
		SourceTextColumns: doc.SourceTextColumns,
		Kind:              algorithmKindFromString(doc.Algorithm),
		CategoryLabels:    doc.CategoryLabels,
		Window:            doc.Window,
		Resolution:        dateResolutionFromString(doc.Resolution),
		FillGaps:          doc.FillGaps,
		ResultName:        doc.ResultName,
	}

	keyword, err := compileQuery(ctx, db, doc.KeywordQueryID)
	if err != nil {
		return analyzer.Config{}, err
	}

	cfg.Keyword = keyword

	categoryQueries, err := compileQueries(ctx, db, doc.CategoryQueryIDs)
	if err != nil {
		return analyzer.Config{}, err
	}

	cfg.CategoryQueries = make([]analyzer.Matcher, len(categoryQueries))
	for i, q := range categoryQueries {
		cfg.CategoryQueries[i] = q
	}

	return cfg, nil
}
