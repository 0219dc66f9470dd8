package moduleconfig

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/crawlserv/crawlservpp-sub000/internal/extractor"
	"github.com/crawlserv/crawlservpp-sub000/internal/store"
)

type extractorDoc struct {
	Variables []struct {
		Name      string `json:"name"`
		Source    string `json:"source"` // "column" | "content" | "url"
		QueryID   int64  `json:"queryId"`
		AliasName string `json:"aliasName"`
		AliasAdd  int    `json:"aliasAdd"`
	} `json:"variables"`

	Tokens []struct {
		Name         string `json:"name"`
		SourceURL    string `json:"sourceUrl"`
		UsePost      bool   `json:"usePost"`
		QueryID      int64  `json:"queryId"`
		BoolResult   bool   `json:"boolResult"`
		PagingVarDep bool   `json:"pagingVarDep"`
	} `json:"tokens"`

	PagingFirstURL string `json:"pagingFirstUrl"`
	PagingURL      string `json:"pagingUrl"`
	CookieTemplate string `json:"cookieTemplate"`

	PagingVariable      string `json:"pagingVariable"`
	PagingAliasName     string `json:"pagingAliasName"`
	PagingAliasAdd      int    `json:"pagingAliasAdd"`
	PagingFirstValue    int    `json:"pagingFirstValue"`
	PagingIsNextQueryID int64  `json:"pagingIsNextQueryId"`
	PagingNextQueryID   int64  `json:"pagingNextQueryId"`
	PagingNumberQueryID int64  `json:"pagingNumberQueryId"`
	MaxPages            int    `json:"maxPages"`

	IDQueryIDs       []int64 `json:"idQueryIds"`
	DatetimeQueryIDs []int64 `json:"datetimeQueryIds"`
	DatetimeFormat   string  `json:"datetimeFormat"`

	Fields []struct {
		Name        string `json:"name"`
		QueryID     int64  `json:"queryId"`
		Shape       string `json:"shape"` // "single" | "bool"
		Tidy        bool   `json:"tidy"`
		WarnIfEmpty bool   `json:"warnIfEmpty"`
	} `json:"fields"`

	ResultName string `json:"resultName"`

	LockTTLSeconds       int `json:"lockTtlSeconds"`
	MaxSelectionAttempts int `json:"maxSelectionAttempts"`
}

func variableSourceFromString(s string) extractor.VariableSource {
	switch s {
	case "url":
		return extractor.SourceURL
	case "column":
		return extractor.SourceColumn
	default:
		return extractor.SourceContent
	}
}

func resultShapeFromString(s string) extractor.ResultShape {
	if s == "bool" {
		return extractor.ResultBool
	}

	return extractor.ResultSingle
}

// fieldSQLType is the column type each extractor.ResultShape gets in
// its target table; spec.md §4.8 "Result shapes" calls for text or
// boolean, nothing richer.
func fieldSQLType(shape extractor.ResultShape) string {
	if shape == extractor.ResultBool {
		return "BOOLEAN"
	}

	return "TEXT"
}

// LoadExtractorConfig decodes raw into an extractor.Config, compiling
// every referenced query id and deriving TargetFields from Fields so
// callers don't separately maintain the two in lockstep.
func LoadExtractorConfig(ctx context.Context, db queryResolver, websiteNamespace, listNamespace string, raw []byte) (extractor.Config, error) {
	var doc extractorDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return extractor.Config{}, fmt.Errorf("decode extractor configuration: %w", err)
	}

	cfg := extractor.Config{
		WebsiteNamespace: websiteNamespace,
		ListNamespace:    listNamespace,

		PagingFirstURL: doc.PagingFirstURL,
		PagingURL:      doc.PagingURL,
		CookieTemplate: doc.CookieTemplate,

		PagingVariable:   doc.PagingVariable,
		PagingAliasName:  doc.PagingAliasName,
		PagingAliasAdd:   doc.PagingAliasAdd,
		PagingFirstValue: doc.PagingFirstValue,
		MaxPages:         doc.MaxPages,

		DatetimeFormat: doc.DatetimeFormat,

		ResultName: doc.ResultName,

		LockTTL:              time.Duration(doc.LockTTLSeconds) * time.Second,
		MaxSelectionAttempts: doc.MaxSelectionAttempts,
	}

	if cfg.MaxPages == 0 {
		cfg.MaxPages = extractor.DefaultMaxPages
	}

	for _, v := range doc.Variables {
		q, err := compileQuery(ctx, db, v.QueryID)
		if err != nil {
			return extractor.Config{}, err
		}

		cfg.Variables = append(cfg.Variables, extractor.Variable{
			Name: v.Name, Source: variableSourceFromString(v.Source), Query: q,
			AliasName: v.AliasName, AliasAdd: v.AliasAdd,
		})
	}

	for _, t := range doc.Tokens {
		q, err := compileQuery(ctx, db, t.QueryID)
		if err != nil {
			return extractor.Config{}, err
		}

		cfg.Tokens = append(cfg.Tokens, extractor.TokenSource{
			Name: t.Name, SourceURL: t.SourceURL, UsePost: t.UsePost,
			Query: q, BoolResult: t.BoolResult, PagingVarDep: t.PagingVarDep,
		})
	}

	targetFields := make([]store.FieldSpec, 0, len(doc.Fields))

	for _, f := range doc.Fields {
		q, err := compileQuery(ctx, db, f.QueryID)
		if err != nil {
			return extractor.Config{}, err
		}

		shape := resultShapeFromString(f.Shape)

		cfg.Fields = append(cfg.Fields, extractor.Field{
			Name: f.Name, Query: q, Shape: shape, Tidy: f.Tidy, WarnIfEmpty: f.WarnIfEmpty,
		})

		targetFields = append(targetFields, store.FieldSpec{Name: f.Name, Type: fieldSQLType(shape)})
	}

	cfg.TargetFields = targetFields

	var err error

	cfg.IDQueries, err = compileQueries(ctx, db, doc.IDQueryIDs)
	if err != nil {
		return extractor.Config{}, err
	}

	cfg.DatetimeQueries, err = compileQueries(ctx, db, doc.DatetimeQueryIDs)
	if err != nil {
		return extractor.Config{}, err
	}

	cfg.PagingIsNextQuery, err = compileQuery(ctx, db, doc.PagingIsNextQueryID)
	if err != nil {
		return extractor.Config{}, err
	}

	cfg.PagingNextQuery, err = compileQuery(ctx, db, doc.PagingNextQueryID)
	if err != nil {
		return extractor.Config{}, err
	}

	cfg.PagingNumberQuery, err = compileQuery(ctx, db, doc.PagingNumberQueryID)
	if err != nil {
		return extractor.Config{}, err
	}

	return cfg, nil
}
