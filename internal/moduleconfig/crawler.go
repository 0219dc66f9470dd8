package moduleconfig

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/crawlserv/crawlservpp-sub000/internal/crawler"
	"github.com/crawlserv/crawlservpp-sub000/internal/urlresolve"
)

// crawlerDoc is the JSON shape stored in a store.Configuration row with
// Module == "crawler". Field names echo crawler.Config's, so a
// configuration JSON blob reads like the Go struct it decodes into.
type crawlerDoc struct {
	StartPageURL string `json:"startPageUrl"`
	ReCrawlStart bool   `json:"reCrawlStart"`
	BaseURL      string `json:"baseUrl"`

	ManualURLs []struct {
		Template string `json:"template"`
		ReCrawl  bool   `json:"reCrawl"`
	} `json:"manualUrls"`

	Tokens []struct {
		Name         string `json:"name"`
		SourceURL    string `json:"sourceUrl"`
		UsePost      bool   `json:"usePost"`
		QueryID      int64  `json:"queryId"`
		BoolResult   bool   `json:"boolResult"`
		PagingVarDep bool   `json:"pagingVarDep"`
	} `json:"tokens"`

	Counters []struct {
		Variable  string `json:"variable"`
		Start     int    `json:"start"`
		End       int    `json:"end"`
		Step      int    `json:"step"`
		AliasName string `json:"aliasName"`
		AliasAdd  int    `json:"aliasAdd"`
		Global    bool   `json:"global"`
	} `json:"counters"`

	URLWhitelist         []string `json:"urlWhitelist"`
	URLBlacklist         []string `json:"urlBlacklist"`
	ContentTypeWhitelist []string `json:"contentTypeWhitelist"`
	ContentTypeBlacklist []string `json:"contentTypeBlacklist"`
	ContentWhitelistIDs  []int64  `json:"contentWhitelistQueryIds"`
	ContentBlacklistIDs  []int64  `json:"contentBlacklistQueryIds"`

	TidyHTML bool `json:"tidyHtml"`

	LinkQueryIDs        []int64 `json:"linkQueryIds"`
	ExpectedCountID     int64   `json:"expectedCountQueryId"`
	ExpectedCount       int     `json:"expectedCount"`
	ExpectedCountPolicy string  `json:"expectedCountPolicy"` // "warn" | "fail_smaller" | "fail_larger"

	ChunkSize          int  `json:"chunkSize"`
	DuplicateHashCheck bool `json:"duplicateHashCheck"`

	ArchiveSources []struct {
		Name               string `json:"name"`
		TimemapURL         string `json:"timemapUrl"`
		MementoURLTemplate string `json:"mementoUrlTemplate"`
	} `json:"archiveSources"`
	MaxMementoRedirectDepth int `json:"maxMementoRedirectDepth"`

	LockTTLSeconds int `json:"lockTtlSeconds"`

	ResolverMode      string `json:"resolverMode"` // "same_domain" | "any"
	ResolverDomain    string `json:"resolverDomain"`
	ResolverWhitelist []string `json:"resolverWhitelist"`
	ResolverBlacklist []string `json:"resolverBlacklist"`
	ResolverMaxLength int    `json:"resolverMaxLength"`

	MaxSelectionAttempts int `json:"maxSelectionAttempts"`
}

func countPolicyFromString(s string) crawler.CountPolicy {
	switch s {
	case "fail_smaller":
		return crawler.CountPolicyFailIfSmaller
	case "fail_larger":
		return crawler.CountPolicyFailIfLarger
	default:
		return crawler.CountPolicyWarn
	}
}

func resolverModeFromString(s string) urlresolve.Mode {
	if s == "any" || s == "cross_domain" {
		return urlresolve.CrossDomain
	}

	return urlresolve.SameDomain
}

// LoadCrawlerConfig decodes raw (a store.Configuration.JSON document)
// into a crawler.Config, compiling every referenced query id.
func LoadCrawlerConfig(ctx context.Context, db queryResolver, websiteNamespace, listNamespace string, raw []byte) (crawler.Config, error) {
	var doc crawlerDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return crawler.Config{}, fmt.Errorf("decode crawler configuration: %w", err)
	}

	cfg := crawler.Config{
		WebsiteNamespace: websiteNamespace,
		ListNamespace:    listNamespace,

		StartPageURL: doc.StartPageURL,
		ReCrawlStart: doc.ReCrawlStart,
		BaseURL:      doc.BaseURL,

		URLWhitelist:         doc.URLWhitelist,
		URLBlacklist:         doc.URLBlacklist,
		ContentTypeWhitelist: doc.ContentTypeWhitelist,
		ContentTypeBlacklist: doc.ContentTypeBlacklist,

		TidyHTML: doc.TidyHTML,

		ExpectedCount:       doc.ExpectedCount,
		ExpectedCountPolicy: countPolicyFromString(doc.ExpectedCountPolicy),

		ChunkSize:          doc.ChunkSize,
		DuplicateHashCheck: doc.DuplicateHashCheck,

		MaxMementoRedirectDepth: doc.MaxMementoRedirectDepth,

		LockTTL: time.Duration(doc.LockTTLSeconds) * time.Second,

		ResolverOpts: urlresolve.Options{
			Mode:      resolverModeFromString(doc.ResolverMode),
			Domain:    doc.ResolverDomain,
			Whitelist: doc.ResolverWhitelist,
			Blacklist: doc.ResolverBlacklist,
			MaxLength: doc.ResolverMaxLength,
		},

		MaxSelectionAttempts: doc.MaxSelectionAttempts,
	}

	if cfg.ChunkSize == 0 {
		cfg.ChunkSize = crawler.DefaultChunkSize
	}

	if cfg.MaxMementoRedirectDepth == 0 {
		cfg.MaxMementoRedirectDepth = crawler.DefaultMaxMementoRedirectDepth
	}

	if cfg.MaxSelectionAttempts == 0 {
		cfg.MaxSelectionAttempts = crawler.DefaultMaxSelectionAttempts
	}

	for _, m := range doc.ManualURLs {
		cfg.ManualURLs = append(cfg.ManualURLs, crawler.ManualURL{Template: m.Template, ReCrawl: m.ReCrawl})
	}

	for _, c := range doc.Counters {
		cfg.Counters = append(cfg.Counters, crawler.Counter{
			Variable: c.Variable, Start: c.Start, End: c.End, Step: c.Step,
			AliasName: c.AliasName, AliasAdd: c.AliasAdd, Global: c.Global,
		})
	}

	for _, a := range doc.ArchiveSources {
		cfg.ArchiveSources = append(cfg.ArchiveSources, crawler.ArchiveSource{
			Name: a.Name, TimemapURL: a.TimemapURL, MementoURLTemplate: a.MementoURLTemplate,
		})
	}

	for _, t := range doc.Tokens {
		q, err := compileQuery(ctx, db, t.QueryID)
		if err != nil {
			return crawler.Config{}, err
		}

		cfg.Tokens = append(cfg.Tokens, crawler.TokenSource{
			Name: t.Name, SourceURL: t.SourceURL, UsePost: t.UsePost,
			Query: q, BoolResult: t.BoolResult, PagingVarDep: t.PagingVarDep,
		})
	}

	var err error

	cfg.ContentWhitelist, err = compileQueries(ctx, db, doc.ContentWhitelistIDs)
	if err != nil {
		return crawler.Config{}, err
	}

	cfg.ContentBlacklist, err = compileQueries(ctx, db, doc.ContentBlacklistIDs)
	if err != nil {
		return crawler.Config{}, err
	}

	cfg.LinkQueries, err = compileQueries(ctx, db, doc.LinkQueryIDs)
	if err != nil {
		return crawler.Config{}, err
	}

	cfg.ExpectedCountQuery, err = compileQuery(ctx, db, doc.ExpectedCountID)
	if err != nil {
		return crawler.Config{}, err
	}

	return cfg, nil
}
