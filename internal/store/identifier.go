package store

import (
	"fmt"
	"regexp"

	"github.com/jackc/pgx/v5"
)

var validIdentifierPart = regexp.MustCompile(`^[a-z0-9_]+$`)

// sanitizeIdentifierPart whitelists a namespace/name fragment to
// [a-z0-9_] before it is used to build a dynamically-named table or
// column via pgx.Identifier. This is the one place the system builds
// SQL identifiers from configuration data.
func sanitizeIdentifierPart(part string) (string, error) {
	if part == "" {
		return "", fmt.Errorf("empty identifier part")
	}

	if !validIdentifierPart.MatchString(part) {
		return "", fmt.Errorf("invalid identifier part %q: must match [a-z0-9_]+", part)
	}

	return part, nil
}

// listTableName returns the physical table name holding URL rows for a
// website/url-list pair: "<website-namespace>_<urllist-namespace>".
func listTableName(websiteNamespace, listNamespace string) (string, error) {
	ws, err := sanitizeIdentifierPart(websiteNamespace)
	if err != nil {
		return "", err
	}

	ls, err := sanitizeIdentifierPart(listNamespace)
	if err != nil {
		return "", err
	}

	return ws + "_" + ls, nil
}

// targetTableName suffixes a list table name with a module result-table
// name, e.g. "example_news_sentiment".
func targetTableName(websiteNamespace, listNamespace, resultName string) (string, error) {
	base, err := sanitizeIdentifierPart(resultName)
	if err != nil {
		return "", err
	}

	listTable, err := listTableName(websiteNamespace, listNamespace)
	if err != nil {
		return "", err
	}

	return listTable + "_" + base, nil
}

func quoteIdent(name string) string {
	return pgx.Identifier{name}.Sanitize()
}
