package store

import (
	"context"
	"fmt"
)

// URLListCatalogEntry pairs a URL list with its owning website's
// namespace, enough to address its physical tables.
type URLListCatalogEntry struct {
	List             URLList
	WebsiteNamespace string
}

// ListAllURLLists returns every URL list paired with its website's
// namespace, used by cmd/crawlservd to run the startup sweeps across
// every list before any worker starts.
func (db *DB) ListAllURLLists(ctx context.Context) ([]URLListCatalogEntry, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT l.id, l.website_id, l.namespace, l.name, l.case_sensitive, l.created_at, w.namespace
		FROM url_lists l
		JOIN websites w ON w.id = l.website_id
		ORDER BY l.id`)
	if err != nil {
		return nil, fmt.Errorf("list all url lists: %w", err)
	}
	defer rows.Close()

	var out []URLListCatalogEntry

	for rows.Next() {
		var e URLListCatalogEntry

		err := rows.Scan(&e.List.ID, &e.List.WebsiteID, &e.List.Namespace, &e.List.Name,
			&e.List.CaseSensitive, &e.List.CreatedAt, &e.WebsiteNamespace)
		if err != nil {
			return nil, fmt.Errorf("scan url list catalog entry: %w", err)
		}

		out = append(out, e)
	}

	return out, rows.Err()
}
