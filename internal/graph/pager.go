package graph

import (
	"context"
	"net/url"
)

// ListAll drains every page of ep, following continuation links until none is returned.
func ListAll(ctx context.Context, client Client, ep Endpoint, query url.Values) ([]map[string]any, error) {
	var all []map[string]any
	next := ""
	for {
		page, err := client.ListPage(ctx, ep, next, query)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Value...)
		if page.NextLink == "" {
			return all, nil
		}
		next = page.NextLink
	}
}
