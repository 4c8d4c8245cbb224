package search

import (
	"context"
)

// Result is a single structured item returned by the search provider.
// Any field may be empty; consumers substitute their own placeholders.
type Result struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Link    string `json:"link"`
}

// Provider is the boundary to an external web-search backend: free-text
// query in, ordered result items out. Order is whatever the backend
// returned; an empty slice is a valid answer.
type Provider interface {
	Search(ctx context.Context, query string) ([]Result, error)
}

// ProviderFunc adapts a plain function to the Provider interface.
type ProviderFunc func(ctx context.Context, query string) ([]Result, error)

func (f ProviderFunc) Search(ctx context.Context, query string) ([]Result, error) {
	return f(ctx, query)
}
