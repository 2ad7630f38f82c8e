package search

import (
	"context"
)

// Provider defines the contract for any web search backend.
// The returned payload is free-form text or JSON; callers must not
// assume anything about its shape beyond "parseable or not".
type Provider interface {
	// Search executes a single query and returns the raw result payload
	Search(ctx context.Context, query string) (string, error)
}
