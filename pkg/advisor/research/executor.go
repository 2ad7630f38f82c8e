package research

import (
	"context"
	"log"
	"sync"
	"time"

	"ai-shopscout-be/pkg/search"
)

const defaultQueryTimeout = 45 * time.Second

// QueryResult pairs a query with the raw payload its search returned.
// A failed or timed-out query keeps its slot with an empty payload, so
// reduction input is always keyed by query position, never by arrival
// order.
type QueryResult struct {
	Query   string `json:"query"`
	Payload string `json:"payload,omitempty"`
}

// Executor fans the query list out to the search provider, one goroutine
// per query, each with an independent timeout. One slow or failing query
// never aborts or delays-to-death the batch.
type Executor struct {
	provider     search.Provider
	logger       *log.Logger
	queryTimeout time.Duration
}

func NewExecutor(provider search.Provider, logger *log.Logger) *Executor {
	return &Executor{
		provider:     provider,
		logger:       logger,
		queryTimeout: defaultQueryTimeout,
	}
}

func (e *Executor) Execute(ctx context.Context, queries []string) []QueryResult {
	results := make([]QueryResult, len(queries))

	var wg sync.WaitGroup
	for i, query := range queries {
		results[i] = QueryResult{Query: query}

		wg.Add(1)
		go func(slot int, q string) {
			defer wg.Done()

			qctx, cancel := context.WithTimeout(ctx, e.queryTimeout)
			defer cancel()

			payload, err := e.provider.Search(qctx, q)
			if err != nil {
				e.logger.Printf("[WARN] Search query %q failed: %v", q, err)
				return
			}
			results[slot].Payload = payload
		}(i, query)
	}
	wg.Wait()

	return results
}
