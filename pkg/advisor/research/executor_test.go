package research

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakeSearch serves canned payloads per query, with optional per-query
// errors and delays.
type fakeSearch struct {
	payloads map[string]string
	errs     map[string]error
	delays   map[string]time.Duration
}

func (f *fakeSearch) Search(ctx context.Context, query string) (string, error) {
	if delay := f.delays[query]; delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if err := f.errs[query]; err != nil {
		return "", err
	}
	return f.payloads[query], nil
}

func TestExecute_ResultsKeyedByQueryNotArrivalOrder(t *testing.T) {
	provider := &fakeSearch{
		payloads: map[string]string{
			"slow query": "slow payload",
			"fast query": "fast payload",
		},
		delays: map[string]time.Duration{
			"slow query": 60 * time.Millisecond,
		},
	}
	e := NewExecutor(provider, testLogger())

	results := e.Execute(context.Background(), []string{"slow query", "fast query"})

	// The fast query finishes first but the slow query keeps slot 0.
	assert.Equal(t, "slow query", results[0].Query)
	assert.Equal(t, "slow payload", results[0].Payload)
	assert.Equal(t, "fast query", results[1].Query)
	assert.Equal(t, "fast payload", results[1].Payload)
}

func TestExecute_FailedQueryContributesEmptyPayload(t *testing.T) {
	provider := &fakeSearch{
		payloads: map[string]string{
			"good one": "payload one",
			"good two": "payload two",
		},
		errs: map[string]error{
			"broken": fmt.Errorf("rate limited"),
		},
	}
	e := NewExecutor(provider, testLogger())

	results := e.Execute(context.Background(), []string{"good one", "broken", "good two"})

	assert.Len(t, results, 3)
	assert.Equal(t, "payload one", results[0].Payload)
	assert.Empty(t, results[1].Payload)
	assert.Equal(t, "payload two", results[2].Payload)
}

func TestExecute_TimeoutIsPerQueryNotBatchWide(t *testing.T) {
	provider := &fakeSearch{
		payloads: map[string]string{
			"hangs":   "never seen",
			"instant": "instant payload",
		},
		delays: map[string]time.Duration{
			"hangs": 500 * time.Millisecond,
		},
	}
	e := NewExecutor(provider, testLogger())
	e.queryTimeout = 30 * time.Millisecond

	results := e.Execute(context.Background(), []string{"hangs", "instant"})

	assert.Empty(t, results[0].Payload)
	assert.Equal(t, "instant payload", results[1].Payload)
}

func TestExecute_NoQueries(t *testing.T) {
	e := NewExecutor(&fakeSearch{}, testLogger())

	results := e.Execute(context.Background(), nil)

	assert.Empty(t, results)
}
