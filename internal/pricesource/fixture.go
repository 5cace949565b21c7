package pricesource

import (
	"context"
	"sync"
)

// FixedSource replays canned results, one per call, and then keeps
// returning the last one. It stands in for a real source in tests and
// dry runs.
type FixedSource struct {
	mutex   sync.Mutex
	results []FixedResult
	calls   []Query
}

type FixedResult struct {
	Quote Quote
	Err   error
}

func NewFixedSource(results ...FixedResult) *FixedSource {
	return &FixedSource{results: results}
}

func (s *FixedSource) FetchPrice(ctx context.Context, q Query) (Quote, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.calls = append(s.calls, q)
	if err := ctx.Err(); err != nil {
		return Quote{}, &FetchError{URL: SearchURL("", q), Err: err}
	}
	if len(s.results) == 0 {
		return Quote{Found: false, URL: SearchURL("", q)}, nil
	}

	next := s.results[0]
	if len(s.results) > 1 {
		s.results = s.results[1:]
	}
	if next.Quote.URL == "" {
		next.Quote.URL = SearchURL("", q)
	}
	return next.Quote, next.Err
}

// Calls returns every query FetchPrice was called with.
func (s *FixedSource) Calls() []Query {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	out := make([]Query, len(s.calls))
	copy(out, s.calls)
	return out
}
