package analysis

import (
	"sort"
	"sync"
)

// LatestStore holds the most recent analysis result per ticker for the
// HTTP and WebSocket layers. Results are request-scoped values; the store
// only remembers the last one, it never mutates them.
type LatestStore struct {
	mu      sync.RWMutex
	results map[string]*Result
}

func NewLatestStore() *LatestStore {
	return &LatestStore{results: make(map[string]*Result)}
}

// Put replaces the stored result for a ticker.
func (s *LatestStore) Put(ticker string, r *Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[ticker] = r
}

// Get returns the latest result for a ticker, if any.
func (s *LatestStore) Get(ticker string) (*Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.results[ticker]
	return r, ok
}

// Tickers lists tickers with a stored result, sorted.
func (s *LatestStore) Tickers() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.results))
	for t := range s.results {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
