package memory

import (
	"context"
	"sync"

	"curare-challenge/internal/domain"
)

// ResultStore keeps archived results in memory, keyed by session.
type ResultStore struct {
	mu      sync.RWMutex
	results map[string]domain.Results
}

func NewResultStore() *ResultStore {
	return &ResultStore{results: make(map[string]domain.Results)}
}

func (s *ResultStore) RecordResults(_ context.Context, results domain.Results) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[results.SessionID] = results
	return nil
}

// GetResults returns the archived results of a session.
func (s *ResultStore) GetResults(_ context.Context, sessionID string) (domain.Results, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.results[sessionID]
	if !ok {
		return domain.Results{}, domain.ErrSessionNotFound
	}
	return r, nil
}

// Len reports how many sessions have been archived.
func (s *ResultStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.results)
}
