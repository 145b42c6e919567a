package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/cognicore/lexmatch/pkg/lexmatch/store"
)

// Store is an in-memory implementation of store.Store for tests.
type Store struct {
	mu     sync.RWMutex
	models map[string]store.Model
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{models: make(map[string]store.Model)}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// SaveModel inserts or replaces a model, keyed by ID.
func (s *Store) SaveModel(ctx context.Context, m store.Model) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m.ID == "" {
		m.ID = store.NewModelID()
	}
	s.models[m.ID] = copyModel(m)
	return nil
}

// GetModel returns a model by ID.
func (s *Store) GetModel(ctx context.Context, id string) (store.Model, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if m, ok := s.models[id]; ok {
		return copyModel(m), true, nil
	}
	return store.Model{}, false, nil
}

// ListModels returns all models ordered by ID.
func (s *Store) ListModels(ctx context.Context) ([]store.Model, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]store.Model, 0, len(s.models))
	for _, m := range s.models {
		out = append(out, copyModel(m))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// DeleteModel removes a model by ID.
func (s *Store) DeleteModel(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.models, id)
	return nil
}

func copyModel(m store.Model) store.Model {
	record := make([]byte, len(m.Record))
	copy(record, m.Record)
	m.Record = record
	return m
}
