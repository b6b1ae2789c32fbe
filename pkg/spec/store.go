package spec

import (
	"context"
	"sort"
	"sync"

	"github.com/tombee/cmdspec/pkg/errors"
)

// Store defines the interface for spec persistence. Persistence is
// create-or-overwrite by id; a stored document is always replaced as a whole.
type Store interface {
	// Load retrieves a spec by ID.
	Load(ctx context.Context, id string) (*CommandSpec, error)

	// LoadAll returns every stored spec ordered by ID.
	LoadAll(ctx context.Context) ([]*CommandSpec, error)

	// Save validates and stores a spec, replacing any spec with the same ID.
	Save(ctx context.Context, s *CommandSpec) error

	// Delete deletes a spec by ID.
	Delete(ctx context.Context, id string) error
}

// MemoryStore is an in-memory implementation of Store.
// It is thread-safe and suitable for testing or embedding hosts.
type MemoryStore struct {
	mu    sync.RWMutex
	specs map[string]*CommandSpec
}

// NewMemoryStore creates a new in-memory spec store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		specs: make(map[string]*CommandSpec),
	}
}

// Load retrieves a spec by ID.
func (s *MemoryStore) Load(ctx context.Context, id string) (*CommandSpec, error) {
	if id == "" {
		return nil, &errors.ValidationError{
			Field:   "id",
			Message: "spec ID cannot be empty",
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, exists := s.specs[id]
	if !exists {
		return nil, &errors.NotFoundError{
			Resource: "spec",
			ID:       id,
		}
	}

	// Return a copy to prevent external modifications
	return stored.Clone(), nil
}

// LoadAll returns every stored spec ordered by ID.
func (s *MemoryStore) LoadAll(ctx context.Context) ([]*CommandSpec, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]*CommandSpec, 0, len(s.specs))
	for _, stored := range s.specs {
		results = append(results, stored.Clone())
	}
	SortByID(results)
	return results, nil
}

// Save validates and stores a spec.
func (s *MemoryStore) Save(ctx context.Context, cs *CommandSpec) error {
	if err := Check(cs); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Store a copy so later caller mutations are not visible
	s.specs[cs.ID] = cs.Clone()
	return nil
}

// Delete deletes a spec by ID.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return &errors.ValidationError{
			Field:   "id",
			Message: "spec ID cannot be empty",
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.specs[id]; !exists {
		return &errors.NotFoundError{
			Resource: "spec",
			ID:       id,
		}
	}

	delete(s.specs, id)
	return nil
}

// SortByID orders specs by ID in place.
func SortByID(specs []*CommandSpec) {
	sort.Slice(specs, func(i, j int) bool {
		return specs[i].ID < specs[j].ID
	})
}
