package registry

import (
	"context"
	"errors"
	"sync"

	"github.com/pforge-labs/pforge/internal/model"
)

// ErrNotFound reports a capability id with no entry.
var ErrNotFound = errors.New("capability not found")

// ErrVersionConflict reports a compare-and-swap failure: the entry changed
// between read and write. Callers re-read, re-merge, and retry.
var ErrVersionConflict = errors.New("capability version conflict")

// Entry is a stored capability plus the version token used for CAS.
type Entry struct {
	Capability model.Capability
	Version    int64
}

// Store is the pluggable persistence interface for the registry: a
// key-value store with compare-and-swap semantics on the capability id.
// Put with expectedVersion 0 inserts; any other value must match the
// stored version or the call fails with ErrVersionConflict. List returns
// entries in insertion order.
type Store interface {
	Get(ctx context.Context, id string) (Entry, error)
	Put(ctx context.Context, id string, cap model.Capability, expectedVersion int64) (int64, error)
	List(ctx context.Context) ([]Entry, error)
}

// MemoryStore is the in-process Store used by default and in tests.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*Entry
	order   []string
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]*Entry)}
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, id string) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return Entry{}, ErrNotFound
	}
	return *e, nil
}

// Put implements Store.
func (s *MemoryStore) Put(_ context.Context, id string, cap model.Capability, expectedVersion int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.entries[id]
	if !ok {
		if expectedVersion != 0 {
			return 0, ErrVersionConflict
		}
		s.entries[id] = &Entry{Capability: cap, Version: 1}
		s.order = append(s.order, id)
		return 1, nil
	}
	if existing.Version != expectedVersion {
		return 0, ErrVersionConflict
	}
	existing.Capability = cap
	existing.Version++
	return existing.Version, nil
}

// List implements Store, preserving insertion order.
func (s *MemoryStore) List(_ context.Context) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.entries[id])
	}
	return out, nil
}
