package billing

import (
	"context"
	"sync"
)

// Compile-time check that MemoryRepository implements Repository.
var _ Repository = (*MemoryRepository)(nil)

// MemoryRepository is an in-memory implementation of Repository.
// Suitable for development and testing; swap for Postgres in production.
type MemoryRepository struct {
	mu      sync.RWMutex
	entries []Entry
	nextID  int64
}

// NewMemoryRepository creates a new in-memory ledger repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{nextID: 1}
}

// Append inserts a new ledger entry and returns its assigned ID.
func (r *MemoryRepository) Append(_ context.Context, entry *Entry) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e := *entry
	e.ID = r.nextID
	r.nextID++
	r.entries = append(r.entries, e)
	return e.ID, nil
}

// SumDeltas returns the sum of all entry deltas for the user.
func (r *MemoryRepository) SumDeltas(_ context.Context, userID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var sum int64
	for _, e := range r.entries {
		if e.UserID == userID {
			sum += e.Delta
		}
	}
	return sum, nil
}

// Entries returns a copy of all entries for the user, in append order.
func (r *MemoryRepository) Entries(userID string) []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Entry
	for _, e := range r.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out
}
