package payment

import (
	"context"
	"sync"
)

// Compile-time check that MemoryRepository implements Repository.
var _ Repository = (*MemoryRepository)(nil)

// MemoryRepository is an in-memory implementation of Repository.
type MemoryRepository struct {
	mu       sync.RWMutex
	payments map[string]*Payment
}

// NewMemoryRepository creates a new in-memory payment repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		payments: make(map[string]*Payment),
	}
}

// Create persists a new payment.
func (r *MemoryRepository) Create(_ context.Context, p *Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *p
	r.payments[p.ID] = &c
	return nil
}

// FindByExternalID retrieves a payment by the provider's charge ID.
func (r *MemoryRepository) FindByExternalID(_ context.Context, externalID string) (*Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.payments {
		if p.ExternalID == externalID {
			c := *p
			return &c, nil
		}
	}
	return nil, ErrPaymentNotFound
}
