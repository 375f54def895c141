package deposit

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepository stores deposits in memory and allows tests to seed them.
type MemoryRepository struct {
	mu       sync.RWMutex
	deposits map[string][]Deposit
}

// NewMemoryRepository builds an in-memory deposit store for testing.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{deposits: make(map[string][]Deposit)}
}

// Record appends a deposit; test seeding helper.
func (r *MemoryRepository) Record(d Deposit) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deposits[d.Phone] = append(r.deposits[d.Phone], d)
}

// Recent returns the newest deposits for phone, capped at limit.
func (r *MemoryRepository) Recent(_ context.Context, phone string, limit int) ([]Deposit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	deposits := append([]Deposit(nil), r.deposits[phone]...)
	sort.Slice(deposits, func(i, j int) bool { return deposits[i].Credited.After(deposits[j].Credited) })
	if len(deposits) > limit {
		deposits = deposits[:limit]
	}
	return deposits, nil
}

var _ Repository = (*MemoryRepository)(nil)
