package directory

import (
	"context"
	"sync"
)

type memoryRepository struct {
	mu       sync.RWMutex
	accounts map[string]Account
}

// NewMemoryRepository builds an in-memory account store for testing.
func NewMemoryRepository() Repository {
	return &memoryRepository{accounts: make(map[string]Account)}
}

func (r *memoryRepository) Create(_ context.Context, account Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.accounts[account.Phone]; exists {
		return ErrExists
	}
	r.accounts[account.Phone] = account
	return nil
}

func (r *memoryRepository) FindByPhone(_ context.Context, phone string) (Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	account, ok := r.accounts[phone]
	if !ok {
		return Account{}, ErrNotFound
	}
	return account, nil
}

func (r *memoryRepository) UpdateAlias(_ context.Context, phone, alias string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.accounts[phone]
	if !ok {
		return ErrNotFound
	}
	account.Alias = alias
	r.accounts[phone] = account
	return nil
}

func (r *memoryRepository) UpdatePIN(_ context.Context, phone string, pinHash []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.accounts[phone]
	if !ok {
		return ErrNotFound
	}
	account.PINHash = pinHash
	r.accounts[phone] = account
	return nil
}
