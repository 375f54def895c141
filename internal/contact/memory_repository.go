package contact

import (
	"context"
	"sort"
	"strings"
	"sync"
)

type memoryRepository struct {
	mu       sync.RWMutex
	contacts map[string][]Contact
}

// NewMemoryRepository builds an in-memory contact store for testing.
func NewMemoryRepository() Repository {
	return &memoryRepository{contacts: make(map[string][]Contact)}
}

func (r *memoryRepository) Add(_ context.Context, c Contact) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.Name = strings.ToLower(c.Name)
	book := r.contacts[c.OwnerPhone]
	for i, existing := range book {
		if existing.Name == c.Name {
			book[i] = c
			return nil
		}
	}
	r.contacts[c.OwnerPhone] = append(book, c)
	return nil
}

func (r *memoryRepository) List(_ context.Context, ownerPhone string) ([]Contact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	book := append([]Contact(nil), r.contacts[ownerPhone]...)
	sort.Slice(book, func(i, j int) bool { return book[i].CreatedAt.After(book[j].CreatedAt) })
	return book, nil
}

func (r *memoryRepository) FindByName(_ context.Context, ownerPhone, name string) ([]Contact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name = strings.ToLower(name)
	var matches []Contact
	for _, c := range r.contacts[ownerPhone] {
		if c.Name == name {
			matches = append(matches, c)
		}
	}
	return matches, nil
}
