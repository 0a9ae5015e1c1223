package testutil

import (
	"context"
	"sync"

	"github.com/recurcart/recurcart/internal/domain/item"
	"github.com/recurcart/recurcart/internal/domain/scheme"
)

// InMemoryProductStore implements item.ProductRepository for tests.
type InMemoryProductStore struct {
	mu          sync.RWMutex
	definitions map[string][]scheme.StoredDefinition
	flags       map[string]*item.SubscriptionFlags
	legacy      map[string]bool
}

func NewInMemoryProductStore() *InMemoryProductStore {
	return &InMemoryProductStore{
		definitions: make(map[string][]scheme.StoredDefinition),
		flags:       make(map[string]*item.SubscriptionFlags),
		legacy:      make(map[string]bool),
	}
}

func (s *InMemoryProductStore) SetDefinitions(productID string, defs []scheme.StoredDefinition) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.definitions[productID] = defs
}

func (s *InMemoryProductStore) SetFlags(productID string, flags *item.SubscriptionFlags) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flags[productID] = flags
}

func (s *InMemoryProductStore) SetLegacy(productID string, legacy bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.legacy[productID] = legacy
}

func (s *InMemoryProductStore) GetSchemeDefinitions(_ context.Context, productID string) ([]scheme.StoredDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.definitions[productID], nil
}

func (s *InMemoryProductStore) GetSubscriptionFlags(_ context.Context, productID string) (*item.SubscriptionFlags, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.flags[productID], nil
}

func (s *InMemoryProductStore) IsLegacySubscription(_ context.Context, productID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.legacy[productID], nil
}

// Clear removes all stored products
func (s *InMemoryProductStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.definitions = make(map[string][]scheme.StoredDefinition)
	s.flags = make(map[string]*item.SubscriptionFlags)
	s.legacy = make(map[string]bool)
}
