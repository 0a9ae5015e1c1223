package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/recurcart/recurcart/internal/domain/cart"
	"github.com/recurcart/recurcart/internal/types"
)

// InMemorySessionStore implements cart.SessionRepository for tests.
type InMemorySessionStore struct {
	mu         sync.RWMutex
	cartKeys   map[string]types.ActiveSchemeState
	lineStates map[string]cart.SchemeApplicationState
}

func NewInMemorySessionStore() *InMemorySessionStore {
	return &InMemorySessionStore{
		cartKeys:   make(map[string]types.ActiveSchemeState),
		lineStates: make(map[string]cart.SchemeApplicationState),
	}
}

func lineKey(cartID, lineID string) string {
	return fmt.Sprintf("%s:%s", cartID, lineID)
}

func (s *InMemorySessionStore) GetCartSchemeKey(_ context.Context, cartID string) (types.ActiveSchemeState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.cartKeys[cartID]
	if !ok {
		return types.UndefinedScheme(), nil
	}
	return state, nil
}

func (s *InMemorySessionStore) SetCartSchemeKey(_ context.Context, cartID string, state types.ActiveSchemeState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cartKeys[cartID] = state
	return nil
}

func (s *InMemorySessionStore) GetLineState(_ context.Context, cartID, lineID string) (cart.SchemeApplicationState, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.lineStates[lineKey(cartID, lineID)]
	return state, ok, nil
}

func (s *InMemorySessionStore) SetLineState(_ context.Context, cartID, lineID string, state cart.SchemeApplicationState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lineStates[lineKey(cartID, lineID)] = state
	return nil
}

func (s *InMemorySessionStore) DeleteLineState(_ context.Context, cartID, lineID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.lineStates, lineKey(cartID, lineID))
	return nil
}

// Clear removes all stored session state
func (s *InMemorySessionStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cartKeys = make(map[string]types.ActiveSchemeState)
	s.lineStates = make(map[string]cart.SchemeApplicationState)
}
