package storage

import (
	"context"
	"sync"

	"pokerphase/internal/model"
)

// MemoryStore is an in-process room store for single-node deployments and
// tests. Rooms are cloned on the way in and out so callers never share state
// with the store.
type MemoryStore struct {
	mu    sync.RWMutex
	rooms map[string]*model.Room
}

// NewMemoryStore creates an empty in-memory room store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rooms: make(map[string]*model.Room),
	}
}

func (s *MemoryStore) Get(ctx context.Context, code string) (*model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[code]
	if !ok {
		return nil, ErrNotFound
	}
	return room.Clone(), nil
}

func (s *MemoryStore) Put(ctx context.Context, code string, room *model.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[code] = room.Clone()
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, code)
	return nil
}
