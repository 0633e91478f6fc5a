package room

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"pokerphase/internal/model"
	"pokerphase/internal/storage"
)

// DefaultIdleTimeout is how long a room may sit without a mutation before
// the sweep removes it, participants or not.
const DefaultIdleTimeout = 30 * time.Minute

// Registry owns every live room coordinator in the process. It is an
// injected dependency of the transports, not a package-level singleton, so
// tests can stand up isolated instances.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*Coordinator

	store       storage.Store
	broadcaster Broadcaster
	timers      *expiryQueue
	idleTimeout time.Duration
}

// NewRegistry creates a registry backed by the given store. The broadcaster
// may be nil when no push channel is attached.
func NewRegistry(store storage.Store, b Broadcaster, idleTimeout time.Duration) *Registry {
	if idleTimeout <= 0 {
		idleTimeout = DefaultIdleTimeout
	}
	return &Registry{
		rooms:       make(map[string]*Coordinator),
		store:       store,
		broadcaster: b,
		timers:      newExpiryQueue(),
		idleTimeout: idleTimeout,
	}
}

// Run drives the registry's background work: the ephemeral-event delay queue
// and the periodic idle sweep. It blocks until ctx is done.
func (r *Registry) Run(ctx context.Context, sweepInterval time.Duration) {
	go r.timers.run(ctx, r)

	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep(ctx, time.Now())
		}
	}
}

// lookup returns the in-memory coordinator for code, or nil.
func (r *Registry) lookup(code string) *Coordinator {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.rooms[code]
}

// Get resolves a room that must already exist. On an in-memory miss the
// store is consulted, so rooms survive a process restart; a miss in both
// yields ErrRoomNotFound.
func (r *Registry) Get(ctx context.Context, code string) (*Coordinator, error) {
	if c := r.lookup(code); c != nil {
		return c, nil
	}

	state, err := r.store.Get(ctx, code)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.rooms[code]; ok {
		return c, nil
	}
	c := newCoordinator(code, state, r.store, r.broadcaster, r.timers)
	r.rooms[code] = c
	return c, nil
}

// getOrCreate resolves a room for the join path, creating it in the default
// phase when it exists neither in memory nor in the store.
func (r *Registry) getOrCreate(ctx context.Context, code string) (*Coordinator, error) {
	c, err := r.Get(ctx, code)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, ErrRoomNotFound) {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.rooms[code]; ok {
		return c, nil
	}
	c = newCoordinator(code, model.NewRoom(code), r.store, r.broadcaster, r.timers)
	r.rooms[code] = c
	return c, nil
}

// remove drops the coordinator and deletes the room from the store.
func (r *Registry) remove(ctx context.Context, code string) {
	r.mu.Lock()
	delete(r.rooms, code)
	r.mu.Unlock()

	if err := r.store.Delete(ctx, code); err != nil {
		log.Printf("delete room %s from store: %v", code, err)
	}
}

// Join adds a participant to the room, creating the room on first join.
func (r *Registry) Join(ctx context.Context, code, userID, name string, claimHost bool) (*model.Room, error) {
	c, err := r.getOrCreate(ctx, code)
	if err != nil {
		return nil, err
	}
	return c.Join(ctx, userID, name, claimHost)
}

// Leave removes a participant; once the last participant is gone the room is
// deleted immediately rather than waiting for the idle sweep.
func (r *Registry) Leave(ctx context.Context, code, userID string) error {
	c, err := r.Get(ctx, code)
	if err != nil {
		return err
	}
	_, empty, err := c.Leave(ctx, userID)
	if err != nil {
		return err
	}
	if empty {
		r.remove(ctx, code)
		log.Printf("room %s is empty, removed", code)
	}
	return nil
}

// Sweep removes every room whose last mutation is older than the idle
// timeout, regardless of participant count.
func (r *Registry) Sweep(ctx context.Context, now time.Time) {
	r.mu.RLock()
	codes := make([]string, 0, len(r.rooms))
	for code, c := range r.rooms {
		if now.Sub(c.LastUpdated()) > r.idleTimeout {
			codes = append(codes, code)
		}
	}
	r.mu.RUnlock()

	for _, code := range codes {
		r.remove(ctx, code)
		log.Printf("cleaned up inactive room: %s", code)
	}
}
