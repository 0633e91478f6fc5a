package room

import (
	"context"
	"testing"
	"time"

	"pokerphase/internal/storage"
)

func TestExpiryQueueOrdering(t *testing.T) {
	q := newExpiryQueue()
	now := time.Now()

	q.schedule(expiryEntry{due: now.Add(3 * time.Second), code: "C"})
	q.schedule(expiryEntry{due: now.Add(1 * time.Second), code: "A"})
	q.schedule(expiryEntry{due: now.Add(2 * time.Second), code: "B"})

	due, next := q.next(now)
	if len(due) != 0 {
		t.Fatalf("nothing is due yet, got %d entries", len(due))
	}
	if !next.Equal(now.Add(1 * time.Second)) {
		t.Errorf("next due should be the earliest entry, got %v", next)
	}

	due, next = q.next(now.Add(2 * time.Second))
	if len(due) != 2 || due[0].code != "A" || due[1].code != "B" {
		t.Fatalf("want A then B due, got %+v", due)
	}
	if !next.Equal(now.Add(3 * time.Second)) {
		t.Errorf("next due should be C's deadline, got %v", next)
	}

	due, next = q.next(now.Add(time.Minute))
	if len(due) != 1 || due[0].code != "C" {
		t.Fatalf("want C due, got %+v", due)
	}
	if !next.IsZero() {
		t.Errorf("drained queue should report zero next due, got %v", next)
	}
}

func TestExpiryQueueClearsPendingBall(t *testing.T) {
	if testing.Short() {
		t.Skip("waits on real timers")
	}

	store := storage.NewMemoryStore()
	reg := NewRegistry(store, nil, 0)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go reg.timers.run(ctx, reg)

	if _, err := reg.Join(ctx, "ROOM1", "u1", "alice", false); err != nil {
		t.Fatalf("join: %v", err)
	}
	if _, err := reg.Join(ctx, "ROOM1", "u2", "bob", false); err != nil {
		t.Fatalf("join: %v", err)
	}

	c, err := reg.Get(ctx, "ROOM1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if _, err := c.ThrowProjectile(ctx, "u1", "u2", "tomato"); err != nil {
		t.Fatalf("throw: %v", err)
	}
	if c.Snapshot().PaperBalls["u2"] == nil {
		t.Fatal("pending entry should exist right after the throw")
	}

	deadline := time.Now().Add(3 * time.Second)
	for c.Snapshot().PaperBalls["u2"] != nil {
		if time.Now().After(deadline) {
			t.Fatal("pending entry was not cleared by the delay queue")
		}
		time.Sleep(50 * time.Millisecond)
	}

	// The replay log lives longer than the pending entry.
	if len(c.Snapshot().Animations) != 1 {
		t.Error("replay log entry should still be present after the pending clear")
	}

	// Cleared state is persisted without bumping LastUpdated.
	persisted, err := store.Get(ctx, "ROOM1")
	if err != nil {
		t.Fatalf("store get: %v", err)
	}
	if len(persisted.PaperBalls) != 0 {
		t.Error("pending clear should be written through to the store")
	}
}
