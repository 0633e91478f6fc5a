package room

import (
	"container/heap"
	"context"
	"sync"
	"time"
)

type expiryKind int

const (
	// expireBall clears a target's pending throw notification.
	expireBall expiryKind = iota
	// pruneThrows ages out old animation log entries.
	pruneThrows
)

// expiryEntry is one scheduled cleanup. Entries carry enough identity
// (thrownAt for pending balls) for the handler to re-validate that the state
// it was scheduled against is still the current one; an entry firing late
// against overwritten state is a no-op, never a deletion.
type expiryEntry struct {
	due      time.Time
	code     string
	kind     expiryKind
	targetID string
	thrownAt time.Time
}

type expiryHeap []expiryEntry

func (h expiryHeap) Len() int            { return len(h) }
func (h expiryHeap) Less(i, j int) bool  { return h[i].due.Before(h[j].due) }
func (h expiryHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *expiryHeap) Push(x interface{}) { *h = append(*h, x.(expiryEntry)) }
func (h *expiryHeap) Pop() interface{} {
	old := *h
	n := len(old)
	entry := old[n-1]
	*h = old[:n-1]
	return entry
}

// expiryQueue is a process-wide delay queue of pending cleanups, drained by
// one background goroutine. It replaces per-throw timers: overwriting a
// pending entry never cancels the older timer, so handlers re-validate.
type expiryQueue struct {
	mu      sync.Mutex
	entries expiryHeap
	wake    chan struct{}
}

func newExpiryQueue() *expiryQueue {
	q := &expiryQueue{
		wake: make(chan struct{}, 1),
	}
	heap.Init(&q.entries)
	return q
}

// schedule enqueues a cleanup and nudges the runner in case the new entry is
// due before whatever it is currently waiting on.
func (q *expiryQueue) schedule(entry expiryEntry) {
	q.mu.Lock()
	heap.Push(&q.entries, entry)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// next pops every entry due at or before now and reports when the earliest
// remaining entry is due (zero time when the queue is empty).
func (q *expiryQueue) next(now time.Time) ([]expiryEntry, time.Time) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var due []expiryEntry
	for q.entries.Len() > 0 && !q.entries[0].due.After(now) {
		due = append(due, heap.Pop(&q.entries).(expiryEntry))
	}
	if q.entries.Len() == 0 {
		return due, time.Time{}
	}
	return due, q.entries[0].due
}

// run drains the queue until ctx is done, dispatching due entries to their
// room coordinators through the registry. Expiries take the same per-room
// lock as every other mutation.
func (q *expiryQueue) run(ctx context.Context, reg *Registry) {
	timer := time.NewTimer(time.Hour)
	defer timer.Stop()

	for {
		now := time.Now()
		due, nextDue := q.next(now)
		for _, entry := range due {
			c := reg.lookup(entry.code)
			if c == nil {
				continue
			}
			switch entry.kind {
			case expireBall:
				c.expireBall(ctx, entry.targetID, entry.thrownAt)
			case pruneThrows:
				c.pruneThrows(ctx, now)
			}
		}

		wait := time.Hour
		if !nextDue.IsZero() {
			wait = time.Until(nextDue)
			if wait < 0 {
				wait = 0
			}
		}
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(wait)

		select {
		case <-ctx.Done():
			return
		case <-q.wake:
		case <-timer.C:
		}
	}
}
