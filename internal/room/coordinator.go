package room

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"pokerphase/internal/model"
	"pokerphase/internal/storage"
)

const (
	// paperBallTTL is how long a pending throw notification stays attached
	// to its target before the delay queue clears it.
	paperBallTTL = 1 * time.Second

	// throwLogTTL bounds the animation replay log; entries older than this
	// are pruned regardless of traffic.
	throwLogTTL = 10 * time.Second
)

// Broadcaster pushes a full room snapshot to every push-channel session of a
// room. Delivery is best effort and never reports back to the mutation.
type Broadcaster interface {
	BroadcastRoomState(code string, room *model.Room)
}

// Coordinator owns the authoritative state of one room. Every mutation runs
// under the coordinator's lock, so a room only ever sees a single writer;
// different rooms are fully independent.
//
// Mutations follow one commit discipline: validate against current state,
// mutate a clone, write the clone through to the store, and only then swap
// it in and broadcast. A failed persistence write leaves both the in-memory
// state and the sessions untouched.
type Coordinator struct {
	code string

	mu    sync.Mutex
	state *model.Room

	store       storage.Store
	broadcaster Broadcaster
	timers      *expiryQueue
}

func newCoordinator(code string, state *model.Room, store storage.Store, b Broadcaster, timers *expiryQueue) *Coordinator {
	return &Coordinator{
		code:        code,
		state:       state,
		store:       store,
		broadcaster: b,
		timers:      timers,
	}
}

// Code returns the room code.
func (c *Coordinator) Code() string {
	return c.code
}

// Snapshot returns a deep copy of the current room state. This backs the
// pull channel and the push channel's initial state message.
func (c *Coordinator) Snapshot() *model.Room {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// LastUpdated reports the room's last mutation time, for the idle sweep.
func (c *Coordinator) LastUpdated() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.LastUpdated
}

// commit persists next and, on success, makes it the current state and
// broadcasts it. Called with the coordinator lock held.
func (c *Coordinator) commit(ctx context.Context, next *model.Room) (*model.Room, error) {
	next.LastUpdated = time.Now()
	if err := c.store.Put(ctx, c.code, next); err != nil {
		return nil, fmt.Errorf("persist room %s: %w", c.code, err)
	}
	c.state = next
	snap := next.Clone()
	if c.broadcaster != nil {
		c.broadcaster.BroadcastRoomState(c.code, snap)
	}
	return snap, nil
}

// Join adds a participant. The first participant becomes host, as does any
// joiner that explicitly claims host; membership is the only gate.
func (c *Coordinator) Join(ctx context.Context, userID, name string, claimHost bool) (*model.Room, error) {
	if userID == "" || name == "" {
		return nil, ErrInvalidRequest
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, p := range c.state.Participants {
		if p.Name == name {
			return nil, ErrNameConflict
		}
	}

	next := c.state.Clone()
	isHost := len(next.Participants) == 0 || claimHost
	if isHost {
		// A claiming joiner takes host rather than becoming a second one.
		for _, p := range next.Participants {
			p.IsHost = false
		}
	}
	next.Participants[userID] = &model.Participant{
		ID:       userID,
		Name:     name,
		IsHost:   isHost,
		JoinedAt: time.Now(),
	}
	return c.commit(ctx, next)
}

// Vote records, replaces, or (with a nil value) retracts a participant's
// vote. Votes are rejected once the round has been revealed, until a reset.
func (c *Coordinator) Vote(ctx context.Context, userID string, vote *string) (*model.Room, error) {
	if userID == "" {
		return nil, ErrInvalidRequest
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.state.Participants[userID]; !ok {
		return nil, ErrUnknownParticipant
	}
	if c.state.VotesRevealed {
		return nil, ErrRoundAlreadyOver
	}

	next := c.state.Clone()
	p := next.Participants[userID]
	if vote == nil {
		delete(next.Votes, userID)
		p.HasVoted = false
		p.Vote = nil
	} else {
		v := *vote
		next.Votes[userID] = v
		p.HasVoted = true
		p.Vote = &v
	}
	return c.commit(ctx, next)
}

// Reveal flips the room into the revealed phase. Host only, and only when at
// least one vote exists.
func (c *Coordinator) Reveal(ctx context.Context, userID string) (*model.Room, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.state.Participants[userID]
	if !ok || !p.IsHost {
		return nil, ErrPermissionDenied
	}
	if c.state.VotedCount() == 0 {
		return nil, ErrNothingToReveal
	}

	next := c.state.Clone()
	next.VotesRevealed = true
	return c.commit(ctx, next)
}

// ResetVoting opens a fresh round: votes, pending throws, and the animation
// log are all cleared. Host only. This is the single transition back to the
// voting-open phase.
func (c *Coordinator) ResetVoting(ctx context.Context, userID string) (*model.Room, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.state.Participants[userID]
	if !ok || !p.IsHost {
		return nil, ErrPermissionDenied
	}

	next := c.state.Clone()
	next.Votes = make(map[string]string)
	next.VotesRevealed = false
	next.VotingActive = true
	next.PaperBalls = make(map[string]*model.PaperBall)
	next.Animations = nil
	for _, participant := range next.Participants {
		participant.HasVoted = false
		participant.Vote = nil
	}
	return c.commit(ctx, next)
}

// UpdateIssue replaces the issue under estimation. Host only. It does not
// reset votes; clients combine it with ResetVoting when moving to a new item.
func (c *Coordinator) UpdateIssue(ctx context.Context, userID, issue string) (*model.Room, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.state.Participants[userID]
	if !ok || !p.IsHost {
		return nil, ErrPermissionDenied
	}

	next := c.state.Clone()
	next.CurrentIssue = issue
	return c.commit(ctx, next)
}

// ThrowProjectile records an ephemeral nudge from one participant to
// another: a pending notification on the target (at most one, newest wins)
// and an entry in the animation replay log. Both self-expire via the delay
// queue. Non-hosts may only target participants who have not voted yet.
func (c *Coordinator) ThrowProjectile(ctx context.Context, fromID, targetID, kind string) (*model.Room, error) {
	if fromID == "" || targetID == "" {
		return nil, ErrInvalidRequest
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	from, ok := c.state.Participants[fromID]
	if !ok {
		return nil, ErrUnknownParticipant
	}
	target, ok := c.state.Participants[targetID]
	if !ok {
		return nil, ErrUnknownParticipant
	}
	if target.HasVoted && !from.IsHost {
		return nil, ErrTargetAlreadyVoted
	}
	if c.state.VotesRevealed {
		return nil, ErrRoundAlreadyOver
	}

	now := time.Now()
	next := c.state.Clone()
	next.PaperBalls[targetID] = &model.PaperBall{
		FromUserID:   fromID,
		FromUserName: from.Name,
		ThrownAt:     now,
	}
	next.Animations = append(next.Animations, &model.ThrowEvent{
		ID:             uuid.NewString(),
		FromUserID:     fromID,
		FromUserName:   from.Name,
		TargetUserID:   targetID,
		TargetUserName: target.Name,
		Projectile:     model.NormalizeProjectile(kind),
		CreatedAt:      now,
	})

	snap, err := c.commit(ctx, next)
	if err != nil {
		return nil, err
	}
	if c.timers != nil {
		c.timers.schedule(expiryEntry{
			due:      now.Add(paperBallTTL),
			code:     c.code,
			kind:     expireBall,
			targetID: targetID,
			thrownAt: now,
		})
		c.timers.schedule(expiryEntry{
			due:  now.Add(throwLogTTL),
			code: c.code,
			kind: pruneThrows,
		})
	}
	return snap, nil
}

// Leave removes a participant. It is idempotent: leaving a room you are not
// in is a no-op, since explicit leaves are fire-and-forget and may race the
// push channel's disconnect path. The caller learns whether the room emptied.
func (c *Coordinator) Leave(ctx context.Context, userID string) (*model.Room, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.state.Participants[userID]
	if !ok {
		snap := c.state.Clone()
		return snap, len(snap.Participants) == 0, nil
	}
	wasHost := p.IsHost

	next := c.state.Clone()
	delete(next.Participants, userID)
	delete(next.Votes, userID)
	delete(next.PaperBalls, userID)

	if wasHost && len(next.Participants) > 0 {
		next.Participants[earliestJoined(next.Participants)].IsHost = true
	}

	snap, err := c.commit(ctx, next)
	if err != nil {
		return nil, false, err
	}
	return snap, len(snap.Participants) == 0, nil
}

// earliestJoined picks the successor host: earliest remaining joiner, ties
// broken by id so the choice is deterministic.
func earliestJoined(participants map[string]*model.Participant) string {
	ids := make([]string, 0, len(participants))
	for id := range participants {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	best := ids[0]
	for _, id := range ids[1:] {
		if participants[id].JoinedAt.Before(participants[best].JoinedAt) {
			best = id
		}
	}
	return best
}

// ClaimHost transfers host to the requester. Any member may claim at any
// time; an existing host claiming again is reported as alreadyHost, not as
// an error.
func (c *Coordinator) ClaimHost(ctx context.Context, userID string) (*model.Room, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.state.Participants[userID]
	if !ok {
		return nil, false, ErrUnknownParticipant
	}
	if p.IsHost {
		return c.state.Clone(), true, nil
	}

	next := c.state.Clone()
	for _, participant := range next.Participants {
		participant.IsHost = false
	}
	next.Participants[userID].IsHost = true

	snap, err := c.commit(ctx, next)
	if err != nil {
		return nil, false, err
	}
	return snap, false, nil
}

// expireBall clears the pending notification for targetID, but only if it is
// still the throw scheduled at thrownAt. A newer throw overwrites the entry
// without cancelling the older timer, so the stale timer must not delete it.
func (c *Coordinator) expireBall(ctx context.Context, targetID string, thrownAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ball, ok := c.state.PaperBalls[targetID]
	if !ok || !ball.ThrownAt.Equal(thrownAt) {
		return
	}

	// Expiry is garbage collection, not activity: LastUpdated stays put so
	// an abandoned room still ages out.
	next := c.state.Clone()
	delete(next.PaperBalls, targetID)
	if err := c.store.Put(ctx, c.code, next); err != nil {
		log.Printf("room %s: persist paper ball expiry: %v", c.code, err)
		return
	}
	c.state = next
}

// pruneThrows drops animation log entries older than throwLogTTL.
func (c *Coordinator) pruneThrows(ctx context.Context, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := now.Add(-throwLogTTL)
	kept := c.state.Animations[:0:0]
	for _, ev := range c.state.Animations {
		if ev.CreatedAt.After(cutoff) {
			kept = append(kept, ev)
		}
	}
	if len(kept) == len(c.state.Animations) {
		return
	}

	next := c.state.Clone()
	next.Animations = nil
	for _, ev := range kept {
		event := *ev
		next.Animations = append(next.Animations, &event)
	}
	if err := c.store.Put(ctx, c.code, next); err != nil {
		log.Printf("room %s: persist throw log prune: %v", c.code, err)
		return
	}
	c.state = next
}
