package model

import "time"

// DefaultIssue is the issue label a freshly created room starts with.
const DefaultIssue = "Ready to estimate the first story"

// Room is the authoritative state of one estimation session. It is owned by
// a single room coordinator; nothing outside that coordinator mutates it.
type Room struct {
	Code          string                  `json:"code" bson:"code"`
	Participants  map[string]*Participant `json:"participants" bson:"participants"`
	Votes         map[string]string       `json:"votes" bson:"votes"`
	VotingActive  bool                    `json:"votingActive" bson:"votingActive"`
	VotesRevealed bool                    `json:"votesRevealed" bson:"votesRevealed"`
	CurrentIssue  string                  `json:"currentIssue" bson:"currentIssue"`
	PaperBalls    map[string]*PaperBall   `json:"paperBalls" bson:"paperBalls"`
	Animations    []*ThrowEvent           `json:"animations" bson:"animations"`
	LastUpdated   time.Time               `json:"lastUpdated" bson:"lastUpdated"`
}

// NewRoom creates an empty room in the default phase.
func NewRoom(code string) *Room {
	return &Room{
		Code:         code,
		Participants: make(map[string]*Participant),
		Votes:        make(map[string]string),
		CurrentIssue: DefaultIssue,
		PaperBalls:   make(map[string]*PaperBall),
		LastUpdated:  time.Now(),
	}
}

// Clone returns a deep copy of the room. Coordinators mutate a clone and
// commit it only after the persistence write succeeds, and hand clones to
// transports so nothing outside the room lock can reach live state.
func (r *Room) Clone() *Room {
	c := &Room{
		Code:          r.Code,
		Participants:  make(map[string]*Participant, len(r.Participants)),
		Votes:         make(map[string]string, len(r.Votes)),
		VotingActive:  r.VotingActive,
		VotesRevealed: r.VotesRevealed,
		CurrentIssue:  r.CurrentIssue,
		PaperBalls:    make(map[string]*PaperBall, len(r.PaperBalls)),
		LastUpdated:   r.LastUpdated,
	}
	for id, p := range r.Participants {
		c.Participants[id] = p.Clone()
	}
	for id, v := range r.Votes {
		c.Votes[id] = v
	}
	for id, b := range r.PaperBalls {
		ball := *b
		c.PaperBalls[id] = &ball
	}
	if len(r.Animations) > 0 {
		c.Animations = make([]*ThrowEvent, len(r.Animations))
		for i, ev := range r.Animations {
			event := *ev
			c.Animations[i] = &event
		}
	}
	return c
}

// VotedCount reports how many participants have a recorded vote.
func (r *Room) VotedCount() int {
	n := 0
	for _, p := range r.Participants {
		if p.HasVoted {
			n++
		}
	}
	return n
}

// HostID returns the id of the current host, or "" when the room is empty.
func (r *Room) HostID() string {
	for id, p := range r.Participants {
		if p.IsHost {
			return id
		}
	}
	return ""
}
