package model

import "time"

// Participant is one member of a room. IDs are supplied by the client
// session, not issued by the server; names must be unique within a room.
type Participant struct {
	ID       string    `json:"id" bson:"id"`
	Name     string    `json:"name" bson:"name"`
	IsHost   bool      `json:"isHost" bson:"isHost"`
	HasVoted bool      `json:"hasVoted" bson:"hasVoted"`
	Vote     *string   `json:"vote" bson:"vote"`
	JoinedAt time.Time `json:"joinedAt" bson:"joinedAt"`
}

// Clone returns a copy of the participant, including the vote value.
func (p *Participant) Clone() *Participant {
	c := *p
	if p.Vote != nil {
		v := *p.Vote
		c.Vote = &v
	}
	return &c
}
