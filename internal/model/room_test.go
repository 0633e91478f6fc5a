package model

import (
	"encoding/json"
	"testing"
	"time"
)

func sampleRoom() *Room {
	room := NewRoom("ROOM1")
	vote := "8"
	room.Participants["u1"] = &Participant{
		ID:       "u1",
		Name:     "alice",
		IsHost:   true,
		HasVoted: true,
		Vote:     &vote,
		JoinedAt: time.Now(),
	}
	room.Votes["u1"] = "8"
	room.PaperBalls["u1"] = &PaperBall{
		FromUserID:   "u2",
		FromUserName: "bob",
		ThrownAt:     time.Now(),
	}
	room.Animations = append(room.Animations, &ThrowEvent{
		ID:           "ev-1",
		FromUserID:   "u2",
		TargetUserID: "u1",
		Projectile:   ProjectileTomato,
		CreatedAt:    time.Now(),
	})
	return room
}

func TestCloneIsDeep(t *testing.T) {
	room := sampleRoom()
	clone := room.Clone()

	clone.Participants["u1"].Name = "mallory"
	*clone.Participants["u1"].Vote = "13"
	clone.Votes["u1"] = "13"
	clone.PaperBalls["u1"].FromUserName = "mallory"
	clone.Animations[0].Projectile = ProjectileBoomerang

	if room.Participants["u1"].Name != "alice" {
		t.Error("participant shared between clone and original")
	}
	if *room.Participants["u1"].Vote != "8" {
		t.Error("vote pointer shared between clone and original")
	}
	if room.Votes["u1"] != "8" {
		t.Error("votes map shared between clone and original")
	}
	if room.PaperBalls["u1"].FromUserName != "bob" {
		t.Error("paper ball shared between clone and original")
	}
	if room.Animations[0].Projectile != ProjectileTomato {
		t.Error("animation entry shared between clone and original")
	}
}

func TestRoomJSONRoundTrip(t *testing.T) {
	room := sampleRoom()

	data, err := json.Marshal(room)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got Room
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if got.Code != room.Code || got.CurrentIssue != room.CurrentIssue {
		t.Error("scalar fields did not round trip")
	}
	if got.VotingActive != room.VotingActive || got.VotesRevealed != room.VotesRevealed {
		t.Error("phase flags did not round trip")
	}
	p := got.Participants["u1"]
	if p == nil || p.Name != "alice" || !p.IsHost || !p.HasVoted || p.Vote == nil || *p.Vote != "8" {
		t.Errorf("participant did not round trip: %+v", p)
	}
	if got.Votes["u1"] != "8" {
		t.Error("votes did not round trip")
	}
	if got.Animations[0].ID != "ev-1" || got.Animations[0].Projectile != ProjectileTomato {
		t.Error("animation entry did not round trip")
	}
}

func TestNormalizeProjectile(t *testing.T) {
	tests := []struct {
		in   string
		want Projectile
	}{
		{"boomerang", ProjectileBoomerang},
		{"paperball", ProjectilePaperBall},
		{"tomato", ProjectileTomato},
		{"anvil", ProjectileBoomerang},
		{"", ProjectileBoomerang},
	}
	for _, tt := range tests {
		if got := NormalizeProjectile(tt.in); got != tt.want {
			t.Errorf("NormalizeProjectile(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestHostIDAndVotedCount(t *testing.T) {
	room := sampleRoom()
	if room.HostID() != "u1" {
		t.Errorf("want host u1, got %q", room.HostID())
	}
	if room.VotedCount() != 1 {
		t.Errorf("want 1 voted, got %d", room.VotedCount())
	}

	empty := NewRoom("EMPTY1")
	if empty.HostID() != "" {
		t.Error("empty room should have no host")
	}
}
