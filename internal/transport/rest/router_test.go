package rest

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pokerphase/internal/model"
	"pokerphase/internal/room"
	"pokerphase/internal/storage"
	"pokerphase/internal/transport/ws"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	hub := ws.NewHub()
	registry := room.NewRegistry(storage.NewMemoryStore(), hub, 30*time.Minute)
	router := NewRouter(&Container{
		Registry:  registry,
		WSHandler: ws.NewHandler(hub, registry),
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, srv *httptest.Server, path string, body interface{}) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	resp, err := http.Post(srv.URL+path, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	return resp
}

func decodeRoom(t *testing.T, resp *http.Response) *model.Room {
	t.Helper()
	defer resp.Body.Close()
	var envelope struct {
		Success bool        `json:"success"`
		Room    *model.Room `json:"room"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return envelope.Room
}

func joinBody(id, name string, claimHost bool) map[string]interface{} {
	return map[string]interface{}{
		"user": map[string]interface{}{"id": id, "name": name, "isHost": claimHost},
	}
}

func TestGetUnknownRoomReturns404(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/rooms/NOPE99")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("want 404, got %d", resp.StatusCode)
	}
}

func TestInvalidRoomCodeNeverRoutes(t *testing.T) {
	srv := newTestServer(t)

	// Lower-case codes do not match the route pattern at all.
	resp, err := http.Get(srv.URL + "/api/rooms/lowercase")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("want 404 for malformed code, got %d", resp.StatusCode)
	}
}

func TestJoinVoteRevealResetFlow(t *testing.T) {
	srv := newTestServer(t)

	resp := post(t, srv, "/api/rooms/ROOM42/join", joinBody("a1", "alice", false))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("join alice: want 200, got %d", resp.StatusCode)
	}
	state := decodeRoom(t, resp)
	if !state.Participants["a1"].IsHost {
		t.Fatal("alice should be host")
	}

	resp = post(t, srv, "/api/rooms/ROOM42/join", joinBody("b1", "bob", false))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("join bob: want 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Duplicate name is a conflict and must not change the roster.
	resp = post(t, srv, "/api/rooms/ROOM42/join", joinBody("c1", "alice", false))
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("duplicate name: want 409, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = post(t, srv, "/api/rooms/ROOM42/vote", map[string]interface{}{"userId": "a1", "vote": "5"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("alice vote: want 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = post(t, srv, "/api/rooms/ROOM42/vote", map[string]interface{}{"userId": "ghost", "vote": "5"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("unknown voter: want 400, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Only the host may reveal.
	resp = post(t, srv, "/api/rooms/ROOM42/reveal", map[string]interface{}{"userId": "b1"})
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("non-host reveal: want 403, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = post(t, srv, "/api/rooms/ROOM42/reveal", map[string]interface{}{"userId": "a1"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("host reveal: want 200, got %d", resp.StatusCode)
	}
	state = decodeRoom(t, resp)
	if !state.VotesRevealed {
		t.Error("reveal should set votesRevealed")
	}

	// Voting is closed until a reset.
	resp = post(t, srv, "/api/rooms/ROOM42/vote", map[string]interface{}{"userId": "b1", "vote": "13"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("vote after reveal: want 400, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = post(t, srv, "/api/rooms/ROOM42/new-vote", map[string]interface{}{"userId": "a1"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("reset: want 200, got %d", resp.StatusCode)
	}
	state = decodeRoom(t, resp)
	if state.VotesRevealed || len(state.Votes) != 0 {
		t.Error("reset should reopen the round")
	}
}

func TestIssueThrowAndClaimHost(t *testing.T) {
	srv := newTestServer(t)

	post(t, srv, "/api/rooms/ROOM7/join", joinBody("a1", "alice", false)).Body.Close()
	post(t, srv, "/api/rooms/ROOM7/join", joinBody("b1", "bob", false)).Body.Close()

	resp := post(t, srv, "/api/rooms/ROOM7/issue", map[string]interface{}{"userId": "a1", "issue": "payment retries"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("issue update: want 200, got %d", resp.StatusCode)
	}
	if state := decodeRoom(t, resp); state.CurrentIssue != "payment retries" {
		t.Errorf("issue not updated, got %q", state.CurrentIssue)
	}

	resp = post(t, srv, "/api/rooms/ROOM7/paper-ball", map[string]interface{}{
		"fromUserId": "a1", "targetUserId": "b1", "projectileType": "tomato",
	})
	if resp.StatusCode != http.StatusOK {
		t.Errorf("throw: want 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = post(t, srv, "/api/rooms/ROOM7/claim-host", map[string]interface{}{"userId": "b1"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("claim host: want 200, got %d", resp.StatusCode)
	}
	if state := decodeRoom(t, resp); !state.Participants["b1"].IsHost || state.Participants["a1"].IsHost {
		t.Error("claim should move host to bob")
	}

	// Claiming again is a non-error, distinguishable outcome.
	resp = post(t, srv, "/api/rooms/ROOM7/claim-host", map[string]interface{}{"userId": "b1"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("re-claim: want 200, got %d", resp.StatusCode)
	}
	var envelope struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	resp.Body.Close()
	if envelope.Success || envelope.Message == "" {
		t.Errorf("already-host claim should report success=false with a message, got %+v", envelope)
	}
}

func TestLeaveViaQueryParamDeletesEmptyRoom(t *testing.T) {
	srv := newTestServer(t)

	post(t, srv, "/api/rooms/ROOM9/join", joinBody("a1", "alice", false)).Body.Close()

	// sendBeacon path: no JSON body, user id in the query string.
	resp, err := http.Post(srv.URL+"/api/rooms/ROOM9/leave?userId=a1", "text/plain", nil)
	if err != nil {
		t.Fatalf("leave: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("leave: want 200, got %d", resp.StatusCode)
	}

	getResp, err := http.Get(srv.URL + "/api/rooms/ROOM9")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer getResp.Body.Close()
	if getResp.StatusCode != http.StatusNotFound {
		t.Errorf("emptied room should be gone, got %d", getResp.StatusCode)
	}
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("want 200, got %d", resp.StatusCode)
	}
}
