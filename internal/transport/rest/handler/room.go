package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"pokerphase/internal/room"
)

// RoomHandler exposes every room operation over the request/response
// channel. Each endpoint calls the same coordinator method as the push
// channel, so both channels converge on identical state.
type RoomHandler struct {
	registry *room.Registry
}

// NewRoomHandler creates a new room handler.
func NewRoomHandler(registry *room.Registry) *RoomHandler {
	return &RoomHandler{registry: registry}
}

// Get handles GET /api/rooms/{code}. This is the pull channel: clients poll
// it and compare lastUpdated against their local view.
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	c, err := h.registry.Get(r.Context(), code)
	if err != nil {
		writeRoomError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c.Snapshot())
}

// JoinRequest is the request body for joining a room.
type JoinRequest struct {
	User struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		ClaimHost bool   `json:"isHost"`
	} `json:"user"`
}

// Join handles POST /api/rooms/{code}/join.
func (h *RoomHandler) Join(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	var req JoinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	state, err := h.registry.Join(r.Context(), code, req.User.ID, req.User.Name, req.User.ClaimHost)
	if err != nil {
		writeRoomError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "room": state})
}

// VoteRequest is the request body for casting a vote. A null vote retracts
// the caller's current vote.
type VoteRequest struct {
	UserID string  `json:"userId"`
	Vote   *string `json:"vote"`
}

// Vote handles POST /api/rooms/{code}/vote.
func (h *RoomHandler) Vote(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	var req VoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.registry.Get(r.Context(), code)
	if err != nil {
		writeRoomError(w, err)
		return
	}
	state, err := c.Vote(r.Context(), req.UserID, req.Vote)
	if err != nil {
		writeRoomError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "room": state})
}

// HostRequest is the request body for host-only operations.
type HostRequest struct {
	UserID string `json:"userId"`
}

// Reveal handles POST /api/rooms/{code}/reveal.
func (h *RoomHandler) Reveal(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	var req HostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.registry.Get(r.Context(), code)
	if err != nil {
		writeRoomError(w, err)
		return
	}
	state, err := c.Reveal(r.Context(), req.UserID)
	if err != nil {
		writeRoomError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "room": state})
}

// NewVote handles POST /api/rooms/{code}/new-vote.
func (h *RoomHandler) NewVote(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	var req HostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.registry.Get(r.Context(), code)
	if err != nil {
		writeRoomError(w, err)
		return
	}
	state, err := c.ResetVoting(r.Context(), req.UserID)
	if err != nil {
		writeRoomError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "room": state})
}

// IssueRequest is the request body for renaming the current issue.
type IssueRequest struct {
	UserID string `json:"userId"`
	Issue  string `json:"issue"`
}

// UpdateIssue handles POST /api/rooms/{code}/issue.
func (h *RoomHandler) UpdateIssue(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	var req IssueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.registry.Get(r.Context(), code)
	if err != nil {
		writeRoomError(w, err)
		return
	}
	state, err := c.UpdateIssue(r.Context(), req.UserID, req.Issue)
	if err != nil {
		writeRoomError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "room": state})
}

// ThrowRequest is the request body for throwing a projectile.
type ThrowRequest struct {
	FromUserID     string `json:"fromUserId"`
	TargetUserID   string `json:"targetUserId"`
	ProjectileType string `json:"projectileType"`
}

// Throw handles POST /api/rooms/{code}/paper-ball.
func (h *RoomHandler) Throw(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	var req ThrowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.registry.Get(r.Context(), code)
	if err != nil {
		writeRoomError(w, err)
		return
	}
	if _, err := c.ThrowProjectile(r.Context(), req.FromUserID, req.TargetUserID, req.ProjectileType); err != nil {
		writeRoomError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// LeaveRequest is the request body for leaving a room.
type LeaveRequest struct {
	UserID string `json:"userId"`
}

// Leave handles POST /api/rooms/{code}/leave. The user id may also arrive as
// a query parameter: browsers leaving via navigator.sendBeacon cannot always
// set a JSON body.
func (h *RoomHandler) Leave(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	userID := r.URL.Query().Get("userId")
	if userID == "" {
		var req LeaveRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			userID = req.UserID
		}
	}
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user id required")
		return
	}

	if err := h.registry.Leave(r.Context(), code, userID); err != nil {
		writeRoomError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// ClaimHost handles POST /api/rooms/{code}/claim-host.
func (h *RoomHandler) ClaimHost(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	var req HostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.registry.Get(r.Context(), code)
	if err != nil {
		writeRoomError(w, err)
		return
	}
	state, alreadyHost, err := c.ClaimHost(r.Context(), req.UserID)
	if err != nil {
		writeRoomError(w, err)
		return
	}
	if alreadyHost {
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": false, "message": "you are already the host"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "room": state})
}

// writeRoomError maps the coordinator error taxonomy onto HTTP statuses.
func writeRoomError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, room.ErrRoomNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, room.ErrPermissionDenied):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, room.ErrNameConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, room.ErrUnknownParticipant),
		errors.Is(err, room.ErrNothingToReveal),
		errors.Is(err, room.ErrTargetAlreadyVoted),
		errors.Is(err, room.ErrRoundAlreadyOver),
		errors.Is(err, room.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
