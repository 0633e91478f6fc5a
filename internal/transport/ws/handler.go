package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"pokerphase/internal/room"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins, same policy as the REST CORS default
	},
}

// Handler handles push-channel connections.
type Handler struct {
	hub      *Hub
	registry *room.Registry
}

// NewHandler creates a new WebSocket handler.
func NewHandler(hub *Hub, registry *room.Registry) *Handler {
	return &Handler{hub: hub, registry: registry}
}

// RoomWS handles GET /api/rooms/{code}/ws?user=<id>&name=<name>. The current
// room state is pushed immediately after the upgrade; a room that no longer
// exists is rejected before it, which clients treat as "room closed".
func (h *Handler) RoomWS(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	userID := r.URL.Query().Get("user")
	userName := r.URL.Query().Get("name")

	if userID == "" {
		http.Error(w, "missing user parameter", http.StatusBadRequest)
		return
	}

	c, err := h.registry.Get(r.Context(), code)
	if err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}

	sess := &Session{
		RoomCode: code,
		UserID:   userID,
		UserName: userName,
		Send:     make(chan []byte, 256),
	}
	h.hub.Register(sess)

	// Initial state push so the client renders without waiting for the
	// first mutation.
	if payload, err := EncodeRoomState(c.Snapshot()); err == nil {
		sess.Send <- payload
	}

	go h.writePump(wsConn, sess)
	go h.readPump(wsConn, sess, c)
}

func (h *Handler) readPump(wsConn *websocket.Conn, sess *Session, c *room.Coordinator) {
	defer func() {
		h.hub.Unregister(sess)
		wsConn.Close()

		// A dropped push channel is treated as the participant leaving;
		// best effort, an explicit leave may already have removed them.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := h.registry.Leave(ctx, sess.RoomCode, sess.UserID); err != nil && !errors.Is(err, room.ErrRoomNotFound) {
			log.Printf("leave on disconnect for user %s in room %s: %v", sess.UserID, sess.RoomCode, err)
		}
	}()

	wsConn.SetReadLimit(maxMessageSize)
	wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		wsConn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := wsConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("websocket error for user %s: %v", sess.UserID, err)
			}
			break
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		if msg.Type == MsgRequestRoomState {
			if payload, err := EncodeRoomState(c.Snapshot()); err == nil {
				select {
				case sess.Send <- payload:
				default:
				}
			}
		}
	}
}

func (h *Handler) writePump(wsConn *websocket.Conn, sess *Session) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		wsConn.Close()
	}()

	for {
		select {
		case message, ok := <-sess.Send:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				wsConn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := wsConn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
