package ws

import (
	"encoding/json"
	"log"
	"sync"

	"pokerphase/internal/model"
)

// MessageType defines the type of a WebSocket envelope.
type MessageType string

const (
	// MsgRoomState carries a full room snapshot, pushed after every
	// mutation and on connect.
	MsgRoomState MessageType = "room-state"
	// MsgRequestRoomState is sent by clients that want a resend.
	MsgRequestRoomState MessageType = "request-room-state"
)

// Message is the WebSocket envelope format.
type Message struct {
	Type MessageType     `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Session is one push-channel connection for a (room, participant) pair.
type Session struct {
	RoomCode string
	UserID   string
	UserName string
	Send     chan []byte
}

// Hub is the session registry and broadcaster. It fans a room's state out to
// every session of that room; delivery to one session never blocks or fails
// delivery to the others, and a session that cannot keep up is dropped.
type Hub struct {
	// roomCode -> userID -> session
	sessions map[string]map[string]*Session
	mu       sync.RWMutex

	register   chan *Session
	unregister chan *Session
	broadcast  chan *stateMessage
}

type stateMessage struct {
	roomCode string
	payload  []byte
}

// NewHub creates a hub and starts its coordination loop.
func NewHub() *Hub {
	h := &Hub{
		sessions:   make(map[string]map[string]*Session),
		register:   make(chan *Session),
		unregister: make(chan *Session),
		broadcast:  make(chan *stateMessage, 256),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case sess := <-h.register:
			h.mu.Lock()
			if h.sessions[sess.RoomCode] == nil {
				h.sessions[sess.RoomCode] = make(map[string]*Session)
			}
			// A reconnect replaces any prior session for the same user.
			if prior, ok := h.sessions[sess.RoomCode][sess.UserID]; ok && prior != sess {
				close(prior.Send)
			}
			h.sessions[sess.RoomCode][sess.UserID] = sess
			h.mu.Unlock()
			log.Printf("user %s connected to room %s", sess.UserID, sess.RoomCode)

		case sess := <-h.unregister:
			h.mu.Lock()
			if users, ok := h.sessions[sess.RoomCode]; ok {
				if existing, ok := users[sess.UserID]; ok && existing == sess {
					delete(users, sess.UserID)
					close(sess.Send)
					if len(users) == 0 {
						delete(h.sessions, sess.RoomCode)
					}
					log.Printf("user %s disconnected from room %s", sess.UserID, sess.RoomCode)
				}
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			for _, sess := range h.sessions[msg.roomCode] {
				select {
				case sess.Send <- msg.payload:
				default:
					// Slow consumer; drop the frame, the next state push
					// or a poll will catch the client up.
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a session to the registry.
func (h *Hub) Register(sess *Session) {
	h.register <- sess
}

// Unregister removes a session from the registry.
func (h *Hub) Unregister(sess *Session) {
	h.unregister <- sess
}

// BroadcastRoomState pushes a full room snapshot to every session in the
// room. Implements room.Broadcaster.
func (h *Hub) BroadcastRoomState(code string, state *model.Room) {
	payload, err := EncodeRoomState(state)
	if err != nil {
		log.Printf("encode room state for %s: %v", code, err)
		return
	}
	h.broadcast <- &stateMessage{roomCode: code, payload: payload}
}

// EncodeRoomState wraps a room snapshot in the push-channel envelope.
func EncodeRoomState(state *model.Room) ([]byte, error) {
	data, err := json.Marshal(state)
	if err != nil {
		return nil, err
	}
	return json.Marshal(&Message{Type: MsgRoomState, Data: data})
}
