package rest

import (
	"net/http"

	"github.com/gorilla/mux"

	"pokerphase/internal/room"
	"pokerphase/internal/transport/rest/handler"
	"pokerphase/internal/transport/ws"
)

// Container holds all dependencies for the router.
type Container struct {
	Registry           *room.Registry
	WSHandler          *ws.Handler
	CORSAllowedOrigins string
}

// NewRouter creates the API router. Room codes are validated in the route
// pattern itself; anything else never reaches a handler.
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	roomHandler := handler.NewRoomHandler(c.Registry)

	r.Use(corsMiddleware(c.CORSAllowedOrigins))

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/rooms/{code:[A-Z0-9]+}", roomHandler.Get).Methods("GET", "OPTIONS")
	api.HandleFunc("/rooms/{code:[A-Z0-9]+}/join", roomHandler.Join).Methods("POST", "OPTIONS")
	api.HandleFunc("/rooms/{code:[A-Z0-9]+}/vote", roomHandler.Vote).Methods("POST", "OPTIONS")
	api.HandleFunc("/rooms/{code:[A-Z0-9]+}/reveal", roomHandler.Reveal).Methods("POST", "OPTIONS")
	api.HandleFunc("/rooms/{code:[A-Z0-9]+}/new-vote", roomHandler.NewVote).Methods("POST", "OPTIONS")
	api.HandleFunc("/rooms/{code:[A-Z0-9]+}/issue", roomHandler.UpdateIssue).Methods("POST", "OPTIONS")
	api.HandleFunc("/rooms/{code:[A-Z0-9]+}/paper-ball", roomHandler.Throw).Methods("POST", "OPTIONS")
	api.HandleFunc("/rooms/{code:[A-Z0-9]+}/leave", roomHandler.Leave).Methods("POST", "OPTIONS")
	api.HandleFunc("/rooms/{code:[A-Z0-9]+}/claim-host", roomHandler.ClaimHost).Methods("POST", "OPTIONS")

	// Push channel
	api.HandleFunc("/rooms/{code:[A-Z0-9]+}/ws", c.WSHandler.RoomWS).Methods("GET")

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	return r
}

func corsMiddleware(allowedOrigins string) mux.MiddlewareFunc {
	if allowedOrigins == "" {
		allowedOrigins = "*"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
