package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"pokerphase/internal/config"
	"pokerphase/internal/room"
	"pokerphase/internal/storage"
	"pokerphase/internal/transport/rest"
	"pokerphase/internal/transport/ws"
)

func main() {
	log.Println("started")
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("load config:", err)
	}

	store, cleanup := openStore(ctx, cfg)
	defer cleanup()

	hub := ws.NewHub()
	log.Println("WebSocket hub started")

	registry := room.NewRegistry(store, hub, cfg.RoomIdleTimeout)
	go registry.Run(ctx, cfg.SweepInterval)

	wsHandler := ws.NewHandler(hub, registry)

	router := rest.NewRouter(&rest.Container{
		Registry:           registry,
		WSHandler:          wsHandler,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("PokerPhase server running on :%s (storage: %s)", cfg.Port, cfg.StorageBackend)
		log.Println("Endpoints:")
		log.Println("  GET  /api/rooms/{code}")
		log.Println("  POST /api/rooms/{code}/join|vote|reveal|new-vote|issue|paper-ball|leave|claim-host")
		log.Println("  WS   /api/rooms/{code}/ws")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe:", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}

// openStore connects the configured persistence substrate and returns it
// with a close function.
func openStore(ctx context.Context, cfg *config.Config) (storage.Store, func()) {
	switch cfg.StorageBackend {
	case "redis":
		addr := strings.TrimPrefix(cfg.RedisURI, "redis://")
		rdb := redis.NewClient(&redis.Options{Addr: addr})
		if _, err := rdb.Ping(ctx).Result(); err != nil {
			log.Fatal("Failed to ping Redis:", err)
		}
		log.Println("Connected to Redis")
		return storage.NewRedisStore(rdb), func() { rdb.Close() }

	case "mongo":
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			log.Fatal("Failed to connect to MongoDB:", err)
		}
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx, nil); err != nil {
			log.Fatal("Failed to ping MongoDB:", err)
		}
		log.Println("Connected to MongoDB")
		db := client.Database(cfg.MongoDatabase)
		return storage.NewMongoStore(db), func() { client.Disconnect(context.Background()) }

	case "memory":
		log.Println("Warning: in-memory storage, rooms will not survive a restart")
		return storage.NewMemoryStore(), func() {}

	default:
		log.Fatalf("unknown storage backend %q", cfg.StorageBackend)
		return nil, nil
	}
}
