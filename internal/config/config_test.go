package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("want default port 8080, got %q", cfg.Port)
	}
	if cfg.StorageBackend != "memory" {
		t.Errorf("want default backend memory, got %q", cfg.StorageBackend)
	}
	if cfg.RoomIdleTimeout != 30*time.Minute {
		t.Errorf("want default idle timeout 30m, got %v", cfg.RoomIdleTimeout)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STORAGE_BACKEND", "redis")
	t.Setenv("ROOM_IDLE_TIMEOUT", "15m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9090" || cfg.StorageBackend != "redis" || cfg.RoomIdleTimeout != 15*time.Minute {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
}
