package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the full process configuration, loaded from the environment.
type Config struct {
	Port string `env:"PORT" envDefault:"8080"`

	// StorageBackend selects the persistence substrate: redis, mongo, or
	// memory (single-node, state lost on restart).
	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"memory"`
	RedisURI       string `env:"REDIS_URI" envDefault:"localhost:6379"`
	MongoURI       string `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	MongoDatabase  string `env:"MONGO_DATABASE" envDefault:"pokerphase"`

	RoomIdleTimeout time.Duration `env:"ROOM_IDLE_TIMEOUT" envDefault:"30m"`
	SweepInterval   time.Duration `env:"SWEEP_INTERVAL" envDefault:"30m"`

	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`
}

// Load parses the configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}
