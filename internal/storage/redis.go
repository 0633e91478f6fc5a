package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"pokerphase/internal/model"
)

// RedisStore keeps each room as a JSON value under room:<code>. The key TTL
// is a backstop only; the lifecycle sweep deletes idle rooms well before it.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a redis-backed room store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		ttl:    24 * time.Hour,
	}
}

func (s *RedisStore) key(code string) string {
	return fmt.Sprintf("room:%s", code)
}

func (s *RedisStore) Get(ctx context.Context, code string) (*model.Room, error) {
	data, err := s.client.Get(ctx, s.key(code)).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var room model.Room
	if err := json.Unmarshal([]byte(data), &room); err != nil {
		return nil, fmt.Errorf("decode room %s: %w", code, err)
	}
	return &room, nil
}

func (s *RedisStore) Put(ctx context.Context, code string, room *model.Room) error {
	data, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("encode room %s: %w", code, err)
	}
	return s.client.Set(ctx, s.key(code), data, s.ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, code string) error {
	return s.client.Del(ctx, s.key(code)).Err()
}
