// Package storage is the persistence substrate behind the room coordinator.
// Writes are already serialized per room by the coordinator's single-writer
// lock, so implementations never see concurrent writes for the same code.
package storage

import (
	"context"
	"errors"

	"pokerphase/internal/model"
)

// ErrNotFound is returned by Get when no room exists under the given code.
var ErrNotFound = errors.New("room not found in store")

// Store is the write-through room store. The coordinator treats it as the
// source of truth on cold start and writes every committed mutation to it.
type Store interface {
	Get(ctx context.Context, code string) (*model.Room, error)
	Put(ctx context.Context, code string, room *model.Room) error
	Delete(ctx context.Context, code string) error
}
