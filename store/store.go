package store

import (
	"context"
	"errors"

	"onenight/game"
)

var (
	ErrNotFound = errors.New("session not found")
	// ErrStale means the stored blob has a revision at or past the one
	// being written; the writer should reload and retry.
	ErrStale = errors.New("stale session revision")
)

// Store keeps session blobs keyed by room code. Put only accepts blobs
// whose revision is ahead of the stored one, so concurrent writers
// cannot silently undo each other.
type Store interface {
	Get(ctx context.Context, roomCode string) (*game.Session, error)
	Put(ctx context.Context, s *game.Session) error
	Delete(ctx context.Context, roomCode string) error
	Close() error
}
