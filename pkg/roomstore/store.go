package roomstore

import (
	"context"
	"errors"

	"blackjack-server/pkg/playable/blackjack"
)

var (
	// ErrNotFound is returned when the room code does not exist
	ErrNotFound = errors.New("room not found")

	// ErrConflict is returned when the room changed after the caller read it.
	// The caller must read the room again and retry against the fresh snapshot.
	ErrConflict = errors.New("room was modified concurrently")

	// ErrCodeTaken is returned when a room with the same code already exists
	ErrCodeTaken = errors.New("room code is already in use")
)

// Store persists room snapshots. Every write is a compare-and-swap on the room version.
type Store interface {
	// CreateRoom inserts a new room at version 1
	CreateRoom(ctx context.Context, r *blackjack.Room) error

	// ReadRoom returns the latest snapshot
	ReadRoom(ctx context.Context, code string) (*blackjack.Room, error)

	// WriteRoom applies the update only if the room is still at version.
	// It returns the new snapshot, or ErrConflict without applying anything.
	WriteRoom(ctx context.Context, code string, version int64, u *blackjack.Update) (*blackjack.Room, error)

	// Subscribe calls fn with the current snapshot and then with every new one.
	// Snapshots may arrive out of order; compare Version to discard stale ones.
	// The returned func stops the subscription and is safe to call more than once.
	Subscribe(ctx context.Context, code string, fn func(r *blackjack.Room)) (func(), error)
}
