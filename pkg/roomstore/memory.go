package roomstore

import (
	"context"
	"fmt"
	"sync"

	"blackjack-server/pkg/playable/blackjack"
)

// Memory is an in-process Store
type Memory struct {
	mu    sync.Mutex
	rooms map[string]*blackjack.Room
	subs  *subscribers
}

var _ Store = (*Memory)(nil)

// NewMemory returns an empty in-memory store
func NewMemory() *Memory {
	return &Memory{
		rooms: make(map[string]*blackjack.Room),
		subs:  newSubscribers(),
	}
}

// CreateRoom inserts a new room at version 1
func (m *Memory) CreateRoom(ctx context.Context, r *blackjack.Room) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.rooms[r.Code]; ok {
		return fmt.Errorf("%w: %s", ErrCodeTaken, r.Code)
	}

	r.Version = 1
	m.rooms[r.Code] = r.Clone()
	return nil
}

// ReadRoom returns a copy of the latest snapshot
func (m *Memory) ReadRoom(ctx context.Context, code string) (*blackjack.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.rooms[code]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, code)
	}

	return r.Clone(), nil
}

// WriteRoom applies the update if the room is still at version
func (m *Memory) WriteRoom(ctx context.Context, code string, version int64, u *blackjack.Update) (*blackjack.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	cur, ok := m.rooms[code]
	if !ok {
		m.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrNotFound, code)
	}

	if cur.Version != version {
		m.mu.Unlock()
		return nil, fmt.Errorf("%w: room %s is at version %d, not %d", ErrConflict, code, cur.Version, version)
	}

	next := cur.Clone()
	u.Apply(next)
	next = next.Clone()
	next.Version++
	m.rooms[code] = next
	m.mu.Unlock()

	m.subs.publish(next)
	return next.Clone(), nil
}

// Subscribe delivers the current snapshot and every later write to fn
func (m *Memory) Subscribe(ctx context.Context, code string, fn func(r *blackjack.Room)) (func(), error) {
	unsubscribe := m.subs.add(ctx, code, fn)
	r, err := m.ReadRoom(ctx, code)
	if err != nil {
		unsubscribe()
		return nil, err
	}

	fn(r)
	return unsubscribe, nil
}
