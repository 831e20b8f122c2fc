package roomstore

import (
	"context"
	"sync"

	"blackjack-server/pkg/playable/blackjack"
)

type subscriber func(r *blackjack.Room)

// subscribers fans snapshots out to every listener of a room
type subscribers struct {
	mu     sync.Mutex
	nextID int
	byCode map[string]map[int]subscriber
}

func newSubscribers() *subscribers {
	return &subscribers{byCode: make(map[string]map[int]subscriber)}
}

// add registers fn and returns a func that removes it once ctx is done or it is called
func (s *subscribers) add(ctx context.Context, code string, fn subscriber) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	if s.byCode[code] == nil {
		s.byCode[code] = make(map[int]subscriber)
	}

	s.byCode[code][id] = fn
	s.mu.Unlock()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()

			delete(s.byCode[code], id)
			if len(s.byCode[code]) == 0 {
				delete(s.byCode, code)
			}
		})
	}

	context.AfterFunc(ctx, unsubscribe)
	return unsubscribe
}

func (s *subscribers) has(code string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.byCode[code]) > 0
}

func (s *subscribers) codes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	codes := make([]string, 0, len(s.byCode))
	for code := range s.byCode {
		codes = append(codes, code)
	}

	return codes
}

// publish calls every subscriber of the room with its own copy of r.
// It must not be called while holding a store lock.
func (s *subscribers) publish(r *blackjack.Room) {
	s.mu.Lock()
	fns := make([]subscriber, 0, len(s.byCode[r.Code]))
	for _, fn := range s.byCode[r.Code] {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(r.Clone())
	}
}
