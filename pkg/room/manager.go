package room

import (
	"context"
	"errors"
	"fmt"

	"blackjack-server/internal/util"
	"blackjack-server/pkg/playable/blackjack"
	"blackjack-server/pkg/roomstore"
	"blackjack-server/pkg/token"
	"github.com/sirupsen/logrus"
)

// createAttempts is how many codes are tried before CreateRoom gives up
const createAttempts = 5

// Manager runs every action as one read-apply-write transaction against the store.
// An action is applied to a private clone of the snapshot and persisted as a single
// Update guarded by the snapshot's version, so a rejected action never changes the room.
type Manager struct {
	store  roomstore.Store
	game   *blackjack.Game
	codes  *token.RoomCodes
	logger logrus.FieldLogger
}

// NewManager returns a new manager
func NewManager(logger logrus.FieldLogger, store roomstore.Store, game *blackjack.Game, codes *token.RoomCodes) *Manager {
	return &Manager{
		store:  store,
		game:   game,
		codes:  codes,
		logger: logger,
	}
}

// CreateRoom opens a new room run by the dealer
func (m *Manager) CreateRoom(ctx context.Context, dealerID, dealerName string) (*blackjack.Room, error) {
	if dealerName == "" {
		dealerName = util.GetRandomName()
	}

	for i := 0; i < createAttempts; i++ {
		r, err := m.game.NewRoom(m.codes.Generate(), dealerID, dealerName)
		if err != nil {
			return nil, err
		}

		err = m.store.CreateRoom(ctx, r)
		if errors.Is(err, roomstore.ErrCodeTaken) {
			m.logger.WithField("room", r.Code).Debug("room code collision")
			continue
		}

		if err != nil {
			return nil, err
		}

		m.logger.WithFields(logrus.Fields{
			"room":  r.Code,
			"actor": dealerID,
		}).Info("room created")
		return r, nil
	}

	return nil, fmt.Errorf("could not find a free room code after %d attempts", createAttempts)
}

// Room returns the latest snapshot
func (m *Manager) Room(ctx context.Context, code string) (*blackjack.Room, error) {
	return m.store.ReadRoom(ctx, code)
}

// Subscribe passes every new snapshot of the room to fn
func (m *Manager) Subscribe(ctx context.Context, code string, fn func(r *blackjack.Room)) (func(), error) {
	return m.store.Subscribe(ctx, code, fn)
}

// Actions returns what the participant can do in the snapshot
func (m *Manager) Actions(r *blackjack.Room, actorID string) []blackjack.Action {
	return m.game.ActionsFor(r, actorID)
}

// JoinRoom seats the player with the table's starting chips
func (m *Manager) JoinRoom(ctx context.Context, code, playerID, name string) (*blackjack.Room, error) {
	if name == "" {
		name = util.GetRandomName()
	}

	snapshot, err := m.store.ReadRoom(ctx, code)
	if err != nil {
		return nil, err
	}

	return m.commit(ctx, snapshot, playerID, "join", func(r *blackjack.Room) error {
		return m.game.Join(r, playerID, name)
	})
}

// Apply runs the command against the latest snapshot
func (m *Manager) Apply(ctx context.Context, code, actorID string, cmd blackjack.Command) (*blackjack.Room, error) {
	snapshot, err := m.store.ReadRoom(ctx, code)
	if err != nil {
		return nil, err
	}

	return m.ApplyTo(ctx, snapshot, actorID, cmd)
}

// ApplyTo runs the command against a snapshot the caller already holds.
// If the room has moved on since, roomstore.ErrConflict is returned and nothing is written.
func (m *Manager) ApplyTo(ctx context.Context, snapshot *blackjack.Room, actorID string, cmd blackjack.Command) (*blackjack.Room, error) {
	return m.commit(ctx, snapshot, actorID, cmd.Action.String(), func(r *blackjack.Room) error {
		return m.game.Apply(r, actorID, cmd)
	})
}

func (m *Manager) commit(ctx context.Context, snapshot *blackjack.Room, actorID, action string, fn func(r *blackjack.Room) error) (*blackjack.Room, error) {
	log := m.logger.WithFields(logrus.Fields{
		"room":   snapshot.Code,
		"actor":  actorID,
		"action": action,
		"phase":  snapshot.GameState,
	})

	next := snapshot.Clone()
	if err := fn(next); err != nil {
		log.WithError(err).Info("action rejected")
		return nil, err
	}

	u := next.Changes()
	if u.IsEmpty() {
		return snapshot, nil
	}

	written, err := m.store.WriteRoom(ctx, snapshot.Code, snapshot.Version, u)
	if err != nil {
		if errors.Is(err, roomstore.ErrConflict) {
			log.WithError(err).Info("action lost a write race")
		} else {
			log.WithError(err).Error("could not write room")
		}

		return nil, err
	}

	log.WithFields(logrus.Fields{
		"version": written.Version,
		"fields":  u.Fields(),
	}).Debug("action applied")
	return written, nil
}
