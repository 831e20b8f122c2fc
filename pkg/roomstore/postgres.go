package roomstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"blackjack-server/pkg/db"
	"blackjack-server/pkg/playable/blackjack"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

// notifyChannel carries the code of every room that was written
const notifyChannel = "room_updates"

// listenerPingInterval keeps the LISTEN connection from idling out
const listenerPingInterval = 90 * time.Second

// uniqueViolation is the Postgres error code for a duplicate key
const uniqueViolation = "23505"

// Postgres stores each room as a JSONB document with a version column.
// Writes merge the changed top-level fields into the document and NOTIFY listeners.
type Postgres struct {
	db       *sql.DB
	listener *pq.Listener
	logger   logrus.FieldLogger
	subs     *subscribers
	done     chan struct{}
}

var _ Store = (*Postgres)(nil)

// NewPostgres returns a store backed by conn. dsn is used for the dedicated LISTEN connection.
func NewPostgres(logger logrus.FieldLogger, conn *sql.DB, dsn string) (*Postgres, error) {
	p := &Postgres{
		db:     conn,
		logger: logger,
		subs:   newSubscribers(),
		done:   make(chan struct{}),
	}

	p.listener = pq.NewListener(dsn, 10*time.Second, time.Minute, p.listenerEvent)
	if err := p.listener.Listen(notifyChannel); err != nil {
		_ = p.listener.Close()
		return nil, err
	}

	go p.listen()
	return p, nil
}

// Close stops delivering snapshots to subscribers
func (p *Postgres) Close() error {
	close(p.done)
	return p.listener.Close()
}

func (p *Postgres) listenerEvent(ev pq.ListenerEventType, err error) {
	if err != nil {
		p.logger.WithError(err).WithField("event", ev).Warn("room listener")
	}
}

func (p *Postgres) listen() {
	ticker := time.NewTicker(listenerPingInterval)
	defer ticker.Stop()

	for {
		select {
		case n, ok := <-p.listener.Notify:
			if !ok {
				return
			}

			if n == nil {
				// the connection was re-established; anything could have been missed
				for _, code := range p.subs.codes() {
					p.refresh(code)
				}

				continue
			}

			p.refresh(n.Extra)
		case <-ticker.C:
			go func() {
				if err := p.listener.Ping(); err != nil {
					p.logger.WithError(err).Warn("room listener ping failed")
				}
			}()
		case <-p.done:
			return
		}
	}
}

func (p *Postgres) refresh(code string) {
	if !p.subs.has(code) {
		return
	}

	r, err := p.ReadRoom(context.Background(), code)
	if err != nil {
		p.logger.WithError(err).WithField("room", code).Error("could not read room after notification")
		return
	}

	p.subs.publish(r)
}

func scanRoom(row db.Scanner) (*blackjack.Room, error) {
	var doc []byte
	var version int64
	if err := row.Scan(&doc, &version); err != nil {
		return nil, err
	}

	var r blackjack.Room
	if err := json.Unmarshal(doc, &r); err != nil {
		return nil, err
	}

	if !r.GameState.Valid() {
		return nil, fmt.Errorf("room %s has an unknown game state: %q", r.Code, r.GameState)
	}

	r.Version = version
	return &r, nil
}

// CreateRoom inserts a new room at version 1
func (p *Postgres) CreateRoom(ctx context.Context, r *blackjack.Room) error {
	r.Version = 1
	doc, err := json.Marshal(r)
	if err != nil {
		return err
	}

	const query = `
INSERT INTO rooms (code, doc, version)
VALUES ($1, $2::jsonb, 1)`

	if _, err := p.db.ExecContext(ctx, query, r.Code, string(doc)); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("%w: %s", ErrCodeTaken, r.Code)
		}

		return err
	}

	return nil
}

// ReadRoom returns the latest snapshot
func (p *Postgres) ReadRoom(ctx context.Context, code string) (*blackjack.Room, error) {
	const query = `
SELECT doc, version
FROM rooms
WHERE code = $1`

	r, err := scanRoom(p.db.QueryRowContext(ctx, query, code))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, code)
	}

	return r, err
}

// WriteRoom merges the update into the document if the room is still at version
func (p *Postgres) WriteRoom(ctx context.Context, code string, version int64, u *blackjack.Update) (*blackjack.Room, error) {
	doc, err := json.Marshal(u)
	if err != nil {
		return nil, err
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	const query = `
UPDATE rooms
SET doc     = doc || $1::jsonb,
    version = version + 1,
    updated = NOW()
WHERE code = $2
  AND version = $3
RETURNING doc, version`

	r, err := scanRoom(tx.QueryRowContext(ctx, query, string(doc), code, version))
	if err != nil {
		p.rollback(tx)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, p.writeRejected(ctx, code, version)
		}

		return nil, err
	}

	// delivered to listeners when the transaction commits
	if _, err := tx.ExecContext(ctx, `SELECT pg_notify($1, $2)`, notifyChannel, code); err != nil {
		p.rollback(tx)
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return r, nil
}

// writeRejected tells a missing room apart from a stale version
func (p *Postgres) writeRejected(ctx context.Context, code string, version int64) error {
	var current int64
	row := p.db.QueryRowContext(ctx, `SELECT version FROM rooms WHERE code = $1`, code)
	if err := row.Scan(&current); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %s", ErrNotFound, code)
		}

		return err
	}

	return fmt.Errorf("%w: room %s is at version %d, not %d", ErrConflict, code, current, version)
}

// Subscribe delivers the current snapshot and every later write to fn
func (p *Postgres) Subscribe(ctx context.Context, code string, fn func(r *blackjack.Room)) (func(), error) {
	unsubscribe := p.subs.add(ctx, code, fn)
	r, err := p.ReadRoom(ctx, code)
	if err != nil {
		unsubscribe()
		return nil, err
	}

	fn(r)
	return unsubscribe, nil
}

func (p *Postgres) rollback(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil {
		p.logger.WithError(err).Error("could not rollback transaction")
	}
}
