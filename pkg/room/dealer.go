package room

import (
	"context"
	"sync"

	"blackjack-server/pkg/playable"
	"blackjack-server/pkg/playable/blackjack"
	"github.com/sirupsen/logrus"
)

// Dealer pushes the snapshots of one room to its connected clients
// and forwards client commands to the manager
type Dealer struct {
	manager *Manager
	code    string
	logger  logrus.FieldLogger

	lock     sync.RWMutex
	clients  map[*Client]bool
	snapshot *blackjack.Room

	ctx         context.Context
	unsubscribe func()
}

// NewDealer creates a new dealer object
// This is called from a blocking state, so it needs to return quickly
func NewDealer(logger logrus.FieldLogger, manager *Manager, code string) *Dealer {
	return &Dealer{
		manager: manager,
		code:    code,
		logger:  logger.WithField("room", code),
		clients: make(map[*Client]bool),
	}
}

// StartShift subscribes to the room
func (d *Dealer) StartShift(ctx context.Context) error {
	d.ctx = ctx
	unsubscribe, err := d.manager.Subscribe(ctx, d.code, d.roomChanged)
	if err != nil {
		return err
	}

	d.unsubscribe = unsubscribe
	d.logger.Debug("dealer started")
	return nil
}

// EndShift is called when the dealer is no longer needed
func (d *Dealer) EndShift() {
	if d.unsubscribe != nil {
		d.unsubscribe()
	}

	d.logger.Debug("dealer ended")
}

// Clients will return a slice of connected (at the time) clients
func (d *Dealer) Clients() []*Client {
	d.lock.RLock()
	defer d.lock.RUnlock()

	clients := make([]*Client, 0, len(d.clients))
	for client := range d.clients {
		clients = append(clients, client)
	}

	return clients
}

// roomChanged sends a newer snapshot to every client. Stale snapshots are dropped.
func (d *Dealer) roomChanged(r *blackjack.Room) {
	d.lock.Lock()
	defer d.lock.Unlock()

	if d.snapshot != nil && r.Version <= d.snapshot.Version {
		return
	}

	d.snapshot = r
	for client := range d.clients {
		d.sendState(client, r)
	}
}

// NOTE: must be called with the lock held
func (d *Dealer) sendState(c *Client, r *blackjack.Room) {
	state := NewClientState(r, d.manager.Actions(r, c.PlayerID()))

	if !c.Send(&playable.Response{Key: "roomState", Data: state}) {
		d.logger.WithField("client", c.String()).Warn("client is not keeping up, dropped room state")
	}
}

// AddClient adds a client and sends it the latest snapshot
// This method must return quickly
func (d *Dealer) AddClient(client *Client) {
	d.lock.Lock()
	defer d.lock.Unlock()

	client.dealer = d
	d.clients[client] = true
	if d.snapshot != nil {
		d.sendState(client, d.snapshot)
	}
}

// RemoveClient removes a client
// This method must return quickly
func (d *Dealer) RemoveClient(client *Client) (lastClient bool) {
	d.lock.Lock()
	defer d.lock.Unlock()

	delete(d.clients, client)
	return len(d.clients) == 0
}

// ReceivedMessage is called when a client sends a message to the server.
// Results and errors go back to the sending client only; everyone sees the new snapshot.
func (d *Dealer) ReceivedMessage(c *Client, msg *playable.PayloadIn) {
	cmd, err := blackjack.CommandFromPayload(msg)
	if err != nil {
		c.Send(playable.ErrorResponse(msg.Context, err))
		return
	}

	ctx := d.ctx
	if ctx == nil {
		ctx = context.Background()
	}

	if _, err := d.manager.Apply(ctx, d.code, c.playerID, cmd); err != nil {
		c.Send(playable.ErrorResponse(msg.Context, err))
		return
	}

	c.Send(playable.OK(msg.Context))
}
