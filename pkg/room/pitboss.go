package room

import (
	"context"

	"blackjack-server/pkg/playable"
	"github.com/sirupsen/logrus"
)

// PitBoss is responsible for dispatching clients to the dealer of their room
type PitBoss struct {
	manager    *Manager
	logger     logrus.FieldLogger
	dealers    map[string]*Dealer
	connect    chan *Client
	disconnect chan *Client
}

// NewPitBoss returns a new dispatch object
func NewPitBoss(logger logrus.FieldLogger, manager *Manager) *PitBoss {
	return &PitBoss{
		manager:    manager,
		logger:     logger,
		dealers:    make(map[string]*Dealer),
		connect:    make(chan *Client, 256),
		disconnect: make(chan *Client, 256),
	}
}

// StartShift starts the PitBoss run loop. It stops when ctx is done.
func (p *PitBoss) StartShift(ctx context.Context) {
	go p.runLoop(ctx)
}

func (p *PitBoss) runLoop(ctx context.Context) {
	for {
		select {
		case client := <-p.connect:
			p.logger.WithField("client", client.String()).Debug("client connected")
			dealer, found := p.dealers[client.code]
			if !found {
				dealer = NewDealer(p.logger, p.manager, client.code)
				if err := dealer.StartShift(ctx); err != nil {
					p.logger.WithError(err).WithField("room", client.code).Warn("could not start dealer")
					client.Send(playable.ErrorResponse("", err))
					client.Stop(err.Error())
					continue
				}

				p.dealers[client.code] = dealer
			}

			dealer.AddClient(client)
		case client := <-p.disconnect:
			p.logger.WithField("client", client.String()).Debug("client disconnected")
			dealer, found := p.dealers[client.code]
			if !found {
				continue
			}

			if dealer.RemoveClient(client) {
				dealer.EndShift()
				delete(p.dealers, client.code)
			}
		case <-ctx.Done():
			for code, dealer := range p.dealers {
				dealer.EndShift()
				delete(p.dealers, code)
			}

			return
		}
	}
}

// ClientConnected is called when a client connects to the server
func (p *PitBoss) ClientConnected(client *Client) {
	p.connect <- client
}

// ClientDisconnected is called when a client disconnects from the server
func (p *PitBoss) ClientDisconnected(client *Client) {
	p.disconnect <- client
}
