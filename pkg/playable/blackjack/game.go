package blackjack

import (
	"errors"
	"fmt"

	"blackjack-server/internal/rng"
	"blackjack-server/pkg/deck"
	"blackjack-server/pkg/playable"
	"github.com/coder/quartz"
	"github.com/sirupsen/logrus"
)

// Game is the round state machine. It holds the table rules only; every method
// mutates the *Room it is given, which must be a private clone of the snapshot.
type Game struct {
	options Options
	rng     rng.Generator
	clock   quartz.Clock
	logger  logrus.FieldLogger
}

// NewGame returns a new game
func NewGame(logger logrus.FieldLogger, options Options, gen rng.Generator, clock quartz.Clock) (*Game, error) {
	if err := options.Validate(); err != nil {
		return nil, err
	}

	if gen == nil {
		return nil, errors.New("a random generator is required")
	}

	if clock == nil {
		clock = quartz.NewReal()
	}

	return &Game{
		options: options,
		rng:     gen,
		clock:   clock,
		logger:  logger,
	}, nil
}

// Options returns the table rules
func (g *Game) Options() Options {
	return g.options
}

// NewRoom returns a waiting room stamped with the game clock
func (g *Game) NewRoom(code, dealerID, dealerName string) (*Room, error) {
	return NewRoom(code, dealerID, dealerName, g.clock.Now())
}

func (g *Game) requireDealer(r *Room, actorID string, action Action) error {
	if !r.IsDealer(actorID) {
		return fmt.Errorf("%w: only the dealer can %s", ErrUnauthorized, action)
	}

	return nil
}

// seatedPlayer returns the actor's seat; the dealer never has one
func (g *Game) seatedPlayer(r *Room, actorID string, action Action) (*Player, error) {
	if r.IsDealer(actorID) {
		return nil, fmt.Errorf("%w: the dealer cannot %s", ErrUnauthorized, action)
	}

	p, err := r.Player(actorID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	return p, nil
}

// freshShoe replaces the shoe, leaving out cards that are still on the table
func (g *Game) freshShoe(r *Room, onTable []deck.Card) {
	r.Shoe = deck.NewShoe(g.options.DeckCount, g.rng).RemoveCards(onTable)
	r.touch(FieldShoe)

	g.logger.WithFields(logrus.Fields{
		"room":  r.Code,
		"cards": r.Shoe.CardsLeft(),
		"hash":  r.Shoe.HashCode(),
	}).Debug("new shoe")
}

func (g *Game) log(r *Room, playerID string, cards []deck.Card, format string, a ...interface{}) {
	lm := playable.SimpleLogMessage(g.clock.Now(), playerID, format, a...)
	if len(cards) > 0 {
		lm.Cards = append([]deck.Card{}, cards...)
	}

	r.addLogMessages(lm)
}

// draw translates an empty shoe into ErrShoeExhausted
func draw(shoe deck.Shoe) (deck.Card, deck.Shoe, error) {
	card, rest, err := shoe.Draw()
	if errors.Is(err, deck.ErrEndOfDeck) {
		return card, rest, ErrShoeExhausted
	}

	return card, rest, err
}
