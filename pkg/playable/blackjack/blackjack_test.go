package blackjack

import (
	"context"
	"testing"
	"time"

	"blackjack-server/internal/rng"
	"blackjack-server/pkg/deck"
	"github.com/coder/quartz"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
)

const (
	testRoomCode = "ABC123"
	testDealerID = "dealer"
)

// stackedShoe returns a shoe that deals the cards in the order given
func stackedShoe(cards string) deck.Shoe {
	dealt := deck.CardsFromString(cards)
	shoe := make(deck.Shoe, len(dealt))
	for i, c := range dealt {
		shoe[len(dealt)-1-i] = c
	}

	return shoe
}

func newTestGame(t *testing.T, opts ...func(o *Options)) (*Game, *quartz.Mock) {
	t.Helper()

	options := DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}

	clock := quartz.NewMock(t)
	logger, _ := test.NewNullLogger()
	g, err := NewGame(logger, options, rng.NewSeeded(1), clock)
	if err != nil {
		t.Fatal(err)
	}

	return g, clock
}

// newTestRoom returns a room in the betting phase with the players seated in order
func newTestRoom(t *testing.T, g *Game, clock *quartz.Mock, cards string, playerIDs ...string) *Room {
	t.Helper()

	r, err := g.NewRoom(testRoomCode, testDealerID, "Dealer")
	if err != nil {
		t.Fatal(err)
	}

	for _, id := range playerIDs {
		clock.Advance(time.Second).MustWait(context.Background())
		if err := g.Join(r, id, "Player "+id); err != nil {
			t.Fatal(err)
		}
	}

	if err := g.StartGame(r, testDealerID); err != nil {
		t.Fatal(err)
	}

	r.Shoe = stackedShoe(cards)
	return r
}

// betAll places a main bet of amount for every player
func betAll(t *testing.T, g *Game, r *Room, amount int, playerIDs ...string) {
	t.Helper()

	for _, id := range playerIDs {
		if err := g.PlaceBet(r, id, amount, nil); err != nil {
			t.Fatal(err)
		}
	}
}

func mainHand(r *Room, playerID string) *Hand {
	return r.Players[playerID].Hands[0]
}

func TestNewGame(t *testing.T) {
	a := assert.New(t)
	logger, _ := test.NewNullLogger()

	g, err := NewGame(logger, DefaultOptions(), rng.NewSeeded(1), nil)
	a.NoError(err)
	a.NotNil(g.clock)
	a.Equal(DefaultOptions(), g.Options())

	_, err = NewGame(logger, DefaultOptions(), nil, nil)
	a.EqualError(err, "a random generator is required")

	opts := DefaultOptions()
	opts.MinBet = 0
	_, err = NewGame(logger, opts, rng.NewSeeded(1), nil)
	a.EqualError(err, "min bet must be > 0")
}
