package room

import (
	"context"
	"testing"
	"time"

	"blackjack-server/internal/rng"
	"blackjack-server/pkg/deck"
	"blackjack-server/pkg/playable"
	"blackjack-server/pkg/playable/blackjack"
	"blackjack-server/pkg/roomstore"
	"blackjack-server/pkg/token"
	"github.com/coder/quartz"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

var cbg = context.Background()

const dealerID = "dealer"

func newTestManager(t *testing.T) (*Manager, *roomstore.Memory, *blackjack.Game) {
	t.Helper()

	logger, _ := test.NewNullLogger()
	game, err := blackjack.NewGame(logger, blackjack.DefaultOptions(), rng.NewSeeded(1), quartz.NewMock(t))
	require.NoError(t, err)

	store := roomstore.NewMemory()
	return NewManager(logger, store, game, token.NewRoomCodes(rng.NewSeeded(2))), store, game
}

// stackedShoe returns a shoe that deals the cards in the order given
func stackedShoe(cards string) deck.Shoe {
	dealt := deck.CardsFromString(cards)
	shoe := make(deck.Shoe, len(dealt))
	for i, c := range dealt {
		shoe[len(dealt)-1-i] = c
	}

	return shoe
}

// newBettingRoom stores a room in the betting phase with a stacked shoe
func newBettingRoom(t *testing.T, store roomstore.Store, game *blackjack.Game, cards string, playerIDs ...string) *blackjack.Room {
	t.Helper()

	r, err := game.NewRoom("TABLE1", dealerID, "Dealer")
	require.NoError(t, err)
	for _, id := range playerIDs {
		require.NoError(t, game.Join(r, id, id))
	}

	require.NoError(t, game.StartGame(r, dealerID))
	r.Shoe = stackedShoe(cards)
	require.NoError(t, store.CreateRoom(cbg, r))
	return r
}

func receiveResponse(t *testing.T, c *Client) *playable.Response {
	t.Helper()

	select {
	case msg := <-c.SendChan():
		return msg.(*playable.Response)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a message")
	}

	return nil
}

func assertNoMessage(t *testing.T, c *Client) {
	t.Helper()

	select {
	case msg := <-c.SendChan():
		t.Errorf("unexpected message: %#v", msg)
	case <-time.After(50 * time.Millisecond):
	}
}
