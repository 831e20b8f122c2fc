package room

import (
	"context"
	"testing"

	"blackjack-server/pkg/deck"
	"blackjack-server/pkg/playable"
	"blackjack-server/pkg/playable/blackjack"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
)

func TestDealer_AddClient(t *testing.T) {
	logger, _ := test.NewNullLogger()
	d := NewDealer(logger, nil, "ABC123")
	c := NewClient(nil, "a", "ABC123")
	c2 := NewClient(nil, "b", "ABC123")

	d.AddClient(c)
	d.AddClient(c2)
	assert.Len(t, d.Clients(), 2)

	assert.False(t, d.RemoveClient(c))
	assert.True(t, d.RemoveClient(c2))
}

func TestPitBoss(t *testing.T) {
	a := assert.New(t)
	m, store, game := newTestManager(t)
	r := newBettingRoom(t, store, game, "10c,10h,10d,8d,6s,9c,13c", "a", "b")

	ctx, cancel := context.WithCancel(cbg)
	defer cancel()

	logger, _ := test.NewNullLogger()
	p := NewPitBoss(logger, m)
	p.StartShift(ctx)

	ca := NewClient(nil, "a", r.Code)
	cb := NewClient(nil, "b", r.Code)
	p.ClientConnected(ca)
	p.ClientConnected(cb)

	res := receiveResponse(t, ca)
	a.Equal("roomState", res.Key)
	state := res.Data.(*ClientState)
	a.Equal(int64(1), state.Room.Version)
	a.Nil(state.Room.Shoe)
	a.Greater(state.CardsLeft, 0)
	a.Equal([]blackjack.Action{blackjack.ActionReady, blackjack.ActionBet, blackjack.ActionLeave}, state.Actions)
	a.Equal("roomState", receiveResponse(t, cb).Key)

	// a successful action is acknowledged to the sender and pushed to everyone
	ca.ReceivedMessage(&playable.PayloadIn{
		Action:         "bet",
		AdditionalData: playable.AdditionalData{"amount": float64(10000)},
		Context:        "bet-1",
	})

	res = receiveResponse(t, ca)
	a.Equal("roomState", res.Key)
	a.Equal(int64(2), res.Data.(*ClientState).Room.Version)
	a.Equal(playable.OK("bet-1"), receiveResponse(t, ca))

	res = receiveResponse(t, cb)
	a.Equal(int64(2), res.Data.(*ClientState).Room.Version)
	a.Equal(90000, res.Data.(*ClientState).Room.Players["a"].Chips)

	// errors only go to the sender
	cb.ReceivedMessage(&playable.PayloadIn{Action: "deal", Context: "deal-1"})
	res = receiveResponse(t, cb)
	a.Equal("error", res.Key)
	a.Equal("deal-1", res.Context)
	a.Equal("unauthorized: only the dealer can deal", res.Value)
	assertNoMessage(t, ca)

	cb.ReceivedMessage(&playable.PayloadIn{Action: "surrender", Context: "x"})
	a.Equal("invalid action: surrender", receiveResponse(t, cb).Value)

	p.ClientDisconnected(ca)
	p.ClientDisconnected(cb)
}

func TestPitBoss_holeCard(t *testing.T) {
	a := assert.New(t)
	m, store, game := newTestManager(t)
	r := newBettingRoom(t, store, game, "10c,10h,10d,8d,6s,9c,13c", "a", "b")

	apply := func(actorID string, cmd blackjack.Command) {
		t.Helper()
		_, err := m.Apply(cbg, r.Code, actorID, cmd)
		a.NoError(err)
	}

	apply("a", blackjack.Command{Action: blackjack.ActionBet, Amount: 10000})
	apply("b", blackjack.Command{Action: blackjack.ActionBet, Amount: 10000})
	apply(dealerID, blackjack.Command{Action: blackjack.ActionDeal})

	ctx, cancel := context.WithCancel(cbg)
	defer cancel()

	logger, _ := test.NewNullLogger()
	p := NewPitBoss(logger, m)
	p.StartShift(ctx)

	ca := NewClient(nil, "a", r.Code)
	p.ClientConnected(ca)

	// only the up-card is shown while hands are in play
	state := receiveResponse(t, ca).Data.(*ClientState)
	a.Equal(blackjack.PhasePlaying, state.Room.GameState)
	a.Equal("10d", deck.CardsToString(state.Room.DealerCards))
	a.Equal(1, state.HiddenDealerCards)

	apply("a", blackjack.Command{Action: blackjack.ActionStand})
	state = receiveResponse(t, ca).Data.(*ClientState)
	a.Len(state.Room.DealerCards, 1)

	apply("b", blackjack.Command{Action: blackjack.ActionStand})
	state = receiveResponse(t, ca).Data.(*ClientState)
	a.Len(state.Room.DealerCards, 1)

	// the snapshot in the store is never redacted
	stored, err := m.Room(cbg, r.Code)
	a.NoError(err)
	a.Len(stored.DealerCards, 2)

	apply(dealerID, blackjack.Command{Action: blackjack.ActionDealerPlay})
	state = receiveResponse(t, ca).Data.(*ClientState)
	a.Equal(blackjack.PhaseFinished, state.Room.GameState)
	a.Equal("10d,9c", deck.CardsToString(state.Room.DealerCards))
	a.Equal(0, state.HiddenDealerCards)

	p.ClientDisconnected(ca)
}

func TestPitBoss_unknownRoom(t *testing.T) {
	m, _, _ := newTestManager(t)
	ctx, cancel := context.WithCancel(cbg)
	defer cancel()

	logger, _ := test.NewNullLogger()
	p := NewPitBoss(logger, m)
	p.StartShift(ctx)

	c := NewClient(nil, "a", "NOPE00")
	p.ClientConnected(c)

	res := receiveResponse(t, c)
	assert.Equal(t, "error", res.Key)
	assert.Equal(t, "room not found: NOPE00", res.Value)
	assert.Equal(t, "room not found: NOPE00", <-c.Close)
}
