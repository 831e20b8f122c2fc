package blackjack

import (
	"testing"
	"time"

	"blackjack-server/pkg/deck"
	"github.com/stretchr/testify/assert"
)

func TestGame_StartGame(t *testing.T) {
	a := assert.New(t)
	g, clock := newTestGame(t)

	r, err := g.NewRoom(testRoomCode, testDealerID, "Dealer")
	a.NoError(err)
	a.Equal(clock.Now(), r.CreatedAt)

	a.ErrorIs(g.StartGame(r, "p1"), ErrUnauthorized)
	a.NoError(g.StartGame(r, testDealerID))
	a.Equal(PhaseBetting, r.GameState)
	a.True(r.Shoe.CanDraw(1))
	a.True(r.Shoe.CardsLeft() < 312)
	a.Equal(0, r.CurrentHand)

	a.EqualError(g.StartGame(r, testDealerID), "invalid phase: cannot startGame from phase: betting")
}

func TestGame_fullRound(t *testing.T) {
	a := assert.New(t)
	g, clock := newTestGame(t)
	r := newTestRoom(t, g, clock, "10c,10h,10d,8d,6s,9c,13c,2c", "a", "b")

	a.Equal(100000, r.Players["a"].Chips)
	a.Equal(100000, r.Players["b"].Chips)

	betAll(t, g, r, 10000, "a", "b")
	a.Equal(90000, r.Players["a"].Chips)
	a.Equal(90000, r.Players["b"].Chips)

	a.NoError(g.Deal(r, testDealerID))
	a.Equal(PhasePlaying, r.GameState)
	a.Equal("10c,8d", cardsString(mainHand(r, "a")))
	a.Equal("10h,6s", cardsString(mainHand(r, "b")))
	a.Equal(0, r.CurrentHand)
	a.Equal(2, r.Shoe.CardsLeft())

	// the dealer cannot play until every hand is done
	a.ErrorIs(g.DealerPlay(r, testDealerID), ErrInvalidHandState)

	a.NoError(g.Stand(r, "a", HandRef{PlayerID: "a"}))
	a.Equal(HandStatusStand, mainHand(r, "a").Status)
	a.Equal(1, r.CurrentHand)

	a.NoError(g.Hit(r, "b", HandRef{PlayerID: "b"}))
	a.Equal(HandStatusBust, mainHand(r, "b").Status)
	a.Equal(26, mainHand(r, "b").Value())
	a.Equal(-1, r.CurrentHand)

	a.NoError(g.DealerPlay(r, testDealerID))
	a.Equal(19, HandValue(r.DealerCards))
	a.Equal(1, r.Shoe.CardsLeft())

	// auto-resolve goes straight to finished
	a.Equal(PhaseFinished, r.GameState)
	a.Equal(HandStatusLose, mainHand(r, "a").Status)
	a.Equal(HandStatusLose, mainHand(r, "b").Status)
	a.Equal(0, mainHand(r, "a").Payout)
	a.Equal(0, mainHand(r, "b").Payout)
	a.Equal(90000, r.Players["a"].Chips)
	a.Equal(90000, r.Players["b"].Chips)

	a.NoError(g.StartNewRound(r, testDealerID))
	a.Equal(PhaseBetting, r.GameState)
	a.Len(r.Players["a"].Hands, 0)
	a.Len(r.DealerCards, 0)
	a.Equal(1, r.Shoe.CardsLeft())
}

func TestGame_manualResolve(t *testing.T) {
	a := assert.New(t)
	g, clock := newTestGame(t, func(o *Options) {
		o.AutoResolve = false
	})

	r := newTestRoom(t, g, clock, "10c,10h,10d,9d,7s,8c", "a", "b")
	betAll(t, g, r, 10000, "a", "b")
	a.NoError(g.Deal(r, testDealerID))
	a.NoError(g.Stand(r, "a", HandRef{PlayerID: "a"}))
	a.NoError(g.Stand(r, "b", HandRef{PlayerID: "b"}))

	a.NoError(g.DealerPlay(r, testDealerID))
	a.Equal(PhaseResolving, r.GameState)
	a.Equal(HandStatusStand, mainHand(r, "a").Status)

	a.ErrorIs(g.Resolve(r, "a"), ErrUnauthorized)
	a.NoError(g.Resolve(r, testDealerID))
	a.Equal(PhaseFinished, r.GameState)

	// 19 beats 18, 17 loses to 18
	a.Equal(HandStatusWin, mainHand(r, "a").Status)
	a.Equal(20000, mainHand(r, "a").Payout)
	a.Equal(110000, r.Players["a"].Chips)
	a.Equal(HandStatusLose, mainHand(r, "b").Status)
	a.Equal(90000, r.Players["b"].Chips)
}

func TestGame_Deal(t *testing.T) {
	a := assert.New(t)
	g, clock := newTestGame(t)
	r := newTestRoom(t, g, clock, "10c,10h,10d,9d,7s,8c", "a", "b")

	a.ErrorIs(g.Deal(r, "a"), ErrUnauthorized)

	a.NoError(g.PlaceBet(r, "a", 10000, nil))
	a.EqualError(g.Deal(r, testDealerID), "invalid phase: at least two players must bet before the deal")
	a.Equal(6, r.Shoe.CardsLeft())

	a.NoError(g.PlaceBet(r, "b", 10000, nil))
	a.NoError(g.Deal(r, testDealerID))
	a.Equal("10d,8c", cardsString(&Hand{Cards: r.DealerCards}))
	a.Equal(0, r.Shoe.CardsLeft())

	a.EqualError(g.Deal(r, testDealerID), "invalid phase: cannot deal from phase: playing")
}

func TestGame_Deal_reshufflesEmptyShoe(t *testing.T) {
	a := assert.New(t)
	g, clock := newTestGame(t)
	r := newTestRoom(t, g, clock, "10c,10h,10d", "a", "b")
	betAll(t, g, r, 10000, "a", "b")

	a.NoError(g.Deal(r, testDealerID))
	a.Len(mainHand(r, "a").Cards, 2)
	a.Len(mainHand(r, "b").Cards, 2)
	a.Len(r.DealerCards, 2)
	a.True(r.Shoe.CardsLeft() > 50)
	a.Contains(logMessages(r), "The shoe ran out and was reshuffled")
}

func TestGame_Deal_playerBlackjack(t *testing.T) {
	a := assert.New(t)
	g, clock := newTestGame(t)
	r := newTestRoom(t, g, clock, "14c,10h,10d,13c,8h,7s", "a", "b")
	betAll(t, g, r, 10000, "a", "b")

	a.NoError(g.Deal(r, testDealerID))
	a.Equal(PhasePlaying, r.GameState)

	// the natural stands on its own and the pointer skips it
	a.Equal(HandStatusStand, mainHand(r, "a").Status)
	a.Equal(1, r.CurrentHand)
	a.ErrorIs(g.Hit(r, "a", HandRef{PlayerID: "a"}), ErrInvalidHandState)

	a.NoError(g.Stand(r, "b", HandRef{PlayerID: "b"}))
	a.NoError(g.DealerPlay(r, testDealerID))
	a.Equal(PhaseFinished, r.GameState)

	a.Equal(25000, mainHand(r, "a").Payout)
	a.Equal(115000, r.Players["a"].Chips)
	a.Equal(20000, mainHand(r, "b").Payout)
	a.Equal(110000, r.Players["b"].Chips)
}

func TestGame_Deal_dealerPeek(t *testing.T) {
	a := assert.New(t)
	g, clock := newTestGame(t)
	r := newTestRoom(t, g, clock, "10c,14c,14d,8d,13h,13s", "a", "b")
	betAll(t, g, r, 10000, "a", "b")

	a.NoError(g.Deal(r, testDealerID))

	// dealer blackjack ends the round without any player action
	a.Equal(PhaseFinished, r.GameState)
	a.Equal(-1, r.CurrentHand)
	a.Equal(HandStatusLose, mainHand(r, "a").Status)
	a.Equal(90000, r.Players["a"].Chips)
	a.Equal(HandStatusPush, mainHand(r, "b").Status)
	a.Equal(100000, r.Players["b"].Chips)
	a.Contains(logMessages(r), "Dealer has blackjack")
}

func TestGame_Deal_noPeekUnderLowCard(t *testing.T) {
	a := assert.New(t)
	g, clock := newTestGame(t)

	// the up-card is a 6, so play continues
	r := newTestRoom(t, g, clock, "10c,10h,6d,8d,9h,5s,10s", "a", "b")
	betAll(t, g, r, 10000, "a", "b")

	a.NoError(g.Deal(r, testDealerID))
	a.Equal(PhasePlaying, r.GameState)
}

func TestGame_Deal_locksSideBets(t *testing.T) {
	a := assert.New(t)
	g, clock := newTestGame(t)
	r := newTestRoom(t, g, clock, "8h,10h,10d,8c,9h,9c", "a", "b")

	a.NoError(g.PlaceBet(r, "a", 10000, map[SideBet]int{SideBetPair: 5000}))
	a.NoError(g.PlaceBet(r, "b", 10000, nil))
	a.Equal(85000, r.Players["a"].Chips)

	a.NoError(g.Deal(r, testDealerID))
	a.Equal(30000, mainHand(r, "a").SideBetPayout)
	a.Equal(0, mainHand(r, "b").SideBetPayout)

	// side bets are not credited until the round settles
	a.Equal(85000, r.Players["a"].Chips)

	a.NoError(g.Stand(r, "a", HandRef{PlayerID: "a"}))
	a.NoError(g.Stand(r, "b", HandRef{PlayerID: "b"}))
	a.NoError(g.DealerPlay(r, testDealerID))

	// 16 loses to 19 but the pair still pays
	a.Equal(HandStatusLose, mainHand(r, "a").Status)
	a.Equal(30000, mainHand(r, "a").Payout)
	a.Equal(115000, r.Players["a"].Chips)
}

func TestGame_Hit(t *testing.T) {
	a := assert.New(t)
	g, clock := newTestGame(t)
	r := newTestRoom(t, g, clock, "2c,10h,10d,3d,9h,8c,4c,5c", "a", "b")

	a.ErrorIs(g.Hit(r, "a", HandRef{PlayerID: "a"}), ErrInvalidPhase)

	betAll(t, g, r, 10000, "a", "b")
	a.NoError(g.Deal(r, testDealerID))

	a.ErrorIs(g.Hit(r, "b", HandRef{PlayerID: "a"}), ErrUnauthorized)
	a.ErrorIs(g.Hit(r, testDealerID, HandRef{PlayerID: "a"}), ErrUnauthorized)
	a.ErrorIs(g.Hit(r, testDealerID, HandRef{PlayerID: testDealerID}), ErrUnauthorized)
	a.ErrorIs(g.Hit(r, "c", HandRef{PlayerID: "c"}), ErrUnauthorized)
	a.EqualError(g.Hit(r, "a", HandRef{PlayerID: "a", Index: 1}), "invalid hand state: hand 1 does not exist")
	a.Equal(2, r.Shoe.CardsLeft())

	a.NoError(g.Hit(r, "a", HandRef{}))
	a.Equal(9, mainHand(r, "a").Value())
	a.Equal(HandStatusActive, mainHand(r, "a").Status)

	a.NoError(g.Hit(r, "a", HandRef{PlayerID: "a"}))
	a.Equal(14, mainHand(r, "a").Value())
	a.Equal(0, r.Shoe.CardsLeft())

	a.EqualError(g.Hit(r, "a", HandRef{PlayerID: "a"}), "shoe exhausted, reshuffle required")
	a.Len(mainHand(r, "a").Cards, 4)

	a.NoError(g.Reshuffle(r, testDealerID))
	a.NoError(g.Hit(r, "a", HandRef{PlayerID: "a"}))
	a.Len(mainHand(r, "a").Cards, 5)

	a.NoError(g.Stand(r, "b", HandRef{PlayerID: "b"}))
	a.EqualError(g.Stand(r, "b", HandRef{PlayerID: "b"}), "invalid hand state: cannot stand a hand with status: stand")
}

func TestGame_DoubleDown(t *testing.T) {
	a := assert.New(t)
	g, clock := newTestGame(t)
	r := newTestRoom(t, g, clock, "5c,10h,10d,6d,9h,7s,10c", "a", "b")
	betAll(t, g, r, 10000, "a", "b")
	a.NoError(g.Deal(r, testDealerID))

	a.NoError(g.DoubleDown(r, "a", HandRef{PlayerID: "a"}))
	h := mainHand(r, "a")
	a.Equal(20000, h.Bet)
	a.True(h.Doubled)
	a.Equal(21, h.Value())
	a.Equal(HandStatusStand, h.Status)
	a.Equal(80000, r.Players["a"].Chips)

	a.ErrorIs(g.DoubleDown(r, "a", HandRef{PlayerID: "a"}), ErrInvalidHandState)

	a.NoError(g.Stand(r, "b", HandRef{PlayerID: "b"}))
	a.NoError(g.DealerPlay(r, testDealerID))

	// a three-card 21 is not a blackjack
	a.Equal(HandStatusWin, h.Status)
	a.Equal(40000, h.Payout)
	a.Equal(120000, r.Players["a"].Chips)
}

func TestGame_DoubleDown_rules(t *testing.T) {
	a := assert.New(t)
	g, clock := newTestGame(t, func(o *Options) {
		o.MaxDoubleBet = 5000
	})

	r := newTestRoom(t, g, clock, "5c,10h,10d,6d,9h,7s,2c,3c", "a", "b")
	betAll(t, g, r, 10000, "a", "b")
	a.NoError(g.Deal(r, testDealerID))

	// only the first two cards can be doubled
	a.NoError(g.Hit(r, "b", HandRef{PlayerID: "b"}))
	a.EqualError(g.DoubleDown(r, "b", HandRef{PlayerID: "b"}), "invalid hand state: can only double down on the first two cards")

	// the extra wager is capped
	a.NoError(g.DoubleDown(r, "a", HandRef{PlayerID: "a"}))
	a.Equal(15000, mainHand(r, "a").Bet)
	a.Equal(85000, r.Players["a"].Chips)
}

func TestGame_DoubleDown_insufficientChips(t *testing.T) {
	a := assert.New(t)
	g, clock := newTestGame(t, func(o *Options) {
		o.InitialChips = 15000
	})

	r := newTestRoom(t, g, clock, "5c,10h,10d,6d,9h,7s,10c", "a", "b")
	betAll(t, g, r, 10000, "a", "b")
	a.NoError(g.Deal(r, testDealerID))

	a.EqualError(g.DoubleDown(r, "a", HandRef{PlayerID: "a"}), "insufficient chips: wager of 10000 exceeds 5000 chips")
	a.Equal(1, r.Shoe.CardsLeft())
	a.Equal(10000, mainHand(r, "a").Bet)
	a.Equal(5000, r.Players["a"].Chips)
}

func TestGame_Split(t *testing.T) {
	a := assert.New(t)
	g, clock := newTestGame(t)
	r := newTestRoom(t, g, clock, "8c,10h,10d,8d,9h,7s,3c,2h", "a", "b")

	a.NoError(g.PlaceBet(r, "a", 10000, map[SideBet]int{SideBetPair: 5000}))
	a.NoError(g.PlaceBet(r, "b", 10000, nil))
	a.NoError(g.Deal(r, testDealerID))
	a.Equal(85000, r.Players["a"].Chips)

	a.NoError(g.Split(r, "a", HandRef{PlayerID: "a"}))
	p := r.Players["a"]
	a.Equal([]int{0, 1}, p.HandIndexes())
	a.Equal(75000, p.Chips)
	a.Equal(0, r.Shoe.CardsLeft())

	a.Equal("8c,3c", cardsString(p.Hands[0]))
	a.Equal("8d,2h", cardsString(p.Hands[1]))
	a.Equal(10000, p.Hands[1].Bet)
	a.Equal(HandStatusActive, p.Hands[1].Status)
	a.Equal(0, p.Hands[1].SideBetTotal())
	a.Equal(0, p.Hands[1].SideBetPayout)

	// the original hand keeps its side bets
	a.Equal(5000, p.Hands[0].SideBets[SideBetPair])
	a.Equal(30000, p.Hands[0].SideBetPayout)

	a.Equal(0, r.CurrentHand)
	a.NoError(g.Stand(r, "a", HandRef{PlayerID: "a"}))
	a.Equal(1, r.CurrentHand)
	a.NoError(g.Stand(r, "a", HandRef{PlayerID: "a", Index: 1}))
	a.Equal(2, r.CurrentHand)
	a.NoError(g.Stand(r, "b", HandRef{PlayerID: "b"}))
	a.Equal(-1, r.CurrentHand)

	a.NoError(g.DealerPlay(r, testDealerID))
	a.Equal(HandStatusLose, p.Hands[0].Status)
	a.Equal(HandStatusLose, p.Hands[1].Status)
	a.Equal(30000, p.Hands[0].Payout)
	a.Equal(105000, p.Chips)
}

func TestGame_Split_rules(t *testing.T) {
	a := assert.New(t)
	g, clock := newTestGame(t, func(o *Options) {
		o.MaxHands = 2
	})

	r := newTestRoom(t, g, clock, "8c,10h,10d,8d,9h,7s,8h,2h", "a", "b")
	betAll(t, g, r, 10000, "a", "b")
	a.NoError(g.Deal(r, testDealerID))

	a.EqualError(g.Split(r, "b", HandRef{PlayerID: "b"}), "invalid hand state: can only split a pair on the first two cards")
	a.ErrorIs(g.Split(r, "b", HandRef{PlayerID: "a"}), ErrUnauthorized)

	a.NoError(g.Split(r, "a", HandRef{PlayerID: "a"}))
	a.Equal("8c,8h", cardsString(r.Players["a"].Hands[0]))
	a.EqualError(g.Split(r, "a", HandRef{PlayerID: "a"}), "invalid hand state: a player cannot have more than 2 hands")
}

func TestGame_Split_insufficientChips(t *testing.T) {
	a := assert.New(t)
	g, clock := newTestGame(t, func(o *Options) {
		o.InitialChips = 15000
	})

	r := newTestRoom(t, g, clock, "8c,10h,10d,8d,9h,7s,8h,2h", "a", "b")
	betAll(t, g, r, 10000, "a", "b")
	a.NoError(g.Deal(r, testDealerID))

	a.EqualError(g.Split(r, "a", HandRef{PlayerID: "a"}), "insufficient chips: wager of 10000 exceeds 5000 chips")
	a.Len(r.Players["a"].Hands, 1)
	a.Equal("8c,8d", cardsString(mainHand(r, "a")))
	a.Equal(5000, r.Players["a"].Chips)
	a.Equal(2, r.Shoe.CardsLeft())
}

func TestGame_DealerPlay(t *testing.T) {
	a := assert.New(t)
	g, clock := newTestGame(t)
	r := newTestRoom(t, g, clock, "10c,10h,10d,9c,9h,6s,14c,14d,3c", "a", "b")
	betAll(t, g, r, 10000, "a", "b")
	a.NoError(g.Deal(r, testDealerID))
	a.NoError(g.Stand(r, "a", HandRef{PlayerID: "a"}))
	a.NoError(g.Stand(r, "b", HandRef{PlayerID: "b"}))

	a.ErrorIs(g.DealerPlay(r, "a"), ErrUnauthorized)

	// 16 draws an ace, which counts as 1, and stops at 17
	a.NoError(g.DealerPlay(r, testDealerID))
	a.Equal("10d,6s,14c", cardsString(&Hand{Cards: r.DealerCards}))
	a.Equal(17, HandValue(r.DealerCards))
	a.Equal(2, r.Shoe.CardsLeft())
}

func TestGame_DealerPlay_shoeExhausted(t *testing.T) {
	a := assert.New(t)
	g, clock := newTestGame(t)
	r := newTestRoom(t, g, clock, "10c,10h,10d,9c,9h,6s", "a", "b")
	betAll(t, g, r, 10000, "a", "b")
	a.NoError(g.Deal(r, testDealerID))
	a.NoError(g.Stand(r, "a", HandRef{PlayerID: "a"}))
	a.NoError(g.Stand(r, "b", HandRef{PlayerID: "b"}))

	a.ErrorIs(g.DealerPlay(r, testDealerID), ErrShoeExhausted)
	a.Len(r.DealerCards, 2)
	a.Equal(PhasePlaying, r.GameState)

	a.NoError(g.Reshuffle(r, testDealerID))
	a.NoError(g.DealerPlay(r, testDealerID))
	a.True(HandValue(r.DealerCards) >= 17)
	a.Equal(PhaseFinished, r.GameState)
}

func TestGame_Reshuffle(t *testing.T) {
	a := assert.New(t)
	g, clock := newTestGame(t)
	r, err := g.NewRoom(testRoomCode, testDealerID, "Dealer")
	a.NoError(err)

	a.ErrorIs(g.Reshuffle(r, testDealerID), ErrInvalidPhase)

	r = newTestRoom(t, g, clock, "", "a")
	a.Equal(0, r.Shoe.CardsLeft())
	a.ErrorIs(g.Reshuffle(r, "a"), ErrUnauthorized)
	a.NoError(g.Reshuffle(r, testDealerID))
	a.True(r.Shoe.CanDraw(50))
}

func TestGame_EndGame(t *testing.T) {
	a := assert.New(t)
	g, clock := newTestGame(t)
	r := newTestRoom(t, g, clock, "10c,10h,10d,9c,9h,6s", "a", "b")

	a.NoError(g.PlaceBet(r, "a", 10000, map[SideBet]int{SideBetTrip: 5000}))
	a.Equal(85000, r.Players["a"].Chips)

	a.ErrorIs(g.EndGame(r, "a"), ErrUnauthorized)
	a.NoError(g.EndGame(r, testDealerID))
	a.Equal(PhaseWaiting, r.GameState)
	a.Equal(100000, r.Players["a"].Chips)
	a.Len(r.Players["a"].Hands, 0)
	a.Equal(0, r.Shoe.CardsLeft())

	a.ErrorIs(g.EndGame(r, testDealerID), ErrInvalidPhase)
	a.NoError(g.StartGame(r, testDealerID))
	a.Equal(PhaseBetting, r.GameState)
}

func TestGame_StartNewRound(t *testing.T) {
	a := assert.New(t)
	g, clock := newTestGame(t)
	r := newTestRoom(t, g, clock, "10c,10h,10d,9c,9h,8s", "a", "b")

	a.ErrorIs(g.StartNewRound(r, testDealerID), ErrInvalidPhase)

	betAll(t, g, r, 10000, "a", "b")
	a.NoError(g.Deal(r, testDealerID))
	a.NoError(g.Stand(r, "a", HandRef{PlayerID: "a"}))
	a.NoError(g.Stand(r, "b", HandRef{PlayerID: "b"}))
	a.NoError(g.DealerPlay(r, testDealerID))
	a.Equal(0, r.Shoe.CardsLeft())

	a.ErrorIs(g.StartNewRound(r, "a"), ErrUnauthorized)
	a.NoError(g.StartNewRound(r, testDealerID))

	// an empty shoe is replaced for the next round
	a.True(r.Shoe.CanDraw(50))
	a.Equal(0, r.CurrentHand)
}

func TestRoom_transition(t *testing.T) {
	a := assert.New(t)
	r, err := NewRoom(testRoomCode, testDealerID, "Dealer", time.Time{})
	a.NoError(err)

	a.EqualError(r.transition(PhasePlaying), "invalid phase: cannot move from waiting to playing")
	a.Equal(PhaseWaiting, r.GameState)

	a.NoError(r.transition(PhaseBetting))
	a.Equal(PhaseBetting, r.GameState)
	a.True(r.Changes().Has(FieldGameState))
}

func TestPhase_CanTransition(t *testing.T) {
	a := assert.New(t)

	allowed := map[Phase][]Phase{
		PhaseWaiting:   {PhaseBetting},
		PhaseBetting:   {PhasePlaying, PhaseWaiting},
		PhasePlaying:   {PhaseResolving, PhaseFinished},
		PhaseResolving: {PhaseFinished},
		PhaseFinished:  {PhaseBetting, PhaseWaiting},
	}

	phases := []Phase{PhaseWaiting, PhaseBetting, PhasePlaying, PhaseResolving, PhaseFinished}
	for _, from := range phases {
		a.True(from.Valid())
		for _, to := range phases {
			a.Equal(contains(allowed[from], to), from.CanTransition(to), "%s -> %s", from, to)
		}
	}

	a.False(Phase("lobby").Valid())
}

func contains(phases []Phase, phase Phase) bool {
	for _, p := range phases {
		if p == phase {
			return true
		}
	}

	return false
}

func cardsString(h *Hand) string {
	return deck.CardsToString(h.Cards)
}

func logMessages(r *Room) []string {
	messages := make([]string, len(r.Log))
	for i, lm := range r.Log {
		messages[i] = lm.Message
	}

	return messages
}
