package blackjack

import (
	"errors"
	"fmt"

	"blackjack-server/pkg/deck"
)

// dealerStandsOn is the total the dealer stops drawing at
const dealerStandsOn = 17

// StartGame builds a fresh shoe and opens the first betting round
func (g *Game) StartGame(r *Room, actorID string) error {
	if err := g.requireDealer(r, actorID, ActionStartGame); err != nil {
		return err
	}

	if err := r.requirePhase(ActionStartGame, PhaseWaiting); err != nil {
		return err
	}

	g.freshShoe(r, nil)
	r.DealerCards = []deck.Card{}
	r.CurrentHand = 0
	r.touch(FieldDealerCards, FieldCurrentHand)

	if err := r.transition(PhaseBetting); err != nil {
		return err
	}

	g.log(r, "", nil, "The table is open for bets")
	return nil
}

// Deal deals two cards to every hand and the dealer, one card at a time
func (g *Game) Deal(r *Room, actorID string) error {
	if err := g.requireDealer(r, actorID, ActionDeal); err != nil {
		return err
	}

	if err := r.requirePhase(ActionDeal, PhaseBetting); err != nil {
		return err
	}

	refs := make([]HandRef, 0)
	bettors := make(map[string]bool)
	for _, ref := range r.handsInSeatOrder() {
		if h := r.hand(ref); h.IsActive() && len(h.Cards) == 0 {
			refs = append(refs, ref)
			bettors[ref.PlayerID] = true
		}
	}

	if len(bettors) < 2 {
		return fmt.Errorf("%w: at least two players must bet before the deal", ErrInvalidPhase)
	}

	shoe, hands, dealerCards, err := dealInitial(r.Shoe, len(refs))
	if errors.Is(err, ErrShoeExhausted) {
		// nothing has been dealt yet, so this is the round boundary
		g.freshShoe(r, nil)
		g.log(r, "", nil, "The shoe ran out and was reshuffled")
		shoe, hands, dealerCards, err = dealInitial(r.Shoe, len(refs))
	}

	if err != nil {
		return err
	}

	r.Shoe = shoe
	r.DealerCards = dealerCards
	r.touch(FieldShoe, FieldDealerCards, FieldPlayers)

	upCard := dealerCards[0]
	for i, ref := range refs {
		h := r.hand(ref)
		h.Cards = hands[i]
		h.SideBetPayout = SideBetPayout(h.SideBets, h.Cards, upCard)
		if IsBlackjack(h.Cards) {
			h.Status = HandStatusStand
			g.log(r, ref.PlayerID, h.Cards, "{} has blackjack")
		}
	}

	if err := r.transition(PhasePlaying); err != nil {
		return err
	}

	g.log(r, "", []deck.Card{upCard}, "Cards dealt, the dealer shows %s", upCard)

	if isTenOrAce(upCard) && IsBlackjack(dealerCards) {
		g.log(r, "", dealerCards, "Dealer has blackjack")
		return g.resolveAll(r, true)
	}

	r.updateCurrentHand()
	return nil
}

// dealInitial deals two rounds: one card to every hand, then one to the dealer
func dealInitial(shoe deck.Shoe, nHands int) (deck.Shoe, [][]deck.Card, []deck.Card, error) {
	hands := make([][]deck.Card, nHands)
	dealerCards := make([]deck.Card, 0, 2)

	for round := 0; round < 2; round++ {
		for i := range hands {
			card, rest, err := draw(shoe)
			if err != nil {
				return nil, nil, nil, err
			}

			shoe = rest
			hands[i] = append(hands[i], card)
		}

		card, rest, err := draw(shoe)
		if err != nil {
			return nil, nil, nil, err
		}

		shoe = rest
		dealerCards = append(dealerCards, card)
	}

	return shoe, hands, dealerCards, nil
}

// playerHand returns the hand the actor wants to act on
func (g *Game) playerHand(r *Room, actorID string, ref HandRef, action Action) (*Player, *Hand, error) {
	if ref.PlayerID == "" {
		ref.PlayerID = actorID
	}

	if actorID == "" || actorID != ref.PlayerID {
		return nil, nil, fmt.Errorf("%w: only the owner can %s this hand", ErrUnauthorized, action)
	}

	p, err := g.seatedPlayer(r, actorID, action)
	if err != nil {
		return nil, nil, err
	}

	if err := r.requirePhase(action, PhasePlaying); err != nil {
		return nil, nil, err
	}

	h, ok := p.Hands[ref.Index]
	if !ok {
		return nil, nil, fmt.Errorf("%w: hand %d does not exist", ErrInvalidHandState, ref.Index)
	}

	if !h.IsActive() {
		return nil, nil, fmt.Errorf("%w: cannot %s a hand with status: %s", ErrInvalidHandState, action, h.Status)
	}

	return p, h, nil
}

// Hit draws one card to the hand
func (g *Game) Hit(r *Room, actorID string, ref HandRef) error {
	_, h, err := g.playerHand(r, actorID, ref, ActionHit)
	if err != nil {
		return err
	}

	card, shoe, err := draw(r.Shoe)
	if err != nil {
		return err
	}

	r.Shoe = shoe
	h.Cards = append(h.Cards, card)
	r.touch(FieldShoe, FieldPlayers)

	if IsBust(h.Cards) {
		h.Status = HandStatusBust
		g.log(r, actorID, []deck.Card{card}, "{} hit and busted with %d", h.Value())
	} else {
		g.log(r, actorID, []deck.Card{card}, "{} hit to %d", h.Value())
	}

	r.updateCurrentHand()
	return nil
}

// Stand ends the hand's turn
func (g *Game) Stand(r *Room, actorID string, ref HandRef) error {
	_, h, err := g.playerHand(r, actorID, ref, ActionStand)
	if err != nil {
		return err
	}

	h.Status = HandStatusStand
	r.touch(FieldPlayers)
	g.log(r, actorID, nil, "{} stands on %d", h.Value())

	r.updateCurrentHand()
	return nil
}

// DoubleDown raises the bet, draws exactly one card and ends the hand's turn
func (g *Game) DoubleDown(r *Room, actorID string, ref HandRef) error {
	p, h, err := g.playerHand(r, actorID, ref, ActionDoubleDown)
	if err != nil {
		return err
	}

	if !h.canDoubleOrSplit() {
		return fmt.Errorf("%w: can only double down on the first two cards", ErrInvalidHandState)
	}

	extra := h.Bet
	if extra > g.options.MaxDoubleBet {
		extra = g.options.MaxDoubleBet
	}

	card, shoe, err := draw(r.Shoe)
	if err != nil {
		return err
	}

	if err := p.wager(extra); err != nil {
		return err
	}

	r.Shoe = shoe
	h.Cards = append(h.Cards, card)
	h.Bet += extra
	h.Doubled = true
	if IsBust(h.Cards) {
		h.Status = HandStatusBust
	} else {
		h.Status = HandStatusStand
	}

	r.touch(FieldShoe, FieldPlayers)
	g.log(r, actorID, []deck.Card{card}, "{} doubled down to %d and has %d", h.Bet, h.Value())

	r.updateCurrentHand()
	return nil
}

// Split turns a pair into two hands, each completed with a new card
func (g *Game) Split(r *Room, actorID string, ref HandRef) error {
	p, h, err := g.playerHand(r, actorID, ref, ActionSplit)
	if err != nil {
		return err
	}

	if !h.canDoubleOrSplit() || h.Cards[0].Rank != h.Cards[1].Rank {
		return fmt.Errorf("%w: can only split a pair on the first two cards", ErrInvalidHandState)
	}

	if len(p.Hands) >= g.options.MaxHands {
		return fmt.Errorf("%w: a player cannot have more than %d hands", ErrInvalidHandState, g.options.MaxHands)
	}

	first, shoe, err := draw(r.Shoe)
	if err != nil {
		return err
	}

	second, shoe, err := draw(shoe)
	if err != nil {
		return err
	}

	split, err := NewHand(h.Bet, nil)
	if err != nil {
		return err
	}

	if err := p.wager(h.Bet); err != nil {
		return err
	}

	split.Cards = []deck.Card{h.Cards[1], second}
	h.Cards = []deck.Card{h.Cards[0], first}

	index := p.nextHandIndex()
	p.Hands[index] = split
	r.Shoe = shoe
	r.touch(FieldShoe, FieldPlayers)
	g.log(r, actorID, nil, "{} split into hands %d and %d", ref.Index, index)

	r.updateCurrentHand()
	return nil
}

// DealerPlay draws for the dealer until 17 or more, then moves to resolving
func (g *Game) DealerPlay(r *Room, actorID string) error {
	if err := g.requireDealer(r, actorID, ActionDealerPlay); err != nil {
		return err
	}

	if err := r.requirePhase(ActionDealerPlay, PhasePlaying); err != nil {
		return err
	}

	if !r.allHandsDone() {
		return fmt.Errorf("%w: every hand must finish before the dealer plays", ErrInvalidHandState)
	}

	shoe := r.Shoe
	cards := append([]deck.Card{}, r.DealerCards...)
	for HandValue(cards) < dealerStandsOn {
		card, rest, err := draw(shoe)
		if err != nil {
			return err
		}

		shoe = rest
		cards = append(cards, card)
	}

	r.Shoe = shoe
	r.DealerCards = cards
	r.touch(FieldShoe, FieldDealerCards)

	if IsBust(cards) {
		g.log(r, "", cards, "Dealer busts with %d", HandValue(cards))
	} else {
		g.log(r, "", cards, "Dealer stands on %d", HandValue(cards))
	}

	if err := r.transition(PhaseResolving); err != nil {
		return err
	}

	if g.options.AutoResolve {
		return g.resolveAll(r, false)
	}

	return nil
}

// Resolve settles every hand after the dealer has played
func (g *Game) Resolve(r *Room, actorID string) error {
	if err := g.requireDealer(r, actorID, ActionResolve); err != nil {
		return err
	}

	if err := r.requirePhase(ActionResolve, PhaseResolving); err != nil {
		return err
	}

	return g.resolveAll(r, IsBlackjack(r.DealerCards))
}

// resolveAll credits every hand's main and side bet payout and finishes the round
func (g *Game) resolveAll(r *Room, dealerBlackjack bool) error {
	dealer := NewDealerResult(r.DealerCards, dealerBlackjack)
	for _, p := range r.SeatOrder() {
		for _, i := range p.HandIndexes() {
			h := p.Hands[i]
			status, payout := ResolveHand(h.Cards, h.Bet, dealer)

			total := payout + h.SideBetPayout
			h.Status = status
			h.Payout = total
			p.Chips += total

			g.log(r, p.ID, nil, "{} %s hand %d and was paid %d", pastTense(status), i, total)
		}
	}

	r.touch(FieldPlayers)
	if err := r.transition(PhaseFinished); err != nil {
		return err
	}

	r.updateCurrentHand()
	return nil
}

func pastTense(status HandStatus) string {
	switch status {
	case HandStatusWin:
		return "won"
	case HandStatusPush:
		return "pushed"
	}

	return "lost"
}

// StartNewRound clears the table for the next round. The shoe carries over unless it is empty.
func (g *Game) StartNewRound(r *Room, actorID string) error {
	if err := g.requireDealer(r, actorID, ActionNewRound); err != nil {
		return err
	}

	if err := r.requirePhase(ActionNewRound, PhaseFinished); err != nil {
		return err
	}

	for _, p := range r.Players {
		p.Hands = make(map[int]*Hand)
	}

	if !r.Shoe.CanDraw(1) {
		g.freshShoe(r, nil)
	}

	r.DealerCards = []deck.Card{}
	r.CurrentHand = 0
	r.touch(FieldPlayers, FieldDealerCards, FieldCurrentHand)

	if err := r.transition(PhaseBetting); err != nil {
		return err
	}

	g.log(r, "", nil, "New round, place your bets")
	return nil
}

// Reshuffle replaces the shoe, keeping out the cards already on the table
func (g *Game) Reshuffle(r *Room, actorID string) error {
	if err := g.requireDealer(r, actorID, ActionReshuffle); err != nil {
		return err
	}

	if err := r.requirePhase(ActionReshuffle, PhaseBetting, PhasePlaying, PhaseResolving, PhaseFinished); err != nil {
		return err
	}

	g.freshShoe(r, r.cardsOnTable())
	g.log(r, "", nil, "The dealer reshuffled the shoe")
	return nil
}

// EndGame closes the table and refunds bets that were never dealt
func (g *Game) EndGame(r *Room, actorID string) error {
	if err := g.requireDealer(r, actorID, ActionEndGame); err != nil {
		return err
	}

	if err := r.requirePhase(ActionEndGame, PhaseBetting, PhaseFinished); err != nil {
		return err
	}

	for _, p := range r.Players {
		p.refundOpenHands()
	}

	r.Shoe = deck.Shoe{}
	r.DealerCards = []deck.Card{}
	r.CurrentHand = 0
	r.touch(FieldPlayers, FieldShoe, FieldDealerCards, FieldCurrentHand)

	if err := r.transition(PhaseWaiting); err != nil {
		return err
	}

	g.log(r, "", nil, "The dealer closed the table")
	return nil
}
