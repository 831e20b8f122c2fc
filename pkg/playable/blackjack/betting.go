package blackjack

import (
	"fmt"
)

// Join seats a player with the table's starting chips. Joining again only renames the seat.
func (g *Game) Join(r *Room, playerID, name string) error {
	if r.IsDealer(playerID) {
		return fmt.Errorf("%w: the dealer cannot join as a player", ErrUnauthorized)
	}

	if p, ok := r.Players[playerID]; ok {
		if p.Name != name {
			p.Name = name
			r.touch(FieldPlayers)
		}

		return nil
	}

	p, err := NewPlayer(playerID, name, g.options.InitialChips, g.clock.Now())
	if err != nil {
		return err
	}

	r.Players[playerID] = p
	r.touch(FieldPlayers)
	g.log(r, playerID, nil, "{} joined the table")
	return nil
}

// Leave removes the actor from the table, refunding any bet that was not dealt
func (g *Game) Leave(r *Room, actorID string) error {
	p, err := g.seatedPlayer(r, actorID, ActionLeave)
	if err != nil {
		return err
	}

	if err := r.requirePhase(ActionLeave, PhaseWaiting, PhaseBetting, PhaseFinished); err != nil {
		return err
	}

	p.refundOpenHands()
	delete(r.Players, actorID)
	r.touch(FieldPlayers)
	g.log(r, actorID, nil, "{} left the table")

	r.updateCurrentHand()
	return nil
}

// SetReady flags whether the actor is ready for the deal
func (g *Game) SetReady(r *Room, actorID string, ready bool) error {
	p, err := g.seatedPlayer(r, actorID, ActionReady)
	if err != nil {
		return err
	}

	if p.IsReady != ready {
		p.IsReady = ready
		r.touch(FieldPlayers)
	}

	return nil
}

func (g *Game) validateBet(amount int) error {
	if amount < g.options.MinBet || amount > g.options.MaxBet || amount%g.options.MinBet != 0 {
		return fmt.Errorf("%w: bet must be a multiple of %d between %d and %d", ErrInvalidBet, g.options.MinBet, g.options.MinBet, g.options.MaxBet)
	}

	return nil
}

func (g *Game) validateSideBet(kind SideBet, amount int) error {
	if _, err := SideBetFromString(string(kind)); err != nil {
		return err
	}

	if amount < 0 || amount%g.options.MinBet != 0 {
		return fmt.Errorf("%w: %s side bet must be a multiple of %d", ErrInvalidBet, kind, g.options.MinBet)
	}

	return nil
}

// PlaceBet opens the actor's hand for the round, with optional side bets.
// The whole stake leaves the player's chips immediately.
func (g *Game) PlaceBet(r *Room, actorID string, amount int, sideBets map[SideBet]int) error {
	p, err := g.seatedPlayer(r, actorID, ActionBet)
	if err != nil {
		return err
	}

	if err := r.requirePhase(ActionBet, PhaseBetting); err != nil {
		return err
	}

	if _, ok := p.Hands[0]; ok {
		return fmt.Errorf("%w: a bet has already been placed", ErrInvalidHandState)
	}

	if err := g.validateBet(amount); err != nil {
		return err
	}

	for kind, wager := range sideBets {
		if err := g.validateSideBet(kind, wager); err != nil {
			return err
		}
	}

	h, err := NewHand(amount, sideBets)
	if err != nil {
		return err
	}

	if err := p.wager(amount + h.SideBetTotal()); err != nil {
		return err
	}

	p.Hands[0] = h
	r.touch(FieldPlayers)
	g.log(r, actorID, nil, "{} bet %d", amount)
	return nil
}

// PlaceSideBet adds to a side bet on the actor's open hand
func (g *Game) PlaceSideBet(r *Room, actorID string, kind SideBet, amount int) error {
	p, err := g.seatedPlayer(r, actorID, ActionSideBet)
	if err != nil {
		return err
	}

	if err := r.requirePhase(ActionSideBet, PhaseBetting); err != nil {
		return err
	}

	h, ok := p.Hands[0]
	if !ok {
		return fmt.Errorf("%w: place a bet before a side bet", ErrInvalidHandState)
	}

	if amount <= 0 {
		return fmt.Errorf("%w: side bet must be > 0", ErrInvalidBet)
	}

	if err := g.validateSideBet(kind, amount); err != nil {
		return err
	}

	if err := p.wager(amount); err != nil {
		return err
	}

	h.SideBets[kind] += amount
	r.touch(FieldPlayers)
	g.log(r, actorID, nil, "{} bet %d on %s", amount, kind)
	return nil
}

// ClearBet withdraws the actor's bet and side bets before the deal
func (g *Game) ClearBet(r *Room, actorID string) error {
	p, err := g.seatedPlayer(r, actorID, ActionClearBet)
	if err != nil {
		return err
	}

	if err := r.requirePhase(ActionClearBet, PhaseBetting); err != nil {
		return err
	}

	if _, ok := p.Hands[0]; !ok {
		return fmt.Errorf("%w: there is no bet to clear", ErrInvalidHandState)
	}

	refund := p.refundOpenHands()
	r.touch(FieldPlayers)
	g.log(r, actorID, nil, "{} took back %d", refund)
	return nil
}
