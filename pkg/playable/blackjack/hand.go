package blackjack

import (
	"fmt"

	"blackjack-server/pkg/deck"
)

// HandStatus is the status of a single hand
type HandStatus string

// HandStatus constants
const (
	HandStatusActive HandStatus = "active"
	HandStatusStand  HandStatus = "stand"
	HandStatusBust   HandStatus = "bust"
	HandStatusPush   HandStatus = "push"
	HandStatusWin    HandStatus = "win"
	HandStatusLose   HandStatus = "lose"
)

// Hand is one wager and its cards
type Hand struct {
	Cards    []deck.Card     `json:"cards"`
	Bet      int             `json:"bet"`
	SideBets map[SideBet]int `json:"sideBets"`
	// SideBetPayout is locked in when the cards are dealt and credited at resolution
	SideBetPayout int        `json:"sideBetPayout"`
	Status        HandStatus `json:"status"`
	// Payout is everything returned to the player at resolution, stakes included
	Payout  int  `json:"payout"`
	Doubled bool `json:"doubled"`
}

// NewHand returns an active hand with no cards
func NewHand(bet int, sideBets map[SideBet]int) (*Hand, error) {
	if bet <= 0 {
		return nil, fmt.Errorf("%w: bet must be > 0", ErrInvalidBet)
	}

	h := &Hand{
		Bet:      bet,
		SideBets: make(map[SideBet]int, len(SideBets)),
		Status:   HandStatusActive,
		Cards:    []deck.Card{},
	}

	for _, kind := range SideBets {
		h.SideBets[kind] = 0
	}

	for kind, amount := range sideBets {
		if _, err := SideBetFromString(string(kind)); err != nil {
			return nil, err
		}

		if amount < 0 {
			return nil, fmt.Errorf("%w: side bet cannot be negative", ErrInvalidBet)
		}

		h.SideBets[kind] = amount
	}

	return h, nil
}

// Value returns the blackjack value of the hand
func (h *Hand) Value() int {
	return HandValue(h.Cards)
}

// IsActive returns true if the hand can still act
func (h *Hand) IsActive() bool {
	return h.Status == HandStatusActive
}

// SideBetTotal is the sum of every side bet wager
func (h *Hand) SideBetTotal() int {
	total := 0
	for _, amount := range h.SideBets {
		total += amount
	}

	return total
}

// canDoubleOrSplit requires the first two cards and no prior action
func (h *Hand) canDoubleOrSplit() bool {
	return h.IsActive() && len(h.Cards) == 2 && !h.Doubled
}

func (h *Hand) clone() *Hand {
	h2 := *h
	h2.Cards = append([]deck.Card{}, h.Cards...)
	h2.SideBets = make(map[SideBet]int, len(h.SideBets))
	for k, v := range h.SideBets {
		h2.SideBets[k] = v
	}

	return &h2
}
