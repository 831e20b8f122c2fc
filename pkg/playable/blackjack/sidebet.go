package blackjack

import (
	"fmt"
	"sort"

	"blackjack-server/pkg/deck"
)

// SideBet is the kind of side bet
type SideBet string

// SideBet constants
const (
	SideBetPair          SideBet = "pair"
	SideBetTrip          SideBet = "trip"
	SideBetPerfectPair   SideBet = "perfectPair"
	SideBetStraightFlush SideBet = "straightFlush"
)

// SideBets is every side bet kind
var SideBets = []SideBet{SideBetPair, SideBetTrip, SideBetPerfectPair, SideBetStraightFlush}

// SideBetFromString validates a side bet kind
func SideBetFromString(s string) (SideBet, error) {
	for _, kind := range SideBets {
		if string(kind) == s {
			return kind, nil
		}
	}

	return "", fmt.Errorf("%w: unknown side bet: %s", ErrInvalidBet, s)
}

// Multiplier is the total returned on a winning wager, stake included
func (s SideBet) Multiplier() int {
	switch s {
	case SideBetPair:
		return 6
	case SideBetTrip:
		return 16
	case SideBetPerfectPair:
		return 21
	case SideBetStraightFlush:
		return 51
	}

	panic(fmt.Sprintf("unknown side bet: %s", string(s)))
}

// Wins returns true if the side bet wins with the player's first two cards and the dealer's up-card
func (s SideBet) Wins(cards []deck.Card, upCard deck.Card) bool {
	switch s {
	case SideBetPair:
		return CheckPair(cards)
	case SideBetTrip:
		return CheckTrip(cards, upCard)
	case SideBetPerfectPair:
		return CheckPerfectPair(cards)
	case SideBetStraightFlush:
		return CheckStraightFlush(cards, upCard)
	}

	return false
}

// CheckPair returns true if the first two cards share a rank
func CheckPair(cards []deck.Card) bool {
	if len(cards) < 2 {
		return false
	}

	return cards[0].Rank == cards[1].Rank
}

// CheckTrip returns true if the first two cards and the up-card share a rank
func CheckTrip(cards []deck.Card, upCard deck.Card) bool {
	if !CheckPair(cards) || upCard.Rank == 0 {
		return false
	}

	return cards[0].Rank == upCard.Rank
}

// CheckPerfectPair returns true if the first two cards share a rank and a suit
func CheckPerfectPair(cards []deck.Card) bool {
	if !CheckPair(cards) {
		return false
	}

	return cards[0].Suit == cards[1].Suit
}

// CheckStraightFlush returns true if the first two cards and the up-card are suited and consecutive.
// Aces are always low and ranks do not wrap around.
func CheckStraightFlush(cards []deck.Card, upCard deck.Card) bool {
	if len(cards) < 2 || upCard.Rank == 0 {
		return false
	}

	three := []deck.Card{cards[0], cards[1], upCard}
	ranks := make([]int, 0, 3)
	for _, c := range three {
		if c.Suit != three[0].Suit {
			return false
		}

		ranks = append(ranks, c.AceLowRank())
	}

	sort.Ints(ranks)
	return ranks[1] == ranks[0]+1 && ranks[2] == ranks[1]+1
}

// SideBetPayout returns the sum returned by every winning side bet.
// Only the first two cards are considered; wagers of 0 are skipped.
func SideBetPayout(bets map[SideBet]int, cards []deck.Card, upCard deck.Card) int {
	if len(cards) > 2 {
		cards = cards[:2]
	}

	total := 0
	for _, kind := range SideBets {
		wager := bets[kind]
		if wager <= 0 {
			continue
		}

		if kind.Wins(cards, upCard) {
			total += wager * kind.Multiplier()
		}
	}

	return total
}
