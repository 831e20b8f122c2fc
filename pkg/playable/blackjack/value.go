package blackjack

import "blackjack-server/pkg/deck"

// cardValue counts an ace as 11 and face cards as 10
func cardValue(c deck.Card) int {
	switch {
	case c.Rank == deck.Ace:
		return 11
	case c.Rank >= 10:
		return 10
	}

	return c.Rank
}

// isTenOrAce returns true for the up-cards the dealer peeks under
func isTenOrAce(c deck.Card) bool {
	v := cardValue(c)
	return v == 10 || v == 11
}

// HandValue returns the best total <= 21, or the minimal total if the hand is bust
func HandValue(cards []deck.Card) int {
	value := 0
	aces := 0
	for _, c := range cards {
		if c.Rank == deck.Ace {
			aces++
		}

		value += cardValue(c)
	}

	for value > 21 && aces > 0 {
		value -= 10
		aces--
	}

	return value
}

// IsBlackjack returns true for a two-card 21
func IsBlackjack(cards []deck.Card) bool {
	return len(cards) == 2 && HandValue(cards) == 21
}

// IsBust returns true if the hand is over 21
func IsBust(cards []deck.Card) bool {
	return HandValue(cards) > 21
}
