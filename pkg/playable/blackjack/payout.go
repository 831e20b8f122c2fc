package blackjack

import "blackjack-server/pkg/deck"

// DealerResult is the dealer's final hand as seen by the resolver
type DealerResult struct {
	Value     int
	Bust      bool
	Blackjack bool
}

// NewDealerResult evaluates the dealer's cards
// dealerBlackjack forces a blackjack result (used by the peek)
func NewDealerResult(cards []deck.Card, dealerBlackjack bool) DealerResult {
	return DealerResult{
		Value:     HandValue(cards),
		Bust:      IsBust(cards),
		Blackjack: dealerBlackjack || IsBlackjack(cards),
	}
}

// ResolveHand returns the outcome of a main bet and the amount returned to the player.
// The order of the checks is the casino rule precedence and must not change.
func ResolveHand(cards []deck.Card, bet int, dealer DealerResult) (HandStatus, int) {
	playerValue := HandValue(cards)
	playerBlackjack := IsBlackjack(cards)

	switch {
	case IsBust(cards):
		return HandStatusLose, 0
	case dealer.Blackjack && playerBlackjack:
		return HandStatusPush, bet
	case dealer.Blackjack:
		return HandStatusLose, 0
	case playerBlackjack:
		// 3:2, rounded down
		return HandStatusWin, bet * 5 / 2
	case dealer.Bust:
		return HandStatusWin, bet * 2
	case playerValue > dealer.Value:
		return HandStatusWin, bet * 2
	case playerValue == dealer.Value:
		return HandStatusPush, bet
	}

	return HandStatusLose, 0
}
