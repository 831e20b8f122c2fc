package room

import (
	"blackjack-server/pkg/playable/blackjack"
)

// ClientState is pushed to a client whenever the room changes
type ClientState struct {
	// Room is the snapshot with the undealt cards and the dealer's hole card hidden
	Room      *blackjack.Room `json:"room"`
	CardsLeft int             `json:"cardsLeft"`
	// HiddenDealerCards is how many dealer cards were removed from Room.DealerCards
	HiddenDealerCards int `json:"hiddenDealerCards"`
	// Actions is what this client's participant can do right now
	Actions []blackjack.Action `json:"actions"`
}

// NewClientState returns the view of the room a participant is allowed to see
// While hands are in play only the dealer's up-card is shown
func NewClientState(r *blackjack.Room, actions []blackjack.Action) *ClientState {
	view := r.Clone()
	view.Shoe = nil

	hidden := 0
	if view.GameState == blackjack.PhasePlaying && len(view.DealerCards) > 1 {
		hidden = len(view.DealerCards) - 1
		view.DealerCards = view.DealerCards[:1:1]
	}

	return &ClientState{
		Room:              view,
		CardsLeft:         r.Shoe.CardsLeft(),
		HiddenDealerCards: hidden,
		Actions:           actions,
	}
}
