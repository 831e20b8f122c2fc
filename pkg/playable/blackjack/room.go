package blackjack

import (
	"fmt"
	"sort"
	"time"

	"blackjack-server/pkg/deck"
	"blackjack-server/pkg/playable"
)

// logMessageLimit is how many log messages a room keeps
const logMessageLimit = 25

// Dealer identifies the participant who runs the table
type Dealer struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Room is the aggregate root: everything the table shares
type Room struct {
	Code        string                 `json:"code"`
	Dealer      Dealer                 `json:"dealer"`
	Players     map[string]*Player     `json:"players"`
	GameState   Phase                  `json:"gameState"`
	Shoe        deck.Shoe              `json:"shoe"`
	DealerCards []deck.Card            `json:"dealerCards"`
	CurrentHand int                    `json:"currentHand"`
	Log         []*playable.LogMessage `json:"log"`
	CreatedAt   time.Time              `json:"createdAt"`

	// Version is assigned by the store and increases on every write
	Version int64 `json:"version"`

	dirty fieldSet
}

// NewRoom returns a room in the waiting phase
func NewRoom(code, dealerID, dealerName string, createdAt time.Time) (*Room, error) {
	if len(code) != 6 {
		return nil, fmt.Errorf("room code must be 6 characters: %q", code)
	}

	if dealerID == "" {
		return nil, fmt.Errorf("dealer id is required")
	}

	return &Room{
		Code:        code,
		Dealer:      Dealer{ID: dealerID, Name: dealerName},
		Players:     make(map[string]*Player),
		GameState:   PhaseWaiting,
		Shoe:        deck.Shoe{},
		DealerCards: []deck.Card{},
		Log:         []*playable.LogMessage{},
		CreatedAt:   createdAt,
	}, nil
}

// Clone returns a deep copy of the room that shares no mutable state with r
func (r *Room) Clone() *Room {
	r2 := *r
	r2.dirty = nil
	r2.Shoe = r.Shoe.Clone()
	r2.DealerCards = append([]deck.Card{}, r.DealerCards...)
	r2.Log = append([]*playable.LogMessage{}, r.Log...)
	r2.Players = make(map[string]*Player, len(r.Players))
	for id, p := range r.Players {
		r2.Players[id] = p.clone()
	}

	return &r2
}

// IsDealer returns true if id is the room's dealer
func (r *Room) IsDealer(id string) bool {
	return id != "" && r.Dealer.ID == id
}

// Player returns the seated player with the given id
func (r *Room) Player(id string) (*Player, error) {
	p, ok := r.Players[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPlayerNotFound, id)
	}

	return p, nil
}

// SeatOrder returns the players ordered by when they joined
func (r *Room) SeatOrder() []*Player {
	players := make([]*Player, 0, len(r.Players))
	for _, p := range r.Players {
		players = append(players, p)
	}

	sort.Slice(players, func(i, j int) bool {
		if !players[i].JoinedAt.Equal(players[j].JoinedAt) {
			return players[i].JoinedAt.Before(players[j].JoinedAt)
		}

		return players[i].ID < players[j].ID
	})

	return players
}

// HandRef addresses a single hand in the room
type HandRef struct {
	PlayerID string `json:"playerId"`
	Index    int    `json:"handIndex"`
}

// handsInSeatOrder returns every hand in dealing order
func (r *Room) handsInSeatOrder() []HandRef {
	refs := make([]HandRef, 0)
	for _, p := range r.SeatOrder() {
		for _, i := range p.HandIndexes() {
			refs = append(refs, HandRef{PlayerID: p.ID, Index: i})
		}
	}

	return refs
}

func (r *Room) hand(ref HandRef) *Hand {
	p, ok := r.Players[ref.PlayerID]
	if !ok {
		return nil
	}

	return p.Hands[ref.Index]
}

// cardsOnTable returns every card that has been dealt this round
func (r *Room) cardsOnTable() []deck.Card {
	cards := append([]deck.Card{}, r.DealerCards...)
	for _, p := range r.Players {
		for _, h := range p.Hands {
			cards = append(cards, h.Cards...)
		}
	}

	return cards
}

// allHandsDone returns true if no hand can act
func (r *Room) allHandsDone() bool {
	for _, p := range r.Players {
		for _, h := range p.Hands {
			if h.IsActive() {
				return false
			}
		}
	}

	return true
}

// updateCurrentHand points at the first active hand in seat order, or -1
func (r *Room) updateCurrentHand() {
	current := -1
	for i, ref := range r.handsInSeatOrder() {
		if r.hand(ref).IsActive() {
			current = i
			break
		}
	}

	if current != r.CurrentHand {
		r.CurrentHand = current
		r.touch(FieldCurrentHand)
	}
}

// addLogMessages adds log messages, keeping only the most recent
func (r *Room) addLogMessages(messages ...*playable.LogMessage) {
	m := append(r.Log, messages...)
	count := len(m)
	if count > logMessageLimit {
		m = m[count-logMessageLimit:]
	}

	r.Log = m
	r.touch(FieldLog)
}
