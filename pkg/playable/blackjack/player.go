package blackjack

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// Player is a seated player and their hands for the current round
type Player struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Chips    int           `json:"chips"`
	Hands    map[int]*Hand `json:"hands"`
	IsReady  bool          `json:"isReady"`
	JoinedAt time.Time     `json:"joinedAt"`
}

// NewPlayer returns a new player with no hands
func NewPlayer(id, name string, chips int, joinedAt time.Time) (*Player, error) {
	if id == "" {
		return nil, errors.New("player id is required")
	}

	if chips < 0 {
		return nil, errors.New("chips cannot be negative")
	}

	return &Player{
		ID:       id,
		Name:     name,
		Chips:    chips,
		Hands:    make(map[int]*Hand),
		JoinedAt: joinedAt,
	}, nil
}

// HandIndexes returns the hand indexes in ascending order
func (p *Player) HandIndexes() []int {
	indexes := make([]int, 0, len(p.Hands))
	for i := range p.Hands {
		indexes = append(indexes, i)
	}

	sort.Ints(indexes)
	return indexes
}

// wager moves amount from the player's chips to the table
func (p *Player) wager(amount int) error {
	if amount > p.Chips {
		return fmt.Errorf("%w: wager of %d exceeds %d chips", ErrInsufficientChips, amount, p.Chips)
	}

	p.Chips -= amount
	return nil
}

// nextHandIndex returns the lowest unused hand index
func (p *Player) nextHandIndex() int {
	for i := 0; ; i++ {
		if _, ok := p.Hands[i]; !ok {
			return i
		}
	}
}

// refundOpenHands returns the stakes of hands that were never dealt
func (p *Player) refundOpenHands() int {
	refund := 0
	for i, h := range p.Hands {
		if h.IsActive() && len(h.Cards) == 0 {
			refund += h.Bet + h.SideBetTotal()
		}

		delete(p.Hands, i)
	}

	p.Chips += refund
	return refund
}

func (p *Player) clone() *Player {
	p2 := *p
	p2.Hands = make(map[int]*Hand, len(p.Hands))
	for i, h := range p.Hands {
		p2.Hands[i] = h.clone()
	}

	return &p2
}
