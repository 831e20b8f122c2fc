package deck

import (
	"crypto/sha1" // nolint:gosec
	"encoding/hex"
	"errors"

	"blackjack-server/internal/rng"
)

// ErrEndOfDeck is an error when Draw() is attempted and there are no more cards
var ErrEndOfDeck = errors.New("end of deck reached")

// DefaultDeckCount is the number of standard decks in a shoe
const DefaultDeckCount = 6

const cardsPerDeck = 52

// Shoe is an ordered sequence of cards. The next card to be dealt is the last one.
// A Shoe is a value: every operation that consumes cards returns the new shoe and
// never writes into the backing array of the receiver. Never append to a Shoe.
type Shoe []Card

// BuildShoe returns deckCount unshuffled standard decks
func BuildShoe(deckCount int) Shoe {
	cards := make(Shoe, 0, deckCount*cardsPerDeck)
	for i := 0; i < deckCount; i++ {
		for _, suit := range Suits {
			for rank := 2; rank <= Ace; rank++ {
				cards = append(cards, Card{
					Rank: rank,
					Suit: suit,
				})
			}
		}
	}

	return cards
}

// Shuffle returns a uniformly shuffled copy of cards (Fisher-Yates)
func Shuffle(cards Shoe, gen rng.Generator) Shoe {
	shuffled := cards.Clone()
	for j := len(shuffled) - 1; j > 0; j-- {
		i := gen.Intn(j + 1)

		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}

	return shuffled
}

// Cut picks a cut index in [60%, 80%) of the shoe and returns the cards from that index onward.
// The cards before the cut are burned for the life of the shoe.
func Cut(shoe Shoe, gen rng.Generator) Shoe {
	minCut := len(shoe) * 6 / 10
	maxCut := len(shoe) * 8 / 10

	cut := minCut
	if maxCut > minCut {
		cut += gen.Intn(maxCut - minCut)
	}

	return shoe[cut:].Clone()
}

// NewShoe builds, shuffles and cuts a shoe of deckCount decks
func NewShoe(deckCount int, gen rng.Generator) Shoe {
	return Cut(Shuffle(BuildShoe(deckCount), gen), gen)
}

// Draw returns the next card and the remaining shoe
// If there are no more cards, an ErrEndOfDeck is returned and the shoe is unchanged
func (s Shoe) Draw() (Card, Shoe, error) {
	n := len(s)
	if n == 0 {
		return Card{}, s, ErrEndOfDeck
	}

	return s[n-1], s[:n-1:n-1], nil
}

// CanDraw returns true if there are {want} cards left in the shoe
func (s Shoe) CanDraw(want int) bool {
	return len(s) >= want
}

// CardsLeft returns the number of cards left in the shoe
func (s Shoe) CardsLeft() int {
	return len(s)
}

// Clone returns a copy that shares no memory with s
func (s Shoe) Clone() Shoe {
	s2 := make(Shoe, len(s))
	copy(s2, s)

	return s2
}

// RemoveCards returns a copy of the shoe with one instance of each card removed
// This is used after a reshuffle so cards still on the table are not dealt twice
func (s Shoe) RemoveCards(cards []Card) Shoe {
	pending := make(map[Card]int, len(cards))
	for _, c := range cards {
		pending[c]++
	}

	remaining := make(Shoe, 0, len(s))
	for _, c := range s {
		if pending[c] > 0 {
			pending[c]--
			continue
		}

		remaining = append(remaining, c)
	}

	return remaining
}

// HashCode returns a SHA1 hash code of the shoe.
func (s Shoe) HashCode() string {
	hash := sha1.New() // nolint:gosec
	for _, card := range s {
		_, _ = hash.Write([]byte(CardToString(card)))
	}

	return hex.EncodeToString(hash.Sum(nil))
}
