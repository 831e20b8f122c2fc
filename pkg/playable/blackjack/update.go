package blackjack

import (
	"encoding/json"
	"sort"

	"blackjack-server/pkg/deck"
	"blackjack-server/pkg/playable"
)

// Field is a top-level room field that an Update can replace
type Field string

// Field constants, named as they are serialized
const (
	FieldPlayers     Field = "players"
	FieldGameState   Field = "gameState"
	FieldShoe        Field = "shoe"
	FieldDealerCards Field = "dealerCards"
	FieldCurrentHand Field = "currentHand"
	FieldLog         Field = "log"
)

type fieldSet map[Field]bool

func (r *Room) touch(fields ...Field) {
	if r.dirty == nil {
		r.dirty = make(fieldSet)
	}

	for _, f := range fields {
		r.dirty[f] = true
	}
}

// Update is a partial room write: only the listed top-level fields are replaced
type Update struct {
	Players     map[string]*Player
	GameState   Phase
	Shoe        deck.Shoe
	DealerCards []deck.Card
	CurrentHand int
	Log         []*playable.LogMessage

	fields fieldSet
}

// Changes returns an Update holding every field modified since the room was cloned.
// The values are copies, so later changes to r do not leak into the update.
func (r *Room) Changes() *Update {
	c := r.Clone()
	u := &Update{fields: make(fieldSet, len(r.dirty))}
	for f := range r.dirty {
		u.fields[f] = true
		switch f {
		case FieldPlayers:
			u.Players = c.Players
		case FieldGameState:
			u.GameState = c.GameState
		case FieldShoe:
			u.Shoe = c.Shoe
		case FieldDealerCards:
			u.DealerCards = c.DealerCards
		case FieldCurrentHand:
			u.CurrentHand = c.CurrentHand
		case FieldLog:
			u.Log = c.Log
		}
	}

	return u
}

// Has returns true if the update replaces f
func (u *Update) Has(f Field) bool {
	return u.fields[f]
}

// Fields returns the replaced fields in a stable order
func (u *Update) Fields() []Field {
	fields := make([]Field, 0, len(u.fields))
	for f := range u.fields {
		fields = append(fields, f)
	}

	sort.Slice(fields, func(i, j int) bool { return fields[i] < fields[j] })
	return fields
}

// IsEmpty returns true if nothing changed
func (u *Update) IsEmpty() bool {
	return len(u.fields) == 0
}

// Apply replaces the update's fields on r
func (u *Update) Apply(r *Room) {
	if u.Has(FieldPlayers) {
		r.Players = u.Players
	}

	if u.Has(FieldGameState) {
		r.GameState = u.GameState
	}

	if u.Has(FieldShoe) {
		r.Shoe = u.Shoe
	}

	if u.Has(FieldDealerCards) {
		r.DealerCards = u.DealerCards
	}

	if u.Has(FieldCurrentHand) {
		r.CurrentHand = u.CurrentHand
	}

	if u.Has(FieldLog) {
		r.Log = u.Log
	}
}

// MarshalJSON encodes only the replaced fields, suitable for a jsonb merge
func (u *Update) MarshalJSON() ([]byte, error) {
	out := make(map[Field]interface{}, len(u.fields))
	for f := range u.fields {
		switch f {
		case FieldPlayers:
			out[f] = u.Players
		case FieldGameState:
			out[f] = u.GameState
		case FieldShoe:
			out[f] = u.Shoe
		case FieldDealerCards:
			out[f] = u.DealerCards
		case FieldCurrentHand:
			out[f] = u.CurrentHand
		case FieldLog:
			out[f] = u.Log
		}
	}

	return json.Marshal(out)
}
