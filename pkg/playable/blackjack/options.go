package blackjack

import (
	"errors"

	"blackjack-server/pkg/deck"
)

// Options contains the table rules
type Options struct {
	DeckCount    int  `yaml:"deckCount" envconfig:"deck_count"`
	InitialChips int  `yaml:"initialChips" envconfig:"initial_chips"`
	MinBet       int  `yaml:"minBet" envconfig:"min_bet"`
	MaxBet       int  `yaml:"maxBet" envconfig:"max_bet"`
	MaxDoubleBet int  `yaml:"maxDoubleBet" envconfig:"max_double_bet"`
	MaxHands     int  `yaml:"maxHands" envconfig:"max_hands"`
	AutoResolve  bool `yaml:"autoResolve" envconfig:"auto_resolve"`
}

// DefaultOptions returns the default set of options
func DefaultOptions() Options {
	return Options{
		DeckCount:    deck.DefaultDeckCount,
		InitialChips: 100000,
		MinBet:       5000,
		MaxBet:       50000,
		MaxDoubleBet: 50000,
		MaxHands:     3,
		AutoResolve:  true,
	}
}

// Validate returns an error if the options cannot run a game
func (o Options) Validate() error {
	if o.DeckCount <= 0 {
		return errors.New("deck count must be > 0")
	}

	if o.MinBet <= 0 {
		return errors.New("min bet must be > 0")
	}

	if o.MaxBet < o.MinBet {
		return errors.New("max bet must be >= min bet")
	}

	if o.MaxDoubleBet <= 0 {
		return errors.New("max double bet must be > 0")
	}

	if o.MaxHands < 1 {
		return errors.New("max hands must be >= 1")
	}

	if o.InitialChips < 0 {
		return errors.New("initial chips cannot be negative")
	}

	return nil
}
