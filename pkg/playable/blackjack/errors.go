package blackjack

import "errors"

// Every rejected action wraps exactly one of these, so callers can use errors.Is
var (
	// ErrUnauthorized is returned when the actor is not the dealer or does not own the hand
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidPhase is returned when an action is attempted outside its phase
	ErrInvalidPhase = errors.New("invalid phase")

	// ErrInvalidHandState is returned when the hand cannot take the action
	ErrInvalidHandState = errors.New("invalid hand state")

	// ErrInsufficientChips is returned when a wager exceeds the player's chips
	ErrInsufficientChips = errors.New("insufficient chips")

	// ErrInvalidAction is returned for a missing or unknown action
	ErrInvalidAction = errors.New("invalid action")

	// ErrInvalidBet is returned when a wager is not an allowed amount
	ErrInvalidBet = errors.New("invalid bet")

	// ErrShoeExhausted is returned when a card is needed and the shoe is empty.
	// The dealer must reshuffle before the action can be retried.
	ErrShoeExhausted = errors.New("shoe exhausted, reshuffle required")

	// ErrPlayerNotFound is returned when a player is not seated in the room
	ErrPlayerNotFound = errors.New("player not found")
)
