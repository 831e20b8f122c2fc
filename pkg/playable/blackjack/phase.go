package blackjack

import "fmt"

// Phase is the room's game state
type Phase string

// Phase constants
const (
	// PhaseWaiting is before the first round, or after the dealer closed the table
	PhaseWaiting Phase = "waiting"

	// PhaseBetting means players are placing bets for the next deal
	PhaseBetting Phase = "betting"

	// PhasePlaying means cards are out and players are acting on their hands
	PhasePlaying Phase = "playing"

	// PhaseResolving means the dealer has played and hands are waiting to be settled
	PhaseResolving Phase = "resolving"

	// PhaseFinished means every hand has been settled
	PhaseFinished Phase = "finished"
)

// transitions is every allowed phase change
var transitions = map[Phase][]Phase{
	PhaseWaiting:   {PhaseBetting},
	PhaseBetting:   {PhasePlaying, PhaseWaiting},
	PhasePlaying:   {PhaseResolving, PhaseFinished},
	PhaseResolving: {PhaseFinished},
	PhaseFinished:  {PhaseBetting, PhaseWaiting},
}

// CanTransition returns true if the phase can move to next
func (p Phase) CanTransition(next Phase) bool {
	for _, allowed := range transitions[p] {
		if allowed == next {
			return true
		}
	}

	return false
}

// Valid returns true if p is a known phase
func (p Phase) Valid() bool {
	_, ok := transitions[p]
	return ok
}

func (r *Room) transition(next Phase) error {
	if !r.GameState.CanTransition(next) {
		return fmt.Errorf("%w: cannot move from %s to %s", ErrInvalidPhase, r.GameState, next)
	}

	r.GameState = next
	r.touch(FieldGameState)
	return nil
}

func (r *Room) requirePhase(action Action, phases ...Phase) error {
	for _, phase := range phases {
		if r.GameState == phase {
			return nil
		}
	}

	return fmt.Errorf("%w: cannot %s from phase: %s", ErrInvalidPhase, action, r.GameState)
}
