package blackjack

import (
	"encoding/json"
	"fmt"

	"blackjack-server/pkg/playable"
)

// Action is something a participant can do at the table
type Action string

// Action constants
const (
	ActionStartGame  Action = "startGame"
	ActionBet        Action = "bet"
	ActionSideBet    Action = "sideBet"
	ActionClearBet   Action = "clearBet"
	ActionReady      Action = "ready"
	ActionDeal       Action = "deal"
	ActionHit        Action = "hit"
	ActionStand      Action = "stand"
	ActionDoubleDown Action = "doubleDown"
	ActionSplit      Action = "split"
	ActionDealerPlay Action = "dealerPlay"
	ActionResolve    Action = "resolve"
	ActionNewRound   Action = "newRound"
	ActionReshuffle  Action = "reshuffle"
	ActionEndGame    Action = "endGame"
	ActionLeave      Action = "leave"
)

var actions = map[Action]bool{
	ActionStartGame:  true,
	ActionBet:        true,
	ActionSideBet:    true,
	ActionClearBet:   true,
	ActionReady:      true,
	ActionDeal:       true,
	ActionHit:        true,
	ActionStand:      true,
	ActionDoubleDown: true,
	ActionSplit:      true,
	ActionDealerPlay: true,
	ActionResolve:    true,
	ActionNewRound:   true,
	ActionReshuffle:  true,
	ActionEndGame:    true,
	ActionLeave:      true,
}

// ActionFromString returns an action from a string
func ActionFromString(s string) (Action, error) {
	a := Action(s)
	if !actions[a] {
		return "", fmt.Errorf("%w: %s", ErrInvalidAction, s)
	}

	return a, nil
}

// String returns the action name
func (a Action) String() string {
	return string(a)
}

// UnmarshalJSON rejects unknown actions
func (a *Action) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}

	action, err := ActionFromString(s)
	if err != nil {
		return err
	}

	*a = action
	return nil
}

// Command is a single request against a room
type Command struct {
	Action   Action          `json:"action"`
	Hand     HandRef         `json:"hand"`
	Amount   int             `json:"amount"`
	SideBet  SideBet         `json:"sideBet"`
	SideBets map[SideBet]int `json:"sideBets"`
	Ready    bool            `json:"ready"`
}

// CommandFromPayload builds a command from an inbound websocket payload
func CommandFromPayload(in *playable.PayloadIn) (Command, error) {
	action, err := ActionFromString(in.Action)
	if err != nil {
		return Command{}, err
	}

	cmd := Command{Action: action}
	cmd.Hand.PlayerID, _ = in.AdditionalData.GetString("playerId")
	cmd.Hand.Index, _ = in.AdditionalData.GetInt("handIndex")
	cmd.Amount, _ = in.AdditionalData.GetInt("amount")
	cmd.Ready, _ = in.AdditionalData.GetBool("ready")
	if kind, ok := in.AdditionalData.GetString("sideBet"); ok {
		cmd.SideBet = SideBet(kind)
	}

	if bets, ok := in.AdditionalData.GetIntMap("sideBets"); ok {
		cmd.SideBets = make(map[SideBet]int, len(bets))
		for kind, amount := range bets {
			cmd.SideBets[SideBet(kind)] = amount
		}
	}

	return cmd, nil
}

// Apply runs the command against the room on behalf of the actor
func (g *Game) Apply(r *Room, actorID string, cmd Command) error {
	switch cmd.Action {
	case ActionStartGame:
		return g.StartGame(r, actorID)
	case ActionBet:
		return g.PlaceBet(r, actorID, cmd.Amount, cmd.SideBets)
	case ActionSideBet:
		return g.PlaceSideBet(r, actorID, cmd.SideBet, cmd.Amount)
	case ActionClearBet:
		return g.ClearBet(r, actorID)
	case ActionReady:
		return g.SetReady(r, actorID, cmd.Ready)
	case ActionDeal:
		return g.Deal(r, actorID)
	case ActionHit:
		return g.Hit(r, actorID, cmd.Hand)
	case ActionStand:
		return g.Stand(r, actorID, cmd.Hand)
	case ActionDoubleDown:
		return g.DoubleDown(r, actorID, cmd.Hand)
	case ActionSplit:
		return g.Split(r, actorID, cmd.Hand)
	case ActionDealerPlay:
		return g.DealerPlay(r, actorID)
	case ActionResolve:
		return g.Resolve(r, actorID)
	case ActionNewRound:
		return g.StartNewRound(r, actorID)
	case ActionReshuffle:
		return g.Reshuffle(r, actorID)
	case ActionEndGame:
		return g.EndGame(r, actorID)
	case ActionLeave:
		return g.Leave(r, actorID)
	}

	if cmd.Action == "" {
		return fmt.Errorf("%w: no action given", ErrInvalidAction)
	}

	return fmt.Errorf("%w: %s", ErrInvalidAction, cmd.Action)
}

// ActionsFor returns what the participant can currently do
func (g *Game) ActionsFor(r *Room, actorID string) []Action {
	if r.IsDealer(actorID) {
		return dealerActions(r)
	}

	p, ok := r.Players[actorID]
	if !ok {
		return []Action{}
	}

	actions := []Action{ActionReady}
	switch r.GameState {
	case PhaseWaiting, PhaseFinished:
		actions = append(actions, ActionLeave)
	case PhaseBetting:
		if _, ok := p.Hands[0]; ok {
			actions = append(actions, ActionSideBet, ActionClearBet)
		} else if p.Chips >= g.options.MinBet {
			actions = append(actions, ActionBet)
		}

		actions = append(actions, ActionLeave)
	case PhasePlaying:
		var canAct, canDouble, canSplit bool
		for _, h := range p.Hands {
			if !h.IsActive() {
				continue
			}

			canAct = true
			if h.canDoubleOrSplit() {
				extra := h.Bet
				if extra > g.options.MaxDoubleBet {
					extra = g.options.MaxDoubleBet
				}

				canDouble = canDouble || p.Chips >= extra
				canSplit = canSplit || (h.Cards[0].Rank == h.Cards[1].Rank && len(p.Hands) < g.options.MaxHands && p.Chips >= h.Bet)
			}
		}

		if canAct {
			actions = append(actions, ActionHit, ActionStand)
		}

		if canDouble {
			actions = append(actions, ActionDoubleDown)
		}

		if canSplit {
			actions = append(actions, ActionSplit)
		}
	}

	return actions
}

func dealerActions(r *Room) []Action {
	switch r.GameState {
	case PhaseWaiting:
		return []Action{ActionStartGame}
	case PhaseBetting:
		return []Action{ActionDeal, ActionReshuffle, ActionEndGame}
	case PhasePlaying:
		if r.allHandsDone() {
			return []Action{ActionDealerPlay, ActionReshuffle}
		}

		return []Action{ActionReshuffle}
	case PhaseResolving:
		return []Action{ActionResolve, ActionReshuffle}
	case PhaseFinished:
		return []Action{ActionNewRound, ActionReshuffle, ActionEndGame}
	}

	return []Action{}
}
