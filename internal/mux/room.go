package mux

import (
	"net/http"

	"blackjack-server/pkg/playable/blackjack"
	"blackjack-server/pkg/room"
)

type roomPayload struct {
	Name string `json:"name"`
}

func (m *Mux) clientState(r *blackjack.Room, playerID string) *room.ClientState {
	return room.NewClientState(r, m.manager.Actions(r, playerID))
}

func (m *Mux) postRoom() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var pp roomPayload
		if !decodeRequest(w, r, &pp) {
			return
		}

		playerID := r.Context().Value(ctxPlayerKey).(string)
		created, err := m.manager.CreateRoom(r.Context(), playerID, pp.Name)
		if err != nil {
			writeGameError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, m.clientState(created, playerID))
	}
}

func (m *Mux) getRoomCode() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID := r.Context().Value(ctxPlayerKey).(string)
		snapshot := r.Context().Value(ctxRoomKey).(*blackjack.Room)

		writeJSON(w, http.StatusOK, m.clientState(snapshot, playerID))
	}
}

func (m *Mux) postRoomCodeJoin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var pp roomPayload
		if !decodeRequest(w, r, &pp) {
			return
		}

		playerID := r.Context().Value(ctxPlayerKey).(string)
		snapshot := r.Context().Value(ctxRoomKey).(*blackjack.Room)

		joined, err := m.manager.JoinRoom(r.Context(), snapshot.Code, playerID, pp.Name)
		if err != nil {
			writeGameError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, m.clientState(joined, playerID))
	}
}

// postRoomCodeAction applies the command to the snapshot read by roomMiddleware
// A room that changed in between returns a 409 and the client should retry
func (m *Mux) postRoomCodeAction() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var cmd blackjack.Command
		if !decodeRequest(w, r, &cmd) {
			return
		}

		playerID := r.Context().Value(ctxPlayerKey).(string)
		snapshot := r.Context().Value(ctxRoomKey).(*blackjack.Room)

		next, err := m.manager.ApplyTo(r.Context(), snapshot, playerID, cmd)
		if err != nil {
			writeGameError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, m.clientState(next, playerID))
	}
}
