package mux

import (
	"context"
	"errors"
	"net/http"
	"regexp"

	"blackjack-server/pkg/playable/blackjack"
	"blackjack-server/pkg/room"
	"blackjack-server/pkg/roomstore"

	gmux "github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type ctxKey int

const (
	ctxPlayerKey ctxKey = iota
	ctxRoomKey
)

// playerIDHeader identifies the participant making the request
// The websocket endpoint accepts the playerId query parameter instead
const playerIDHeader = "X-Player-ID"

var validPlayerID = regexp.MustCompile(`^[\w.@-]{1,64}$`)

// Mux handles HTTP requests
type Mux struct {
	*gmux.Router
	version string
	logger  logrus.FieldLogger
	manager *room.Manager
	pitBoss *room.PitBoss

	// store for testing purposes
	actorRouter *gmux.Router
}

// NewMux returns a new HTTP mux
// The websocket dispatcher runs until ctx is done
func NewMux(ctx context.Context, logger logrus.FieldLogger, manager *room.Manager, version string) *Mux {
	pitBoss := room.NewPitBoss(logger, manager)
	pitBoss.StartShift(ctx)

	this := &Mux{
		Router:  gmux.NewRouter(),
		version: version,
		logger:  logger,
		manager: manager,
		pitBoss: pitBoss,
	}

	this.actorRouter = this.Router.NewRoute().Subrouter()
	this.actorRouter.Use(this.actorMiddleware)

	// anonymous endpoints
	{
		r := this.Router
		r.Methods(http.MethodGet).Path("/health").Handler(this.getHealth())
	}

	// requires a player ID
	{
		r := this.actorRouter
		r.Methods(http.MethodPost).Path("/room").Handler(this.postRoom())

		rr := r.PathPrefix("/room/{code:[A-Z0-9]{6}}").Subrouter()
		rr.Use(this.roomMiddleware)

		rr.Methods(http.MethodGet).Path("").Handler(this.getRoomCode())
		rr.Methods(http.MethodGet).Path("/ws").Handler(this.getRoomCodeWS())
		rr.Methods(http.MethodPost).Path("/join").Handler(this.postRoomCodeJoin())
		rr.Methods(http.MethodPost).Path("/action").Handler(this.postRoomCodeAction())
	}

	return this
}

func (m *Mux) actorMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		playerID := r.Header.Get(playerIDHeader)
		if playerID == "" {
			playerID = r.FormValue("playerId")
		}

		if !validPlayerID.MatchString(playerID) {
			writeJSONError(w, http.StatusUnauthorized, nil)
			return
		}

		newCtx := context.WithValue(r.Context(), ctxPlayerKey, playerID)
		w.Header().Set("Blackjack-PlayerID", playerID)
		next.ServeHTTP(w, r.WithContext(newCtx))
	})
}

// roomMiddleware requires actorMiddleware to execute first
func (m *Mux) roomMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		snapshot, err := m.manager.Room(r.Context(), gmux.Vars(r)["code"])
		if err != nil {
			writeGameError(w, err)
			return
		}

		newCtx := context.WithValue(r.Context(), ctxRoomKey, snapshot)
		next.ServeHTTP(w, r.WithContext(newCtx))
	})
}

// errorStatus maps an error from the room manager onto an HTTP status code
func errorStatus(err error) int {
	switch {
	case errors.Is(err, roomstore.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, blackjack.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, blackjack.ErrPlayerNotFound):
		return http.StatusNotFound
	case errors.Is(err, roomstore.ErrConflict),
		errors.Is(err, blackjack.ErrInvalidPhase),
		errors.Is(err, blackjack.ErrInvalidHandState):
		return http.StatusConflict
	case errors.Is(err, blackjack.ErrInvalidAction),
		errors.Is(err, blackjack.ErrInvalidBet),
		errors.Is(err, blackjack.ErrInsufficientChips):
		return http.StatusBadRequest
	case errors.Is(err, blackjack.ErrShoeExhausted):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeGameError(w http.ResponseWriter, err error) {
	writeJSONError(w, errorStatus(err), err)
}
