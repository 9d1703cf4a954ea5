package mux

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"highcard-server/internal/jwt"
	"highcard-server/pkg/room"

	gmux "github.com/gorilla/mux"
)

type ctxKey int

const (
	ctxSessionKey ctxKey = iota
	ctxSeatKey
)

// Mux handles HTTP requests
type Mux struct {
	*gmux.Router
	version  string
	registry *room.Registry

	// store for testing purposes
	wsRouter *gmux.Router
}

// NewMux returns a new HTTP mux
// The registry's lifecycle belongs to the caller.
func NewMux(version string, registry *room.Registry) *Mux {
	this := &Mux{
		Router:   gmux.NewRouter(),
		version:  version,
		registry: registry,
	}

	// open endpoints
	{
		r := this.Router
		r.Methods(http.MethodGet).Path("/health").Handler(this.getHealth())
		r.Methods(http.MethodPost).Path("/game").Handler(this.postGame())
		r.Methods(http.MethodGet).Path("/game").Handler(this.getGame())
		r.Methods(http.MethodGet).Path("/saved-game").Handler(this.getSavedGame())
		r.Methods(http.MethodDelete).Path("/saved-game/{id:[0-9]+}").Handler(this.deleteSavedGameID())
	}

	// per-game endpoints
	{
		gr := this.Router.PathPrefix("/game/{uuid:(?i)[a-f0-9]{8}(?:-[a-f0-9]{4}){3}-[a-f0-9]{12}}").Subrouter()
		gr.Use(this.gameMiddleware)

		gr.Methods(http.MethodGet).Path("").Handler(this.getGameUUID())
		gr.Methods(http.MethodPost).Path("/seat").Handler(this.postGameUUIDSeat())

		// requires a seat ticket
		this.wsRouter = gr.PathPrefix("/ws").Subrouter()
		this.wsRouter.Use(this.authMiddleware)
		this.wsRouter.Methods(http.MethodGet).Path("").Handler(this.getGameUUIDWS())
	}

	return this
}

// gameMiddleware resolves the {uuid} path variable into a live session
func (m *Mux) gameMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uuid := gmux.Vars(r)["uuid"]
		session, ok := m.registry.Session(uuid)
		if !ok {
			writeJSONError(w, http.StatusNotFound, nil)
			return
		}

		newCtx := context.WithValue(r.Context(), ctxSessionKey, session)
		next.ServeHTTP(w, r.WithContext(newCtx))
	})
}

// authMiddleware validates the seat ticket against the game in the path
func (m *Mux) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.FormValue("access_token")
		if token == "" {
			authHeader := strings.Split(r.Header.Get("Authorization"), " ")
			if len(authHeader) != 2 || strings.ToLower(authHeader[0]) != "bearer" {
				writeJSONError(w, http.StatusUnauthorized, nil)
				return
			}

			token = authHeader[1]
		}

		seat, err := jwt.ValidSeat(token, gmux.Vars(r)["uuid"])
		if err != nil {
			writeJSONError(w, http.StatusUnauthorized, nil)
			return
		}

		newCtx := context.WithValue(r.Context(), ctxSeatKey, seat)
		w.Header().Set("HighCard-Seat", strconv.Itoa(seat))
		next.ServeHTTP(w, r.WithContext(newCtx))
	})
}
