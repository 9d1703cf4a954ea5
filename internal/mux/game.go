package mux

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"highcard-server/internal/config"
	"highcard-server/internal/jwt"
	"highcard-server/pkg/highcard"
	"highcard-server/pkg/model"
	"highcard-server/pkg/room"
)

var validNameRx = regexp.MustCompile(`^[\p{L}\p{N} ]{0,40}\z`)

type postGamePayload struct {
	Name        string            `json:"name"`
	Options     *highcard.Options `json:"options"`
	SavedGameID *int64            `json:"savedGameId"`
}

type postGameResponse struct {
	UUID        string `json:"uuid"`
	JoinCode    string `json:"joinCode"`
	Name        string `json:"name"`
	TotalRounds int    `json:"totalRounds"`
	NumPlayers  int    `json:"numPlayers"`
}

// defaultOptions returns the configured table defaults
func defaultOptions() highcard.Options {
	game := config.Instance().Game
	return highcard.Options{
		DeckSize:       game.DeckSize,
		NumPlayers:     game.NumPlayers,
		MaxCardValue:   game.MaxCardValue,
		PointsPerScore: game.PointsPerScore,
	}
}

// mergeOptions overlays the non-zero requested values onto the defaults
func mergeOptions(opts highcard.Options, requested *highcard.Options) highcard.Options {
	if requested == nil {
		return opts
	}

	if requested.DeckSize != 0 {
		opts.DeckSize = requested.DeckSize
	}

	if requested.NumPlayers != 0 {
		opts.NumPlayers = requested.NumPlayers
	}

	if requested.MaxCardValue != 0 {
		opts.MaxCardValue = requested.MaxCardValue
	}

	if requested.PointsPerScore != 0 {
		opts.PointsPerScore = requested.PointsPerScore
	}

	return opts
}

func (m *Mux) postGame() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var pp postGamePayload
		if !decodeRequest(w, r, &pp) {
			return
		}

		if !validNameRx.MatchString(pp.Name) {
			writeJSONError(w, http.StatusBadRequest, errors.New("name may only contain letters, numbers, and spaces, and must be at most 40 characters"))
			return
		}

		opts := mergeOptions(defaultOptions(), pp.Options)

		var state *highcard.State
		if pp.SavedGameID != nil {
			record, err := model.SavedGameByID(r.Context(), *pp.SavedGameID)
			if err != nil {
				if err == sql.ErrNoRows {
					writeJSONError(w, http.StatusBadRequest, fmt.Errorf("saved game %d does not exist", *pp.SavedGameID))
				} else {
					writeJSONError(w, http.StatusInternalServerError, err)
				}

				return
			}

			// a saved game is restored with the options it was saved with
			opts = record.Options
			state = record.State
			if pp.Name == "" {
				pp.Name = record.Name
			}
		}

		session, err := m.registry.CreateSession(pp.Name, opts, state)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err)
			return
		}

		writeJSON(w, http.StatusCreated, postGameResponse{
			UUID:        session.UUID(),
			JoinCode:    session.JoinCode(),
			Name:        session.Name(),
			TotalRounds: opts.TotalRounds(),
			NumPlayers:  opts.NumPlayers,
		})
	}
}

func (m *Mux) getGame() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessions := m.registry.Sessions()
		games := make([]*room.GameState, 0, len(sessions))
		for _, session := range sessions {
			if data, ok := session.CurrentState(); ok {
				games = append(games, data)
			}
		}

		writeJSON(w, http.StatusOK, games)
	}
}

func (m *Mux) getGameUUID() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session := r.Context().Value(ctxSessionKey).(*room.Session)
		data, ok := session.CurrentState()
		if !ok {
			writeJSONError(w, http.StatusNotFound, nil)
			return
		}

		writeJSON(w, http.StatusOK, data)
	})
}

type postSeatPayload struct {
	Seat     *int   `json:"seat"`
	Name     string `json:"name"`
	JoinCode string `json:"joinCode"`
}

type postSeatResponse struct {
	Token string `json:"token"`
	Seat  int    `json:"seat"`
}

func (m *Mux) postGameUUIDSeat() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session := r.Context().Value(ctxSessionKey).(*room.Session)

		var pp postSeatPayload
		if !decodeRequest(w, r, &pp) {
			return
		}

		if !strings.EqualFold(pp.JoinCode, session.JoinCode()) {
			writeJSONError(w, http.StatusForbidden, errors.New("invalid join code"))
			return
		}

		if pp.Seat == nil {
			writeJSONError(w, http.StatusBadRequest, errors.New("seat is required"))
			return
		}

		if !validNameRx.MatchString(pp.Name) {
			writeJSONError(w, http.StatusBadRequest, errors.New("name may only contain letters, numbers, and spaces, and must be at most 40 characters"))
			return
		}

		if err := session.ClaimSeat(*pp.Seat, pp.Name); err != nil {
			switch {
			case errors.Is(err, room.ErrSeatTaken):
				writeJSONError(w, http.StatusConflict, err)
			case errors.Is(err, room.ErrSessionClosed):
				writeJSONError(w, http.StatusNotFound, nil)
			default:
				writeJSONError(w, http.StatusBadRequest, err)
			}

			return
		}

		token, err := jwt.Sign(session.UUID(), *pp.Seat)
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, err)
			return
		}

		writeJSON(w, http.StatusCreated, postSeatResponse{
			Token: token,
			Seat:  *pp.Seat,
		})
	})
}
