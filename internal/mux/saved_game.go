package mux

import (
	"net/http"
	"strconv"

	"highcard-server/pkg/model"

	gmux "github.com/gorilla/mux"
)

var statusOK = map[string]string{
	"status": "OK",
}

func (m *Mux) getSavedGame() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start, rows, err := parsePaginationOptions(r)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err)
			return
		}

		games, err := model.SavedGames(r.Context(), start, rows)
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, err)
			return
		}

		writeJSON(w, http.StatusOK, games)
	}
}

func (m *Mux) deleteSavedGameID() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(gmux.Vars(r)["id"], 10, 64)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err)
			return
		}

		record, err := model.SavedGameByID(r.Context(), id)
		if err != nil {
			writeMaybeNotFoundError(w, err)
			return
		}

		if err := record.Delete(r.Context()); err != nil {
			writeJSONError(w, http.StatusInternalServerError, err)
			return
		}

		writeJSON(w, http.StatusOK, statusOK)
	}
}
