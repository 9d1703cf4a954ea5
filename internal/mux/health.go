package mux

import "net/http"

type healthResponse struct {
	Status  string `json:"status"`
	Name    string `json:"name"`
	Version string `json:"version"`
}

func (m *Mux) getHealth() http.HandlerFunc {
	payload := healthResponse{
		Status:  "OK",
		Name:    "highcard-server",
		Version: m.version,
	}

	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, payload)
	}
}
