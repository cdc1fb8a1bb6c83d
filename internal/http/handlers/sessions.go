package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (a *App) CreateSession(w http.ResponseWriter, r *http.Request) {
	c := a.Sessions.Create()
	w.Header().Set("Location", "/v1/sessions/"+c.ID())
	a.json(w, http.StatusCreated, c.View())
}

func (a *App) GetSession(w http.ResponseWriter, r *http.Request) {
	c, ok := a.session(w, r)
	if !ok {
		return
	}
	a.json(w, http.StatusOK, c.View())
}

func (a *App) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if !a.Sessions.Delete(chi.URLParam(r, "id")) {
		a.error(w, http.StatusNotFound, "not_found", "Session not found.")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
