package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

type promptRequest struct {
	Prompt string `json:"prompt"`
}

type modifyItemRequest struct {
	ShouldModifyItem *bool `json:"should_modify_item"`
}

type styleRequest struct {
	Style string `json:"style"`
}

func (a *App) PutPrompt(w http.ResponseWriter, r *http.Request) {
	c, ok := a.session(w, r)
	if !ok {
		return
	}
	var req promptRequest
	if !a.decode(w, r, &req) {
		return
	}
	view, err := c.SetPrompt(req.Prompt)
	a.respond(w, r, view, err)
}

func (a *App) SelectExample(w http.ResponseWriter, r *http.Request) {
	c, ok := a.session(w, r)
	if !ok {
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "example index must be a number")
		return
	}
	view, err := c.SelectExample(index)
	a.respond(w, r, view, err)
}

func (a *App) PutModifyItem(w http.ResponseWriter, r *http.Request) {
	c, ok := a.session(w, r)
	if !ok {
		return
	}
	var req modifyItemRequest
	if !a.decode(w, r, &req) {
		return
	}
	if req.ShouldModifyItem == nil {
		a.error(w, http.StatusBadRequest, "bad_request", "should_modify_item is required")
		return
	}
	view, err := c.SetShouldModifyItem(*req.ShouldModifyItem)
	a.respond(w, r, view, err)
}

func (a *App) SelectStyle(w http.ResponseWriter, r *http.Request) {
	c, ok := a.session(w, r)
	if !ok {
		return
	}
	var req styleRequest
	if !a.decode(w, r, &req) {
		return
	}
	view, err := c.SelectStyle(req.Style)
	a.respond(w, r, view, err)
}

func (a *App) Undo(w http.ResponseWriter, r *http.Request) {
	c, ok := a.session(w, r)
	if !ok {
		return
	}
	view, err := c.Undo()
	a.respond(w, r, view, err)
}

func (a *App) Redo(w http.ResponseWriter, r *http.Request) {
	c, ok := a.session(w, r)
	if !ok {
		return
	}
	view, err := c.Redo()
	a.respond(w, r, view, err)
}
