package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"stager/internal/domain"
	"stager/internal/domain/presets"
	"stager/internal/infra"
	"stager/internal/metrics"
	"stager/internal/middleware"
	"stager/internal/session"
	"stager/internal/storage"
	"stager/internal/upload"
)

const maxJSONBody = 64 << 10

type App struct {
	Sessions       *session.Manager
	Uploads        *upload.Converter
	Blobs          storage.BlobStore
	Catalog        presets.Catalog
	Metrics        *metrics.Metrics
	Logger         *infra.Logger
	Provider       string
	AllowedOrigins []string
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error   errorBody     `json:"error"`
	Session *session.View `json:"session,omitempty"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, errorResponse{Error: errorBody{Code: errCode, Message: message}})
}

// writeError maps a domain error onto its HTTP status and user message. A
// non-nil view is attached so clients can render the settled session.
func (a *App) writeError(w http.ResponseWriter, r *http.Request, err error, view *session.View) {
	status, code := classify(err)
	message := messageFor(err, status)
	if status >= http.StatusInternalServerError {
		a.logger().Error().
			Err(err).
			Str("request_id", middleware.RequestIDFromContext(r.Context())).
			Str("path", r.URL.Path).
			Msg("request failed")
	}
	a.json(w, status, errorResponse{Error: errorBody{Code: code, Message: message}, Session: view})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrBusy):
		return http.StatusConflict, "busy"
	case errors.Is(err, domain.ErrImageTooLarge):
		return http.StatusRequestEntityTooLarge, "too_large"
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrUnknownStyle),
		errors.Is(err, domain.ErrUnknownExample),
		errors.Is(err, domain.ErrInvalidImage):
		return http.StatusUnprocessableEntity, "validation"
	case errors.Is(err, domain.ErrMissingCredential),
		errors.Is(err, domain.ErrGeneration),
		errors.Is(err, domain.ErrEmptyResult):
		return http.StatusBadGateway, "generation_failed"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func messageFor(err error, status int) string {
	var userErr *domain.UserError
	if errors.As(err, &userErr) {
		return userErr.Message
	}
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return "Session not found."
	case errors.Is(err, domain.ErrBusy):
		return "An image is being generated. Please wait for it to finish."
	case status >= http.StatusInternalServerError:
		return domain.MsgUnknownFault
	default:
		return err.Error()
	}
}

func (a *App) logger() *zerolog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	l := zerolog.Nop()
	return &l
}

// session resolves the {id} URL parameter, writing a 404 when it is unknown.
func (a *App) session(w http.ResponseWriter, r *http.Request) (*session.Controller, bool) {
	c, err := a.Sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, r, err, nil)
		return nil, false
	}
	return c, true
}

// decode reads a small JSON body into v, writing a 400 on failure.
func (a *App) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	return a.decodeBody(w, r, v)
}

// decodeBody reads a JSON body bounded by the caller into v. Oversized bodies
// get a 413, malformed ones a 400.
func (a *App) decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			a.error(w, http.StatusRequestEntityTooLarge, "too_large", "payload too large")
			return false
		}
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return false
	}
	return true
}

// respond writes the outcome of a session operation.
func (a *App) respond(w http.ResponseWriter, r *http.Request, view session.View, err error) {
	if err != nil {
		a.writeError(w, r, err, nil)
		return
	}
	a.json(w, http.StatusOK, view)
}
