package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/klauspost/compress/gzhttp"
	"github.com/rs/zerolog"

	"stager/internal/http/handlers"
	"stager/internal/middleware"
)

// gzipMinSize is the smallest response body worth compressing.
const gzipMinSize = 256

type Options struct {
	Logger         zerolog.Logger
	RateLimiter    *middleware.RateLimiter
	AllowedOrigins []string
	DefaultLocale  string
	CountryLookup  middleware.CountryLookup
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		middleware.I18N(opts.DefaultLocale, opts.CountryLookup),
		middleware.Logger(opts.Logger),
		middleware.Recover(opts.Logger),
		middleware.CORS(opts.AllowedOrigins),
	)

	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/openapi.json", app.OpenAPIJSON)
	r.Get("/v1/docs", app.OpenAPIDocs)

	r.Group(func(r chi.Router) {
		if opts.RateLimiter != nil {
			r.Use(opts.RateLimiter.Handler)
		}

		// The change feed hijacks the connection and must bypass compression.
		r.Get("/v1/sessions/{id}/events", app.Events)

		r.Group(func(r chi.Router) {
			r.Use(compress())

			r.Get("/v1/metrics", app.MetricsSnapshot)
			r.Get("/v1/styles", app.Styles)

			r.Post("/v1/sessions", app.CreateSession)
			r.Get("/v1/sessions/{id}", app.GetSession)
			r.Delete("/v1/sessions/{id}", app.DeleteSession)

			r.Put("/v1/sessions/{id}/image", app.PutImage)
			r.Delete("/v1/sessions/{id}/image", app.DeleteImage)
			r.Get("/v1/sessions/{id}/image", app.GetImage)

			r.Put("/v1/sessions/{id}/prompt", app.PutPrompt)
			r.Post("/v1/sessions/{id}/examples/{index}", app.SelectExample)
			r.Put("/v1/sessions/{id}/modify-item", app.PutModifyItem)
			r.Post("/v1/sessions/{id}/style", app.SelectStyle)

			r.Post("/v1/sessions/{id}/undo", app.Undo)
			r.Post("/v1/sessions/{id}/redo", app.Redo)

			r.Post("/v1/sessions/{id}/generate", app.Generate)
			r.Get("/v1/sessions/{id}/result", app.Result)
			r.Get("/v1/sessions/{id}/result/bundle", app.ResultBundle)
		})
	})

	return r
}

func compress() func(http.Handler) http.Handler {
	wrap, err := gzhttp.NewWrapper(gzhttp.MinSize(gzipMinSize))
	if err != nil {
		wrap = gzhttp.GzipHandler
	}
	return func(next http.Handler) http.Handler {
		return wrap(next)
	}
}
