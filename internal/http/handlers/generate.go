package handlers

import (
	"encoding/base64"
	"fmt"
	"net/http"

	"stager/internal/middleware"
	"stager/internal/session"
	"stager/pkg/zip"
)

// Generate runs one staging request and returns the settled session. Failures
// still carry the session so the client can show the stored error.
func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	c, ok := a.session(w, r)
	if !ok {
		return
	}
	view, err := c.Generate(r.Context())
	if err != nil {
		var attached *session.View
		if view.SessionID != "" {
			attached = &view
		}
		a.writeError(w, r, err, attached)
		return
	}
	a.logger().Info().
		Str("request_id", middleware.RequestIDFromContext(r.Context())).
		Str("session_id", c.ID()).
		Str("locale", middleware.LocaleFromContext(r.Context())).
		Msg("scene generated")
	a.json(w, http.StatusOK, view)
}

// Result streams the last generated image.
func (a *App) Result(w http.ResponseWriter, r *http.Request) {
	c, ok := a.session(w, r)
	if !ok {
		return
	}
	result := c.Result()
	if result == nil {
		a.error(w, http.StatusNotFound, "not_found", "No generated image yet.")
		return
	}
	data, err := base64.StdEncoding.DecodeString(result.Base64)
	if err != nil {
		a.writeError(w, r, fmt.Errorf("decode result: %w", err), nil)
		return
	}
	w.Header().Set("Content-Type", result.MIMEType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=staged-%s%s", c.ID(), zip.Extension(result.MIMEType)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// ResultBundle returns a zip holding the composite and the photo it was
// generated from.
func (a *App) ResultBundle(w http.ResponseWriter, r *http.Request) {
	c, ok := a.session(w, r)
	if !ok {
		return
	}
	result := c.Result()
	if result == nil {
		a.error(w, http.StatusNotFound, "not_found", "No generated image yet.")
		return
	}
	staged, err := base64.StdEncoding.DecodeString(result.Base64)
	if err != nil {
		a.writeError(w, r, fmt.Errorf("decode result: %w", err), nil)
		return
	}
	assets := []zip.Asset{{
		Filename: "staged" + zip.Extension(result.MIMEType),
		MIME:     result.MIMEType,
		Data:     staged,
		Modified: result.GeneratedAt,
	}}
	if ref := result.Source; ref != nil {
		source, err := a.Blobs.Read(r.Context(), ref.StorageKey)
		if err != nil {
			a.writeError(w, r, err, nil)
			return
		}
		assets = append([]zip.Asset{{
			Filename: "source" + zip.Extension(ref.MIMEType),
			MIME:     ref.MIMEType,
			Data:     source,
			Modified: ref.UploadedAt,
		}}, assets...)
	}
	archive, err := zip.ArchiveAssets(assets)
	if err != nil {
		a.writeError(w, r, err, nil)
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=scene-%s.zip", c.ID()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive)
}
