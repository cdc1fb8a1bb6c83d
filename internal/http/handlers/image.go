package handlers

import (
	"errors"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"stager/internal/domain"
	"stager/internal/upload"
)

const multipartOverhead = 1 << 20

type dataURLUpload struct {
	DataURL  string `json:"data_url"`
	Filename string `json:"filename"`
}

// PutImage accepts a multipart "file" part or a JSON data URL.
func (a *App) PutImage(w http.ResponseWriter, r *http.Request) {
	c, ok := a.session(w, r)
	if !ok {
		return
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	var (
		ref *domain.ImageRef
		err error
	)
	switch mediaType {
	case "multipart/form-data":
		r.Body = http.MaxBytesReader(w, r.Body, a.Uploads.MaxBytes()+multipartOverhead)
		file, header, ferr := r.FormFile("file")
		if ferr != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(ferr, &tooLarge) {
				a.writeError(w, r, domain.NewUserError(domain.ErrImageTooLarge, "Image exceeds the upload limit."), nil)
				return
			}
			a.error(w, http.StatusBadRequest, "bad_request", "multipart field \"file\" is required")
			return
		}
		defer file.Close()
		ref, err = a.Uploads.FromReader(r.Context(), c.ID(), header.Filename, file)
	case "application/json", "":
		// base64 inflates the payload by a third.
		r.Body = http.MaxBytesReader(w, r.Body, a.Uploads.MaxBytes()*4/3+multipartOverhead)
		var body dataURLUpload
		if !a.decodeBody(w, r, &body) {
			return
		}
		ref, err = a.Uploads.FromDataURL(r.Context(), c.ID(), body.Filename, body.DataURL)
	default:
		a.writeError(w, r, domain.NewUserError(domain.ErrInvalidImage, domain.MsgInvalidUpload), nil)
		return
	}
	if err != nil {
		a.writeError(w, r, err, nil)
		return
	}

	view, err := c.SetImage(ref)
	if err != nil {
		// Nothing references the blob once the session refuses it.
		if derr := a.Blobs.DeletePrefix(r.Context(), ref.StorageKey); derr != nil {
			a.logger().Warn().Err(derr).Str("key", ref.StorageKey).Msg("failed to discard rejected upload")
		}
		a.writeError(w, r, err, nil)
		return
	}
	a.Metrics.UploadAccepted()
	a.json(w, http.StatusOK, view)
}

func (a *App) DeleteImage(w http.ResponseWriter, r *http.Request) {
	c, ok := a.session(w, r)
	if !ok {
		return
	}
	view, err := c.SetImage(nil)
	a.respond(w, r, view, err)
}

// GetImage streams the current upload. ?preview=N returns a PNG scaled to at
// most N pixels on its longest side.
func (a *App) GetImage(w http.ResponseWriter, r *http.Request) {
	c, ok := a.session(w, r)
	if !ok {
		return
	}
	ref := c.Image()
	if ref == nil {
		a.error(w, http.StatusNotFound, "not_found", "No image uploaded.")
		return
	}
	data, err := a.Blobs.Read(r.Context(), ref.StorageKey)
	if err != nil {
		a.writeError(w, r, err, nil)
		return
	}

	contentType := ref.MIMEType
	if raw := strings.TrimSpace(r.URL.Query().Get("preview")); raw != "" {
		size, perr := strconv.Atoi(raw)
		if perr != nil || size <= 0 || size > 4096 {
			a.error(w, http.StatusBadRequest, "bad_request", "preview must be between 1 and 4096")
			return
		}
		if data, err = upload.Preview(data, size); err != nil {
			a.writeError(w, r, err, nil)
			return
		}
		contentType = "image/png"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.Header().Set("ETag", strconv.Quote(ref.ID))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
