// Package upload turns user supplied image payloads into stored image
// references.
package upload

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"stager/internal/domain"
	"stager/internal/storage"
)

// Converter validates uploads and persists them in a blob store.
type Converter struct {
	store    storage.BlobStore
	maxBytes int64
	now      func() time.Time
}

// New returns a Converter that rejects payloads larger than maxBytes.
func New(store storage.BlobStore, maxBytes int64) *Converter {
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}
	return &Converter{store: store, maxBytes: maxBytes, now: time.Now}
}

// MaxBytes returns the configured upload limit.
func (c *Converter) MaxBytes() int64 {
	return c.maxBytes
}

// FromReader reads a raw upload, as found in a multipart file part.
func (c *Converter) FromReader(ctx context.Context, sessionID, filename string, r io.Reader) (*domain.ImageRef, error) {
	data, err := io.ReadAll(io.LimitReader(r, c.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	return c.save(ctx, sessionID, filename, data)
}

// FromDataURL accepts a data:<mime>;base64,<payload> string.
func (c *Converter) FromDataURL(ctx context.Context, sessionID, filename, dataURL string) (*domain.ImageRef, error) {
	mime, data, err := ParseDataURL(dataURL)
	if err != nil {
		return nil, invalidUpload(err)
	}
	if !strings.HasPrefix(mime, "image/") {
		return nil, invalidUpload(fmt.Errorf("declared type %q", mime))
	}
	return c.save(ctx, sessionID, filename, data)
}

// ParseDataURL splits a base64 data URL into its media type and payload.
func ParseDataURL(s string) (string, []byte, error) {
	s = strings.TrimSpace(s)
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return "", nil, errors.New("missing data: scheme")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, errors.New("missing payload separator")
	}
	mime, encoding, _ := strings.Cut(meta, ";")
	if encoding != "base64" {
		return "", nil, errors.New("payload is not base64 encoded")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decode payload: %w", err)
	}
	mime = strings.ToLower(strings.TrimSpace(mime))
	if mime == "" {
		mime = "image/png"
	}
	return mime, data, nil
}

func (c *Converter) save(ctx context.Context, sessionID, filename string, data []byte) (*domain.ImageRef, error) {
	if int64(len(data)) > c.maxBytes {
		return nil, &domain.UserError{
			Kind:    domain.ErrImageTooLarge,
			Message: fmt.Sprintf("Image exceeds the %d MB upload limit.", c.maxBytes>>20),
		}
	}
	if len(data) == 0 {
		return nil, invalidUpload(errors.New("empty payload"))
	}

	mime := http.DetectContentType(data)
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, invalidUpload(fmt.Errorf("decode %s header: %w", mime, err))
	}
	// The sniffer does not know every format the decoders do.
	if !strings.HasPrefix(mime, "image/") {
		mime = "image/" + format
	}

	id := uuid.NewString()
	key, err := c.store.Write(ctx, path.Join(sessionID, "uploads", id), data)
	if err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}

	return &domain.ImageRef{
		ID:         id,
		StorageKey: key,
		MIMEType:   mime,
		Filename:   cleanFilename(filename),
		Bytes:      int64(len(data)),
		Width:      cfg.Width,
		Height:     cfg.Height,
		UploadedAt: c.now().UTC(),
	}, nil
}

func invalidUpload(err error) error {
	return &domain.UserError{Kind: domain.ErrInvalidImage, Message: domain.MsgInvalidUpload, Err: err}
}

func cleanFilename(name string) string {
	name = strings.TrimSpace(strings.ReplaceAll(name, "\\", "/"))
	name = path.Base(name)
	if name == "." || name == "/" {
		return ""
	}
	return name
}
