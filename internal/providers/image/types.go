package image

import (
	"context"
	"errors"
	"strings"

	"stager/internal/domain"
	"stager/internal/providers/genai"
)

// DefaultMIMEType is assumed when a provider does not label its output.
const DefaultMIMEType = "image/png"

// SceneRequest describes one staging call: the product photo and the scene
// the product should be placed into.
type SceneRequest struct {
	Prompt           string
	ImageBase64      string
	MIMEType         string
	ShouldModifyItem bool
	RequestID        string
}

// Asset is a generated image, base64 encoded.
type Asset struct {
	Base64   string
	MIMEType string
}

// Generator is the contract implemented by all image providers.
type Generator interface {
	Generate(ctx context.Context, req SceneRequest) (*Asset, error)
}

// errMissingKey is reported verbatim without the generation failure prefix.
func errMissingKey() error {
	return domain.NewUserError(domain.ErrMissingCredential, "GEMINI_API_KEY environment variable not set.")
}

// wrapFailure labels a provider error with the message shown to users.
func wrapFailure(err error) error {
	if err == nil {
		return nil
	}
	var userErr *domain.UserError
	if errors.As(err, &userErr) {
		return err
	}
	if errors.Is(err, genai.ErrNoImage) {
		return &domain.UserError{
			Kind:    domain.ErrEmptyResult,
			Message: "AI image generation failed: " + domain.MsgNoValidImage,
			Err:     err,
		}
	}
	return &domain.UserError{
		Kind:    domain.ErrGeneration,
		Message: "AI image generation failed: " + err.Error(),
		Err:     err,
	}
}

func normalizeMIME(mime string) string {
	mime = strings.TrimSpace(mime)
	if mime == "" {
		return DefaultMIMEType
	}
	return mime
}
