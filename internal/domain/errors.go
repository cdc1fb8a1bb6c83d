package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrBusy              = errors.New("generation in progress")
	ErrValidation        = errors.New("validation failed")
	ErrUnknownStyle      = errors.New("unknown style")
	ErrUnknownExample    = errors.New("unknown example prompt")
	ErrInvalidImage      = errors.New("invalid image")
	ErrImageTooLarge     = errors.New("image too large")
	ErrMissingCredential = errors.New("missing credential")
	ErrGeneration        = errors.New("image generation failed")
	ErrEmptyResult       = errors.New("empty generation result")
)

// UserError carries the message shown to the user next to the sentinel used
// for classification.
type UserError struct {
	Kind    error
	Message string
	Err     error
}

func (e *UserError) Error() string {
	return e.Message
}

func (e *UserError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewUserError builds a UserError of the given kind.
func NewUserError(kind error, message string) *UserError {
	return &UserError{Kind: kind, Message: message}
}

const (
	MsgMissingInput  = "Please upload an image and provide a prompt."
	MsgInvalidUpload = "Please upload a valid image file."
	MsgEmptyResult   = "The AI model did not return a final image. Please try again."
	MsgUnknownFault  = "An unknown error occurred."
	MsgNoValidImage  = "The AI model did not return a valid image."
)
