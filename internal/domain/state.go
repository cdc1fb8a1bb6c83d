package domain

import "time"

// ImageRef points at an uploaded product photo held in the blob store.
// Identity is the ID minted per upload; the bytes never take part in
// comparisons.
type ImageRef struct {
	ID         string    `json:"id"`
	StorageKey string    `json:"-"`
	MIMEType   string    `json:"mime_type"`
	Filename   string    `json:"filename,omitempty"`
	Bytes      int64     `json:"bytes"`
	Width      int       `json:"width,omitempty"`
	Height     int       `json:"height,omitempty"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// AppState is the user-editable form state tracked in history.
type AppState struct {
	Image            *ImageRef `json:"image"`
	Prompt           string    `json:"prompt"`
	ShouldModifyItem bool      `json:"should_modify_item"`
	SelectedStyle    string    `json:"selected_style,omitempty"`
}

// InitialAppState mirrors a freshly opened editor.
func InitialAppState() AppState {
	return AppState{ShouldModifyItem: true}
}

// Equal compares field by field. Images match when they are the same upload.
func (s AppState) Equal(o AppState) bool {
	if s.Prompt != o.Prompt || s.ShouldModifyItem != o.ShouldModifyItem || s.SelectedStyle != o.SelectedStyle {
		return false
	}
	switch {
	case s.Image == nil && o.Image == nil:
		return true
	case s.Image == nil || o.Image == nil:
		return false
	default:
		return s.Image.ID == o.Image.ID
	}
}

// GeneratedImage is the last composite returned by the generator. Source is
// the upload it was generated from, which may differ from the current image
// after undo or redo.
type GeneratedImage struct {
	Base64      string    `json:"-"`
	MIMEType    string    `json:"mime_type"`
	Prompt      string    `json:"prompt"`
	Source      *ImageRef `json:"source,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
}
