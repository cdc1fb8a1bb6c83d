package session

import (
	"time"

	"stager/internal/domain"
)

// HistoryInfo describes the shape of a session's history.
type HistoryInfo struct {
	Length int `json:"length"`
	Cursor int `json:"cursor"`
}

// View is a point-in-time copy of a session, safe to hand to other goroutines.
type View struct {
	SessionID string                 `json:"session_id"`
	Version   uint64                 `json:"version"`
	State     domain.AppState        `json:"state"`
	CanUndo   bool                   `json:"can_undo"`
	CanRedo   bool                   `json:"can_redo"`
	History   HistoryInfo            `json:"history"`
	Loading   bool                   `json:"loading"`
	Error     string                 `json:"error,omitempty"`
	Result    *domain.GeneratedImage `json:"result,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}
