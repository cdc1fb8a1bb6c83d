package handlers

import (
	"net/http"
)

func (a *App) MetricsSnapshot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(a.Metrics.Snapshot())
}
