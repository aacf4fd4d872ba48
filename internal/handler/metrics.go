package handler

import (
	"fmt"
	"net/http"

	"github.com/daybook/daybook/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "daybook_users_registered_total %d\n", snap.UsersRegistered)

	writeMetric(w, "daybook_logins_total{status=\"success\"} %d\n", snap.LoginsSucceeded)
	writeMetric(w, "daybook_logins_total{status=\"failure\"} %d\n", snap.LoginsFailed)

	writeMetric(w, "daybook_notes_created_total %d\n", snap.NotesCreated)
	writeMetric(w, "daybook_notes_updated_total %d\n", snap.NotesUpdated)
	writeMetric(w, "daybook_notes_deleted_total %d\n", snap.NotesDeleted)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
