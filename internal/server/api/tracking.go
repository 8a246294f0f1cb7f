package api

import (
	"encoding/json"
	"net/http"

	"github.com/ayusman/fingercursor/internal/metrics"
	"github.com/ayusman/fingercursor/internal/tracking"
)

// Tracker is the slice of *tracking.Tracker the API controls.
type Tracker interface {
	Status() tracking.Status
	Enabled() bool
	SetEnabled(enabled bool)
	Reset()
	Metrics() *metrics.Metrics
}

// TrackingHandler serves /api/tracking: GET reports state and counters,
// POST toggles recognition or clears tracking state.
type TrackingHandler struct {
	tracker Tracker
}

// NewTrackingHandler creates a TrackingHandler.
func NewTrackingHandler(t Tracker) *TrackingHandler {
	return &TrackingHandler{tracker: t}
}

type trackingRequest struct {
	Enabled *bool `json:"enabled"`
	Reset   bool  `json:"reset"`
}

type trackingResponse struct {
	Status  tracking.Status  `json:"status"`
	Enabled bool             `json:"enabled"`
	Metrics metrics.Snapshot `json:"metrics"`
}

// ServeHTTP implements http.Handler.
func (h *TrackingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
	case http.MethodPost:
		var req trackingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		if req.Enabled != nil {
			h.tracker.SetEnabled(*req.Enabled)
		}
		if req.Reset {
			h.tracker.Reset()
		}
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, trackingResponse{
		Status:  h.tracker.Status(),
		Enabled: h.tracker.Enabled(),
		Metrics: h.tracker.Metrics().Snapshot(),
	})
}
