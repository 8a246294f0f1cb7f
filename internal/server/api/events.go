package api

import (
	"net/http"
	"strconv"

	"github.com/ayusman/fingercursor/internal/store"
)

const (
	defaultEventLimit = 50
	maxEventLimit     = 1000
)

// EventHandler serves GET /api/events?limit=N from the gesture event log.
type EventHandler struct {
	events *store.EventRepository
}

// NewEventHandler creates an EventHandler.
func NewEventHandler(events *store.EventRepository) *EventHandler {
	return &EventHandler{events: events}
}

type listEventsResponse struct {
	Events []*store.EventRecord `json:"events"`
	Counts map[string]int       `json:"counts"`
}

// ServeHTTP implements http.Handler.
func (h *EventHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := defaultEventLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxEventLimit)
	}

	events, err := h.events.Recent(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list events")
		return
	}
	counts, err := h.events.CountByKind()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to count events")
		return
	}

	if events == nil {
		events = []*store.EventRecord{}
	}
	writeJSON(w, http.StatusOK, listEventsResponse{Events: events, Counts: counts})
}
