package api

import (
	"net/http"
	"time"

	"github.com/ecosortai/ecosort/internal/app"
	"github.com/ecosortai/ecosort/internal/tracker"
)

// TrackingHandler exposes the detection counts, the event history, and
// the capture session controls.
type TrackingHandler struct {
	app *app.App
}

// NewTrackingHandler creates a new TrackingHandler.
func NewTrackingHandler(a *app.App) *TrackingHandler {
	return &TrackingHandler{app: a}
}

type countsResponse struct {
	Counts map[tracker.Material]int `json:"counts"`
}

type historyResponse struct {
	Events []tracker.Event `json:"events"`
}

type captureResponse struct {
	Capturing bool   `json:"capturing"`
	LastError string `json:"last_error,omitempty"`
}

// Counts handles GET /api/counts.
func (h *TrackingHandler) Counts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, countsResponse{Counts: h.app.Tracker().Counts()})
}

// History handles GET /api/history. An optional month=YYYY-MM query
// parameter restricts the result to events from that month.
func (h *TrackingHandler) History(w http.ResponseWriter, r *http.Request) {
	events := h.app.Tracker().History()
	if events == nil {
		events = []tracker.Event{}
	}

	if month := r.URL.Query().Get("month"); month != "" {
		if _, err := time.Parse("2006-01", month); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid month, expected YYYY-MM")
			return
		}

		filtered := make([]tracker.Event, 0, len(events))
		for _, e := range events {
			if e.Timestamp.Format("2006-01") == month {
				filtered = append(filtered, e)
			}
		}
		events = filtered
	}

	writeJSON(w, http.StatusOK, historyResponse{Events: events})
}

// StartCapture handles POST /api/capture/start.
func (h *TrackingHandler) StartCapture(w http.ResponseWriter, r *http.Request) {
	if err := h.app.StartCapture(); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to open camera: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, captureResponse{Capturing: true})
}

// StopCapture handles POST /api/capture/stop.
func (h *TrackingHandler) StopCapture(w http.ResponseWriter, r *http.Request) {
	h.app.StopCapture()

	resp := captureResponse{Capturing: h.app.IsCapturing()}
	if err := h.app.LastError(); err != nil {
		resp.LastError = err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}
