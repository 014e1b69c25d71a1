package api

import (
	"net/http"

	"github.com/ecosortai/ecosort/internal/app"
)

// TermsHandler exposes the terms and conditions gate.
type TermsHandler struct {
	app *app.App
}

// NewTermsHandler creates a new TermsHandler.
func NewTermsHandler(a *app.App) *TermsHandler {
	return &TermsHandler{app: a}
}

// State handles GET /api/terms.
func (h *TermsHandler) State(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{
		"accepted": h.app.TermsAccepted(),
	})
}

// Accept handles POST /api/terms/accept. Accepting twice is harmless.
func (h *TermsHandler) Accept(w http.ResponseWriter, r *http.Request) {
	if err := h.app.AcceptTerms(); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to record acceptance")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"accepted": true})
}

// RequireTerms rejects requests until the terms have been accepted.
func RequireTerms(a *app.App) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !a.TermsAccepted() {
				writeError(w, http.StatusForbidden, "Terms and conditions not accepted")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
