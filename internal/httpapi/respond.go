package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/DimitriDiciocio/RoyalBurgerWeb-sub001/internal/checkout"
	"github.com/DimitriDiciocio/RoyalBurgerWeb-sub001/internal/session"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// respondSessionError maps the session and state-machine sentinels to HTTP
// statuses. Unknown errors are an internal failure.
func respondSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		respondError(w, http.StatusNotFound, "session_not_found", "checkout session not found or expired")
	case errors.Is(err, checkout.ErrSessionCancelled):
		respondError(w, http.StatusConflict, "session_cancelled", "checkout session was cancelled")
	case errors.Is(err, checkout.ErrSessionCompleted):
		respondError(w, http.StatusConflict, "session_completed", "checkout session already completed")
	case errors.Is(err, checkout.ErrSubmissionInFlight):
		respondError(w, http.StatusConflict, "submission_in_flight", "a submission is in progress, wait for it to finish")
	case errors.Is(err, checkout.ErrNotReady):
		respondError(w, http.StatusConflict, "not_ready", "the draft has not passed review")
	case errors.Is(err, checkout.ErrSuperseded):
		respondError(w, http.StatusConflict, "superseded", "the draft changed while processing, re-quote")
	case errors.Is(err, checkout.ErrIllegalTransition):
		respondError(w, http.StatusConflict, "illegal_transition", "operation not allowed in the current status")
	default:
		log.Printf("checkout operation failed: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
