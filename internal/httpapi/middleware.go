package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

// RequestIDHeader echoes the chi request id back to the client so support
// can correlate a customer report with the server logs.
func RequestIDHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if reqID := middleware.GetReqID(r.Context()); reqID != "" {
			w.Header().Set("X-Request-ID", reqID)
		}
		next.ServeHTTP(w, r)
	})
}
