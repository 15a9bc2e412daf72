package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/billdesk/billdesk/internal/allocator"
	"github.com/billdesk/billdesk/internal/auth"
	"github.com/billdesk/billdesk/internal/storage"
	"github.com/billdesk/billdesk/internal/validate"
)

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error body.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps known error kinds onto HTTP statuses. Unknown
// errors become a 500 with a generic body; the real cause is in the logs.
func writeServiceError(w http.ResponseWriter, err error) {
	var verrs validate.Errors
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, allocator.ErrNoSelection):
		writeError(w, http.StatusBadRequest, allocator.ErrNoSelection.Error())
	case errors.As(err, &verrs):
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":  "validation failed",
			"fields": verrs,
		})
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrMissingToken):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, auth.ErrWeakPassword), errors.Is(err, auth.ErrEmailExists):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// writePaymentError adds the payment-specific case to writeServiceError:
// a stale selection overdrawing a bill is a conflict with current state.
func writePaymentError(w http.ResponseWriter, err error) {
	if errors.Is(err, storage.ErrOverAllocation) {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeServiceError(w, err)
}

// decodeBody decodes a JSON request body into dst, rejecting unknown fields
// so typos in form wiring fail loudly instead of silently dropping data.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// corsMiddleware adds CORS headers for browser access.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
