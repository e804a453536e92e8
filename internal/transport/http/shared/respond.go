// Package shared holds transport helpers used by every HTTP handler so
// error envelopes and JSON encoding stay consistent.
package shared

import (
	"encoding/json"
	"net/http"

	dErrors "vero/pkg/domain-errors"
)

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a domain error to the JSON error envelope. Uncoded
// errors map to internal.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	WriteJSON(w, dErrors.ToHTTPStatus(code), map[string]string{
		"error": string(code),
	})
}
