package http

import (
	"encoding/json"
	"net/http"
)

// writeJSONError writes a structured JSON error response. No backend detail
// ever reaches the client through this path.
func writeJSONError(w http.ResponseWriter, status int, errorType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   errorType,
		"message": message,
	})
}
