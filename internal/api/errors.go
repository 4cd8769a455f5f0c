package api

import (
	"encoding/json"
	"net/http"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes an error response with the given status code and message.
func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// writeBadRequest writes a 400 Bad Request response.
func writeBadRequest(w http.ResponseWriter, msg string) {
	writeError(w, http.StatusBadRequest, msg)
}

// writeForbidden writes a 403 Forbidden response.
func writeForbidden(w http.ResponseWriter, msg string) {
	writeError(w, http.StatusForbidden, msg)
}

// writeNotFound writes a 404 Not Found response.
func writeNotFound(w http.ResponseWriter, msg string) {
	writeError(w, http.StatusNotFound, msg)
}

// writeConflict writes a 409 Conflict response.
func writeConflict(w http.ResponseWriter, msg string) {
	writeError(w, http.StatusConflict, msg)
}

// writeUnprocessable writes a 422 Unprocessable Entity response.
func writeUnprocessable(w http.ResponseWriter, msg string) {
	writeError(w, http.StatusUnprocessableEntity, msg)
}

// decodeJSON decodes the request body into v, rejecting unknown garbage early.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	return dec.Decode(v)
}
