package handlers

import (
	"encoding/json"
	"net/http"
)

// Stable machine-checkable error categories.
const (
	categoryValidation = `validation_error`
	categoryNotFound   = `not_found`
	categoryConflict   = `conflict`
	categoryInternal   = `internal_error`
	categoryAuth       = `unauthorized`
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, category, message string) {
	writeJSON(w, status, errorResponse{Error: category, Message: message})
}

// writeInternal hides the underlying failure; internals never reach clients.
func writeInternal(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, categoryInternal, message)
}
