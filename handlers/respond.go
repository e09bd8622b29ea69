package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"synqAPI/internal/apperr"
)

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Failed to marshal response: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "internal error"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithAppError renders a service error using the callable taxonomy:
// the client sees the kind and message, the underlying cause stays in logs.
func respondWithAppError(w http.ResponseWriter, err error) {
	log.Printf("Request failed: %v", err)
	message := "internal error"
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		message = appErr.Message
	}
	respondWithJSON(w, apperr.Status(err), map[string]string{
		"kind":  string(apperr.KindOf(err)),
		"error": message,
	})
}
