package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"synqAPI/internal/types/venue"
	"synqAPI/middleware"
	"synqAPI/services"
)

type SuggestionHandler struct {
	suggestionService *services.SuggestionService
}

func NewSuggestionHandler(suggestionService *services.SuggestionService) *SuggestionHandler {
	return &SuggestionHandler{suggestionService: suggestionService}
}

// GetSuggestions is the getSynqSuggestions callable: one model call, then a
// places lookup per venue. The model round-trip dominates the latency.
func (h *SuggestionHandler) GetSuggestions(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	if _, ok := middleware.GetUID(ctx); !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req venue.SuggestionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	suggestions, err := h.suggestionService.GetSuggestions(ctx, &req)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, suggestions)
}
