package handlers

import (
	"context"
	"net/http"
	"time"

	"synqAPI/middleware"
	"synqAPI/services"
)

type AccountHandler struct {
	deletionService *services.DeletionService
}

func NewAccountHandler(deletionService *services.DeletionService) *AccountHandler {
	return &AccountHandler{deletionService: deletionService}
}

// DeleteAccount is the deleteMyAccount callable: it cascades over everything
// rooted at the caller and finishes by deleting the auth identity. The
// cascade can take a while for chatty users, hence the long timeout.
func (h *AccountHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 120*time.Second)
	defer cancel()

	uid, ok := middleware.GetUID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	if err := h.deletionService.DeleteAccount(ctx, uid); err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
