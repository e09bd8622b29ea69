package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"synqAPI/internal/store"
	"synqAPI/internal/types/chat"
	"synqAPI/internal/types/event"
	"synqAPI/internal/types/friendship"
	"synqAPI/services"
)

// TriggerHandler receives document-created events from the hosting platform
// and dispatches the matching push notification. Push failures are logged
// and acknowledged with 200: the trigger must never make the platform
// re-deliver a write that already happened.
type TriggerHandler struct {
	pushService *services.PushService
}

func NewTriggerHandler(pushService *services.PushService) *TriggerHandler {
	return &TriggerHandler{pushService: pushService}
}

func (h *TriggerHandler) decodeEvent(w http.ResponseWriter, r *http.Request, wantSegments int) (*event.DocumentEvent, []string, bool) {
	var ev event.DocumentEvent
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid event payload")
		return nil, nil, false
	}
	segments := strings.Split(strings.Trim(ev.Document, "/"), "/")
	if len(segments) != wantSegments {
		respondWithError(w, http.StatusBadRequest, "Unexpected document path")
		return nil, nil, false
	}
	return &ev, segments, true
}

func eventDoc(ev *event.DocumentEvent, segments []string) *store.Doc {
	return &store.Doc{
		ID:   segments[len(segments)-1],
		Path: ev.Document,
		Data: ev.Fields,
	}
}

// MessageCreated handles creates on chats/{chatId}/messages/{messageId}.
func (h *TriggerHandler) MessageCreated(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	ev, segments, ok := h.decodeEvent(w, r, 4)
	if !ok {
		return
	}
	msg, err := chat.MessageFromDoc(eventDoc(ev, segments))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Malformed message document")
		return
	}

	if err := h.pushService.NotifyMessageCreated(ctx, segments[1], msg); err != nil {
		log.Printf("Message trigger: %v", err)
	}
	respondWithJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// FriendRequestCreated handles creates on users/{uid}/friendRequests/{id}.
func (h *TriggerHandler) FriendRequestCreated(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	ev, segments, ok := h.decodeEvent(w, r, 4)
	if !ok {
		return
	}
	req, err := friendship.RequestFromDoc(eventDoc(ev, segments))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Malformed friend request document")
		return
	}

	if err := h.pushService.NotifyFriendRequestCreated(ctx, segments[1], req); err != nil {
		log.Printf("Friend request trigger: %v", err)
	}
	respondWithJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// FriendCreated handles creates on users/{uid}/friends/{friendId}.
func (h *TriggerHandler) FriendCreated(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	ev, segments, ok := h.decodeEvent(w, r, 4)
	if !ok {
		return
	}
	edge, err := friendship.EdgeFromDoc(eventDoc(ev, segments))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Malformed friend edge document")
		return
	}

	if err := h.pushService.NotifyFriendAccepted(ctx, segments[1], edge); err != nil {
		log.Printf("Friend created trigger: %v", err)
	}
	respondWithJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
