package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"synqAPI/internal/push"
	"synqAPI/internal/store"
	"synqAPI/internal/types/chat"
	"synqAPI/internal/types/friendship"
	"synqAPI/internal/types/user"
	"synqAPI/middleware"
	"synqAPI/utils"
)

// PushSender is the relay surface the service needs; the Expo client
// implements it in production.
type PushSender interface {
	Send(ctx context.Context, msg push.Message) error
}

// PushService resolves recipients for document-created events and forwards a
// push payload to the relay. Delivery is best effort: a failed send is
// logged, never retried, and never propagated to the triggering write. Every
// event is guarded by a notification lock so re-delivered triggers stay
// at-most-once.
type PushService struct {
	store  store.Store
	sender PushSender
}

func NewPushService(st store.Store, sender PushSender) *PushService {
	return &PushService{store: st, sender: sender}
}

// NotifyMessageCreated pushes a new chat message to every participant except
// the sender.
func (s *PushService) NotifyMessageCreated(ctx context.Context, chatID string, msg *chat.Message) error {
	doc, err := s.store.Get(ctx, chatPath(chatID))
	if err != nil {
		return fmt.Errorf("load chat %s: %w", chatID, err)
	}
	c, err := chat.FromDoc(doc)
	if err != nil {
		return err
	}

	body := msg.Text
	if body == "" && msg.PhotoURL != "" {
		body = "Sent a photo"
	}

	for _, participant := range c.Participants {
		if participant == msg.SenderID {
			continue
		}
		lockID := utils.PairKey("message:"+msg.ID, msg.SenderID, participant)
		if !s.acquireLock(ctx, participant, lockID, "message") {
			continue
		}
		s.sendTo(ctx, participant, push.Message{
			Title: msg.SenderName,
			Body:  body,
			Data:  map[string]string{"type": "message", "chatId": chatID},
		})
	}
	return nil
}

// NotifyFriendRequestCreated pushes a new friend request to its recipient.
func (s *PushService) NotifyFriendRequestCreated(ctx context.Context, recipientID string, req *friendship.FriendRequest) error {
	lockID := utils.PairKey("request:"+req.ID, req.SenderID, recipientID)
	if !s.acquireLock(ctx, recipientID, lockID, "friendRequest") {
		return nil
	}
	s.sendTo(ctx, recipientID, push.Message{
		Title: "New friend request",
		Body:  fmt.Sprintf("%s wants to be your friend", req.SenderName),
		Data:  map[string]string{"type": "friendRequest", "senderId": req.SenderID},
	})
	return nil
}

// NotifyFriendAccepted pushes an acceptance to the original sender. Only
// edges written with notifyOnCreate qualify; the ordered-pair lock keeps the
// notification at-most-once across duplicate triggers.
func (s *PushService) NotifyFriendAccepted(ctx context.Context, recipientID string, edge *friendship.FriendEdge) error {
	if !edge.NotifyOnCreate {
		return nil
	}
	lockID := utils.PairKey("friendAccepted", recipientID, edge.FriendID)
	if !s.acquireLock(ctx, recipientID, lockID, "friendAccepted") {
		return nil
	}
	s.sendTo(ctx, recipientID, push.Message{
		Title: "Friend request accepted",
		Body:  fmt.Sprintf("%s accepted your friend request", edge.DisplayName),
		Data:  map[string]string{"type": "friendAccepted", "friendId": edge.FriendID},
	})
	return nil
}

// acquireLock claims the lock document, reporting false when another
// invocation already holds it.
func (s *PushService) acquireLock(ctx context.Context, uid, lockID, event string) bool {
	err := s.store.Create(ctx, lockPath(uid, lockID), map[string]any{
		"event":     event,
		"createdAt": time.Now().UTC(),
	})
	if err != nil {
		if errors.Is(err, store.ErrExists) {
			log.Printf("Notification lock %s already held for %s, skipping", lockID, uid)
			return false
		}
		// lock write failed for another reason; deliver anyway rather than
		// silently dropping the notification
		log.Printf("Failed to write notification lock %s for %s: %v", lockID, uid, err)
	}
	return true
}

func (s *PushService) sendTo(ctx context.Context, uid string, msg push.Message) {
	doc, err := s.store.Get(ctx, userPath(uid))
	if err != nil {
		log.Printf("Push: failed to load recipient %s: %v", uid, err)
		return
	}
	u, err := user.FromDoc(doc)
	if err != nil {
		log.Printf("Push: malformed recipient document %s: %v", uid, err)
		return
	}
	if u.PushToken == "" {
		return
	}
	msg.To = u.PushToken
	if err := s.sender.Send(ctx, msg); err != nil {
		middleware.CountPushSend("error")
		log.Printf("Push: send to %s failed: %v", uid, err)
		return
	}
	middleware.CountPushSend("ok")
}
