package services

import (
	"context"
	"errors"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"

	"synqAPI/internal/apperr"
	"synqAPI/internal/store"
	"synqAPI/internal/types/chat"
)

type ChatService struct {
	store store.Store
	users *UserService
	push  *PushService
}

func NewChatService(st store.Store, users *UserService, push *PushService) *ChatService {
	return &ChatService{store: st, users: users, push: push}
}

// CreateChat starts a group chat with the caller and the given participants,
// denormalizing display names and photos into the chat document.
func (s *ChatService) CreateChat(ctx context.Context, creatorID string, participantIDs []string) (*chat.Chat, error) {
	ids := map[string]bool{creatorID: true}
	for _, id := range participantIDs {
		if id != "" {
			ids[id] = true
		}
	}
	if len(ids) < 2 {
		return nil, apperr.New(apperr.InvalidArgument, "a chat needs at least one other participant")
	}

	c := &chat.Chat{
		ID:        uuid.New().String(),
		Names:     map[string]string{},
		Photos:    map[string]string{},
		CreatedAt: time.Now().UTC(),
	}
	for id := range ids {
		u, err := s.users.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		c.Participants = append(c.Participants, id)
		c.Names[id] = u.DisplayName
		if u.PhotoURL != "" {
			c.Photos[id] = u.PhotoURL
		}
	}
	sort.Strings(c.Participants)

	if err := s.store.Create(ctx, chatPath(c.ID), c.ToDoc()); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to create chat", err)
	}
	return c, nil
}

func (s *ChatService) ListChats(ctx context.Context, uid string) ([]*chat.Chat, error) {
	docs, err := s.store.Where(ctx, "chats", "participants", "array-contains", uid)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to list chats", err)
	}
	chats := make([]*chat.Chat, 0, len(docs))
	for _, d := range docs {
		c, err := chat.FromDoc(d)
		if err != nil {
			log.Printf("Skipping malformed chat %s: %v", d.Path, err)
			continue
		}
		chats = append(chats, c)
	}
	sort.Slice(chats, func(i, j int) bool {
		return chats[i].LastMessageAt.After(chats[j].LastMessageAt)
	})
	return chats, nil
}

func (s *ChatService) getChatFor(ctx context.Context, uid, chatID string) (*chat.Chat, error) {
	doc, err := s.store.Get(ctx, chatPath(chatID))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.New(apperr.NotFound, "chat not found")
		}
		return nil, apperr.Wrap(apperr.Internal, "failed to load chat", err)
	}
	c, err := chat.FromDoc(doc)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "malformed chat document", err)
	}
	if !c.HasParticipant(uid) {
		// hide other people's chats entirely
		return nil, apperr.New(apperr.NotFound, "chat not found")
	}
	return c, nil
}

// Messages returns up to limit messages in chronological order. Message IDs
// are time-ordered (UUIDv7), so ID order is send order.
func (s *ChatService) Messages(ctx context.Context, uid, chatID string, limit int) ([]*chat.Message, error) {
	if _, err := s.getChatFor(ctx, uid, chatID); err != nil {
		return nil, err
	}
	docs, err := s.store.List(ctx, messagesCol(chatID), limit)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to list messages", err)
	}
	msgs := make([]*chat.Message, 0, len(docs))
	for _, d := range docs {
		m, err := chat.MessageFromDoc(d)
		if err != nil {
			log.Printf("Skipping malformed message %s: %v", d.Path, err)
			continue
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}

// SendMessage appends a message, refreshes the chat's last-message preview
// and fires the push relay in the background.
func (s *ChatService) SendMessage(ctx context.Context, uid, chatID string, req *chat.SendMessageRequest) (*chat.Message, error) {
	if req.Text == "" && req.PhotoURL == "" {
		return nil, apperr.New(apperr.InvalidArgument, "message needs text or a photo")
	}
	if _, err := s.getChatFor(ctx, uid, chatID); err != nil {
		return nil, err
	}
	sender, err := s.users.Get(ctx, uid)
	if err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to allocate message id", err)
	}
	msg := &chat.Message{
		ID:         id.String(),
		SenderID:   uid,
		SenderName: sender.DisplayName,
		Text:       req.Text,
		PhotoURL:   req.PhotoURL,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.store.Create(ctx, messagePath(chatID, msg.ID), msg.ToDoc()); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to write message", err)
	}

	preview := msg.Text
	if preview == "" {
		preview = "📷 Photo"
	}
	if err := s.store.Update(ctx, chatPath(chatID), map[string]any{
		"lastMessage":   preview,
		"lastMessageAt": msg.CreatedAt,
	}); err != nil {
		log.Printf("Failed to update last-message preview for chat %s: %v", chatID, err)
	}

	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.push.NotifyMessageCreated(bgCtx, chatID, msg); err != nil {
			log.Printf("Message notification failed: %v", err)
		}
	}()

	return msg, nil
}
