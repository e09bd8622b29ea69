package chat

import (
	"fmt"
	"time"

	"synqAPI/internal/store"
)

// Chat is the chats/{chatId} document. Display names and photos are
// denormalized per participant so the chat list renders without N user reads.
type Chat struct {
	ID            string            `json:"id"`
	Participants  []string          `json:"participants"`
	Names         map[string]string `json:"names"`
	Photos        map[string]string `json:"photos"`
	CreatedAt     time.Time         `json:"createdAt"`
	LastMessage   string            `json:"lastMessage,omitempty"`
	LastMessageAt time.Time         `json:"lastMessageAt,omitempty"`
}

// Message is a chats/{chatId}/messages/{messageId} document.
type Message struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"senderId"`
	SenderName string    `json:"senderName"`
	Text       string    `json:"text,omitempty"`
	PhotoURL   string    `json:"photoUrl,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

type CreateChatRequest struct {
	ParticipantIDs []string `json:"participantIds"`
}

type SendMessageRequest struct {
	Text     string `json:"text"`
	PhotoURL string `json:"photoUrl"`
}

func FromDoc(d *store.Doc) (*Chat, error) {
	participants, err := d.StrSlice("participants")
	if err != nil {
		return nil, fmt.Errorf("decode chat: %w", err)
	}
	if len(participants) < 2 {
		return nil, fmt.Errorf("decode chat %s: needs at least two participants", d.ID)
	}
	return &Chat{
		ID:            d.ID,
		Participants:  participants,
		Names:         d.StrMap("names"),
		Photos:        d.StrMap("photos"),
		CreatedAt:     d.OptTime("createdAt"),
		LastMessage:   d.OptStr("lastMessage"),
		LastMessageAt: d.OptTime("lastMessageAt"),
	}, nil
}

func (c *Chat) ToDoc() map[string]any {
	return map[string]any{
		"participants":  c.Participants,
		"names":         c.Names,
		"photos":        c.Photos,
		"createdAt":     c.CreatedAt,
		"lastMessage":   c.LastMessage,
		"lastMessageAt": c.LastMessageAt,
	}
}

func (c *Chat) HasParticipant(uid string) bool {
	for _, p := range c.Participants {
		if p == uid {
			return true
		}
	}
	return false
}

func MessageFromDoc(d *store.Doc) (*Message, error) {
	senderID, err := d.Str("senderId")
	if err != nil {
		return nil, fmt.Errorf("decode message: %w", err)
	}
	return &Message{
		ID:         d.ID,
		SenderID:   senderID,
		SenderName: d.OptStr("senderName"),
		Text:       d.OptStr("text"),
		PhotoURL:   d.OptStr("photoUrl"),
		CreatedAt:  d.OptTime("createdAt"),
	}, nil
}

func (m *Message) ToDoc() map[string]any {
	return map[string]any{
		"senderId":   m.SenderID,
		"senderName": m.SenderName,
		"text":       m.Text,
		"photoUrl":   m.PhotoURL,
		"createdAt":  m.CreatedAt,
	}
}
