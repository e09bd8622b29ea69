package services

import (
	"context"
	"testing"
	"time"

	"synqAPI/internal/store"
	"synqAPI/internal/types/chat"
	"synqAPI/internal/types/friendship"
)

func TestNotifyMessageCreatedSkipsSender(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()

	seedUser(t, st, "alice", "Alice", "ExponentPushToken[a]")
	seedUser(t, st, "bob", "Bob", "ExponentPushToken[b]")
	seedUser(t, st, "carol", "Carol", "ExponentPushToken[c]")

	c := &chat.Chat{
		ID:           "chat-1",
		Participants: []string{"alice", "bob", "carol"},
		CreatedAt:    time.Now().UTC(),
	}
	st.Set(ctx, "chats/chat-1", c.ToDoc())

	sender := &fakeSender{}
	svc := NewPushService(st, sender)

	msg := &chat.Message{ID: "m1", SenderID: "alice", SenderName: "Alice", Text: "drinks tonight?"}
	if err := svc.NotifyMessageCreated(ctx, "chat-1", msg); err != nil {
		t.Fatalf("NotifyMessageCreated failed: %v", err)
	}

	if sender.count() != 2 {
		t.Fatalf("Expected 2 pushes (everyone but the sender), got %d", sender.count())
	}
	for _, m := range sender.messages() {
		if m.To == "ExponentPushToken[a]" {
			t.Errorf("Sender should not be notified of their own message")
		}
		if m.Title != "Alice" || m.Body != "drinks tonight?" {
			t.Errorf("Unexpected payload: title=%q body=%q", m.Title, m.Body)
		}
		if m.Data["chatId"] != "chat-1" {
			t.Errorf("Expected chatId in data, got %v", m.Data)
		}
	}
}

func TestNotifyMessageCreatedAtMostOnce(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()

	seedUser(t, st, "alice", "Alice", "ExponentPushToken[a]")
	seedUser(t, st, "bob", "Bob", "ExponentPushToken[b]")

	c := &chat.Chat{ID: "chat-1", Participants: []string{"alice", "bob"}, CreatedAt: time.Now().UTC()}
	st.Set(ctx, "chats/chat-1", c.ToDoc())

	sender := &fakeSender{}
	svc := NewPushService(st, sender)

	msg := &chat.Message{ID: "m1", SenderID: "alice", Text: "hey"}

	// The platform may deliver the same event more than once.
	for i := 0; i < 3; i++ {
		if err := svc.NotifyMessageCreated(ctx, "chat-1", msg); err != nil {
			t.Fatalf("Delivery %d failed: %v", i, err)
		}
	}

	if sender.count() != 1 {
		t.Errorf("Expected exactly 1 push across duplicate deliveries, got %d", sender.count())
	}
	if n := st.Count("users/bob/notificationLocks"); n != 1 {
		t.Errorf("Expected exactly 1 notification lock, got %d", n)
	}
}

func TestNotifyMessageCreatedNoPushToken(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()

	seedUser(t, st, "alice", "Alice", "ExponentPushToken[a]")
	seedUser(t, st, "bob", "Bob", "")

	c := &chat.Chat{ID: "chat-1", Participants: []string{"alice", "bob"}, CreatedAt: time.Now().UTC()}
	st.Set(ctx, "chats/chat-1", c.ToDoc())

	sender := &fakeSender{}
	svc := NewPushService(st, sender)

	msg := &chat.Message{ID: "m1", SenderID: "alice", Text: "hey"}
	if err := svc.NotifyMessageCreated(ctx, "chat-1", msg); err != nil {
		t.Fatalf("NotifyMessageCreated failed: %v", err)
	}
	if sender.count() != 0 {
		t.Errorf("Recipient without a push token must be skipped, got %d sends", sender.count())
	}
}

func TestNotifyFriendRequestCreatedAtMostOnce(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()

	seedUser(t, st, "bob", "Bob", "ExponentPushToken[b]")

	sender := &fakeSender{}
	svc := NewPushService(st, sender)

	req := &friendship.FriendRequest{ID: "r1", SenderID: "alice", SenderName: "Alice", Status: friendship.RequestPending}
	for i := 0; i < 2; i++ {
		if err := svc.NotifyFriendRequestCreated(ctx, "bob", req); err != nil {
			t.Fatalf("Delivery %d failed: %v", i, err)
		}
	}

	if sender.count() != 1 {
		t.Errorf("Expected 1 push, got %d", sender.count())
	}
	msgs := sender.messages()
	if msgs[0].Data["type"] != "friendRequest" || msgs[0].Data["senderId"] != "alice" {
		t.Errorf("Unexpected data payload: %v", msgs[0].Data)
	}
}

func TestNotifyFriendAcceptedRequiresMarker(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()

	seedUser(t, st, "alice", "Alice", "ExponentPushToken[a]")

	sender := &fakeSender{}
	svc := NewPushService(st, sender)

	// The recipient-side edge of an acceptance does not carry the marker;
	// only the sender-side edge should push.
	quiet := &friendship.FriendEdge{FriendID: "bob", DisplayName: "Bob"}
	if err := svc.NotifyFriendAccepted(ctx, "alice", quiet); err != nil {
		t.Fatalf("NotifyFriendAccepted failed: %v", err)
	}
	if sender.count() != 0 {
		t.Fatalf("Edge without notifyOnCreate must not push, got %d sends", sender.count())
	}

	marked := &friendship.FriendEdge{FriendID: "bob", DisplayName: "Bob", NotifyOnCreate: true}
	if err := svc.NotifyFriendAccepted(ctx, "alice", marked); err != nil {
		t.Fatalf("NotifyFriendAccepted failed: %v", err)
	}
	if err := svc.NotifyFriendAccepted(ctx, "alice", marked); err != nil {
		t.Fatalf("NotifyFriendAccepted redelivery failed: %v", err)
	}
	if sender.count() != 1 {
		t.Errorf("Expected 1 push across duplicate deliveries, got %d", sender.count())
	}
}
