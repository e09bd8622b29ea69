package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"synqAPI/internal/store"
	"synqAPI/internal/types/chat"
	"synqAPI/internal/types/friendship"
)

func TestDeleteAccountCascade(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()

	seedUser(t, st, "alice", "Alice", "ExponentPushToken[a]")
	seedUser(t, st, "bob", "Bob", "ExponentPushToken[b]")
	seedUser(t, st, "carol", "Carol", "")

	now := time.Now().UTC()

	// Friendships: alice<->bob and alice<->carol, both halves.
	for _, pair := range [][2]string{{"alice", "bob"}, {"alice", "carol"}} {
		a, b := pair[0], pair[1]
		edgeA := &friendship.FriendEdge{FriendID: b, DisplayName: b, Since: now}
		edgeB := &friendship.FriendEdge{FriendID: a, DisplayName: a, Since: now}
		st.Set(ctx, fmt.Sprintf("users/%s/friends/%s", a, b), edgeA.ToDoc())
		st.Set(ctx, fmt.Sprintf("users/%s/friends/%s", b, a), edgeB.ToDoc())
	}

	// A chat between alice and bob with more messages than one delete batch
	// can carry, plus a chat alice is not in.
	c := &chat.Chat{
		ID:           "chat-ab",
		Participants: []string{"alice", "bob"},
		Names:        map[string]string{"alice": "Alice", "bob": "Bob"},
		CreatedAt:    now,
	}
	st.Set(ctx, "chats/chat-ab", c.ToDoc())
	for i := 0; i < store.MaxBatchSize+50; i++ {
		m := &chat.Message{
			ID:        fmt.Sprintf("m%04d", i),
			SenderID:  "alice",
			Text:      "hey",
			CreatedAt: now,
		}
		st.Set(ctx, fmt.Sprintf("chats/chat-ab/messages/%s", m.ID), m.ToDoc())
	}
	other := &chat.Chat{
		ID:           "chat-bc",
		Participants: []string{"bob", "carol"},
		CreatedAt:    now,
	}
	st.Set(ctx, "chats/chat-bc", other.ToDoc())
	st.Set(ctx, "chats/chat-bc/messages/m1", (&chat.Message{ID: "m1", SenderID: "bob", Text: "hi"}).ToDoc())

	// A pending request and a notification lock under alice.
	req := &friendship.FriendRequest{ID: "r1", SenderID: "dave", SenderName: "Dave", Status: friendship.RequestPending, CreatedAt: now}
	st.Set(ctx, "users/alice/friendRequests/r1", req.ToDoc())
	st.Set(ctx, "users/alice/notificationLocks/lock1", map[string]any{"event": "message", "createdAt": now})

	auth := &fakeAuth{}
	svc := NewDeletionService(st, auth)

	if err := svc.DeleteAccount(ctx, "alice"); err != nil {
		t.Fatalf("DeleteAccount failed: %v", err)
	}

	// Alice's document tree is gone.
	if _, err := st.Get(ctx, "users/alice"); err != store.ErrNotFound {
		t.Errorf("Expected user document deleted, got err=%v", err)
	}
	if n := st.Count("users/alice/friends"); n != 0 {
		t.Errorf("Expected 0 friend edges, got %d", n)
	}
	if n := st.Count("users/alice/friendRequests"); n != 0 {
		t.Errorf("Expected 0 friend requests, got %d", n)
	}
	if n := st.Count("users/alice/notificationLocks"); n != 0 {
		t.Errorf("Expected 0 notification locks, got %d", n)
	}

	// The counterpart halves of her friendships are gone too.
	if _, err := st.Get(ctx, "users/bob/friends/alice"); err != store.ErrNotFound {
		t.Errorf("Expected bob's edge to alice deleted, got err=%v", err)
	}
	if _, err := st.Get(ctx, "users/carol/friends/alice"); err != store.ErrNotFound {
		t.Errorf("Expected carol's edge to alice deleted, got err=%v", err)
	}

	// Her chat is gone with every message drained.
	if _, err := st.Get(ctx, "chats/chat-ab"); err != store.ErrNotFound {
		t.Errorf("Expected chat deleted, got err=%v", err)
	}
	if n := st.Count("chats/chat-ab/messages"); n != 0 {
		t.Errorf("Expected 0 messages, got %d", n)
	}

	// Chats she was not in survive.
	if _, err := st.Get(ctx, "chats/chat-bc"); err != nil {
		t.Errorf("Unrelated chat should survive, got err=%v", err)
	}
	if n := st.Count("chats/chat-bc/messages"); n != 1 {
		t.Errorf("Unrelated chat messages should survive, got %d", n)
	}

	// Other users survive.
	if _, err := st.Get(ctx, "users/bob"); err != nil {
		t.Errorf("Bob should survive, got err=%v", err)
	}

	// Identity deletion runs exactly once, for the right uid.
	if len(auth.deleted) != 1 || auth.deleted[0] != "alice" {
		t.Errorf("Expected auth delete for alice once, got %v", auth.deleted)
	}
}

func TestDeleteAccountIdentityGoesLast(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()

	seedUser(t, st, "alice", "Alice", "")

	auth := &fakeAuth{err: fmt.Errorf("admin sdk unavailable")}
	svc := NewDeletionService(st, auth)

	err := svc.DeleteAccount(ctx, "alice")
	if err == nil {
		t.Fatal("Expected error when identity deletion fails")
	}

	// Data is already gone; a re-run must not be blocked by a half-state.
	if _, err := st.Get(ctx, "users/alice"); err != store.ErrNotFound {
		t.Errorf("User document should be deleted before the identity step, got err=%v", err)
	}
}
