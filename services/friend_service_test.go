package services

import (
	"context"
	"testing"
	"time"

	"synqAPI/internal/apperr"
	"synqAPI/internal/store"
	"synqAPI/internal/types/friendship"
	"synqAPI/internal/types/user"
)

func newFriendFixture(t *testing.T) (*store.MemoryStore, *FriendService, *fakeSender) {
	t.Helper()
	st := store.NewMemoryStore()
	sender := &fakeSender{}
	users := NewUserService(st)
	push := NewPushService(st, sender)
	return st, NewFriendService(st, users, push), sender
}

func TestSendRequestValidation(t *testing.T) {
	st, svc, _ := newFriendFixture(t)
	ctx := context.Background()
	seedUser(t, st, "alice", "Alice", "")
	seedUser(t, st, "bob", "Bob", "")

	if _, err := svc.SendRequest(ctx, "alice", ""); apperr.KindOf(err) != apperr.InvalidArgument {
		t.Errorf("Empty recipient: expected invalid-argument, got %v", err)
	}
	if _, err := svc.SendRequest(ctx, "alice", "alice"); apperr.KindOf(err) != apperr.InvalidArgument {
		t.Errorf("Self-request: expected invalid-argument, got %v", err)
	}
	if _, err := svc.SendRequest(ctx, "alice", "ghost"); apperr.KindOf(err) != apperr.NotFound {
		t.Errorf("Unknown recipient: expected not-found, got %v", err)
	}

	edge := &friendship.FriendEdge{FriendID: "bob", DisplayName: "Bob", Since: time.Now().UTC()}
	st.Set(ctx, "users/alice/friends/bob", edge.ToDoc())
	if _, err := svc.SendRequest(ctx, "alice", "bob"); apperr.KindOf(err) != apperr.AlreadyExists {
		t.Errorf("Existing friendship: expected already-exists, got %v", err)
	}
}

func TestSendRequestWritesUnderRecipient(t *testing.T) {
	st, svc, _ := newFriendFixture(t)
	ctx := context.Background()
	seedUser(t, st, "alice", "Alice", "")
	seedUser(t, st, "bob", "Bob", "")

	req, err := svc.SendRequest(ctx, "alice", "bob")
	if err != nil {
		t.Fatalf("SendRequest failed: %v", err)
	}
	if req.SenderName != "Alice" || req.Status != friendship.RequestPending {
		t.Errorf("Unexpected request: %+v", req)
	}

	doc, err := st.Get(ctx, "users/bob/friendRequests/"+req.ID)
	if err != nil {
		t.Fatalf("Request document missing: %v", err)
	}
	got, err := friendship.RequestFromDoc(doc)
	if err != nil {
		t.Fatalf("Stored request does not decode: %v", err)
	}
	if got.SenderID != "alice" {
		t.Errorf("Expected senderId alice, got %q", got.SenderID)
	}
}

func TestAcceptRequestCreatesSymmetricEdges(t *testing.T) {
	st, svc, _ := newFriendFixture(t)
	ctx := context.Background()
	seedUser(t, st, "alice", "Alice", "")
	seedUser(t, st, "bob", "Bob", "")

	req, err := svc.SendRequest(ctx, "alice", "bob")
	if err != nil {
		t.Fatalf("SendRequest failed: %v", err)
	}

	if err := svc.AcceptRequest(ctx, "bob", req.ID); err != nil {
		t.Fatalf("AcceptRequest failed: %v", err)
	}

	// Both halves exist, with matching denormalized names.
	bobEdge, err := st.Get(ctx, "users/bob/friends/alice")
	if err != nil {
		t.Fatalf("Recipient edge missing: %v", err)
	}
	aliceEdge, err := st.Get(ctx, "users/alice/friends/bob")
	if err != nil {
		t.Fatalf("Sender edge missing: %v", err)
	}
	be, _ := friendship.EdgeFromDoc(bobEdge)
	ae, _ := friendship.EdgeFromDoc(aliceEdge)
	if be.DisplayName != "Alice" || ae.DisplayName != "Bob" {
		t.Errorf("Denormalized names wrong: %q / %q", be.DisplayName, ae.DisplayName)
	}

	// Only the original sender's edge carries the notification marker.
	if be.NotifyOnCreate {
		t.Errorf("Recipient edge must not carry notifyOnCreate")
	}
	if !ae.NotifyOnCreate {
		t.Errorf("Sender edge must carry notifyOnCreate")
	}

	// The request is consumed.
	if _, err := st.Get(ctx, "users/bob/friendRequests/"+req.ID); err != store.ErrNotFound {
		t.Errorf("Request should be deleted after acceptance, got err=%v", err)
	}

	if err := svc.AcceptRequest(ctx, "bob", req.ID); apperr.KindOf(err) != apperr.NotFound {
		t.Errorf("Re-accepting: expected not-found, got %v", err)
	}
}

func TestDeclineRequest(t *testing.T) {
	st, svc, _ := newFriendFixture(t)
	ctx := context.Background()
	seedUser(t, st, "alice", "Alice", "")
	seedUser(t, st, "bob", "Bob", "")

	req, err := svc.SendRequest(ctx, "alice", "bob")
	if err != nil {
		t.Fatalf("SendRequest failed: %v", err)
	}
	if err := svc.DeclineRequest(ctx, "bob", req.ID); err != nil {
		t.Fatalf("DeclineRequest failed: %v", err)
	}
	if st.Count("users/bob/friendRequests") != 0 {
		t.Errorf("Request should be gone after decline")
	}
	if st.Count("users/bob/friends") != 0 || st.Count("users/alice/friends") != 0 {
		t.Errorf("Decline must not create friend edges")
	}
	if err := svc.DeclineRequest(ctx, "bob", req.ID); apperr.KindOf(err) != apperr.NotFound {
		t.Errorf("Declining twice: expected not-found, got %v", err)
	}
}

func TestRemoveFriendDeletesBothHalves(t *testing.T) {
	st, svc, _ := newFriendFixture(t)
	ctx := context.Background()
	seedUser(t, st, "alice", "Alice", "")
	seedUser(t, st, "bob", "Bob", "")

	now := time.Now().UTC()
	st.Set(ctx, "users/alice/friends/bob", (&friendship.FriendEdge{FriendID: "bob", DisplayName: "Bob", Since: now}).ToDoc())
	st.Set(ctx, "users/bob/friends/alice", (&friendship.FriendEdge{FriendID: "alice", DisplayName: "Alice", Since: now}).ToDoc())

	if err := svc.RemoveFriend(ctx, "alice", "bob"); err != nil {
		t.Fatalf("RemoveFriend failed: %v", err)
	}
	if st.Count("users/alice/friends") != 0 || st.Count("users/bob/friends") != 0 {
		t.Errorf("Both edge halves should be deleted")
	}

	if err := svc.RemoveFriend(ctx, "alice", "bob"); apperr.KindOf(err) != apperr.NotFound {
		t.Errorf("Removing a non-friend: expected not-found, got %v", err)
	}
}

func TestAvailableFriends(t *testing.T) {
	st, svc, _ := newFriendFixture(t)
	ctx := context.Background()
	seedUser(t, st, "alice", "Alice", "")
	seedUser(t, st, "bob", "Bob", "")
	seedUser(t, st, "carol", "Carol", "")

	now := time.Now().UTC()
	st.Set(ctx, "users/alice/friends/bob", (&friendship.FriendEdge{FriendID: "bob", DisplayName: "Bob", Since: now}).ToDoc())
	st.Set(ctx, "users/alice/friends/carol", (&friendship.FriendEdge{FriendID: "carol", DisplayName: "Carol", Since: now}).ToDoc())

	st.Update(ctx, "users/bob", map[string]any{"status": string(user.StatusAvailable), "availableSince": now})

	available, err := svc.AvailableFriends(ctx, "alice")
	if err != nil {
		t.Fatalf("AvailableFriends failed: %v", err)
	}
	if len(available) != 1 || available[0].UID != "bob" {
		t.Errorf("Expected only bob available, got %d results", len(available))
	}
}
