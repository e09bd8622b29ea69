package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"synqAPI/internal/push"
	"synqAPI/internal/store"
	"synqAPI/internal/types/user"
)

// fakeSender records every push it is asked to deliver. Safe for the
// background notification goroutines.
type fakeSender struct {
	mu   sync.Mutex
	err  error
	sent []push.Message
}

func (f *fakeSender) Send(_ context.Context, msg push.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func (f *fakeSender) messages() []push.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]push.Message, len(f.sent))
	copy(out, f.sent)
	return out
}

type fakeAuth struct {
	mu      sync.Mutex
	err     error
	deleted []string
}

func (f *fakeAuth) DeleteUser(_ context.Context, uid string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, uid)
	return nil
}

func seedUser(t *testing.T, st *store.MemoryStore, uid, name, pushToken string) {
	t.Helper()
	u := &user.User{
		UID:         uid,
		DisplayName: name,
		Status:      user.StatusIdle,
		PushToken:   pushToken,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
	if err := st.Set(context.Background(), "users/"+uid, u.ToDoc()); err != nil {
		t.Fatalf("Failed to seed user %s: %v", uid, err)
	}
}
