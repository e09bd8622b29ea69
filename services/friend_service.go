package services

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"synqAPI/internal/apperr"
	"synqAPI/internal/store"
	"synqAPI/internal/types/friendship"
	"synqAPI/internal/types/user"
)

type FriendService struct {
	store store.Store
	users *UserService
	push  *PushService
}

func NewFriendService(st store.Store, users *UserService, push *PushService) *FriendService {
	return &FriendService{store: st, users: users, push: push}
}

func (s *FriendService) ListFriends(ctx context.Context, uid string) ([]*friendship.FriendEdge, error) {
	docs, err := s.store.List(ctx, friendsCol(uid), 0)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to list friends", err)
	}
	edges := make([]*friendship.FriendEdge, 0, len(docs))
	for _, d := range docs {
		edge, err := friendship.EdgeFromDoc(d)
		if err != nil {
			log.Printf("Skipping malformed friend edge %s: %v", d.Path, err)
			continue
		}
		edges = append(edges, edge)
	}
	return edges, nil
}

// AvailableFriends returns the caller's friends whose status is currently
// "available", for the availability tab.
func (s *FriendService) AvailableFriends(ctx context.Context, uid string) ([]*user.User, error) {
	edges, err := s.ListFriends(ctx, uid)
	if err != nil {
		return nil, err
	}
	available := []*user.User{}
	for _, edge := range edges {
		friend, err := s.users.Get(ctx, edge.FriendID)
		if err != nil {
			log.Printf("Skipping unreadable friend %s: %v", edge.FriendID, err)
			continue
		}
		if friend.Status == user.StatusAvailable {
			available = append(available, friend)
		}
	}
	return available, nil
}

func (s *FriendService) ListRequests(ctx context.Context, uid string) ([]*friendship.FriendRequest, error) {
	docs, err := s.store.List(ctx, requestsCol(uid), 0)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to list friend requests", err)
	}
	reqs := make([]*friendship.FriendRequest, 0, len(docs))
	for _, d := range docs {
		req, err := friendship.RequestFromDoc(d)
		if err != nil {
			log.Printf("Skipping malformed friend request %s: %v", d.Path, err)
			continue
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}

// SendRequest writes a pending request under the recipient and fires the
// push relay in the background.
func (s *FriendService) SendRequest(ctx context.Context, senderID, recipientID string) (*friendship.FriendRequest, error) {
	if recipientID == "" {
		return nil, apperr.New(apperr.InvalidArgument, "recipientId is required")
	}
	if recipientID == senderID {
		return nil, apperr.New(apperr.InvalidArgument, "cannot befriend yourself")
	}
	if _, err := s.store.Get(ctx, friendPath(senderID, recipientID)); err == nil {
		return nil, apperr.New(apperr.AlreadyExists, "already friends")
	}
	if _, err := s.users.Get(ctx, recipientID); err != nil {
		return nil, err
	}
	sender, err := s.users.Get(ctx, senderID)
	if err != nil {
		return nil, err
	}

	req := &friendship.FriendRequest{
		ID:          uuid.New().String(),
		SenderID:    senderID,
		SenderName:  sender.DisplayName,
		SenderPhoto: sender.PhotoURL,
		Status:      friendship.RequestPending,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.store.Create(ctx, requestPath(recipientID, req.ID), req.ToDoc()); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to send friend request", err)
	}

	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.push.NotifyFriendRequestCreated(bgCtx, recipientID, req); err != nil {
			log.Printf("Friend request notification failed: %v", err)
		}
	}()

	return req, nil
}

// AcceptRequest fans a pending request out into the symmetric pair of friend
// edges and removes the request. The sender's edge is written with
// notifyOnCreate so the friend-created trigger tells them.
func (s *FriendService) AcceptRequest(ctx context.Context, recipientID, requestID string) error {
	doc, err := s.store.Get(ctx, requestPath(recipientID, requestID))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.New(apperr.NotFound, "friend request not found")
		}
		return apperr.Wrap(apperr.Internal, "failed to load friend request", err)
	}
	req, err := friendship.RequestFromDoc(doc)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "malformed friend request", err)
	}

	recipient, err := s.users.Get(ctx, recipientID)
	if err != nil {
		return err
	}
	sender, err := s.users.Get(ctx, req.SenderID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	recipientEdge := &friendship.FriendEdge{
		FriendID:    sender.UID,
		DisplayName: sender.DisplayName,
		PhotoURL:    sender.PhotoURL,
		Since:       now,
	}
	senderEdge := &friendship.FriendEdge{
		FriendID:       recipient.UID,
		DisplayName:    recipient.DisplayName,
		PhotoURL:       recipient.PhotoURL,
		Since:          now,
		NotifyOnCreate: true,
	}

	if err := s.store.Set(ctx, friendPath(recipientID, sender.UID), recipientEdge.ToDoc()); err != nil {
		return apperr.Wrap(apperr.Internal, "failed to write friend edge", err)
	}
	if err := s.store.Set(ctx, friendPath(sender.UID, recipientID), senderEdge.ToDoc()); err != nil {
		return apperr.Wrap(apperr.Internal, "failed to write friend edge", err)
	}
	if err := s.store.Delete(ctx, requestPath(recipientID, requestID)); err != nil {
		return apperr.Wrap(apperr.Internal, "failed to remove friend request", err)
	}

	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.push.NotifyFriendAccepted(bgCtx, sender.UID, senderEdge); err != nil {
			log.Printf("Friend accepted notification failed: %v", err)
		}
	}()

	return nil
}

func (s *FriendService) DeclineRequest(ctx context.Context, recipientID, requestID string) error {
	if _, err := s.store.Get(ctx, requestPath(recipientID, requestID)); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.New(apperr.NotFound, "friend request not found")
		}
		return apperr.Wrap(apperr.Internal, "failed to load friend request", err)
	}
	if err := s.store.Delete(ctx, requestPath(recipientID, requestID)); err != nil {
		return apperr.Wrap(apperr.Internal, "failed to decline friend request", err)
	}
	return nil
}

// RemoveFriend deletes both halves of the friendship.
func (s *FriendService) RemoveFriend(ctx context.Context, uid, friendID string) error {
	if _, err := s.store.Get(ctx, friendPath(uid, friendID)); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.New(apperr.NotFound, "friend not found")
		}
		return apperr.Wrap(apperr.Internal, "failed to load friend edge", err)
	}
	if err := s.store.Delete(ctx, friendPath(uid, friendID)); err != nil {
		return apperr.Wrap(apperr.Internal, "failed to remove friend", err)
	}
	if err := s.store.Delete(ctx, friendPath(friendID, uid)); err != nil {
		return apperr.Wrap(apperr.Internal, "failed to remove friend", err)
	}
	return nil
}
