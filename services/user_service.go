package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"synqAPI/internal/apperr"
	"synqAPI/internal/store"
	"synqAPI/internal/types/user"
)

type UserService struct {
	store store.Store
}

func NewUserService(st store.Store) *UserService {
	return &UserService{store: st}
}

func (s *UserService) Get(ctx context.Context, uid string) (*user.User, error) {
	doc, err := s.store.Get(ctx, userPath(uid))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.New(apperr.NotFound, "user not found")
		}
		return nil, apperr.Wrap(apperr.Internal, "failed to load user", err)
	}
	u, err := user.FromDoc(doc)
	if err != nil {
		log.Printf("Malformed user document %s: %v", doc.Path, err)
		return nil, apperr.Wrap(apperr.Internal, "malformed user document", err)
	}
	return u, nil
}

// EnsureProfile creates the user document on first sign-in and returns the
// existing one otherwise.
func (s *UserService) EnsureProfile(ctx context.Context, uid, email, phone, displayName string) (*user.User, error) {
	if existing, err := s.Get(ctx, uid); err == nil {
		return existing, nil
	} else if apperr.KindOf(err) != apperr.NotFound {
		return nil, err
	}

	if displayName == "" {
		displayName = "New user"
	}
	now := time.Now().UTC()
	u := &user.User{
		UID:         uid,
		Email:       email,
		Phone:       phone,
		DisplayName: displayName,
		Status:      user.StatusIdle,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Set(ctx, userPath(uid), u.ToDoc()); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to create profile", err)
	}
	return u, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, uid string, req *user.UpdateProfileRequest) (*user.User, error) {
	fields := map[string]any{"updatedAt": time.Now().UTC()}
	if req.DisplayName != "" {
		fields["displayName"] = req.DisplayName
	}
	if req.PhotoURL != "" {
		fields["photoUrl"] = req.PhotoURL
	}
	if req.Memo != "" {
		fields["memo"] = req.Memo
	}
	if req.City != "" {
		fields["city"] = req.City
	}
	if req.State != "" {
		fields["state"] = req.State
	}
	if req.Latitude != nil {
		fields["latitude"] = *req.Latitude
	}
	if req.Longitude != nil {
		fields["longitude"] = *req.Longitude
	}
	if req.Interests != nil {
		fields["interests"] = req.Interests
	}

	if err := s.store.Update(ctx, userPath(uid), fields); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.New(apperr.NotFound, "user not found")
		}
		return nil, apperr.Wrap(apperr.Internal, "failed to update profile", err)
	}
	return s.Get(ctx, uid)
}

// SetAvailability flips the broadcast status. Going available stamps
// availableSince; leaving clears it.
func (s *UserService) SetAvailability(ctx context.Context, uid string, status user.AvailabilityStatus) (*user.User, error) {
	if !user.ValidStatus(status) {
		return nil, apperr.New(apperr.InvalidArgument, fmt.Sprintf("unknown status %q", status))
	}
	fields := map[string]any{
		"status":    string(status),
		"updatedAt": time.Now().UTC(),
	}
	if status == user.StatusAvailable {
		fields["availableSince"] = time.Now().UTC()
	} else {
		fields["availableSince"] = time.Time{}
	}
	if err := s.store.Update(ctx, userPath(uid), fields); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.New(apperr.NotFound, "user not found")
		}
		return nil, apperr.Wrap(apperr.Internal, "failed to set availability", err)
	}
	return s.Get(ctx, uid)
}

func (s *UserService) RegisterPushToken(ctx context.Context, uid, token string) error {
	if token == "" {
		return apperr.New(apperr.InvalidArgument, "pushToken is required")
	}
	err := s.store.Update(ctx, userPath(uid), map[string]any{
		"pushToken": token,
		"updatedAt": time.Now().UTC(),
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.New(apperr.NotFound, "user not found")
		}
		return apperr.Wrap(apperr.Internal, "failed to register push token", err)
	}
	return nil
}
