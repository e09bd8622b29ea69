package services

import (
	"context"
	"log"

	"synqAPI/internal/apperr"
	"synqAPI/internal/store"
	"synqAPI/internal/types/chat"
)

// AuthDeleter removes the identity behind a uid. *auth.Client from the
// Firebase Admin SDK satisfies it.
type AuthDeleter interface {
	DeleteUser(ctx context.Context, uid string) error
}

// DeletionService implements the account cascade: every document rooted at a
// user goes, then the identity itself. The cascade is deliberately
// best effort — there is no transactional envelope across it, and a failure
// aborts without rolling back what already ran. Steps are ordered so the
// user document and the identity go last: a crash mid-cascade leaves a state
// the user can re-run the deletion from, never an orphaned login.
type DeletionService struct {
	store store.Store
	auth  AuthDeleter
}

func NewDeletionService(st store.Store, auth AuthDeleter) *DeletionService {
	return &DeletionService{store: st, auth: auth}
}

// DeleteAccount removes all data rooted at uid: both sides of every friend
// edge, every chat the user participates in together with its messages,
// pending friend requests, notification locks, the user document, and
// finally the auth identity.
func (s *DeletionService) DeleteAccount(ctx context.Context, uid string) error {
	if err := s.deleteFriendEdges(ctx, uid); err != nil {
		return apperr.Wrap(apperr.Internal, "failed to delete friendships", err)
	}
	if err := s.deleteChats(ctx, uid); err != nil {
		return apperr.Wrap(apperr.Internal, "failed to delete chats", err)
	}
	if err := s.drainCollection(ctx, requestsCol(uid)); err != nil {
		return apperr.Wrap(apperr.Internal, "failed to delete friend requests", err)
	}
	if err := s.drainCollection(ctx, locksCol(uid)); err != nil {
		return apperr.Wrap(apperr.Internal, "failed to delete notification locks", err)
	}
	if err := s.store.Delete(ctx, userPath(uid)); err != nil {
		return apperr.Wrap(apperr.Internal, "failed to delete user document", err)
	}
	if err := s.auth.DeleteUser(ctx, uid); err != nil {
		return apperr.Wrap(apperr.Internal, "failed to delete auth identity", err)
	}
	log.Printf("Account %s deleted", uid)
	return nil
}

// deleteFriendEdges removes the counterpart's copy of each edge before the
// caller's own.
func (s *DeletionService) deleteFriendEdges(ctx context.Context, uid string) error {
	edges, err := s.store.List(ctx, friendsCol(uid), 0)
	if err != nil {
		return err
	}
	for _, edge := range edges {
		friendID := edge.OptStr("friendId")
		if friendID == "" {
			friendID = edge.ID
		}
		if err := s.store.Delete(ctx, friendPath(friendID, uid)); err != nil {
			return err
		}
		if err := s.store.Delete(ctx, edge.Path); err != nil {
			return err
		}
	}
	return nil
}

// deleteChats removes every chat the user participates in, draining each
// messages subcollection in bounded batches before the chat document itself.
func (s *DeletionService) deleteChats(ctx context.Context, uid string) error {
	docs, err := s.store.Where(ctx, "chats", "participants", "array-contains", uid)
	if err != nil {
		return err
	}
	for _, d := range docs {
		if _, err := chat.FromDoc(d); err != nil {
			log.Printf("Cascade: deleting malformed chat %s anyway: %v", d.Path, err)
		}
		if err := s.drainCollection(ctx, messagesCol(d.ID)); err != nil {
			return err
		}
		if err := s.store.Delete(ctx, d.Path); err != nil {
			return err
		}
	}
	return nil
}

// drainCollection pages through a subcollection deleting MaxBatchSize
// documents per commit until it is empty.
func (s *DeletionService) drainCollection(ctx context.Context, collection string) error {
	for {
		docs, err := s.store.List(ctx, collection, store.MaxBatchSize)
		if err != nil {
			return err
		}
		if len(docs) == 0 {
			return nil
		}
		paths := make([]string, 0, len(docs))
		for _, d := range docs {
			paths = append(paths, d.Path)
		}
		if err := s.store.DeleteBatch(ctx, paths); err != nil {
			return err
		}
	}
}
