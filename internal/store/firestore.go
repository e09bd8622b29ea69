package store

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreStore adapts a firestore.Client to the Store interface.
type FirestoreStore struct {
	client *firestore.Client
}

func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

func (s *FirestoreStore) Get(ctx context.Context, path string) (*Doc, error) {
	snap, err := s.client.Doc(path).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get %s: %w", path, err)
	}
	return snapToDoc(snap), nil
}

func (s *FirestoreStore) Set(ctx context.Context, path string, data map[string]any) error {
	if _, err := s.client.Doc(path).Set(ctx, data); err != nil {
		return fmt.Errorf("set %s: %w", path, err)
	}
	return nil
}

func (s *FirestoreStore) Create(ctx context.Context, path string, data map[string]any) error {
	if _, err := s.client.Doc(path).Create(ctx, data); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return ErrExists
		}
		return fmt.Errorf("create %s: %w", path, err)
	}
	return nil
}

func (s *FirestoreStore) Update(ctx context.Context, path string, fields map[string]any) error {
	updates := make([]firestore.Update, 0, len(fields))
	for k, v := range fields {
		updates = append(updates, firestore.Update{Path: k, Value: v})
	}
	if _, err := s.client.Doc(path).Update(ctx, updates); err != nil {
		if status.Code(err) == codes.NotFound {
			return ErrNotFound
		}
		return fmt.Errorf("update %s: %w", path, err)
	}
	return nil
}

func (s *FirestoreStore) Delete(ctx context.Context, path string) error {
	if _, err := s.client.Doc(path).Delete(ctx); err != nil {
		return fmt.Errorf("delete %s: %w", path, err)
	}
	return nil
}

func (s *FirestoreStore) List(ctx context.Context, collection string, limit int) ([]*Doc, error) {
	q := s.client.Collection(collection).OrderBy(firestore.DocumentID, firestore.Asc)
	if limit > 0 {
		q = q.Limit(limit)
	}
	return s.collect(ctx, q.Documents(ctx), collection)
}

func (s *FirestoreStore) Where(ctx context.Context, collection, field, op string, value any) ([]*Doc, error) {
	iter := s.client.Collection(collection).Where(field, op, value).Documents(ctx)
	return s.collect(ctx, iter, collection)
}

func (s *FirestoreStore) DeleteBatch(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	if len(paths) > MaxBatchSize {
		return fmt.Errorf("delete batch of %d exceeds limit %d", len(paths), MaxBatchSize)
	}
	batch := s.client.Batch()
	for _, p := range paths {
		batch.Delete(s.client.Doc(p))
	}
	if _, err := batch.Commit(ctx); err != nil {
		return fmt.Errorf("commit delete batch: %w", err)
	}
	return nil
}

func (s *FirestoreStore) collect(ctx context.Context, iter *firestore.DocumentIterator, collection string) ([]*Doc, error) {
	defer iter.Stop()
	var docs []*Doc
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iterate %s: %w", collection, err)
		}
		docs = append(docs, snapToDoc(snap))
	}
	return docs, nil
}

// snapToDoc trims the projects/{p}/databases/{d}/documents/ prefix so Doc.Path
// can be fed straight back into client.Doc.
func snapToDoc(snap *firestore.DocumentSnapshot) *Doc {
	path := snap.Ref.Path
	if i := strings.Index(path, "/documents/"); i >= 0 {
		path = path[i+len("/documents/"):]
	}
	return &Doc{
		ID:   snap.Ref.ID,
		Path: path,
		Data: snap.Data(),
	}
}
