package store

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryStore is an in-process Store used by the tests. It keeps documents in
// a flat path->data map and mimics the SDK's behavior for Create on an
// existing document and for the two supported query operators.
type MemoryStore struct {
	mu   sync.Mutex
	docs map[string]map[string]any
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]map[string]any)}
}

func (s *MemoryStore) Get(_ context.Context, path string) (*Doc, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.docs[path]
	if !ok {
		return nil, ErrNotFound
	}
	return s.doc(path, data), nil
}

func (s *MemoryStore) Set(_ context.Context, path string, data map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[path] = cloneData(data)
	return nil
}

func (s *MemoryStore) Create(_ context.Context, path string, data map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[path]; ok {
		return ErrExists
	}
	s.docs[path] = cloneData(data)
	return nil
}

func (s *MemoryStore) Update(_ context.Context, path string, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.docs[path]
	if !ok {
		return ErrNotFound
	}
	for k, v := range fields {
		data[k] = v
	}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, path)
	return nil
}

func (s *MemoryStore) List(_ context.Context, collection string, limit int) ([]*Doc, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	docs := s.inCollection(collection)
	if limit > 0 && len(docs) > limit {
		docs = docs[:limit]
	}
	return docs, nil
}

func (s *MemoryStore) Where(_ context.Context, collection, field, op string, value any) ([]*Doc, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*Doc
	for _, d := range s.inCollection(collection) {
		if matches(d.Data[field], op, value) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *MemoryStore) DeleteBatch(_ context.Context, paths []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range paths {
		delete(s.docs, p)
	}
	return nil
}

// Count reports how many documents live under the given collection path.
// Test helper, not part of the Store interface.
func (s *MemoryStore) Count(collection string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.inCollection(collection))
}

func (s *MemoryStore) inCollection(collection string) []*Doc {
	prefix := collection + "/"
	var paths []string
	for p := range s.docs {
		rest := strings.TrimPrefix(p, prefix)
		if rest != p && !strings.Contains(rest, "/") {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)
	docs := make([]*Doc, 0, len(paths))
	for _, p := range paths {
		docs = append(docs, s.doc(p, s.docs[p]))
	}
	return docs
}

func (s *MemoryStore) doc(path string, data map[string]any) *Doc {
	return &Doc{
		ID:   path[strings.LastIndex(path, "/")+1:],
		Path: path,
		Data: cloneData(data),
	}
}

func matches(field any, op string, value any) bool {
	switch op {
	case "==":
		return field == value
	case "array-contains":
		switch arr := field.(type) {
		case []string:
			for _, e := range arr {
				if e == value {
					return true
				}
			}
		case []any:
			for _, e := range arr {
				if e == value {
					return true
				}
			}
		}
	}
	return false
}

func cloneData(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out
}
