package store

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// MaxBatchSize is the platform write-batch limit. Batched deletes never
// exceed this many operations per commit.
const MaxBatchSize = 400

var (
	ErrNotFound = errors.New("document not found")
	ErrExists   = errors.New("document already exists")
)

// Doc is a raw document snapshot: its ID, full path and untyped field data.
// Typed entities are produced by the validating decoders in internal/types.
type Doc struct {
	ID   string
	Path string
	Data map[string]any
}

// Store is the document-database surface the services run on. The Firestore
// client implements it in production; MemoryStore backs the tests.
type Store interface {
	Get(ctx context.Context, path string) (*Doc, error)
	Set(ctx context.Context, path string, data map[string]any) error
	// Create fails with ErrExists when the document is already present.
	Create(ctx context.Context, path string, data map[string]any) error
	// Update merges fields into an existing document.
	Update(ctx context.Context, path string, fields map[string]any) error
	Delete(ctx context.Context, path string) error
	// List returns documents of a collection in ID order. limit <= 0 means all.
	List(ctx context.Context, collection string, limit int) ([]*Doc, error)
	// Where supports the "==" and "array-contains" operators.
	Where(ctx context.Context, collection, field, op string, value any) ([]*Doc, error)
	// DeleteBatch removes the given documents in a single commit.
	// len(paths) must not exceed MaxBatchSize.
	DeleteBatch(ctx context.Context, paths []string) error
}

// Field accessors. Firestore hands numbers back as int64/float64 and nested
// values as map[string]interface{}; the memory store mirrors that. Each
// accessor rejects a missing or mistyped field so malformed documents are
// surfaced at the read boundary instead of being cast through.

func (d *Doc) Str(key string) (string, error) {
	v, ok := d.Data[key]
	if !ok {
		return "", fmt.Errorf("%s: missing field %q", d.Path, key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%s: field %q is %T, want string", d.Path, key, v)
	}
	return s, nil
}

// OptStr returns "" for a missing or null field.
func (d *Doc) OptStr(key string) string {
	s, _ := d.Data[key].(string)
	return s
}

func (d *Doc) Int(key string) (int64, error) {
	switch v := d.Data[key].(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case float64:
		return int64(v), nil
	default:
		return 0, fmt.Errorf("%s: field %q is %T, want integer", d.Path, key, v)
	}
}

func (d *Doc) OptInt(key string) int64 {
	n, _ := d.Int(key)
	return n
}

func (d *Doc) Float(key string) (float64, error) {
	switch v := d.Data[key].(type) {
	case float64:
		return v, nil
	case int64:
		return float64(v), nil
	case int:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("%s: field %q is %T, want number", d.Path, key, v)
	}
}

func (d *Doc) Bool(key string) bool {
	b, _ := d.Data[key].(bool)
	return b
}

func (d *Doc) Time(key string) (time.Time, error) {
	t, ok := d.Data[key].(time.Time)
	if !ok {
		return time.Time{}, fmt.Errorf("%s: field %q is %T, want timestamp", d.Path, key, d.Data[key])
	}
	return t, nil
}

func (d *Doc) OptTime(key string) time.Time {
	t, _ := d.Data[key].(time.Time)
	return t
}

func (d *Doc) StrSlice(key string) ([]string, error) {
	v, ok := d.Data[key]
	if !ok {
		return nil, fmt.Errorf("%s: missing field %q", d.Path, key)
	}
	switch vv := v.(type) {
	case []string:
		return vv, nil
	case []any:
		out := make([]string, 0, len(vv))
		for _, e := range vv {
			s, ok := e.(string)
			if !ok {
				return nil, fmt.Errorf("%s: field %q has non-string element %T", d.Path, key, e)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%s: field %q is %T, want string array", d.Path, key, v)
	}
}

func (d *Doc) OptStrSlice(key string) []string {
	s, _ := d.StrSlice(key)
	return s
}

// StrMap decodes a map field with string values, tolerating the
// map[string]interface{} shape the SDK produces.
func (d *Doc) StrMap(key string) map[string]string {
	out := map[string]string{}
	switch vv := d.Data[key].(type) {
	case map[string]string:
		return vv
	case map[string]any:
		for k, e := range vv {
			if s, ok := e.(string); ok {
				out[k] = s
			}
		}
	}
	return out
}
