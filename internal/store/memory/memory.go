// Package memory provides an in-memory store.Store used by tests and by the
// CLI's dry-run wiring. It mirrors the semantics of the remote backends,
// including idempotent deletes and cursor pagination, so repository tests
// never need a real bucket.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/gistvault/gistvault/internal/common"
	"github.com/gistvault/gistvault/internal/store"
)

type object struct {
	data        []byte
	contentType string
	tags        store.Tags
}

// Store is a mutex-guarded map of keys to objects.
type Store struct {
	mu      sync.RWMutex
	objects map[string]object
}

// NewStore constructs an empty in-memory store.
func NewStore() *Store {
	return &Store{objects: make(map[string]object)}
}

func (s *Store) Put(ctx context.Context, key string, data []byte, contentType string, tags store.Tags) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Copy so later caller mutations cannot reach stored state.
	d := make([]byte, len(data))
	copy(d, data)
	t := make(store.Tags, len(tags))
	for k, v := range tags {
		t[k] = v
	}

	s.objects[key] = object{data: d, contentType: contentType, tags: t}
	return nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.objects[key]
	if !ok {
		return nil, common.ErrNotFound
	}
	d := make([]byte, len(o.data))
	copy(d, o.data)
	return d, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

func (s *Store) Head(ctx context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[key]
	return ok, nil
}

func (s *Store) List(ctx context.Context, prefix string, limit int, cursor string) (store.ListResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.objects))
	for k := range s.objects {
		if strings.HasPrefix(k, prefix) && k > cursor {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	res := store.ListResult{}
	if limit > 0 && len(keys) > limit {
		res.Keys = keys[:limit]
		res.NextCursor = keys[limit-1]
		res.Truncated = true
	} else {
		res.Keys = keys
	}
	return res, nil
}

// Tags returns the tags stored for key, or nil if the key is absent.
// Test helper, not part of store.Store.
func (s *Store) Tags(key string) store.Tags {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.objects[key]
	if !ok {
		return nil
	}
	t := make(store.Tags, len(o.tags))
	for k, v := range o.tags {
		t[k] = v
	}
	return t
}

// ContentType returns the stored content type for key, or "".
// Test helper, not part of store.Store.
func (s *Store) ContentType(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.objects[key].contentType
}

// Len reports the number of stored objects. Test helper.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
