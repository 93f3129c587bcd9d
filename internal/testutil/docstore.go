package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/hikari-bot/backend/pkg/docstore"
)

type memoryDoc struct {
	value    map[string]any
	revision int
}

// MemoryDocStore is an in-memory docstore.Client with the same
// compare-and-swap semantics as the remote backend, including a version for
// the absent state, so create races behave like update races.
type MemoryDocStore struct {
	mu   sync.Mutex
	docs map[string]*memoryDoc
}

func NewMemoryDocStore() *MemoryDocStore {
	return &MemoryDocStore{docs: make(map[string]*memoryDoc)}
}

func (s *MemoryDocStore) Get(ctx context.Context, key string) (*docstore.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.doc(key)
	result := &docstore.Document{Key: key, Version: version(doc.revision)}
	if doc.value == nil {
		return result, docstore.ErrNotFound
	}

	result.Value = copyValue(doc.value)
	return result, nil
}

func (s *MemoryDocStore) CompareAndSwap(
	ctx context.Context, key, expectedVersion string, value map[string]any,
) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.doc(key)
	if version(doc.revision) != expectedVersion {
		return "", docstore.ErrVersionConflict
	}

	doc.revision++
	doc.value = copyValue(value)
	return version(doc.revision), nil
}

func (s *MemoryDocStore) Delete(ctx context.Context, key, expectedVersion string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.doc(key)
	if version(doc.revision) != expectedVersion {
		return docstore.ErrVersionConflict
	}

	doc.revision++
	doc.value = nil
	return nil
}

// ForceSet seeds a value, bumping the version like a concurrent writer
// would.
func (s *MemoryDocStore) ForceSet(key string, value map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.doc(key)
	doc.revision++
	doc.value = copyValue(value)
}

func (s *MemoryDocStore) doc(key string) *memoryDoc {
	if _, ok := s.docs[key]; !ok {
		s.docs[key] = &memoryDoc{}
	}

	return s.docs[key]
}

func version(revision int) string {
	return fmt.Sprintf("v%d", revision)
}

func copyValue(value map[string]any) map[string]any {
	if value == nil {
		return nil
	}

	result := make(map[string]any, len(value))
	for k, v := range value {
		result[k] = v
	}

	return result
}
