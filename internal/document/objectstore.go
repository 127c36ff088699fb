package document

import (
	"context"
	"fmt"
	"path"
	"strings"
	"sync"
	"time"

	id "github.com/Enxt-AI/enxtai-kyc-system-sub001/pkg/domain"
	"github.com/Enxt-AI/enxtai-kyc-system-sub001/pkg/platform/sentinel"
)

// ObjectStore is the storage capability the pipeline consumes. Keys are opaque
// references, never directly-fetchable URLs.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// StorageKey builds the tenant-scoped object key for a document slot:
// tenant+slot prefix, then end-user id, then a slot+timestamp qualified
// filename. The layered namespacing means a leaked key still identifies its
// owning tenant on every access path.
func StorageKey(tenantID id.TenantID, slot Slot, endUserID id.EndUserID, filename string, now time.Time) string {
	return path.Join(
		fmt.Sprintf("%s-%s", tenantID.String(), slot),
		endUserID.String(),
		fmt.Sprintf("%s-%d-%s", slot, now.UnixNano(), sanitizeFilename(filename)),
	)
}

func sanitizeFilename(name string) string {
	name = path.Base(name)
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		}
		return '_'
	}, name)
	if name == "" || name == "." {
		return "document"
	}
	return name
}

// InMemoryObjectStore backs tests and dockerless development.
type InMemoryObjectStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

func NewInMemoryObjectStore() *InMemoryObjectStore {
	return &InMemoryObjectStore{objects: make(map[string][]byte)}
}

func (s *InMemoryObjectStore) Put(_ context.Context, key string, data []byte, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	s.objects[key] = cp
	return nil
}

func (s *InMemoryObjectStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.objects[key]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

func (s *InMemoryObjectStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}
