package tenant

import (
	"context"
	"sync"

	"github.com/Enxt-AI/enxtai-kyc-system-sub001/internal/tenant/models"
	id "github.com/Enxt-AI/enxtai-kyc-system-sub001/pkg/domain"
	"github.com/Enxt-AI/enxtai-kyc-system-sub001/pkg/platform/sentinel"
)

// InMemory keeps the initial implementation lightweight and testable. It
// intentionally favors clarity over performance.
type InMemory struct {
	mu            sync.RWMutex
	byID          map[id.TenantID]*models.Tenant
	byFingerprint map[string]id.TenantID
}

func NewInMemory() *InMemory {
	return &InMemory{
		byID:          make(map[id.TenantID]*models.Tenant),
		byFingerprint: make(map[string]id.TenantID),
	}
}

func (s *InMemory) Create(_ context.Context, tenant *models.Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byFingerprint[tenant.CredentialFingerprint]; exists {
		return sentinel.ErrConflict
	}
	cp := *tenant
	s.byID[tenant.ID] = &cp
	s.byFingerprint[tenant.CredentialFingerprint] = tenant.ID
	return nil
}

func (s *InMemory) FindByID(_ context.Context, tenantID id.TenantID) (*models.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tenant, ok := s.byID[tenantID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *tenant
	return &cp, nil
}

func (s *InMemory) FindByCredentialFingerprint(_ context.Context, fingerprint string) (*models.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tenantID, ok := s.byFingerprint[fingerprint]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *s.byID[tenantID]
	return &cp, nil
}
