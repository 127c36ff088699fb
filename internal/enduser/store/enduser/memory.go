package enduser

import (
	"context"
	"sync"

	"github.com/Enxt-AI/enxtai-kyc-system-sub001/internal/enduser/models"
	id "github.com/Enxt-AI/enxtai-kyc-system-sub001/pkg/domain"
	"github.com/Enxt-AI/enxtai-kyc-system-sub001/pkg/platform/sentinel"
)

type compositeKey struct {
	tenantID   id.TenantID
	externalID string
}

// InMemory enforces the same uniqueness constraints the relational store does:
// (tenantID, externalID) unique, phone unique per tenant.
type InMemory struct {
	mu      sync.RWMutex
	byKey   map[compositeKey]*models.EndUser
	byPhone map[id.TenantID]map[string]struct{}
}

func NewInMemory() *InMemory {
	return &InMemory{
		byKey:   make(map[compositeKey]*models.EndUser),
		byPhone: make(map[id.TenantID]map[string]struct{}),
	}
}

func (s *InMemory) Create(_ context.Context, user *models.EndUser) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := compositeKey{user.TenantID, user.ExternalID}
	if _, exists := s.byKey[key]; exists {
		return sentinel.ErrConflict
	}
	phones := s.byPhone[user.TenantID]
	if phones == nil {
		phones = make(map[string]struct{})
		s.byPhone[user.TenantID] = phones
	}
	if _, taken := phones[user.Phone]; taken {
		return sentinel.ErrConflict
	}

	cp := *user
	s.byKey[key] = &cp
	phones[user.Phone] = struct{}{}
	return nil
}

func (s *InMemory) FindByExternalID(_ context.Context, tenantID id.TenantID, externalID string) (*models.EndUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.byKey[compositeKey{tenantID, externalID}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *user
	return &cp, nil
}
