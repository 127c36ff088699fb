package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/Enxt-AI/enxtai-kyc-system-sub001/internal/tenant/models"
	"github.com/Enxt-AI/enxtai-kyc-system-sub001/internal/tenant/secrets"
	id "github.com/Enxt-AI/enxtai-kyc-system-sub001/pkg/domain"
	dErrors "github.com/Enxt-AI/enxtai-kyc-system-sub001/pkg/domain-errors"
	"github.com/Enxt-AI/enxtai-kyc-system-sub001/pkg/platform/sentinel"
	"github.com/Enxt-AI/enxtai-kyc-system-sub001/pkg/requestcontext"
)

// TenantStore abstracts tenant persistence.
type TenantStore interface {
	Create(ctx context.Context, tenant *models.Tenant) error
	FindByID(ctx context.Context, tenantID id.TenantID) (*models.Tenant, error)
	FindByCredentialFingerprint(ctx context.Context, fingerprint string) (*models.Tenant, error)
}

// ResolutionCache narrows the credential lookup without weakening verification.
// Implementations cache fingerprint -> tenant id only; bcrypt verification runs
// on every request regardless of a cache hit.
type ResolutionCache interface {
	GetTenantID(ctx context.Context, fingerprint string) (id.TenantID, bool)
	PutTenantID(ctx context.Context, fingerprint string, tenantID id.TenantID, ttl time.Duration)
}

// TenantService resolves opaque credentials to tenants and owns tenant creation.
type TenantService struct {
	tenants TenantStore
	cache   ResolutionCache
	logger  *slog.Logger

	cacheTTL time.Duration
}

type Option func(*TenantService)

func WithResolutionCache(cache ResolutionCache, ttl time.Duration) Option {
	return func(s *TenantService) {
		s.cache = cache
		s.cacheTTL = ttl
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *TenantService) {
		s.logger = logger
	}
}

func NewTenantService(tenants TenantStore, opts ...Option) *TenantService {
	s := &TenantService{
		tenants:  tenants,
		logger:   slog.Default(),
		cacheTTL: time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateTenant provisions a new tenant and returns it along with the raw API
// key. The raw key is shown exactly once; only fingerprint and bcrypt hash are
// persisted.
func (s *TenantService) CreateTenant(ctx context.Context, name string) (*models.Tenant, string, error) {
	name = strings.TrimSpace(name)

	apiKey, err := secrets.Generate()
	if err != nil {
		return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "could not generate tenant credential")
	}
	hash, err := secrets.Hash(apiKey)
	if err != nil {
		return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "could not hash tenant credential")
	}

	tenant, err := models.NewTenant(id.NewTenantID(), name, secrets.Fingerprint(apiKey), hash, requestcontext.Now(ctx))
	if err != nil {
		return nil, "", err
	}

	if err := s.tenants.Create(ctx, tenant); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, "", dErrors.New(dErrors.CodeConflict, "tenant credential must be unique")
		}
		return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to create tenant")
	}
	return tenant, apiKey, nil
}

// ResolveCredential maps an opaque API key to its active tenant.
//
// Every failure mode returns the same unauthorized error: a wrong key, an
// unknown key, and a suspended tenant are indistinguishable to the caller.
func (s *TenantService) ResolveCredential(ctx context.Context, apiKey string) (*models.Tenant, error) {
	if apiKey == "" {
		return nil, errInvalidCredential()
	}

	fingerprint := secrets.Fingerprint(apiKey)

	tenant, err := s.lookup(ctx, fingerprint)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, errInvalidCredential()
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "credential lookup failed")
	}

	if err := secrets.Verify(apiKey, tenant.CredentialHash); err != nil {
		// Fingerprint collision or tampered store row. Treat as invalid.
		return nil, errInvalidCredential()
	}

	if !tenant.CanAuthenticate() {
		s.logger.WarnContext(ctx, "credential resolution for suspended tenant",
			"tenant_id", tenant.ID,
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil, errInvalidCredential()
	}

	if s.cache != nil {
		s.cache.PutTenantID(ctx, fingerprint, tenant.ID, s.cacheTTL)
	}
	return tenant, nil
}

func (s *TenantService) lookup(ctx context.Context, fingerprint string) (*models.Tenant, error) {
	if s.cache != nil {
		if tenantID, ok := s.cache.GetTenantID(ctx, fingerprint); ok {
			tenant, err := s.tenants.FindByID(ctx, tenantID)
			if err == nil {
				return tenant, nil
			}
			// Stale cache entry: fall through to the indexed lookup.
		}
	}
	return s.tenants.FindByCredentialFingerprint(ctx, fingerprint)
}

func errInvalidCredential() error {
	return dErrors.New(dErrors.CodeUnauthorized, "invalid credential")
}
