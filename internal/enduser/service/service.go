package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Enxt-AI/enxtai-kyc-system-sub001/internal/enduser/models"
	"github.com/Enxt-AI/enxtai-kyc-system-sub001/internal/platform/metrics"
	id "github.com/Enxt-AI/enxtai-kyc-system-sub001/pkg/domain"
	dErrors "github.com/Enxt-AI/enxtai-kyc-system-sub001/pkg/domain-errors"
	"github.com/Enxt-AI/enxtai-kyc-system-sub001/pkg/platform/sentinel"
	"github.com/Enxt-AI/enxtai-kyc-system-sub001/pkg/requestcontext"
)

// EndUserStore abstracts end-user persistence.
// The composite (tenantID, externalID) key is the only lookup path.
type EndUserStore interface {
	Create(ctx context.Context, user *models.EndUser) error
	FindByExternalID(ctx context.Context, tenantID id.TenantID, externalID string) (*models.EndUser, error)
}

// Resolver maps tenant-supplied external identifiers to internal end users.
//
// Two deliberately distinct entry points: Resolve never creates (upload and
// delete endpoints must not conjure users), ResolveOrCreate is reserved for
// the explicit session-initiation step.
type Resolver struct {
	users  EndUserStore
	logger *slog.Logger

	placeholderDomain string
	metrics           *metrics.Metrics
}

type Option func(*Resolver)

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Resolver) { r.metrics = m }
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) { r.logger = logger }
}

func NewResolver(users EndUserStore, placeholderDomain string, opts ...Option) *Resolver {
	r := &Resolver{
		users:             users,
		logger:            slog.Default(),
		placeholderDomain: placeholderDomain,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the end user for (tenant, externalID) or UserNotFound.
func (r *Resolver) Resolve(ctx context.Context, tenantID id.TenantID, externalID string) (*models.EndUser, error) {
	if externalID == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "external identifier is required")
	}
	user, err := r.users.FindByExternalID(ctx, tenantID, externalID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "end user lookup failed")
	}
	return user, nil
}

// ResolveOrCreate returns the end user for (tenant, externalID), creating it on
// first use. Omitted contact fields get generated placeholders. Creation is
// idempotent: two concurrent initiations for the same pair converge on one
// record via the store's uniqueness constraint.
func (r *Resolver) ResolveOrCreate(ctx context.Context, tenantID id.TenantID, externalID, email, phone string) (*models.EndUser, error) {
	if externalID == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "external identifier is required")
	}

	user, err := r.users.FindByExternalID(ctx, tenantID, externalID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "end user lookup failed")
	}

	now := requestcontext.Now(ctx)
	if email == "" {
		email = placeholderEmail(externalID, r.placeholderDomain)
	}
	if phone == "" {
		phone = placeholderPhone(now)
	}

	user, err = models.NewEndUser(id.NewEndUserID(), tenantID, externalID, email, phone, now)
	if err != nil {
		return nil, err
	}

	if err := r.users.Create(ctx, user); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			// Lost the creation race; the winner's record is authoritative.
			return r.Resolve(ctx, tenantID, externalID)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "end user creation failed")
	}

	if r.metrics != nil {
		r.metrics.EndUsersCreated.Inc()
	}
	r.logger.InfoContext(ctx, "end user created",
		"tenant_id", tenantID,
		"end_user_id", user.ID,
		"request_id", requestcontext.RequestID(ctx),
	)
	return user, nil
}
