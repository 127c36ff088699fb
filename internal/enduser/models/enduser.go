package models

import (
	"time"

	id "github.com/Enxt-AI/enxtai-kyc-system-sub001/pkg/domain"
	dErrors "github.com/Enxt-AI/enxtai-kyc-system-sub001/pkg/domain-errors"
)

// EndUser is the individual being verified. Internally identified by a
// generated id; externally only by the owning tenant's own identifier.
//
// Invariants:
//   - (TenantID, ExternalID) is unique and is the only lookup path a tenant has
//   - an end user is never resolvable through another tenant's credential
//   - created lazily on first session initiation; contact fields are the only
//     mutable fields; never deleted
type EndUser struct {
	ID         id.EndUserID
	TenantID   id.TenantID
	ExternalID string
	Email      string
	Phone      string
	CreatedAt  time.Time
}

func NewEndUser(userID id.EndUserID, tenantID id.TenantID, externalID, email, phone string, now time.Time) (*EndUser, error) {
	if externalID == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "external identifier cannot be empty")
	}
	if tenantID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "end user requires an owning tenant")
	}
	return &EndUser{
		ID:         userID,
		TenantID:   tenantID,
		ExternalID: externalID,
		Email:      email,
		Phone:      phone,
		CreatedAt:  now,
	}, nil
}
