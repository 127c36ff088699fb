package models

import (
	"time"

	id "github.com/Enxt-AI/enxtai-kyc-system-sub001/pkg/domain"
	dErrors "github.com/Enxt-AI/enxtai-kyc-system-sub001/pkg/domain-errors"
)

// TenantStatus is the lifecycle state of a tenant organization.
type TenantStatus string

const (
	TenantStatusActive    TenantStatus = "active"
	TenantStatusSuspended TenantStatus = "suspended"
	TenantStatusTrial     TenantStatus = "trial"
)

// Tenant is the aggregate root for an organization consuming the verification
// service under its own credential and isolation boundary.
//
// Invariants:
//   - CredentialFingerprint and CredentialHash are unique across tenants
//   - identity (ID, CredentialHash) is immutable after creation
//   - tenants are never deleted, only suspended
//
// Only active and trial tenants may resolve credentials; a suspended tenant
// fails authentication exactly like a wrong key so its existence is not
// confirmed to a holder of a leaked credential.
type Tenant struct {
	ID   id.TenantID
	Name string
	// Status gates credential resolution. Mutated only by platform operators.
	Status TenantStatus
	// CredentialFingerprint is a SHA-256 of the raw API key, used for indexed
	// lookup. Verification still runs against the bcrypt CredentialHash.
	CredentialFingerprint string
	CredentialHash        string
	// AllowedOrigins whitelists request origins for the tenant's client-side
	// integrations.
	AllowedOrigins []string
	// WebhookURL is opaque to the pipeline; the dispatcher owns delivery.
	WebhookURL string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// CanAuthenticate reports whether the tenant may resolve credentials.
func (t *Tenant) CanAuthenticate() bool {
	return t.Status == TenantStatusActive || t.Status == TenantStatusTrial
}

func NewTenant(tenantID id.TenantID, name, fingerprint, credentialHash string, now time.Time) (*Tenant, error) {
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "tenant name cannot be empty")
	}
	if len(name) > 128 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "tenant name must be 128 characters or less")
	}
	if fingerprint == "" || credentialHash == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "tenant credential is required")
	}
	return &Tenant{
		ID:                    tenantID,
		Name:                  name,
		Status:                TenantStatusActive,
		CredentialFingerprint: fingerprint,
		CredentialHash:        credentialHash,
		CreatedAt:             now,
		UpdatedAt:             now,
	}, nil
}
