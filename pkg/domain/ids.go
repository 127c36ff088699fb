package domain

import (
	"github.com/google/uuid"

	dErrors "github.com/Enxt-AI/enxtai-kyc-system-sub001/pkg/domain-errors"
)

// Typed ID wrappers keep tenant, end-user, and submission identifiers from being
// interchanged at compile time. Isolation checks compare TenantID to TenantID;
// handing a SubmissionID where a TenantID is expected is a build failure, not a
// production incident.
type (
	TenantID     uuid.UUID
	EndUserID    uuid.UUID
	SubmissionID uuid.UUID
)

func (i TenantID) String() string     { return uuid.UUID(i).String() }
func (i EndUserID) String() string    { return uuid.UUID(i).String() }
func (i SubmissionID) String() string { return uuid.UUID(i).String() }

func (i TenantID) IsNil() bool     { return uuid.UUID(i) == uuid.Nil }
func (i EndUserID) IsNil() bool    { return uuid.UUID(i) == uuid.Nil }
func (i SubmissionID) IsNil() bool { return uuid.UUID(i) == uuid.Nil }

func NewTenantID() TenantID         { return TenantID(uuid.New()) }
func NewEndUserID() EndUserID       { return EndUserID(uuid.New()) }
func NewSubmissionID() SubmissionID { return SubmissionID(uuid.New()) }

// ParseTenantID validates an external string into a TenantID.
// IDs must be valid, non-empty, non-nil UUIDs.
func ParseTenantID(s string) (TenantID, error) {
	u, err := parse(s)
	if err != nil {
		return TenantID{}, err
	}
	return TenantID(u), nil
}

// ParseEndUserID validates an external string into an EndUserID.
func ParseEndUserID(s string) (EndUserID, error) {
	u, err := parse(s)
	if err != nil {
		return EndUserID{}, err
	}
	return EndUserID(u), nil
}

// ParseSubmissionID validates an external string into a SubmissionID.
func ParseSubmissionID(s string) (SubmissionID, error) {
	u, err := parse(s)
	if err != nil {
		return SubmissionID{}, err
	}
	return SubmissionID(u), nil
}

func parse(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must be a valid UUID")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be the nil UUID")
	}
	return u, nil
}
