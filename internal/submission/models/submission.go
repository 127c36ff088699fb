package models

import (
	"time"

	"github.com/Enxt-AI/enxtai-kyc-system-sub001/internal/document"
	"github.com/Enxt-AI/enxtai-kyc-system-sub001/pkg/domain"
	dErrors "github.com/Enxt-AI/enxtai-kyc-system-sub001/pkg/domain-errors"
)

// ExtractedFields holds structured data pulled from uploaded documents.
// Aadhaar numbers are stored masked only; the unmasked number never reaches
// this struct.
type ExtractedFields struct {
	Name          string  `json:"name,omitempty"`
	DateOfBirth   string  `json:"date_of_birth,omitempty"`
	PANNumber     string  `json:"pan_number,omitempty"`
	AadhaarMasked string  `json:"aadhaar_masked,omitempty"`
	Address       string  `json:"address,omitempty"`
	OCRConfidence float64 `json:"ocr_confidence,omitempty"`
}

// VerificationScores holds the face comparison outcome.
type VerificationScores struct {
	FaceSimilarity float64  `json:"face_similarity"`
	Liveness       *float64 `json:"liveness,omitempty"`
}

// Submission tracks one end user's verification attempt: which documents have
// been uploaded, what was extracted from them, and where the attempt stands.
type Submission struct {
	ID        domain.SubmissionID
	TenantID  domain.TenantID
	EndUserID domain.EndUserID
	Source    document.Source

	// Object store references per document slot. Empty means not uploaded.
	PANCardRef   string
	IDFrontRef   string
	IDBackRef    string
	IDCombined   string
	LivePhotoRef string
	SignatureRef string

	ExtractedFields    *ExtractedFields
	VerificationScores *VerificationScores

	Status          Status
	RejectionReason string

	ReviewedBy string
	ReviewNote string
	ReviewedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewSubmission(id domain.SubmissionID, tenantID domain.TenantID, endUserID domain.EndUserID, source document.Source, now time.Time) (*Submission, error) {
	if id.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "submission id is required")
	}
	if tenantID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "tenant id is required")
	}
	if endUserID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "end user id is required")
	}
	if source != document.SourceManual && source != document.SourceRepository {
		return nil, dErrors.Newf(dErrors.CodeInvalidInput, "unknown submission source %q", source)
	}
	return &Submission{
		ID:        id,
		TenantID:  tenantID,
		EndUserID: endUserID,
		Source:    source,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Ref returns the stored object reference for a slot, empty when not uploaded.
func (s *Submission) Ref(slot document.Slot) string {
	switch slot {
	case document.SlotPANCard:
		return s.PANCardRef
	case document.SlotIDFront:
		return s.IDFrontRef
	case document.SlotIDBack:
		return s.IDBackRef
	case document.SlotIDCombined:
		return s.IDCombined
	case document.SlotLivePhoto:
		return s.LivePhotoRef
	case document.SlotSignature:
		return s.SignatureRef
	}
	return ""
}

func (s *Submission) SetRef(slot document.Slot, ref string) error {
	switch slot {
	case document.SlotPANCard:
		s.PANCardRef = ref
	case document.SlotIDFront:
		s.IDFrontRef = ref
	case document.SlotIDBack:
		s.IDBackRef = ref
	case document.SlotIDCombined:
		s.IDCombined = ref
	case document.SlotLivePhoto:
		s.LivePhotoRef = ref
	case document.SlotSignature:
		s.SignatureRef = ref
	default:
		return dErrors.Newf(dErrors.CodeInvalidInput, "unknown document slot %q", slot)
	}
	return nil
}

func (s *Submission) ClearRef(slot document.Slot) error {
	return s.SetRef(slot, "")
}

// DocumentPhotoRef is the identity photo used for face comparison: the
// Aadhaar front when present, otherwise the combined scan which carries the
// front side.
func (s *Submission) DocumentPhotoRef() string {
	if s.IDFrontRef != "" {
		return s.IDFrontRef
	}
	return s.IDCombined
}

// HasFaceMatchPair reports whether both images needed for the face comparison
// stage have been uploaded.
func (s *Submission) HasFaceMatchPair() bool {
	return s.DocumentPhotoRef() != "" && s.LivePhotoRef != ""
}

// Progress reports completion in percent. Four slots each contribute 25%:
// PAN card, ID front, ID back, and live photo. A combined scan counts as both
// front and back.
func (s *Submission) Progress() int {
	progress := 0
	if s.PANCardRef != "" {
		progress += 25
	}
	if s.IDFrontRef != "" || s.IDCombined != "" {
		progress += 25
	}
	if s.IDBackRef != "" || s.IDCombined != "" {
		progress += 25
	}
	if s.LivePhotoRef != "" {
		progress += 25
	}
	if progress > 100 {
		progress = 100
	}
	return progress
}

// ApplyExtraction merges newly extracted fields into the submission without
// blanking fields a previous document already filled.
func (s *Submission) ApplyExtraction(fields ExtractedFields) {
	if s.ExtractedFields == nil {
		s.ExtractedFields = &ExtractedFields{}
	}
	merged := s.ExtractedFields
	if fields.Name != "" {
		merged.Name = fields.Name
	}
	if fields.DateOfBirth != "" {
		merged.DateOfBirth = fields.DateOfBirth
	}
	if fields.PANNumber != "" {
		merged.PANNumber = fields.PANNumber
	}
	if fields.AadhaarMasked != "" {
		merged.AadhaarMasked = fields.AadhaarMasked
	}
	if fields.Address != "" {
		merged.Address = fields.Address
	}
	if fields.OCRConfidence > 0 {
		merged.OCRConfidence = fields.OCRConfidence
	}
}
