package httptransport

import (
	"time"

	"github.com/Enxt-AI/enxtai-kyc-system-sub001/internal/document"
	"github.com/Enxt-AI/enxtai-kyc-system-sub001/internal/submission/models"
)

// SubmissionResponse is the external view of a submission. Stored documents
// are reported per slot as opaque references, never as fetchable URLs.
type SubmissionResponse struct {
	SubmissionID string            `json:"submission_id"`
	EndUserID    string            `json:"end_user_id"`
	Status       string            `json:"status"`
	Progress     int               `json:"progress"`
	Source       string            `json:"source"`
	Documents    map[string]string `json:"documents"`

	ExtractedFields    *models.ExtractedFields    `json:"extracted_fields,omitempty"`
	VerificationScores *models.VerificationScores `json:"verification_scores,omitempty"`

	RejectionReason string     `json:"rejection_reason,omitempty"`
	ReviewedBy      string     `json:"reviewed_by,omitempty"`
	ReviewNote      string     `json:"review_note,omitempty"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

var responseSlots = []document.Slot{
	document.SlotPANCard,
	document.SlotIDFront,
	document.SlotIDBack,
	document.SlotIDCombined,
	document.SlotLivePhoto,
	document.SlotSignature,
}

// FromSubmission builds the external view.
func FromSubmission(sub *models.Submission) SubmissionResponse {
	documents := make(map[string]string)
	for _, slot := range responseSlots {
		if ref := sub.Ref(slot); ref != "" {
			documents[string(slot)] = ref
		}
	}
	return SubmissionResponse{
		SubmissionID:       sub.ID.String(),
		EndUserID:          sub.EndUserID.String(),
		Status:             string(sub.Status),
		Progress:           sub.Progress(),
		Source:             string(sub.Source),
		Documents:          documents,
		ExtractedFields:    sub.ExtractedFields,
		VerificationScores: sub.VerificationScores,
		RejectionReason:    sub.RejectionReason,
		ReviewedBy:         sub.ReviewedBy,
		ReviewNote:         sub.ReviewNote,
		ReviewedAt:         sub.ReviewedAt,
		CreatedAt:          sub.CreatedAt,
		UpdatedAt:          sub.UpdatedAt,
	}
}
