package models

import (
	dErrors "github.com/Enxt-AI/enxtai-kyc-system-sub001/pkg/domain-errors"
)

// Status is the verification pipeline state of a submission.
type Status string

const (
	StatusPending           Status = "PENDING"
	StatusDocumentsUploaded Status = "DOCUMENTS_UPLOADED"
	StatusOCRCompleted      Status = "OCR_COMPLETED"
	StatusFaceVerified      Status = "FACE_VERIFIED"
	StatusManualReview      Status = "MANUAL_REVIEW"
	StatusApproved          Status = "APPROVED"
	StatusRejected          Status = "REJECTED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusDocumentsUploaded, StatusOCRCompleted,
		StatusFaceVerified, StatusManualReview, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Terminal reports whether no further pipeline events apply.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Event is something that happened to a submission that may advance its
// status.
type Event string

const (
	EventDocumentsReady      Event = "documents_ready"
	EventExtractionCompleted Event = "extraction_completed"
	EventFaceMatchPassed     Event = "face_match_passed"
	EventFaceMatchFailed     Event = "face_match_failed"
	EventReviewApproved      Event = "review_approved"
	EventReviewRejected      Event = "review_rejected"
)

// FaceMatchEvent maps a similarity score to the pipeline event it triggers.
// Scores at or above the threshold pass; below routes to manual review.
func FaceMatchEvent(similarity, threshold float64) Event {
	if similarity >= threshold {
		return EventFaceMatchPassed
	}
	return EventFaceMatchFailed
}

// Transition returns the status that follows from applying event to current.
// Every transition not listed is an invariant violation; terminal statuses
// accept no events at all.
func Transition(current Status, event Event) (Status, error) {
	switch current {
	case StatusPending:
		if event == EventDocumentsReady {
			return StatusDocumentsUploaded, nil
		}
	case StatusDocumentsUploaded:
		switch event {
		case EventDocumentsReady:
			return StatusDocumentsUploaded, nil
		case EventExtractionCompleted:
			return StatusOCRCompleted, nil
		case EventFaceMatchPassed:
			return StatusFaceVerified, nil
		case EventFaceMatchFailed:
			return StatusManualReview, nil
		}
	case StatusOCRCompleted:
		switch event {
		case EventDocumentsReady, EventExtractionCompleted:
			return StatusOCRCompleted, nil
		case EventFaceMatchPassed:
			return StatusFaceVerified, nil
		case EventFaceMatchFailed:
			return StatusManualReview, nil
		}
	case StatusFaceVerified:
		switch event {
		case EventFaceMatchPassed:
			return StatusFaceVerified, nil
		case EventFaceMatchFailed:
			return StatusManualReview, nil
		}
	case StatusManualReview:
		switch event {
		case EventFaceMatchPassed:
			return StatusFaceVerified, nil
		case EventFaceMatchFailed:
			return StatusManualReview, nil
		case EventReviewApproved:
			return StatusApproved, nil
		case EventReviewRejected:
			return StatusRejected, nil
		}
	}
	return current, dErrors.Newf(dErrors.CodeInvariantViolation, "event %s is not valid in status %s", event, current)
}
