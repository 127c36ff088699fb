// Package extraction turns validated document images into structured identity
// fields: image preprocessing, optical text recognition behind a port, and
// layout-specific field parsing gated by a minimum confidence score.
package extraction

// DocumentType selects the parsing layout. Only two fixed layouts are
// recognized; this is not a general document classifier.
type DocumentType string

const (
	DocumentTypePAN     DocumentType = "pan"
	DocumentTypeAadhaar DocumentType = "aadhaar"
)

// Result is the transient outcome of one extraction run. Fields are nullable:
// only the ID number is mandatory per layout, everything else is best-effort.
type Result struct {
	DocumentType DocumentType
	RawText      string
	// Confidence is the recognizer's self-reported certainty, 0-100.
	Confidence float64

	// PAN layout fields.
	PANNumber string

	// Aadhaar layout fields. AadhaarMasked holds only the masked form
	// (********1234); the unmasked number is never stored or returned.
	AadhaarMasked string
	Address       string

	// Shared fields.
	Name        string
	DateOfBirth string
}
