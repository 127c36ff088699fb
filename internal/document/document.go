// Package document validates uploaded identity-document buffers and adapts
// them onto tenant-scoped object storage.
package document

// Slot is one of the fixed document roles a submission can hold.
type Slot string

const (
	SlotPANCard Slot = "pan_card"
	SlotIDFront Slot = "aadhaar_front"
	SlotIDBack  Slot = "aadhaar_back"
	// SlotIDCombined is the legacy single-scan Aadhaar document. It counts
	// toward both the front and back slots for progress, and stands in for the
	// front image when face match needs a document photo.
	SlotIDCombined Slot = "aadhaar_combined"
	SlotLivePhoto  Slot = "live_photo"
	SlotSignature  Slot = "signature"
)

// Valid reports whether s names a known document slot.
func (s Slot) Valid() bool {
	switch s {
	case SlotPANCard, SlotIDFront, SlotIDBack, SlotIDCombined, SlotLivePhoto, SlotSignature:
		return true
	}
	return false
}

// Source records how a document buffer entered the pipeline.
type Source string

const (
	SourceManual Source = "manual"
	// SourceRepository marks buffers fetched from the external government
	// document repository. They pass through the same validator as manual
	// uploads.
	SourceRepository Source = "repository"
)

// RawUpload is an unvalidated buffer as received from a caller or the
// document-repository integration.
type RawUpload struct {
	Bytes        []byte
	DeclaredMIME string
	Filename     string
}

// ValidatedUpload is the typed result of validation: the sniffed content type
// and decoded pixel dimensions travel with the bytes so downstream stages
// never re-derive them from untrusted declarations.
type ValidatedUpload struct {
	Bytes       []byte
	ContentType string
	Filename    string
	Width       int
	Height      int
}
