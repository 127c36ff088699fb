package document

import (
	"bytes"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"net/http"

	dErrors "github.com/Enxt-AI/enxtai-kyc-system-sub001/pkg/domain-errors"
)

const (
	// MaxUploadBytes is the hard ceiling for a single document buffer.
	MaxUploadBytes = 5 << 20 // 5 MiB

	// MinDimension rejects thumbnails too small for the recognizer. A buffer
	// is rejected only when both sides fall below the bound, so rotated or
	// wide-aspect captures (e.g. 320x240) still pass.
	MinDimension = 300
	// MaxDimension bounds decode memory for hostile buffers.
	MaxDimension = 8192
)

// Validator enforces MIME, size, and pixel-dimension constraints on an
// uploaded buffer before it may touch storage.
type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

// Validate sniffs the buffer's real content type (the declared MIME type is
// advisory only) and decodes image dimensions without a full pixel decode.
func (v *Validator) Validate(upload RawUpload) (*ValidatedUpload, error) {
	if len(upload.Bytes) == 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "document buffer is empty")
	}
	if len(upload.Bytes) > MaxUploadBytes {
		return nil, dErrors.New(dErrors.CodePayloadTooLarge, "document exceeds the 5 MiB limit")
	}

	contentType := http.DetectContentType(upload.Bytes)
	if contentType != "image/jpeg" && contentType != "image/png" {
		return nil, dErrors.Newf(dErrors.CodeUnsupportedMediaType, "unsupported media type %q: only JPEG and PNG are accepted", contentType)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(upload.Bytes))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnsupportedMediaType, "image header could not be decoded")
	}
	if cfg.Width < MinDimension && cfg.Height < MinDimension {
		return nil, dErrors.Newf(dErrors.CodeInvalidDimensions, "image %dx%d is below the %dpx minimum", cfg.Width, cfg.Height, MinDimension)
	}
	if cfg.Width > MaxDimension || cfg.Height > MaxDimension {
		return nil, dErrors.Newf(dErrors.CodeInvalidDimensions, "image %dx%d exceeds the %dpx maximum", cfg.Width, cfg.Height, MaxDimension)
	}

	return &ValidatedUpload{
		Bytes:       upload.Bytes,
		ContentType: contentType,
		Filename:    upload.Filename,
		Width:       cfg.Width,
		Height:      cfg.Height,
	}, nil
}
