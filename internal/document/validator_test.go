package document

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "github.com/Enxt-AI/enxtai-kyc-system-sub001/pkg/domain"
	dErrors "github.com/Enxt-AI/enxtai-kyc-system-sub001/pkg/domain-errors"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x += 2 {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.Gray{Y: 200})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func jpegBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func TestValidate(t *testing.T) {
	v := NewValidator()

	t.Run("accepts a well-formed PNG and reports its dimensions", func(t *testing.T) {
		out, err := v.Validate(RawUpload{Bytes: pngBytes(t, 320, 240), DeclaredMIME: "image/png", Filename: "pan.png"})
		require.NoError(t, err)
		assert.Equal(t, "image/png", out.ContentType)
		assert.Equal(t, 320, out.Width)
		assert.Equal(t, 240, out.Height)
	})

	t.Run("accepts a JPEG", func(t *testing.T) {
		out, err := v.Validate(RawUpload{Bytes: jpegBytes(t, 400, 400), Filename: "front.jpg"})
		require.NoError(t, err)
		assert.Equal(t, "image/jpeg", out.ContentType)
	})

	t.Run("sniffed type wins over the declared MIME", func(t *testing.T) {
		pdf := []byte("%PDF-1.4 not really an image")
		_, err := v.Validate(RawUpload{Bytes: pdf, DeclaredMIME: "image/png", Filename: "doc.pdf"})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnsupportedMediaType))
	})

	t.Run("rejects oversized buffers", func(t *testing.T) {
		big := make([]byte, MaxUploadBytes+1)
		_, err := v.Validate(RawUpload{Bytes: big, Filename: "huge.jpg"})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodePayloadTooLarge))
	})

	t.Run("rejects images with both sides below the minimum", func(t *testing.T) {
		_, err := v.Validate(RawUpload{Bytes: pngBytes(t, 100, 120), Filename: "tiny.png"})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidDimensions))
	})

	t.Run("accepts a wide-aspect capture with one side below the minimum", func(t *testing.T) {
		_, err := v.Validate(RawUpload{Bytes: pngBytes(t, 320, 240), Filename: "wide.png"})
		require.NoError(t, err)
	})

	t.Run("rejects empty buffers", func(t *testing.T) {
		_, err := v.Validate(RawUpload{Filename: "empty.png"})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
}

func TestStorageKey(t *testing.T) {
	tenantID := id.NewTenantID()
	endUserID := id.NewEndUserID()
	now := time.Unix(1700000000, 42)

	key := StorageKey(tenantID, SlotPANCard, endUserID, "my scan (1).png", now)

	assert.Contains(t, key, tenantID.String()+"-"+string(SlotPANCard))
	assert.Contains(t, key, endUserID.String())
	assert.NotContains(t, key, " ")
	assert.NotContains(t, key, "(")

	t.Run("path traversal in the filename is stripped", func(t *testing.T) {
		key := StorageKey(tenantID, SlotLivePhoto, endUserID, "../../etc/passwd", now)
		assert.NotContains(t, key, "..")
	})
}
