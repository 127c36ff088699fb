package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasCode(t *testing.T) {
	t.Run("matches direct error", func(t *testing.T) {
		err := New(CodeNotFound, "submission not found")
		assert.True(t, HasCode(err, CodeNotFound))
		assert.False(t, HasCode(err, CodeConflict))
	})

	t.Run("matches through wrapping", func(t *testing.T) {
		inner := New(CodePoorImageQuality, "confidence too low")
		outer := Wrap(inner, CodeDataExtractionFailed, "extraction failed")
		assert.True(t, HasCode(outer, CodeDataExtractionFailed))
		assert.True(t, HasCode(outer, CodePoorImageQuality))
	})

	t.Run("matches through fmt wrapping", func(t *testing.T) {
		err := fmt.Errorf("upload document: %w", New(CodeForbidden, "access denied"))
		assert.True(t, HasCode(err, CodeForbidden))
	})

	t.Run("false for plain errors", func(t *testing.T) {
		assert.False(t, HasCode(errors.New("boom"), CodeInternal))
		assert.False(t, HasCode(nil, CodeInternal))
	})
}

func TestCodeOf(t *testing.T) {
	t.Run("outermost code wins", func(t *testing.T) {
		inner := New(CodeNotFound, "missing")
		outer := Wrap(inner, CodeConflict, "state changed")
		assert.Equal(t, CodeConflict, CodeOf(outer))
	})

	t.Run("plain error is internal", func(t *testing.T) {
		assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
	})
}

func TestMessageOf(t *testing.T) {
	assert.Equal(t, "access denied", MessageOf(New(CodeForbidden, "access denied")))
	assert.Equal(t, "internal error", MessageOf(errors.New("raw db failure")))
}

func TestWrap(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, Wrap(nil, CodeInternal, "ignored"))
	})

	t.Run("preserves chain for errors.Is", func(t *testing.T) {
		sentinel := errors.New("row not found")
		err := Wrap(sentinel, CodeNotFound, "end user not found")
		require.Error(t, err)
		assert.True(t, errors.Is(err, sentinel))
	})
}

func TestErrorString(t *testing.T) {
	plain := New(CodeBadRequest, "slot is required")
	assert.Equal(t, "bad_request: slot is required", plain.Error())

	wrapped := Wrap(errors.New("io: short read"), CodeInternal, "object fetch failed")
	assert.Equal(t, "internal: object fetch failed: io: short read", wrapped.Error())
}

func TestNewf(t *testing.T) {
	err := Newf(CodeInvalidInput, "unknown document slot %q", "selfie")
	assert.True(t, HasCode(err, CodeInvalidInput))
	assert.Equal(t, `unknown document slot "selfie"`, MessageOf(err))
}
