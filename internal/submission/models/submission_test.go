package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Enxt-AI/enxtai-kyc-system-sub001/internal/document"
	"github.com/Enxt-AI/enxtai-kyc-system-sub001/pkg/domain"
)

func newSubmission(t *testing.T) *Submission {
	t.Helper()
	s, err := NewSubmission(domain.NewSubmissionID(), domain.NewTenantID(), domain.NewEndUserID(), document.SourceManual, time.Now())
	require.NoError(t, err)
	return s
}

func TestNewSubmission(t *testing.T) {
	t.Run("starts pending with zero progress", func(t *testing.T) {
		s := newSubmission(t)
		assert.Equal(t, StatusPending, s.Status)
		assert.Zero(t, s.Progress())
		assert.Nil(t, s.ExtractedFields)
		assert.Nil(t, s.VerificationScores)
	})

	t.Run("rejects an unknown source", func(t *testing.T) {
		_, err := NewSubmission(domain.NewSubmissionID(), domain.NewTenantID(), domain.NewEndUserID(), document.Source("fax"), time.Now())
		assert.Error(t, err)
	})
}

func TestProgress(t *testing.T) {
	t.Run("each required slot contributes a quarter", func(t *testing.T) {
		s := newSubmission(t)

		require.NoError(t, s.SetRef(document.SlotPANCard, "ref-pan"))
		assert.Equal(t, 25, s.Progress())

		require.NoError(t, s.SetRef(document.SlotIDFront, "ref-front"))
		assert.Equal(t, 50, s.Progress())

		require.NoError(t, s.SetRef(document.SlotIDBack, "ref-back"))
		assert.Equal(t, 75, s.Progress())

		require.NoError(t, s.SetRef(document.SlotLivePhoto, "ref-live"))
		assert.Equal(t, 100, s.Progress())
	})

	t.Run("a combined scan counts as front and back", func(t *testing.T) {
		s := newSubmission(t)
		require.NoError(t, s.SetRef(document.SlotIDCombined, "ref-combined"))
		assert.Equal(t, 50, s.Progress())

		require.NoError(t, s.SetRef(document.SlotPANCard, "ref-pan"))
		require.NoError(t, s.SetRef(document.SlotLivePhoto, "ref-live"))
		assert.Equal(t, 100, s.Progress())
	})

	t.Run("combined plus separate sides never exceeds full", func(t *testing.T) {
		s := newSubmission(t)
		require.NoError(t, s.SetRef(document.SlotIDCombined, "ref-combined"))
		require.NoError(t, s.SetRef(document.SlotIDFront, "ref-front"))
		require.NoError(t, s.SetRef(document.SlotIDBack, "ref-back"))
		require.NoError(t, s.SetRef(document.SlotPANCard, "ref-pan"))
		require.NoError(t, s.SetRef(document.SlotLivePhoto, "ref-live"))
		assert.Equal(t, 100, s.Progress())
	})

	t.Run("signature does not move progress", func(t *testing.T) {
		s := newSubmission(t)
		require.NoError(t, s.SetRef(document.SlotSignature, "ref-sig"))
		assert.Zero(t, s.Progress())
	})

	t.Run("clearing a slot rolls progress back", func(t *testing.T) {
		s := newSubmission(t)
		require.NoError(t, s.SetRef(document.SlotPANCard, "ref-pan"))
		require.NoError(t, s.ClearRef(document.SlotPANCard))
		assert.Zero(t, s.Progress())
	})
}

func TestFaceMatchPair(t *testing.T) {
	t.Run("front plus live completes the pair", func(t *testing.T) {
		s := newSubmission(t)
		assert.False(t, s.HasFaceMatchPair())

		require.NoError(t, s.SetRef(document.SlotIDFront, "ref-front"))
		assert.False(t, s.HasFaceMatchPair())

		require.NoError(t, s.SetRef(document.SlotLivePhoto, "ref-live"))
		assert.True(t, s.HasFaceMatchPair())
		assert.Equal(t, "ref-front", s.DocumentPhotoRef())
	})

	t.Run("a combined scan stands in for the front", func(t *testing.T) {
		s := newSubmission(t)
		require.NoError(t, s.SetRef(document.SlotIDCombined, "ref-combined"))
		require.NoError(t, s.SetRef(document.SlotLivePhoto, "ref-live"))
		assert.True(t, s.HasFaceMatchPair())
		assert.Equal(t, "ref-combined", s.DocumentPhotoRef())
	})

	t.Run("front wins over combined when both exist", func(t *testing.T) {
		s := newSubmission(t)
		require.NoError(t, s.SetRef(document.SlotIDCombined, "ref-combined"))
		require.NoError(t, s.SetRef(document.SlotIDFront, "ref-front"))
		assert.Equal(t, "ref-front", s.DocumentPhotoRef())
	})
}

func TestApplyExtraction(t *testing.T) {
	t.Run("merges without blanking earlier fields", func(t *testing.T) {
		s := newSubmission(t)
		s.ApplyExtraction(ExtractedFields{Name: "Rahul Sharma", PANNumber: "ABCDE1234F", OCRConfidence: 92})
		s.ApplyExtraction(ExtractedFields{AadhaarMasked: "********0123", Address: "12 MG Road, Bengaluru"})

		require.NotNil(t, s.ExtractedFields)
		assert.Equal(t, "Rahul Sharma", s.ExtractedFields.Name)
		assert.Equal(t, "ABCDE1234F", s.ExtractedFields.PANNumber)
		assert.Equal(t, "********0123", s.ExtractedFields.AadhaarMasked)
		assert.Equal(t, "12 MG Road, Bengaluru", s.ExtractedFields.Address)
	})

	t.Run("an empty later extraction changes nothing", func(t *testing.T) {
		s := newSubmission(t)
		s.ApplyExtraction(ExtractedFields{Name: "Rahul Sharma"})
		s.ApplyExtraction(ExtractedFields{})
		assert.Equal(t, "Rahul Sharma", s.ExtractedFields.Name)
	})
}
