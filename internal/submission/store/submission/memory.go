package submission

import (
	"context"
	"sync"
	"time"

	"github.com/Enxt-AI/enxtai-kyc-system-sub001/internal/submission/models"
	id "github.com/Enxt-AI/enxtai-kyc-system-sub001/pkg/domain"
	"github.com/Enxt-AI/enxtai-kyc-system-sub001/pkg/platform/sentinel"
)

// InMemory mirrors the relational store's semantics, including the optimistic
// concurrency check on updated_at.
type InMemory struct {
	mu   sync.RWMutex
	byID map[id.SubmissionID]*models.Submission
}

func NewInMemory() *InMemory {
	return &InMemory{byID: make(map[id.SubmissionID]*models.Submission)}
}

func (s *InMemory) Create(_ context.Context, sub *models.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byID[sub.ID]; exists {
		return sentinel.ErrConflict
	}
	s.byID[sub.ID] = copySubmission(sub)
	return nil
}

func (s *InMemory) FindByID(_ context.Context, submissionID id.SubmissionID) (*models.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sub, ok := s.byID[submissionID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return copySubmission(sub), nil
}

func (s *InMemory) FindLatestByEndUser(_ context.Context, tenantID id.TenantID, endUserID id.EndUserID) (*models.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var latest *models.Submission
	for _, sub := range s.byID {
		if sub.TenantID != tenantID || sub.EndUserID != endUserID {
			continue
		}
		if latest == nil || sub.CreatedAt.After(latest.CreatedAt) {
			latest = sub
		}
	}
	if latest == nil {
		return nil, sentinel.ErrNotFound
	}
	return copySubmission(latest), nil
}

// Update persists sub only when its UpdatedAt still matches the stored row,
// then stamps the new UpdatedAt. A mismatch means a concurrent writer won and
// the caller must reload.
func (s *InMemory) Update(_ context.Context, sub *models.Submission, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.byID[sub.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if !current.UpdatedAt.Equal(sub.UpdatedAt) {
		return sentinel.ErrConflict
	}
	sub.UpdatedAt = now
	s.byID[sub.ID] = copySubmission(sub)
	return nil
}

func copySubmission(sub *models.Submission) *models.Submission {
	cp := *sub
	if sub.ExtractedFields != nil {
		fields := *sub.ExtractedFields
		cp.ExtractedFields = &fields
	}
	if sub.VerificationScores != nil {
		scores := *sub.VerificationScores
		cp.VerificationScores = &scores
	}
	if sub.ReviewedAt != nil {
		at := *sub.ReviewedAt
		cp.ReviewedAt = &at
	}
	return &cp
}
