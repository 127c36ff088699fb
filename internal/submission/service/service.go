// Package service orchestrates the verification pipeline: session initiation,
// document intake, text extraction, face matching, and manual review.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Enxt-AI/enxtai-kyc-system-sub001/internal/document"
	endusermodels "github.com/Enxt-AI/enxtai-kyc-system-sub001/internal/enduser/models"
	"github.com/Enxt-AI/enxtai-kyc-system-sub001/internal/extraction"
	"github.com/Enxt-AI/enxtai-kyc-system-sub001/internal/facematch"
	"github.com/Enxt-AI/enxtai-kyc-system-sub001/internal/platform/metrics"
	"github.com/Enxt-AI/enxtai-kyc-system-sub001/internal/submission/models"
	tenantmodels "github.com/Enxt-AI/enxtai-kyc-system-sub001/internal/tenant/models"
	"github.com/Enxt-AI/enxtai-kyc-system-sub001/internal/webhook"
	id "github.com/Enxt-AI/enxtai-kyc-system-sub001/pkg/domain"
	dErrors "github.com/Enxt-AI/enxtai-kyc-system-sub001/pkg/domain-errors"
	"github.com/Enxt-AI/enxtai-kyc-system-sub001/pkg/platform/sentinel"
	"github.com/Enxt-AI/enxtai-kyc-system-sub001/pkg/requestcontext"
)

// SubmissionStore abstracts submission persistence. Update is a compare-and-
// swap on updated_at; sentinel.ErrConflict means a concurrent writer won.
type SubmissionStore interface {
	Create(ctx context.Context, sub *models.Submission) error
	FindByID(ctx context.Context, submissionID id.SubmissionID) (*models.Submission, error)
	FindLatestByEndUser(ctx context.Context, tenantID id.TenantID, endUserID id.EndUserID) (*models.Submission, error)
	Update(ctx context.Context, sub *models.Submission, now time.Time) error
}

// EndUserResolver maps tenant-supplied external identifiers to end users.
type EndUserResolver interface {
	Resolve(ctx context.Context, tenantID id.TenantID, externalID string) (*endusermodels.EndUser, error)
	ResolveOrCreate(ctx context.Context, tenantID id.TenantID, externalID, email, phone string) (*endusermodels.EndUser, error)
}

// Extractor runs text recognition against a stored document.
type Extractor interface {
	Extract(ctx context.Context, ref string, docType extraction.DocumentType) (*extraction.Result, error)
}

// FaceComparer scores a document photo against a live capture.
type FaceComparer interface {
	Compare(ctx context.Context, documentRef, liveRef string) (*facematch.Result, error)
}

// SecurityReporter records cross-tenant access attempts.
type SecurityReporter interface {
	IsolationViolation(ctx context.Context, callerTenantID, ownerTenantID id.TenantID, resource string)
}

// Deps collects the service's collaborators.
type Deps struct {
	Submissions SubmissionStore
	Users       EndUserResolver
	Validator   *document.Validator
	Objects     document.ObjectStore
	Extractor   Extractor
	Faces       FaceComparer
	Locker      Locker
	Publisher   webhook.Publisher
	Security    SecurityReporter
	Metrics     *metrics.Metrics
	Logger      *slog.Logger

	FaceMatchThreshold float64
}

// Service is the verification pipeline orchestrator. Every method takes the
// authenticated tenant explicitly; nothing tenant-scoped is read from ambient
// context.
type Service struct {
	submissions SubmissionStore
	users       EndUserResolver
	validator   *document.Validator
	objects     document.ObjectStore
	extractor   Extractor
	faces       FaceComparer
	locker      Locker
	publisher   webhook.Publisher
	security    SecurityReporter
	metrics     *metrics.Metrics
	logger      *slog.Logger

	faceMatchThreshold float64
}

func New(deps Deps) *Service {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Publisher == nil {
		deps.Publisher = webhook.Nop{}
	}
	if deps.Locker == nil {
		deps.Locker = NewInProcessLocker()
	}
	return &Service{
		submissions:        deps.Submissions,
		users:              deps.Users,
		validator:          deps.Validator,
		objects:            deps.Objects,
		extractor:          deps.Extractor,
		faces:              deps.Faces,
		locker:             deps.Locker,
		publisher:          deps.Publisher,
		security:           deps.Security,
		metrics:            deps.Metrics,
		logger:             deps.Logger,
		faceMatchThreshold: deps.FaceMatchThreshold,
	}
}

// InitiateSession resolves or creates the end user and opens a fresh
// submission for them. End-user creation is idempotent; the submission is
// not: each initiation starts a new attempt, and uploads always land on the
// latest one. This is the only operation that may create end users.
func (s *Service) InitiateSession(ctx context.Context, tenant *tenantmodels.Tenant, externalID, email, phone string) (*models.Submission, error) {
	user, err := s.users.ResolveOrCreate(ctx, tenant.ID, externalID, email, phone)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	sub, err := models.NewSubmission(id.NewSubmissionID(), tenant.ID, user.ID, document.SourceManual, now)
	if err != nil {
		return nil, err
	}
	if err := s.submissions.Create(ctx, sub); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "submission creation failed")
	}

	if s.metrics != nil {
		s.metrics.SubmissionsCreated.Inc()
	}
	s.logger.InfoContext(ctx, "verification session initiated",
		"tenant_id", tenant.ID,
		"end_user_id", user.ID,
		"submission_id", sub.ID,
		"request_id", requestcontext.RequestID(ctx),
	)
	return sub, nil
}

// UploadDocument validates and stores a document buffer into a slot of the
// end user's open submission, then runs the extraction and face match stages
// that the new document makes possible. The end user must already exist:
// uploads never create identities.
func (s *Service) UploadDocument(ctx context.Context, tenant *tenantmodels.Tenant, externalID string, slot document.Slot, upload document.RawUpload, source document.Source) (*models.Submission, error) {
	if !slot.Valid() {
		return nil, dErrors.Newf(dErrors.CodeBadRequest, "unknown document slot %q", slot)
	}

	user, err := s.users.Resolve(ctx, tenant.ID, externalID)
	if err != nil {
		return nil, err
	}

	validated, err := s.validator.Validate(upload)
	if err != nil {
		if s.metrics != nil {
			s.metrics.UploadsRejected.WithLabelValues(string(dErrors.CodeOf(err))).Inc()
		}
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.UploadsValidated.Inc()
	}

	current, err := s.submissions.FindLatestByEndUser(ctx, tenant.ID, user.ID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "no verification session for this user; initiate a session first")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "submission lookup failed")
	}
	if current.Status.Terminal() {
		return nil, dErrors.Newf(dErrors.CodeConflict, "submission is already %s", current.Status)
	}

	now := requestcontext.Now(ctx)
	key := document.StorageKey(tenant.ID, slot, user.ID, validated.Filename, now)
	if err := s.objects.Put(ctx, key, validated.Bytes, validated.ContentType); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "document could not be stored")
	}

	var replacedRef string
	sub, err := s.mutate(ctx, current.ID, func(sub *models.Submission) error {
		replacedRef = sub.Ref(slot)
		if err := sub.SetRef(slot, key); err != nil {
			return err
		}
		if source == document.SourceRepository {
			sub.Source = document.SourceRepository
		}
		return s.applyEvent(sub, models.EventDocumentsReady)
	})
	if err != nil {
		return nil, err
	}
	if replacedRef != "" && replacedRef != key {
		s.deleteObject(ctx, replacedRef)
	}

	s.logger.InfoContext(ctx, "document uploaded",
		"tenant_id", tenant.ID,
		"submission_id", sub.ID,
		"slot", slot,
		"source", source,
		"bytes", len(validated.Bytes),
		"request_id", requestcontext.RequestID(ctx),
	)

	if docType, ok := docTypeForSlot(slot); ok {
		sub, err = s.extractStage(ctx, sub, key, docType)
		if err != nil {
			return nil, err
		}
	}

	if sub.HasFaceMatchPair() && sub.VerificationScores == nil {
		sub, err = s.faceMatchStage(ctx, sub, true)
		if err != nil {
			return nil, err
		}
	}

	return sub, nil
}

// GetStatus returns a submission, enforcing tenant isolation. A submission
// owned by another tenant yields Forbidden, never NotFound, and the attempt
// is reported.
func (s *Service) GetStatus(ctx context.Context, tenant *tenantmodels.Tenant, submissionID id.SubmissionID) (*models.Submission, error) {
	return s.load(ctx, tenant, submissionID)
}

// TriggerFaceMatch reruns the face comparison on demand, overwriting any
// previous scores.
func (s *Service) TriggerFaceMatch(ctx context.Context, tenant *tenantmodels.Tenant, submissionID id.SubmissionID) (*models.Submission, error) {
	sub, err := s.load(ctx, tenant, submissionID)
	if err != nil {
		return nil, err
	}
	if sub.Status.Terminal() {
		return nil, dErrors.Newf(dErrors.CodeConflict, "submission is already %s", sub.Status)
	}
	if !sub.HasFaceMatchPair() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "face match needs an identity document photo and a live photo")
	}
	return s.faceMatchStage(ctx, sub, false)
}

// DeleteDocument detaches a slot from the open submission and removes the
// stored object. Object removal is best effort; a dangling blob is garbage,
// not corruption.
func (s *Service) DeleteDocument(ctx context.Context, tenant *tenantmodels.Tenant, externalID string, slot document.Slot) (*models.Submission, error) {
	if !slot.Valid() {
		return nil, dErrors.Newf(dErrors.CodeBadRequest, "unknown document slot %q", slot)
	}

	user, err := s.users.Resolve(ctx, tenant.ID, externalID)
	if err != nil {
		return nil, err
	}
	current, err := s.submissions.FindLatestByEndUser(ctx, tenant.ID, user.ID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "no verification session for this user")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "submission lookup failed")
	}
	if current.Status.Terminal() {
		return nil, dErrors.Newf(dErrors.CodeConflict, "submission is already %s", current.Status)
	}

	var removedRef string
	sub, err := s.mutate(ctx, current.ID, func(sub *models.Submission) error {
		removedRef = sub.Ref(slot)
		if removedRef == "" {
			return dErrors.Newf(dErrors.CodeNotFound, "slot %s holds no document", slot)
		}
		return sub.ClearRef(slot)
	})
	if err != nil {
		return nil, err
	}
	s.deleteObject(ctx, removedRef)

	s.logger.InfoContext(ctx, "document deleted",
		"tenant_id", tenant.ID,
		"submission_id", sub.ID,
		"slot", slot,
		"request_id", requestcontext.RequestID(ctx),
	)
	return sub, nil
}

// ReviewDecision is a human verdict on a submission in manual review.
type ReviewDecision struct {
	Approve  bool
	Reviewer string
	Note     string
}

// Review applies a manual decision. Only submissions in manual review accept
// one.
func (s *Service) Review(ctx context.Context, tenant *tenantmodels.Tenant, submissionID id.SubmissionID, decision ReviewDecision) (*models.Submission, error) {
	if decision.Reviewer == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "reviewer identity is required")
	}

	if _, err := s.load(ctx, tenant, submissionID); err != nil {
		return nil, err
	}

	event := models.EventReviewRejected
	if decision.Approve {
		event = models.EventReviewApproved
	}

	sub, err := s.mutate(ctx, submissionID, func(sub *models.Submission) error {
		if err := s.applyEvent(sub, event); err != nil {
			return err
		}
		now := requestcontext.Now(ctx)
		sub.ReviewedBy = decision.Reviewer
		sub.ReviewNote = decision.Note
		sub.ReviewedAt = &now
		if !decision.Approve {
			sub.RejectionReason = decision.Note
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "submission reviewed",
		"tenant_id", tenant.ID,
		"submission_id", sub.ID,
		"approved", decision.Approve,
		"reviewer", decision.Reviewer,
		"request_id", requestcontext.RequestID(ctx),
	)
	return sub, nil
}

// extractStage runs recognition for one stored document and folds the fields
// into the submission. Extraction failures surface to the caller so the
// client can resubmit a better image; the uploaded document stays attached.
func (s *Service) extractStage(ctx context.Context, sub *models.Submission, ref string, docType extraction.DocumentType) (*models.Submission, error) {
	start := time.Now()
	result, err := s.extractor.Extract(ctx, ref, docType)
	s.observeStage("extraction", start)
	if err != nil {
		if s.metrics != nil {
			s.metrics.Extractions.WithLabelValues(string(docType), string(dErrors.CodeOf(err))).Inc()
		}
		s.logger.WarnContext(ctx, "extraction failed",
			"submission_id", sub.ID,
			"document_type", docType,
			"error", err,
		)
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.Extractions.WithLabelValues(string(docType), "ok").Inc()
	}

	return s.mutate(ctx, sub.ID, func(sub *models.Submission) error {
		sub.ApplyExtraction(models.ExtractedFields{
			Name:          result.Name,
			DateOfBirth:   result.DateOfBirth,
			PANNumber:     result.PANNumber,
			AadhaarMasked: result.AadhaarMasked,
			Address:       result.Address,
			OCRConfidence: result.Confidence,
		})
		return s.applyEvent(sub, models.EventExtractionCompleted)
	})
}

// faceMatchStage compares the document photo against the live capture and
// advances the state machine on the score. In auto mode (pipeline-triggered)
// an undetectable face routes to manual review instead of failing the upload
// that got us here; an explicit trigger propagates the error.
func (s *Service) faceMatchStage(ctx context.Context, sub *models.Submission, auto bool) (*models.Submission, error) {
	start := time.Now()
	result, err := s.faces.Compare(ctx, sub.DocumentPhotoRef(), sub.LivePhotoRef)
	s.observeStage("face_match", start)
	if err != nil {
		if s.metrics != nil {
			s.metrics.FaceMatches.WithLabelValues(string(dErrors.CodeOf(err))).Inc()
		}
		if auto && dErrors.HasCode(err, dErrors.CodeFaceNotDetected) {
			s.logger.WarnContext(ctx, "face not detected, routing to manual review",
				"submission_id", sub.ID,
			)
			return s.mutate(ctx, sub.ID, func(sub *models.Submission) error {
				return s.applyEvent(sub, models.EventFaceMatchFailed)
			})
		}
		return nil, err
	}

	event := models.FaceMatchEvent(result.Similarity, s.faceMatchThreshold)
	if s.metrics != nil {
		outcome := "passed"
		if event == models.EventFaceMatchFailed {
			outcome = "failed"
		}
		s.metrics.FaceMatches.WithLabelValues(outcome).Inc()
	}
	s.logger.InfoContext(ctx, "face match scored",
		"submission_id", sub.ID,
		"similarity", result.Similarity,
		"threshold", s.faceMatchThreshold,
	)

	return s.mutate(ctx, sub.ID, func(sub *models.Submission) error {
		sub.VerificationScores = &models.VerificationScores{
			FaceSimilarity: result.Similarity,
			Liveness:       result.Liveness,
		}
		return s.applyEvent(sub, event)
	})
}

// load fetches a submission and enforces tenant ownership. The Forbidden
// answer for foreign submissions is deliberate: NotFound would let tenants
// probe which ids exist.
func (s *Service) load(ctx context.Context, tenant *tenantmodels.Tenant, submissionID id.SubmissionID) (*models.Submission, error) {
	sub, err := s.submissions.FindByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "submission not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "submission lookup failed")
	}
	if sub.TenantID != tenant.ID {
		if s.security != nil {
			s.security.IsolationViolation(ctx, tenant.ID, sub.TenantID, "submission/"+submissionID.String())
		}
		if s.metrics != nil {
			s.metrics.IsolationViolations.Inc()
		}
		return nil, dErrors.New(dErrors.CodeForbidden, "access denied")
	}
	return sub, nil
}

// mutate applies fn to the current submission row under the per-submission
// lock and persists it. One reload-and-retry absorbs a CAS conflict from a
// writer that slipped in before the lock was acquired.
func (s *Service) mutate(ctx context.Context, submissionID id.SubmissionID, fn func(*models.Submission) error) (*models.Submission, error) {
	var out *models.Submission
	err := s.locker.WithLock(ctx, submissionID.String(), func(ctx context.Context) error {
		for attempt := 0; ; attempt++ {
			sub, err := s.submissions.FindByID(ctx, submissionID)
			if err != nil {
				if errors.Is(err, sentinel.ErrNotFound) {
					return dErrors.New(dErrors.CodeNotFound, "submission not found")
				}
				return dErrors.Wrap(err, dErrors.CodeInternal, "submission lookup failed")
			}
			before := sub.Status

			if err := fn(sub); err != nil {
				return err
			}

			err = s.submissions.Update(ctx, sub, requestcontext.Now(ctx))
			if errors.Is(err, sentinel.ErrConflict) && attempt == 0 {
				continue
			}
			if err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "submission update failed")
			}

			if sub.Status != before {
				s.publishStatus(ctx, sub)
			}
			out = sub
			return nil
		}
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) applyEvent(sub *models.Submission, event models.Event) error {
	next, err := models.Transition(sub.Status, event)
	if err != nil {
		return err
	}
	sub.Status = next
	return nil
}

func (s *Service) publishStatus(ctx context.Context, sub *models.Submission) {
	err := s.publisher.Publish(ctx, webhook.Event{
		SubmissionID: sub.ID,
		TenantID:     sub.TenantID,
		EndUserID:    sub.EndUserID,
		Status:       sub.Status,
		OccurredAt:   requestcontext.Now(ctx),
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "status event publish failed",
			"submission_id", sub.ID,
			"status", sub.Status,
			"error", err,
		)
	}
}

func (s *Service) deleteObject(ctx context.Context, ref string) {
	if err := s.objects.Delete(ctx, ref); err != nil {
		s.logger.WarnContext(ctx, "stored object delete failed", "ref", ref, "error", err)
	}
}

func (s *Service) observeStage(stage string, start time.Time) {
	if s.metrics != nil {
		s.metrics.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
	}
}

// docTypeForSlot maps an uploaded slot to the extraction layout it carries.
// Live photos and signatures carry no extractable text.
func docTypeForSlot(slot document.Slot) (extraction.DocumentType, bool) {
	switch slot {
	case document.SlotPANCard:
		return extraction.DocumentTypePAN, true
	case document.SlotIDFront, document.SlotIDBack, document.SlotIDCombined:
		return extraction.DocumentTypeAadhaar, true
	}
	return "", false
}
