package httptransport

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/go-chi/chi/v5"

	"github.com/Enxt-AI/enxtai-kyc-system-sub001/internal/document"
	"github.com/Enxt-AI/enxtai-kyc-system-sub001/internal/submission/models"
	"github.com/Enxt-AI/enxtai-kyc-system-sub001/internal/submission/service"
	tenantmodels "github.com/Enxt-AI/enxtai-kyc-system-sub001/internal/tenant/models"
	id "github.com/Enxt-AI/enxtai-kyc-system-sub001/pkg/domain"
	dErrors "github.com/Enxt-AI/enxtai-kyc-system-sub001/pkg/domain-errors"
	"github.com/Enxt-AI/enxtai-kyc-system-sub001/pkg/platform/httputil"
	"github.com/Enxt-AI/enxtai-kyc-system-sub001/pkg/requestcontext"
)

// PipelineService is the orchestrator surface the transport depends on.
type PipelineService interface {
	InitiateSession(ctx context.Context, tenant *tenantmodels.Tenant, externalID, email, phone string) (*models.Submission, error)
	UploadDocument(ctx context.Context, tenant *tenantmodels.Tenant, externalID string, slot document.Slot, upload document.RawUpload, source document.Source) (*models.Submission, error)
	GetStatus(ctx context.Context, tenant *tenantmodels.Tenant, submissionID id.SubmissionID) (*models.Submission, error)
	TriggerFaceMatch(ctx context.Context, tenant *tenantmodels.Tenant, submissionID id.SubmissionID) (*models.Submission, error)
	DeleteDocument(ctx context.Context, tenant *tenantmodels.Tenant, externalID string, slot document.Slot) (*models.Submission, error)
	Review(ctx context.Context, tenant *tenantmodels.Tenant, submissionID id.SubmissionID, decision service.ReviewDecision) (*models.Submission, error)
}

// Handler is the thin HTTP layer over the verification pipeline.
type Handler struct {
	pipeline PipelineService
	logger   *slog.Logger
}

func NewHandler(pipeline PipelineService, logger *slog.Logger) *Handler {
	return &Handler{pipeline: pipeline, logger: logger}
}

// Register mounts the pipeline endpoints on an authenticated router group.
func (h *Handler) Register(r chi.Router) {
	r.Post("/sessions", h.handleInitiateSession)
	r.Post("/documents", h.handleUploadDocument)
	r.Delete("/documents", h.handleDeleteDocument)
	r.Get("/submissions/{submissionID}", h.handleGetStatus)
	r.Post("/submissions/{submissionID}/face-match", h.handleTriggerFaceMatch)
	r.Post("/submissions/{submissionID}/review", h.handleReview)
}

type initiateSessionRequest struct {
	ExternalID string `json:"external_id"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
}

func (h *Handler) handleInitiateSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	tenant := TenantFrom(ctx)

	req, ok := httputil.DecodeAndPrepare[initiateSessionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if err := validateInitiateSession(req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	sub, err := h.pipeline.InitiateSession(ctx, tenant, req.ExternalID, req.Email, req.Phone)
	if err != nil {
		h.logError(ctx, "session initiation failed", requestID, err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, FromSubmission(sub))
}

func (h *Handler) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	tenant := TenantFrom(ctx)
	start := time.Now()

	// Leave headroom above the document ceiling for multipart framing; the
	// validator enforces the real limit.
	r.Body = http.MaxBytesReader(w, r.Body, document.MaxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(document.MaxUploadBytes); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodePayloadTooLarge, "request body exceeds the upload limit"))
		return
	}

	externalID := r.FormValue("external_id")
	slot := document.Slot(r.FormValue("slot"))
	source := document.SourceManual
	if r.FormValue("source") == string(document.SourceRepository) {
		source = document.SourceRepository
	}
	if !govalidator.StringLength(externalID, "1", "255") {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "external_id is required"))
		return
	}
	if !slot.Valid() {
		httputil.WriteError(w, dErrors.Newf(dErrors.CodeBadRequest, "unknown document slot %q", slot))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "file part is required"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "file part could not be read"))
		return
	}

	upload := document.RawUpload{
		Bytes:        data,
		DeclaredMIME: header.Header.Get("Content-Type"),
		Filename:     header.Filename,
	}
	sub, err := h.pipeline.UploadDocument(ctx, tenant, externalID, slot, upload, source)
	if err != nil {
		h.logError(ctx, "document upload failed", requestID, err, "slot", slot)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "document upload handled",
		"request_id", requestID,
		"slot", slot,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, FromSubmission(sub))
}

func (h *Handler) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenant := TenantFrom(ctx)

	externalID := r.URL.Query().Get("external_id")
	slot := document.Slot(r.URL.Query().Get("slot"))
	if externalID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "external_id is required"))
		return
	}

	sub, err := h.pipeline.DeleteDocument(ctx, tenant, externalID, slot)
	if err != nil {
		h.logError(ctx, "document delete failed", requestcontext.RequestID(ctx), err, "slot", slot)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromSubmission(sub))
}

func (h *Handler) handleGetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenant := TenantFrom(ctx)

	submissionID, err := id.ParseSubmissionID(chi.URLParam(r, "submissionID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	sub, err := h.pipeline.GetStatus(ctx, tenant, submissionID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromSubmission(sub))
}

func (h *Handler) handleTriggerFaceMatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenant := TenantFrom(ctx)

	submissionID, err := id.ParseSubmissionID(chi.URLParam(r, "submissionID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	sub, err := h.pipeline.TriggerFaceMatch(ctx, tenant, submissionID)
	if err != nil {
		h.logError(ctx, "face match trigger failed", requestcontext.RequestID(ctx), err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromSubmission(sub))
}

type reviewRequest struct {
	Approve  bool   `json:"approve"`
	Reviewer string `json:"reviewer"`
	Note     string `json:"note,omitempty"`
}

func (h *Handler) handleReview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	tenant := TenantFrom(ctx)

	submissionID, err := id.ParseSubmissionID(chi.URLParam(r, "submissionID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[reviewRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if !govalidator.StringLength(req.Reviewer, "1", "255") {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "reviewer is required"))
		return
	}

	sub, err := h.pipeline.Review(ctx, tenant, submissionID, service.ReviewDecision{
		Approve:  req.Approve,
		Reviewer: req.Reviewer,
		Note:     req.Note,
	})
	if err != nil {
		h.logError(ctx, "review failed", requestID, err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromSubmission(sub))
}

func (h *Handler) logError(ctx context.Context, msg, requestID string, err error, args ...any) {
	if dErrors.HasCode(err, dErrors.CodeInternal) {
		h.logger.ErrorContext(ctx, msg, append([]any{"request_id", requestID, "error", err}, args...)...)
		return
	}
	h.logger.WarnContext(ctx, msg, append([]any{"request_id", requestID, "error", err}, args...)...)
}

func validateInitiateSession(req initiateSessionRequest) error {
	if !govalidator.StringLength(req.ExternalID, "1", "255") {
		return dErrors.New(dErrors.CodeBadRequest, "external_id is required")
	}
	if req.Email != "" && !govalidator.IsEmail(req.Email) {
		return dErrors.New(dErrors.CodeBadRequest, "invalid email")
	}
	if req.Phone != "" && !govalidator.StringLength(req.Phone, "7", "20") {
		return dErrors.New(dErrors.CodeBadRequest, "invalid phone")
	}
	return nil
}
