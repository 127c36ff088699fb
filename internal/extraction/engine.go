package extraction

import (
	"bytes"
	"context"
	"errors"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Enxt-AI/enxtai-kyc-system-sub001/internal/document"
	dErrors "github.com/Enxt-AI/enxtai-kyc-system-sub001/pkg/domain-errors"
	"github.com/Enxt-AI/enxtai-kyc-system-sub001/pkg/platform/sentinel"
)

// Engine fetches a stored document image, preprocesses it, runs text
// recognition, and parses structured fields per document layout.
//
// Failure policy: low confidence is a deliberate reject-and-ask-for-a-better-
// photo outcome, never a best-effort guess. No retries happen here; the caller
// resubmits a better image.
type Engine struct {
	objects    document.ObjectStore
	recognizer Recognizer
	logger     *slog.Logger
	tracer     trace.Tracer

	minConfidence float64
}

func NewEngine(objects document.ObjectStore, recognizer Recognizer, minConfidence float64, logger *slog.Logger) *Engine {
	return &Engine{
		objects:       objects,
		recognizer:    recognizer,
		logger:        logger,
		tracer:        otel.Tracer("kyc/extraction"),
		minConfidence: minConfidence,
	}
}

// Extract runs the full pipeline stage for one stored document reference.
func (e *Engine) Extract(ctx context.Context, ref string, docType DocumentType) (*Result, error) {
	ctx, span := e.tracer.Start(ctx, "extraction.Extract",
		trace.WithAttributes(attribute.String("document.type", string(docType))))
	defer span.End()

	raw, err := e.objects.Get(ctx, ref)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "document object not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not fetch document")
	}

	// Fail fast on non-image content before the recognizer ever runs. A PDF
	// saved into an image slot is a structural error, not a quality problem.
	contentType := http.DetectContentType(raw)
	if contentType != "image/jpeg" && contentType != "image/png" {
		return nil, dErrors.Newf(dErrors.CodeValidationFailed, "stored document is %s, not a supported image", contentType)
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeValidationFailed, "stored document could not be decoded")
	}

	working := preprocess(img)

	text, confidence, err := e.recognizer.Recognize(ctx, working)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "text recognition failed")
	}
	span.SetAttributes(attribute.Float64("ocr.confidence", confidence))

	if confidence < e.minConfidence {
		e.logger.InfoContext(ctx, "extraction rejected for low confidence",
			"confidence", confidence,
			"minimum", e.minConfidence,
			"document_type", docType,
		)
		return nil, dErrors.Newf(dErrors.CodePoorImageQuality, "recognition confidence %.0f is below the minimum %.0f; submit a clearer photo", confidence, e.minConfidence)
	}

	var result *Result
	switch docType {
	case DocumentTypePAN:
		result, err = ParsePAN(text)
	case DocumentTypeAadhaar:
		result, err = ParseAadhaar(text)
	default:
		return nil, dErrors.Newf(dErrors.CodeBadRequest, "unknown document type %q", docType)
	}
	if err != nil {
		return nil, err
	}

	result.Confidence = confidence
	return result, nil
}
