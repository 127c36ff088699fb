package facematch

import (
	"context"
	"errors"
	"log/slog"
	"math"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/Enxt-AI/enxtai-kyc-system-sub001/internal/document"
	dErrors "github.com/Enxt-AI/enxtai-kyc-system-sub001/pkg/domain-errors"
	"github.com/Enxt-AI/enxtai-kyc-system-sub001/pkg/platform/sentinel"
)

// FaceDescriber computes a face embedding for a single image. Implementations
// return CodeFaceNotDetected when no face is present in the image.
type FaceDescriber interface {
	Descriptor(ctx context.Context, imgBytes []byte) ([]float32, error)
}

// Engine compares the face on a stored document photo against a stored live
// capture by embedding both and measuring euclidean distance.
type Engine struct {
	objects   document.ObjectStore
	describer FaceDescriber
	logger    *slog.Logger
	tracer    trace.Tracer
}

func NewEngine(objects document.ObjectStore, describer FaceDescriber, logger *slog.Logger) *Engine {
	return &Engine{
		objects:   objects,
		describer: describer,
		logger:    logger,
		tracer:    otel.Tracer("kyc/facematch"),
	}
}

// Compare fetches both images concurrently, embeds each, and returns the
// similarity score. Either image lacking a detectable face fails the whole
// comparison; the submission then routes to manual review upstream.
func (e *Engine) Compare(ctx context.Context, documentRef, liveRef string) (*Result, error) {
	ctx, span := e.tracer.Start(ctx, "facematch.Compare")
	defer span.End()

	var docDescriptor, liveDescriptor []float32

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		docDescriptor, err = e.describe(gctx, documentRef, "document")
		return err
	})
	g.Go(func() error {
		var err error
		liveDescriptor, err = e.describe(gctx, liveRef, "live")
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(docDescriptor) != len(liveDescriptor) {
		return nil, dErrors.New(dErrors.CodeInternal, "face descriptors have mismatched dimensions")
	}

	distance := euclidean(docDescriptor, liveDescriptor)
	similarity := 1 / (1 + distance)
	span.SetAttributes(attribute.Float64("facematch.similarity", similarity))

	e.logger.InfoContext(ctx, "face comparison completed",
		"distance", distance,
		"similarity", similarity,
	)

	return &Result{Similarity: similarity}, nil
}

func (e *Engine) describe(ctx context.Context, ref, role string) ([]float32, error) {
	raw, err := e.objects.Get(ctx, ref)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Newf(dErrors.CodeNotFound, "%s image not found", role)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not fetch "+role+" image")
	}

	descriptor, err := e.describer.Descriptor(ctx, raw)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeFaceNotDetected) {
			return nil, dErrors.Newf(dErrors.CodeFaceNotDetected, "no face detected in %s image", role)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "face embedding failed for "+role+" image")
	}
	return descriptor, nil
}

func euclidean(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}
