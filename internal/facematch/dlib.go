package facematch

import (
	"context"

	"github.com/Kagami/go-face"

	dErrors "github.com/Enxt-AI/enxtai-kyc-system-sub001/pkg/domain-errors"
)

// DlibDescriber embeds faces with dlib's ResNet face recognition model via
// go-face. The recognizer holds cgo state, so one instance is shared and
// closed on shutdown.
type DlibDescriber struct {
	recognizer *face.Recognizer
}

// NewDlibDescriber loads the dlib model files (shape predictor, face
// descriptor net, CNN detector) from modelsDir.
func NewDlibDescriber(modelsDir string) (*DlibDescriber, error) {
	recognizer, err := face.NewRecognizer(modelsDir)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not load face recognition models")
	}
	return &DlibDescriber{recognizer: recognizer}, nil
}

func (d *DlibDescriber) Descriptor(ctx context.Context, imgBytes []byte) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	found, err := d.recognizer.RecognizeSingle(imgBytes)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "face recognition failed")
	}
	if found == nil {
		return nil, dErrors.New(dErrors.CodeFaceNotDetected, "no face detected")
	}

	descriptor := make([]float32, len(found.Descriptor))
	copy(descriptor, found.Descriptor[:])
	return descriptor, nil
}

func (d *DlibDescriber) Close() {
	d.recognizer.Close()
}

// Disabled stands in when no face recognition models are installed. Every
// comparison reports no detectable face, so auto-triggered matches route
// submissions to manual review instead of wedging the pipeline.
type Disabled struct{}

func (Disabled) Descriptor(context.Context, []byte) ([]float32, error) {
	return nil, dErrors.New(dErrors.CodeFaceNotDetected, "face recognition is not available")
}
