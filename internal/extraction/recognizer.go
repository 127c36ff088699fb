package extraction

import (
	"context"
	"image"
)

// Recognizer is the optical text recognition port. Implementations return the
// raw recognized text and a self-reported confidence in [0,100].
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image) (text string, confidence float64, err error)
}
