package extraction

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"

	"github.com/otiai10/gosseract/v2"
)

// TesseractRecognizer runs Tesseract through gosseract. A fresh client per
// call keeps the recognizer safe for concurrent requests; client reuse is not
// worth the locking for the request rates this pipeline sees.
type TesseractRecognizer struct {
	language string
}

func NewTesseractRecognizer() *TesseractRecognizer {
	return &TesseractRecognizer{language: "eng"}
}

func (r *TesseractRecognizer) Recognize(ctx context.Context, img image.Image) (string, float64, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", 0, fmt.Errorf("encode working image: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(r.language); err != nil {
		return "", 0, fmt.Errorf("set recognizer language: %w", err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", 0, fmt.Errorf("load working image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", 0, fmt.Errorf("recognize text: %w", err)
	}

	// Mean word confidence stands in for a document-level score.
	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil || len(boxes) == 0 {
		return text, 0, nil
	}
	var sum float64
	for _, box := range boxes {
		sum += box.Confidence
	}
	return text, sum / float64(len(boxes)), nil
}
