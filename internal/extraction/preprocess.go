package extraction

import (
	"image"

	"github.com/disintegration/imaging"
)

// maxWorkingDimension caps the longer side before recognition. Larger scans
// are downscaled proportionally; aspect ratio is always preserved.
const maxWorkingDimension = 2048

// preprocess normalizes a noisy photographed document for the recognizer:
// grayscale, contrast normalization, sharpening, then a proportional downscale
// when either side exceeds the working maximum.
func preprocess(img image.Image) *image.NRGBA {
	out := imaging.Grayscale(img)
	out = imaging.AdjustContrast(out, 20)
	out = imaging.Sharpen(out, 1.0)

	bounds := out.Bounds()
	if bounds.Dx() > maxWorkingDimension || bounds.Dy() > maxWorkingDimension {
		out = imaging.Fit(out, maxWorkingDimension, maxWorkingDimension, imaging.Lanczos)
	}
	return out
}
