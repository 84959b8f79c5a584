package testutil

import (
	"image"
	"image/color"
)

// NewTestImage returns an opaque w x h gradient. Distinct sizes give
// distinct images, so tests can tell slots apart by their bounds.
func NewTestImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 255 / max(w, 1)), G: uint8(y * 255 / max(h, 1)), B: 96, A: 255})
		}
	}
	return img
}
