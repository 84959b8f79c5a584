package card

import (
	"image"
	"io"
)

// ImageCodec encodes photos for archiving and decodes them back.
// Implementations must not downsample.
type ImageCodec interface {
	// EncodeJPEG writes img to w as a JPEG at maximum quality.
	EncodeJPEG(w io.Writer, img image.Image) error

	// Decode reads an encoded image from r.
	Decode(r io.Reader) (image.Image, error)
}
