// Package imaging encodes and decodes the photos held in project archives.
package imaging

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"os"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"pfoca/internal/card"
)

// MaxQuality is the JPEG quality used for archived photos.
const MaxQuality = 100

// Codec is the card.ImageCodec used for archives. Photos are written at
// full resolution; translucent pixels are flattened onto white first since
// JPEG has no alpha channel.
type Codec struct {
	Quality int
}

var _ card.ImageCodec = (*Codec)(nil)

// NewCodec returns a codec writing JPEGs at MaxQuality.
func NewCodec() *Codec {
	return &Codec{Quality: MaxQuality}
}

func (c *Codec) EncodeJPEG(w io.Writer, img image.Image) error {
	if img == nil {
		return fmt.Errorf("no image to encode")
	}
	if err := jpeg.Encode(w, flatten(img), &jpeg.Options{Quality: c.Quality}); err != nil {
		return fmt.Errorf("encoding jpeg: %w", err)
	}
	return nil
}

func (c *Codec) Decode(r io.Reader) (image.Image, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	if b := img.Bounds(); b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("decoding image: empty %s image", format)
	}
	return img, nil
}

// DecodeFile reads any supported image format (JPEG, PNG, GIF, BMP, TIFF,
// WebP) from path.
func (c *Codec) DecodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, err := c.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

// flatten composites img over an opaque white background. Opaque images are
// returned unchanged.
func flatten(img image.Image) image.Image {
	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		return img
	}
	b := img.Bounds()
	dst := image.NewRGBA(b)
	draw.Draw(dst, b, &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.Draw(dst, b, img, b.Min, draw.Over)
	return dst
}
