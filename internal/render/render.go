// Package render composes the printable card: both photos in their boxes
// with their decoration layers on top.
package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"pfoca/internal/card"
	"pfoca/internal/config"
)

// FontSource loads cached fonts for text items.
type FontSource interface {
	Load(f card.FontInfo) (*truetype.Font, error)
}

// Composer renders workspace snapshots onto a card laid out as
//
//	margin | box1 | gap | box2 | margin
//
// horizontally, with margin above and below the boxes.
type Composer struct {
	layout   config.LayoutConfig
	fonts    FontSource
	fallback *truetype.Font
	logger   card.Logger
}

// NewComposer creates a composer. fonts may be nil, in which case every text
// item uses the built-in Go Regular face.
func NewComposer(layout config.LayoutConfig, fonts FontSource, logger card.Logger) (*Composer, error) {
	fallback, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse fallback font: %w", err)
	}
	if logger == nil {
		logger = card.NewNopLogger()
	}
	return &Composer{layout: layout, fonts: fonts, fallback: fallback, logger: logger}, nil
}

// Box returns the photo box size.
func (c *Composer) Box() card.Size {
	return card.Size{Width: c.layout.BoxWidth, Height: c.layout.BoxHeight}
}

// Bounds returns the card size in pixels (one pixel per point).
func (c *Composer) Bounds() (width, height int) {
	l := c.layout
	return int(2*l.BoxWidth + l.Gap + 2*l.Margin), int(l.BoxHeight + 2*l.Margin)
}

func (c *Composer) boxOrigin(s card.Slot) (x, y float64) {
	l := c.layout
	return l.Margin + float64(s)*(l.BoxWidth+l.Gap), l.Margin
}

// Render draws snap on a white card. Empty slots stay white; detached or
// hidden layers are skipped.
func (c *Composer) Render(snap card.WorkspaceSnapshot) (image.Image, error) {
	w, h := c.Bounds()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("invalid layout %+v", c.layout)
	}
	dc := gg.NewContext(w, h)
	dc.SetColor(color.White)
	dc.Clear()

	for _, s := range card.Slots {
		x, y := c.boxOrigin(s)

		dc.Push()
		dc.DrawRectangle(x, y, c.layout.BoxWidth, c.layout.BoxHeight)
		dc.Clip()
		c.drawPhoto(dc, snap.Photos[s], x, y)
		if layer := snap.Layers[s]; layer.Attached && layer.Visible {
			c.drawLayer(dc, layer, x, y)
		}
		dc.ResetClip()
		dc.Pop()
	}
	return dc.Image(), nil
}

func (c *Composer) drawPhoto(dc *gg.Context, p card.PhotoSnapshot, x, y float64) {
	if !p.HasImage() {
		return
	}
	b := p.Image.Bounds()
	scale := p.CoverScale * p.Scale
	if scale <= 0 {
		scale = card.CoverScale(card.Size{Width: float64(b.Dx()), Height: float64(b.Dy())}, c.Box())
	}

	dc.Push()
	dc.Translate(x+c.layout.BoxWidth/2+p.Offset.Width, y+c.layout.BoxHeight/2+p.Offset.Height)
	dc.Scale(scale, scale)
	dc.DrawImageAnchored(p.Image, 0, 0, 0.5, 0.5)
	dc.Pop()
}

func (c *Composer) drawLayer(dc *gg.Context, layer card.LayerSnapshot, x, y float64) {
	for _, s := range layer.Stickers {
		if err := c.drawSticker(dc, s, x, y); err != nil {
			c.logger.Warn("skipping sticker", "id", s.ID.String(), "error", err)
		}
	}
	for _, t := range layer.Texts {
		c.drawText(dc, t, x, y)
	}
}

func (c *Composer) drawSticker(dc *gg.Context, s card.StickerItem, x, y float64) error {
	img, _, err := image.Decode(bytes.NewReader(s.Image))
	if err != nil {
		return err
	}
	iw := float64(img.Bounds().Dx())
	if iw == 0 || s.Size <= 0 {
		return nil
	}
	k := s.Size / iw

	dc.Push()
	dc.Translate(x+s.Position.X, y+s.Position.Y)
	dc.Rotate(s.Rotation.Radians())
	dc.Scale(k, k)
	dc.DrawImageAnchored(img, 0, 0, 0.5, 0.5)
	dc.Pop()
	return nil
}

// drawText renders plain, stroke and highlight styles. The remaining styles
// are drawn as plain text.
func (c *Composer) drawText(dc *gg.Context, t card.TextItem, x, y float64) {
	size := t.FontSize * t.Scale
	if size <= 0 || t.Text == "" {
		return
	}
	face := truetype.NewFace(c.font(t.Font), &truetype.Options{Size: size, Hinting: font.HintingFull})
	defer face.Close()

	dc.Push()
	defer dc.Pop()
	dc.SetFontFace(face)
	dc.Translate(x+t.Position.X, y+t.Position.Y)
	dc.Rotate(t.Rotation.Radians())

	switch t.Style {
	case card.TextHighlight:
		if t.HighlightColor != nil {
			w, h := dc.MeasureString(t.Text)
			inset := t.HighlightInset
			dc.SetColor(*t.HighlightColor)
			dc.DrawRoundedRectangle(-w/2-inset, -h/2-inset, w+2*inset, h+2*inset, h/4)
			dc.Fill()
		}
	case card.TextStroke:
		d := size / 16
		dc.SetColor(t.StrokeColor)
		for _, o := range [][2]float64{{-d, -d}, {0, -d}, {d, -d}, {-d, 0}, {d, 0}, {-d, d}, {0, d}, {d, d}} {
			dc.DrawStringAnchored(t.Text, o[0], o[1], 0.5, 0.5)
		}
	}

	dc.SetColor(t.TextColor)
	dc.DrawStringAnchored(t.Text, 0, 0, 0.5, 0.5)
}

func (c *Composer) font(f *card.FontInfo) *truetype.Font {
	if f == nil || c.fonts == nil {
		return c.fallback
	}
	ft, err := c.fonts.Load(*f)
	if err != nil {
		c.logger.Debug("font unavailable, using fallback", "font", f.Name, "error", err)
		return c.fallback
	}
	return ft
}

// EncodePNG writes img to w as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encoding png: %w", err)
	}
	return nil
}
