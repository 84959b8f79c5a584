package render

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/golang/freetype/truetype"

	"pfoca/internal/card"
	"pfoca/internal/config"
)

var testLayout = config.LayoutConfig{BoxWidth: 100, BoxHeight: 80, Margin: 10, Gap: 20}

func solid(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func photo(img image.Image, box card.Size) card.PhotoSnapshot {
	b := img.Bounds()
	return card.PhotoSnapshot{
		Image:      img,
		Scale:      1,
		CoverScale: card.CoverScale(card.Size{Width: float64(b.Dx()), Height: float64(b.Dy())}, box),
	}
}

func near(c color.Color, r, g, b uint8) bool {
	cr, cg, cb, _ := c.RGBA()
	diff := func(a uint32, b uint8) bool {
		d := int(a>>8) - int(b)
		return d > -8 && d < 8
	}
	return diff(cr, r) && diff(cg, g) && diff(cb, b)
}

func newComposer(t *testing.T, fonts FontSource) *Composer {
	t.Helper()
	c, err := NewComposer(testLayout, fonts, nil)
	if err != nil {
		t.Fatalf("NewComposer() error = %v", err)
	}
	return c
}

func TestComposer_Bounds(t *testing.T) {
	w, h := newComposer(t, nil).Bounds()
	if w != 240 || h != 100 {
		t.Errorf("Bounds() = %dx%d, want 240x100", w, h)
	}
}

func TestComposer_Render(t *testing.T) {
	c := newComposer(t, nil)
	box := c.Box()

	var snap card.WorkspaceSnapshot
	snap.Photos[card.Slot1] = photo(solid(10, 10, color.RGBA{R: 255, A: 255}), box)
	snap.Photos[card.Slot2] = photo(solid(20, 10, color.RGBA{B: 255, A: 255}), box)

	img, err := c.Render(snap)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	tests := []struct {
		name    string
		x, y    int
		r, g, b uint8
	}{
		{"margin", 5, 5, 255, 255, 255},
		{"gap", 120, 50, 255, 255, 255},
		{"photo1 centre", 60, 50, 255, 0, 0},
		{"photo1 corner", 12, 12, 255, 0, 0},
		{"photo2 centre", 180, 50, 0, 0, 255},
		{"photo2 corner", 227, 87, 0, 0, 255},
	}
	for _, tt := range tests {
		if got := img.At(tt.x, tt.y); !near(got, tt.r, tt.g, tt.b) {
			t.Errorf("%s: pixel (%d,%d) = %v, want (%d,%d,%d)", tt.name, tt.x, tt.y, got, tt.r, tt.g, tt.b)
		}
	}
}

func TestComposer_RenderOffsetRevealsNothingOutsideBox(t *testing.T) {
	c := newComposer(t, nil)
	box := c.Box()

	var snap card.WorkspaceSnapshot
	p := photo(solid(10, 10, color.RGBA{G: 255, A: 255}), box)
	p.Offset = card.Size{Width: 500, Height: 0}
	snap.Photos[card.Slot1] = p

	img, err := c.Render(snap)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	// Pushed fully right: the box is empty and nothing spills into slot 2.
	for _, pt := range []image.Point{{60, 50}, {180, 50}} {
		if got := img.At(pt.X, pt.Y); !near(got, 255, 255, 255) {
			t.Errorf("pixel %v = %v, want white", pt, got)
		}
	}
}

func TestComposer_RenderLayer(t *testing.T) {
	c := newComposer(t, nil)

	var stickerPNG bytes.Buffer
	if err := png.Encode(&stickerPNG, solid(4, 4, color.RGBA{R: 255, G: 255, A: 255})); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}
	layer := card.LayerSnapshot{
		Attached: true,
		Visible:  true,
		Stickers: []card.StickerItem{{Position: card.Point{X: 50, Y: 40}, Size: 20, Image: stickerPNG.Bytes()}},
		Texts:    []card.TextItem{card.NewTextItem("hi", card.Point{X: 20, Y: 20})},
	}

	t.Run("visible layer is drawn", func(t *testing.T) {
		var snap card.WorkspaceSnapshot
		snap.Layers[card.Slot1] = layer
		img, err := c.Render(snap)
		if err != nil {
			t.Fatalf("Render() error = %v", err)
		}
		if got := img.At(60, 50); !near(got, 255, 255, 0) {
			t.Errorf("sticker pixel = %v, want yellow", got)
		}
	})

	t.Run("hidden layer is skipped", func(t *testing.T) {
		var snap card.WorkspaceSnapshot
		hidden := layer
		hidden.Visible = false
		snap.Layers[card.Slot1] = hidden
		img, err := c.Render(snap)
		if err != nil {
			t.Fatalf("Render() error = %v", err)
		}
		if got := img.At(60, 50); !near(got, 255, 255, 255) {
			t.Errorf("pixel = %v, want white", got)
		}
	})

	t.Run("bad sticker bytes are skipped", func(t *testing.T) {
		var snap card.WorkspaceSnapshot
		broken := layer
		broken.Stickers = []card.StickerItem{{Position: card.Point{X: 50, Y: 40}, Size: 20, Image: []byte("nope")}}
		snap.Layers[card.Slot1] = broken
		if _, err := c.Render(snap); err != nil {
			t.Fatalf("Render() error = %v", err)
		}
	})
}

type failingFonts struct{ calls int }

func (f *failingFonts) Load(card.FontInfo) (*truetype.Font, error) {
	f.calls++
	return nil, errors.New("not cached")
}

func TestComposer_FontFallback(t *testing.T) {
	fonts := &failingFonts{}
	c := newComposer(t, fonts)

	text := card.NewTextItem("styled", card.Point{X: 50, Y: 40})
	text.Font = &card.FontInfo{Name: "missing", File: "missing.ttf"}
	text.Style = card.TextStroke

	var snap card.WorkspaceSnapshot
	snap.Layers[card.Slot2] = card.LayerSnapshot{Attached: true, Visible: true, Texts: []card.TextItem{text}}
	if _, err := c.Render(snap); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if fonts.calls != 1 {
		t.Errorf("font source calls = %d, want 1", fonts.calls)
	}
}

func TestEncodePNG(t *testing.T) {
	var buf bytes.Buffer
	if err := EncodePNG(&buf, solid(3, 3, color.Black)); err != nil {
		t.Fatalf("EncodePNG() error = %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("png.Decode() error = %v", err)
	}
	if img.Bounds().Dx() != 3 {
		t.Errorf("width = %d, want 3", img.Bounds().Dx())
	}
}
