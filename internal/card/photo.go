package card

import (
	"image"
	"math"
)

// Slot identifies one of the two photo positions on the card.
type Slot int

const (
	Slot1 Slot = iota
	Slot2
)

// slotCount is the number of photo positions on a card.
const slotCount = 2

// Slots lists every slot in layout order.
var Slots = [slotCount]Slot{Slot1, Slot2}

func (s Slot) String() string {
	switch s {
	case Slot1:
		return "photo1"
	case Slot2:
		return "photo2"
	default:
		return "photo?"
	}
}

// Valid reports whether s names a real slot.
func (s Slot) Valid() bool {
	return s == Slot1 || s == Slot2
}

// PhotoSnapshot is an immutable copy of one slot's photo edit state.
// Image is shared, not copied: images are never mutated after assignment.
type PhotoSnapshot struct {
	Image      image.Image
	Offset     Size
	Scale      float64
	CoverScale float64
}

// HasImage reports whether the snapshot carries an image.
func (p PhotoSnapshot) HasImage() bool { return p.Image != nil }

// PhotoEditState is the live edit state of one photo slot.
type PhotoEditState struct {
	box        Size
	image      image.Image
	offset     Size
	scale      float64
	coverScale float64
}

// NewPhotoEditState creates an empty slot for a box of the given size.
func NewPhotoEditState(box Size) *PhotoEditState {
	return &PhotoEditState{box: box, scale: 1}
}

// Box returns the print box this slot fills.
func (p *PhotoEditState) Box() Size { return p.box }

// Image returns the current image, or nil for an empty slot.
func (p *PhotoEditState) Image() image.Image { return p.image }

// HasImage reports whether an image is assigned.
func (p *PhotoEditState) HasImage() bool { return p.image != nil }

// Offset returns the pan offset from the box centre.
func (p *PhotoEditState) Offset() Size { return p.offset }

// Scale returns the user zoom multiplier applied on top of the cover scale.
func (p *PhotoEditState) Scale() float64 { return p.scale }

// CoverScale returns the cached scale at which the image exactly covers the box.
func (p *PhotoEditState) CoverScale() float64 { return p.coverScale }

// SetImage assigns img, computes its cover scale, and resets pan and zoom.
func (p *PhotoEditState) SetImage(img image.Image) {
	if img == nil {
		p.Clear()
		return
	}
	p.image = img
	p.coverScale = CoverScale(imageSize(img), p.box)
	p.offset = Size{}
	p.scale = 1
}

// Clear empties the slot.
func (p *PhotoEditState) Clear() {
	p.image = nil
	p.offset = Size{}
	p.scale = 1
	p.coverScale = 0
}

// Pan sets the offset produced by a drag gesture.
func (p *PhotoEditState) Pan(offset Size) { p.offset = offset }

// Zoom sets the user scale produced by a pinch gesture.
func (p *PhotoEditState) Zoom(scale float64) { p.scale = scale }

// SnapToEdges corrects scale and offset after a gesture ends so the image
// covers the whole box with no gaps at its edges.
func (p *PhotoEditState) SnapToEdges() {
	if p.image == nil {
		return
	}
	if p.scale < 1 || math.IsNaN(p.scale) {
		p.scale = 1
	}
	rendered := p.RenderedSize()
	maxX := math.Max(0, (rendered.Width-p.box.Width)/2)
	maxY := math.Max(0, (rendered.Height-p.box.Height)/2)
	p.offset.Width = math.Max(-maxX, math.Min(maxX, p.offset.Width))
	p.offset.Height = math.Max(-maxY, math.Min(maxY, p.offset.Height))
}

// RenderedSize returns the image size after cover and user scaling.
func (p *PhotoEditState) RenderedSize() Size {
	if p.image == nil {
		return Size{}
	}
	s := imageSize(p.image)
	k := p.coverScale * p.scale
	return Size{Width: s.Width * k, Height: s.Height * k}
}

// Snapshot copies the current state.
func (p *PhotoEditState) Snapshot() PhotoSnapshot {
	return PhotoSnapshot{
		Image:      p.image,
		Offset:     p.offset,
		Scale:      p.scale,
		CoverScale: p.coverScale,
	}
}

// Restore replaces the current state with snap. The cover scale is taken from
// the snapshot as recorded.
func (p *PhotoEditState) Restore(snap PhotoSnapshot) {
	if snap.Image == nil {
		p.Clear()
		return
	}
	p.image = snap.Image
	p.offset = snap.Offset
	p.scale = snap.Scale
	p.coverScale = snap.CoverScale
}

func imageSize(img image.Image) Size {
	b := img.Bounds()
	return Size{Width: float64(b.Dx()), Height: float64(b.Dy())}
}
