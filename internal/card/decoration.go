package card

import (
	"time"

	"github.com/google/uuid"
)

// LayerSnapshot is an immutable copy of a decoration layer's persisted state.
// Selection is editing-only state and is not part of it.
type LayerSnapshot struct {
	Attached bool          `json:"isAttached"`
	Visible  bool          `json:"isVisible"`
	Stickers []StickerItem `json:"stickers"`
	Texts    []TextItem    `json:"texts"`
}

// DecorationLayer is a named, saved copy of a layer's items kept in the
// layer library independently of any live layer.
type DecorationLayer struct {
	ID        uuid.UUID     `json:"id"`
	Name      string        `json:"name"`
	Stickers  []StickerItem `json:"stickers"`
	Texts     []TextItem    `json:"texts"`
	CreatedAt time.Time     `json:"createdAt"`
}

// DecorationLayerState is the live overlay ("top-loader") of one photo slot.
type DecorationLayerState struct {
	attached bool
	visible  bool
	stickers []StickerItem
	texts    []TextItem
	selected *uuid.UUID
}

// NewDecorationLayerState creates a detached, empty layer.
func NewDecorationLayerState() *DecorationLayerState {
	return &DecorationLayerState{}
}

// IsAttached reports whether the layer is attached to its photo.
func (l *DecorationLayerState) IsAttached() bool { return l.attached }

// IsVisible reports whether the layer is shown.
func (l *DecorationLayerState) IsVisible() bool { return l.visible }

// Attach attaches the layer and makes it visible.
func (l *DecorationLayerState) Attach() {
	l.attached = true
	l.visible = true
}

// Detach clears attachment, visibility, items and selection in one step.
func (l *DecorationLayerState) Detach() {
	*l = DecorationLayerState{}
}

// SetVisible shows or hides an attached layer.
func (l *DecorationLayerState) SetVisible(v bool) { l.visible = v }

// Stickers returns a copy of the sticker items in z-order.
func (l *DecorationLayerState) Stickers() []StickerItem { return cloneStickers(l.stickers) }

// Texts returns a copy of the text items in z-order.
func (l *DecorationLayerState) Texts() []TextItem { return cloneTexts(l.texts) }

// Len returns the total number of items on the layer.
func (l *DecorationLayerState) Len() int { return len(l.stickers) + len(l.texts) }

// AddSticker appends s on top of the existing stickers and returns its ID.
// A zero ID is replaced with a fresh one.
func (l *DecorationLayerState) AddSticker(s StickerItem) uuid.UUID {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	l.stickers = append(l.stickers, s.Clone())
	return s.ID
}

// AddText appends t on top of the existing texts and returns its ID.
// A zero ID is replaced with a fresh one.
func (l *DecorationLayerState) AddText(t TextItem) uuid.UUID {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	l.texts = append(l.texts, t.Clone())
	return t.ID
}

// Sticker returns a copy of the sticker with the given ID.
func (l *DecorationLayerState) Sticker(id uuid.UUID) (StickerItem, bool) {
	if i := l.stickerIndex(id); i >= 0 {
		return l.stickers[i].Clone(), true
	}
	return StickerItem{}, false
}

// Text returns a copy of the text item with the given ID.
func (l *DecorationLayerState) Text(id uuid.UUID) (TextItem, bool) {
	if i := l.textIndex(id); i >= 0 {
		return l.texts[i].Clone(), true
	}
	return TextItem{}, false
}

// UpdateSticker mutates the sticker with the given ID in place.
// The ID itself cannot be changed. Returns false if no such sticker exists.
func (l *DecorationLayerState) UpdateSticker(id uuid.UUID, fn func(*StickerItem)) bool {
	i := l.stickerIndex(id)
	if i < 0 {
		return false
	}
	fn(&l.stickers[i])
	l.stickers[i].ID = id
	return true
}

// UpdateText mutates the text item with the given ID in place.
// The ID itself cannot be changed. Returns false if no such item exists.
func (l *DecorationLayerState) UpdateText(id uuid.UUID, fn func(*TextItem)) bool {
	i := l.textIndex(id)
	if i < 0 {
		return false
	}
	fn(&l.texts[i])
	l.texts[i].ID = id
	return true
}

// Remove deletes the sticker or text with the given ID, clearing the
// selection if it pointed at it.
func (l *DecorationLayerState) Remove(id uuid.UUID) bool {
	removed := false
	if i := l.stickerIndex(id); i >= 0 {
		l.stickers = append(l.stickers[:i], l.stickers[i+1:]...)
		removed = true
	} else if i := l.textIndex(id); i >= 0 {
		l.texts = append(l.texts[:i], l.texts[i+1:]...)
		removed = true
	}
	if removed && l.selected != nil && *l.selected == id {
		l.selected = nil
	}
	return removed
}

// BringToFront moves the item with the given ID to the top of its collection.
func (l *DecorationLayerState) BringToFront(id uuid.UUID) bool {
	if i := l.stickerIndex(id); i >= 0 {
		s := l.stickers[i]
		l.stickers = append(append(l.stickers[:i], l.stickers[i+1:]...), s)
		return true
	}
	if i := l.textIndex(id); i >= 0 {
		t := l.texts[i]
		l.texts = append(append(l.texts[:i], l.texts[i+1:]...), t)
		return true
	}
	return false
}

// Select marks the item with the given ID as selected.
// Returns false and leaves the selection unchanged if no such item exists.
func (l *DecorationLayerState) Select(id uuid.UUID) bool {
	if l.stickerIndex(id) < 0 && l.textIndex(id) < 0 {
		return false
	}
	l.selected = &id
	return true
}

// Deselect clears the selection.
func (l *DecorationLayerState) Deselect() { l.selected = nil }

// Selected returns the selected item ID, if any.
func (l *DecorationLayerState) Selected() (uuid.UUID, bool) {
	if l.selected == nil {
		return uuid.Nil, false
	}
	return *l.selected, true
}

// Snapshot deep-copies the persisted state of the layer.
func (l *DecorationLayerState) Snapshot() LayerSnapshot {
	return LayerSnapshot{
		Attached: l.attached,
		Visible:  l.visible,
		Stickers: cloneStickers(l.stickers),
		Texts:    cloneTexts(l.texts),
	}
}

// Restore replaces the whole layer with a deep copy of snap and clears the selection.
func (l *DecorationLayerState) Restore(snap LayerSnapshot) {
	*l = DecorationLayerState{
		attached: snap.Attached,
		visible:  snap.Visible,
		stickers: cloneStickers(snap.Stickers),
		texts:    cloneTexts(snap.Texts),
	}
}

// Apply replaces the layer's items with deep copies of a saved layer's items
// and clears the selection. Attachment and visibility are left as they are.
func (l *DecorationLayerState) Apply(layer DecorationLayer) {
	l.stickers = cloneStickers(layer.Stickers)
	l.texts = cloneTexts(layer.Texts)
	l.selected = nil
}

func (l *DecorationLayerState) stickerIndex(id uuid.UUID) int {
	for i := range l.stickers {
		if l.stickers[i].ID == id {
			return i
		}
	}
	return -1
}

func (l *DecorationLayerState) textIndex(id uuid.UUID) int {
	for i := range l.texts {
		if l.texts[i].ID == id {
			return i
		}
	}
	return -1
}
