package card

import (
	"bytes"
	"fmt"

	"github.com/google/uuid"
)

// StickerItem is an image placed on a decoration layer.
// Items are identified by ID; two items with the same ID are the same item.
type StickerItem struct {
	ID       uuid.UUID `json:"id"`
	Position Point     `json:"position"`
	Size     float64   `json:"size"`
	Rotation Angle     `json:"rotation"`
	Image    []byte    `json:"imageData"` // encoded image bytes; base64 in JSON
}

// Clone returns a deep copy of the sticker.
func (s StickerItem) Clone() StickerItem {
	s.Image = bytes.Clone(s.Image)
	return s
}

// TextStyle is the visual variant applied to a text item.
type TextStyle int

const (
	TextPlain TextStyle = iota
	TextStroke
	TextInlineStroke
	TextShadow
	TextBlur
	TextHighlight
)

var textStyleNames = [...]string{
	TextPlain:        "plain",
	TextStroke:       "stroke",
	TextInlineStroke: "inlineStroke",
	TextShadow:       "shadow",
	TextBlur:         "blur",
	TextHighlight:    "highlight",
}

func (s TextStyle) String() string {
	if s < 0 || int(s) >= len(textStyleNames) {
		return fmt.Sprintf("TextStyle(%d)", int(s))
	}
	return textStyleNames[s]
}

// ParseTextStyle returns the style with the given name.
func ParseTextStyle(name string) (TextStyle, error) {
	for i, n := range textStyleNames {
		if n == name {
			return TextStyle(i), nil
		}
	}
	return TextPlain, fmt.Errorf("unknown text style: %q", name)
}

func (s TextStyle) MarshalText() ([]byte, error) {
	if s < 0 || int(s) >= len(textStyleNames) {
		return nil, fmt.Errorf("unknown text style: %d", int(s))
	}
	return []byte(textStyleNames[s]), nil
}

func (s *TextStyle) UnmarshalText(b []byte) error {
	style, err := ParseTextStyle(string(b))
	if err != nil {
		return err
	}
	*s = style
	return nil
}

// FontInfo references a downloadable font family.
type FontInfo struct {
	Name        string `json:"name"`        // unique key, e.g. PostScript name
	DisplayName string `json:"displayName"` // shown in the font picker
	File        string `json:"file"`        // file name relative to the font source
}

// TextItem is a styled text placed on a decoration layer.
type TextItem struct {
	ID             uuid.UUID `json:"id"`
	Text           string    `json:"text"`
	FontSize       float64   `json:"fontSize"`
	TextColor      Color     `json:"textColor"`
	Style          TextStyle `json:"style"`
	StrokeColor    Color     `json:"strokeColor"`
	Font           *FontInfo `json:"fontRef,omitempty"`
	HighlightColor *Color    `json:"highlightColor,omitempty"`
	Position       Point     `json:"position"`
	Rotation       Angle     `json:"rotation"`
	Scale          float64   `json:"scale"`
	HighlightInset float64   `json:"highlightInset"`
}

// Clone returns a deep copy of the text item.
func (t TextItem) Clone() TextItem {
	if t.Font != nil {
		f := *t.Font
		t.Font = &f
	}
	if t.HighlightColor != nil {
		c := *t.HighlightColor
		t.HighlightColor = &c
	}
	return t
}

// NewTextItem returns a plain black text item with the usual defaults.
func NewTextItem(text string, position Point) TextItem {
	return TextItem{
		Text:        text,
		FontSize:    32,
		TextColor:   Black,
		Style:       TextPlain,
		StrokeColor: White,
		Position:    position,
		Scale:       1,
	}
}

func cloneStickers(in []StickerItem) []StickerItem {
	out := make([]StickerItem, len(in))
	for i, s := range in {
		out[i] = s.Clone()
	}
	return out
}

func cloneTexts(in []TextItem) []TextItem {
	out := make([]TextItem, len(in))
	for i, t := range in {
		out[i] = t.Clone()
	}
	return out
}
