// Package archive implements the .pfp project archive: a zip file holding
// meta.json and one JPEG per photo slot.
//
//	meta.json    # slot metadata, offsets in x/y form
//	photo1.jpg
//	photo2.jpg
//
// Writes go through a staging directory that is always removed afterwards.
// Reads extract into a fresh directory per call, below the codec's temp root.
package archive

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"pfoca/internal/card"
)

const (
	// FormatVersion is the meta.json version written by this codec.
	FormatVersion = 1

	metaName = "meta.json"
)

// assetNames are the archive entry names of the two photo slots.
var assetNames = [...]string{
	card.Slot1: "photo1.jpg",
	card.Slot2: "photo2.jpg",
}

// slotMeta is one slot in meta.json.
type slotMeta struct {
	FilePath   string     `json:"filePath"`
	Offset     card.Point `json:"offset"`
	Scale      float64    `json:"scale"`
	CoverScale float64    `json:"coverScale"`
}

// projectMeta is the content of meta.json.
type projectMeta struct {
	Version int       `json:"version,omitempty"`
	Photo1  slotMeta  `json:"photo1"`
	Photo2  slotMeta  `json:"photo2"`
	SavedAt time.Time `json:"savedAt"`
}

func (m *projectMeta) slot(s card.Slot) *slotMeta {
	if s == card.Slot1 {
		return &m.Photo1
	}
	return &m.Photo2
}

// Codec is the archive implementation of card.Archiver.
type Codec struct {
	images  card.ImageCodec
	tempDir string
}

var _ card.Archiver = (*Codec)(nil)

// NewCodec creates a codec that encodes photos with images and stages and
// extracts archives below tempDir. An empty tempDir means os.TempDir().
func NewCodec(images card.ImageCodec, tempDir string) *Codec {
	return &Codec{images: images, tempDir: tempDir}
}

func (c *Codec) tempRoot() string {
	if c.tempDir == "" {
		return os.TempDir()
	}
	return c.tempDir
}

// Write stages the project in a temporary directory and streams it to w as
// a zip archive. The staging directory is removed whether or not the write
// succeeds.
func (c *Codec) Write(project *card.Project, w io.Writer) error {
	for _, s := range card.Slots {
		if !project.Photos[s].HasImage() {
			return card.ErrNoPhotosSelected
		}
	}

	if err := os.MkdirAll(c.tempRoot(), 0755); err != nil {
		return fmt.Errorf("%w: creating temp root: %w", card.ErrArchiveWrite, err)
	}
	stage, err := os.MkdirTemp(c.tempRoot(), "pfoca-save-*")
	if err != nil {
		return fmt.Errorf("%w: creating staging directory: %w", card.ErrArchiveWrite, err)
	}
	defer os.RemoveAll(stage)

	meta := projectMeta{Version: FormatVersion, SavedAt: project.SavedAt.UTC()}
	for _, s := range card.Slots {
		photo := project.Photos[s]
		if err := c.writeImage(filepath.Join(stage, assetNames[s]), photo); err != nil {
			return fmt.Errorf("%w: %s: %w", card.ErrArchiveWrite, assetNames[s], err)
		}
		*meta.slot(s) = slotMeta{
			FilePath:   assetNames[s],
			Offset:     card.OffsetToPoint(photo.Offset),
			Scale:      photo.Scale,
			CoverScale: photo.CoverScale,
		}
	}

	if err := writeMeta(filepath.Join(stage, metaName), &meta); err != nil {
		return fmt.Errorf("%w: %s: %w", card.ErrArchiveWrite, metaName, err)
	}

	if err := zipDirectory(stage, w); err != nil {
		return fmt.Errorf("%w: compressing: %w", card.ErrArchiveWrite, err)
	}
	return nil
}

func (c *Codec) writeImage(path string, photo card.PhotoSnapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := c.images.EncodeJPEG(f, photo.Image); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeMeta(path string, meta *projectMeta) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Read extracts the archive into a new directory, decodes meta.json and then
// each slot's image independently. The extraction directory is left in
// place; it is unique to this call.
func (c *Codec) Read(data []byte) (*card.LoadedProject, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", card.ErrArchiveRead, err)
	}

	dir := filepath.Join(c.tempRoot(), "pfoca-load-"+uuid.NewString())
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("%w: creating extraction directory: %w", card.ErrArchiveRead, err)
	}
	if err := extract(zr, dir); err != nil {
		return nil, fmt.Errorf("%w: %w", card.ErrArchiveRead, err)
	}

	meta, err := readMeta(filepath.Join(dir, metaName))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", card.ErrMetadataDecode, err)
	}

	loaded := &card.LoadedProject{SavedAt: meta.SavedAt}
	for _, s := range card.Slots {
		sm := meta.slot(s)
		img, err := c.readImage(dir, sm.FilePath)
		if err != nil {
			loaded.Slots[s].Err = fmt.Errorf("%w: %s: %w", card.ErrAssetDecode, sm.FilePath, err)
			continue
		}
		scale := sm.Scale
		if scale == 0 {
			scale = 1
		}
		loaded.Slots[s].Photo = card.PhotoSnapshot{
			Image:      img,
			Offset:     card.PointToOffset(sm.Offset),
			Scale:      scale,
			CoverScale: sm.CoverScale,
		}
	}
	return loaded, nil
}

func readMeta(path string) (*projectMeta, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", metaName, err)
	}
	var meta projectMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", metaName, err)
	}
	if meta.Version > FormatVersion {
		return nil, fmt.Errorf("unsupported archive version %d (newest known is %d)", meta.Version, FormatVersion)
	}
	return &meta, nil
}

func (c *Codec) readImage(dir, rel string) (image.Image, error) {
	path, err := resolveAsset(dir, rel)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return c.images.Decode(f)
}

// resolveAsset joins a meta.json file path onto the extraction directory,
// refusing paths that leave it.
func resolveAsset(dir, rel string) (string, error) {
	if rel == "" {
		return "", fmt.Errorf("missing file path")
	}
	clean := SanitizePath(rel)
	if clean != strings.TrimPrefix(filepath.ToSlash(rel), "./") {
		return "", fmt.Errorf("invalid file path: %q", rel)
	}
	return filepath.Join(dir, filepath.FromSlash(clean)), nil
}
