package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"pfoca/internal/card"
	"pfoca/internal/imaging"
)

func newGradient(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	return img
}

func testProject() *card.Project {
	return &card.Project{
		Photos: [2]card.PhotoSnapshot{
			{Image: newGradient(40, 30), Offset: card.Size{Width: 12.5, Height: -3.25}, Scale: 1.75, CoverScale: 10},
			{Image: newGradient(30, 60), Offset: card.Size{Width: -7, Height: 4.125}, Scale: 1, CoverScale: 15},
		},
		SavedAt: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
	}
}

func writeArchive(t *testing.T, c *Codec, p *card.Project) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := c.Write(p, &buf); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	return buf.Bytes()
}

// zipEntries builds an archive from raw name/content pairs.
func zipEntries(t *testing.T, entries map[string][]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, data := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("Create(%q) error = %v", name, err)
		}
		if _, err := w.Write(data); err != nil {
			t.Fatalf("Write(%q) error = %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	return buf.Bytes()
}

func TestCodec_RoundTrip(t *testing.T) {
	c := NewCodec(imaging.NewCodec(), t.TempDir())
	in := testProject()

	loaded, err := c.Read(writeArchive(t, c, in))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if !loaded.SavedAt.Equal(in.SavedAt) {
		t.Errorf("SavedAt = %v, want %v", loaded.SavedAt, in.SavedAt)
	}
	for _, s := range card.Slots {
		got, want := loaded.Slots[s], in.Photos[s]
		if got.Err != nil {
			t.Fatalf("%s: Err = %v", s, got.Err)
		}
		if got.Photo.Image.Bounds().Size() != want.Image.Bounds().Size() {
			t.Errorf("%s: size = %v, want %v", s, got.Photo.Image.Bounds().Size(), want.Image.Bounds().Size())
		}
		if math.Abs(got.Photo.Offset.Width-want.Offset.Width) > 1e-6 ||
			math.Abs(got.Photo.Offset.Height-want.Offset.Height) > 1e-6 {
			t.Errorf("%s: offset = %+v, want %+v", s, got.Photo.Offset, want.Offset)
		}
		if math.Abs(got.Photo.Scale-want.Scale) > 1e-6 {
			t.Errorf("%s: scale = %v, want %v", s, got.Photo.Scale, want.Scale)
		}
		if math.Abs(got.Photo.CoverScale-want.CoverScale) > 1e-6 {
			t.Errorf("%s: coverScale = %v, want %v", s, got.Photo.CoverScale, want.CoverScale)
		}
	}
}

func TestCodec_Write(t *testing.T) {
	t.Run("layout", func(t *testing.T) {
		c := NewCodec(imaging.NewCodec(), t.TempDir())
		data := writeArchive(t, c, testProject())

		zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			t.Fatalf("zip.NewReader() error = %v", err)
		}
		var names []string
		for _, f := range zr.File {
			names = append(names, f.Name)
			if !f.Modified.Equal(FixedZipTime) {
				t.Errorf("%s: modified = %v, want %v", f.Name, f.Modified, FixedZipTime)
			}
		}
		if got, want := strings.Join(names, ","), "meta.json,photo1.jpg,photo2.jpg"; got != want {
			t.Errorf("entries = %s, want %s", got, want)
		}
	})

	t.Run("deterministic", func(t *testing.T) {
		c := NewCodec(imaging.NewCodec(), t.TempDir())
		p := testProject()
		if !bytes.Equal(writeArchive(t, c, p), writeArchive(t, c, p)) {
			t.Error("two writes of the same project differ")
		}
	})

	t.Run("removes staging directory", func(t *testing.T) {
		tmp := t.TempDir()
		c := NewCodec(imaging.NewCodec(), tmp)
		writeArchive(t, c, testProject())

		entries, err := os.ReadDir(tmp)
		if err != nil {
			t.Fatalf("ReadDir() error = %v", err)
		}
		if len(entries) != 0 {
			t.Errorf("temp dir has %d entries after write, want 0", len(entries))
		}
	})

	t.Run("missing photo", func(t *testing.T) {
		c := NewCodec(imaging.NewCodec(), t.TempDir())
		p := testProject()
		p.Photos[card.Slot2] = card.PhotoSnapshot{}

		var buf bytes.Buffer
		if err := c.Write(p, &buf); !errors.Is(err, card.ErrNoPhotosSelected) {
			t.Errorf("Write() error = %v, want ErrNoPhotosSelected", err)
		}
		if buf.Len() != 0 {
			t.Errorf("Write() produced %d bytes, want 0", buf.Len())
		}
	})
}

func TestCodec_Read(t *testing.T) {
	c := NewCodec(imaging.NewCodec(), t.TempDir())
	good := writeArchive(t, c, testProject())

	// Rebuild the good archive with photo2.jpg replaced by garbage.
	zr, err := zip.NewReader(bytes.NewReader(good), int64(len(good)))
	if err != nil {
		t.Fatalf("zip.NewReader() error = %v", err)
	}
	entries := map[string][]byte{}
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("Open(%s) error = %v", f.Name, err)
		}
		var b bytes.Buffer
		b.ReadFrom(rc)
		rc.Close()
		entries[f.Name] = b.Bytes()
	}
	meta := entries["meta.json"]

	t.Run("corrupt photo2 keeps photo1", func(t *testing.T) {
		corrupt := map[string][]byte{
			"meta.json":  meta,
			"photo1.jpg": entries["photo1.jpg"],
			"photo2.jpg": []byte("not a jpeg"),
		}
		loaded, err := c.Read(zipEntries(t, corrupt))
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
		if loaded.Slots[card.Slot1].Err != nil {
			t.Errorf("photo1 Err = %v, want nil", loaded.Slots[card.Slot1].Err)
		}
		if !loaded.Slots[card.Slot1].Photo.HasImage() {
			t.Error("photo1 has no image")
		}
		if !errors.Is(loaded.Slots[card.Slot2].Err, card.ErrAssetDecode) {
			t.Errorf("photo2 Err = %v, want ErrAssetDecode", loaded.Slots[card.Slot2].Err)
		}
	})

	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{
			name:    "not a zip",
			data:    []byte("hello"),
			wantErr: card.ErrArchiveRead,
		},
		{
			name: "missing meta",
			data: zipEntries(t, map[string][]byte{
				"photo1.jpg": entries["photo1.jpg"],
				"photo2.jpg": entries["photo2.jpg"],
			}),
			wantErr: card.ErrMetadataDecode,
		},
		{
			name: "malformed meta",
			data: zipEntries(t, map[string][]byte{
				"meta.json": []byte("{"),
			}),
			wantErr: card.ErrMetadataDecode,
		},
		{
			name: "newer version",
			data: zipEntries(t, map[string][]byte{
				"meta.json": []byte(`{"version": 99}`),
			}),
			wantErr: card.ErrMetadataDecode,
		},
		{
			name: "entry escapes root",
			data: zipEntries(t, map[string][]byte{
				"../evil.txt": []byte("x"),
				"meta.json":   meta,
			}),
			wantErr: card.ErrArchiveRead,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Read(tt.data)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Read() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	t.Run("meta path escapes root", func(t *testing.T) {
		evil := []byte(`{"photo1":{"filePath":"../photo1.jpg","scale":1},"photo2":{"filePath":"photo2.jpg","scale":1}}`)
		loaded, err := c.Read(zipEntries(t, map[string][]byte{
			"meta.json":  evil,
			"photo2.jpg": entries["photo2.jpg"],
		}))
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
		if !errors.Is(loaded.Slots[card.Slot1].Err, card.ErrAssetDecode) {
			t.Errorf("photo1 Err = %v, want ErrAssetDecode", loaded.Slots[card.Slot1].Err)
		}
		if loaded.Slots[card.Slot2].Err != nil {
			t.Errorf("photo2 Err = %v, want nil", loaded.Slots[card.Slot2].Err)
		}
	})
}

func TestSanitizePath(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"meta.json", "meta.json"},
		{"./photo1.jpg", "photo1.jpg"},
		{"/abs/file", "abs/file"},
		{"C:/dir/file", "dir/file"},
		{"../../x", "x"},
		{"", "entry"},
	}
	for _, tt := range tests {
		if got := SanitizePath(tt.in); got != tt.want {
			t.Errorf("SanitizePath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestResolveAsset(t *testing.T) {
	dir := t.TempDir()
	if got, err := resolveAsset(dir, "photo1.jpg"); err != nil || got != filepath.Join(dir, "photo1.jpg") {
		t.Errorf("resolveAsset(photo1.jpg) = %q, %v", got, err)
	}
	for _, bad := range []string{"", "../x.jpg", "/etc/passwd"} {
		if _, err := resolveAsset(dir, bad); err == nil {
			t.Errorf("resolveAsset(%q) succeeded, want error", bad)
		}
	}
}
