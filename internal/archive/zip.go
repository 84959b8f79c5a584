package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FixedZipTime gives every entry the same timestamp (1980-01-01 UTC) so that
// identical projects produce identical archives.
var FixedZipTime = time.Unix(315532800, 0).UTC()

// maxEntrySize bounds a single extracted entry.
const maxEntrySize = 256 << 20

// SanitizePath normalizes a zip entry path (forward slashes, no drive, no
// leading '/') and drops '.' and '..' segments without escaping the root.
func SanitizePath(p string) string {
	s := filepath.ToSlash(p)
	if len(s) > 1 && s[1] == ':' {
		s = s[2:]
	}
	s = strings.TrimLeft(s, "/")
	parts := strings.Split(s, "/")
	stack := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" || part == "." {
			continue
		}
		if part == ".." {
			if n := len(stack); n > 0 {
				stack = stack[:n-1]
			}
			continue
		}
		stack = append(stack, part)
	}
	s = strings.Join(stack, "/")
	if s == "" {
		return "entry"
	}
	return s
}

// zipDirectory writes the regular files directly inside dir to w, in name
// order. JPEGs are stored as-is; everything else is deflated.
func zipDirectory(dir string, w io.Writer) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	zw := zip.NewWriter(w)
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if err := copyIntoZip(zw, filepath.Join(dir, e.Name()), e.Name()); err != nil {
			zw.Close()
			return err
		}
	}
	return zw.Close()
}

func copyIntoZip(zw *zip.Writer, path, name string) error {
	method := zip.Deflate
	if strings.EqualFold(filepath.Ext(name), ".jpg") {
		method = zip.Store
	}
	h := &zip.FileHeader{Name: SanitizePath(name), Method: method}
	h.SetMode(0o644)
	h.Modified = FixedZipTime

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	ew, err := zw.CreateHeader(h)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := io.Copy(ew, f); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// extract unpacks every file entry of zr below dir. Entries whose names
// would land outside dir are rejected.
func extract(zr *zip.Reader, dir string) error {
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		clean := SanitizePath(f.Name)
		if clean != strings.TrimPrefix(filepath.ToSlash(f.Name), "./") {
			return fmt.Errorf("illegal entry name %q", f.Name)
		}
		if err := extractFile(f, filepath.Join(dir, filepath.FromSlash(clean))); err != nil {
			return fmt.Errorf("extract %s: %w", f.Name, err)
		}
	}
	return nil
}

func extractFile(f *zip.File, dest string) error {
	if f.UncompressedSize64 > maxEntrySize {
		return fmt.Errorf("entry too large (%d bytes)", f.UncompressedSize64)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return err
	}

	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	n, err := io.Copy(out, io.LimitReader(rc, maxEntrySize+1))
	if err != nil {
		out.Close()
		return err
	}
	if n > maxEntrySize {
		out.Close()
		return fmt.Errorf("entry too large")
	}
	return out.Close()
}
