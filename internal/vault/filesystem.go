package vault

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"pfoca/internal/card"
)

// FileSystemVault mirrors archives into a directory, typically on another
// disk or a synced folder:
//
//	<root>/
//	  archives/
//	    <name>.pfp
type FileSystemVault struct {
	name        string
	root        string
	archivesDir string
}

// NewFileSystemVault creates a new filesystem vault rooted at the given path.
func NewFileSystemVault(name, root string) (*FileSystemVault, error) {
	archivesDir := filepath.Join(root, "archives")
	if err := os.MkdirAll(archivesDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create archives directory: %w", err)
	}
	return &FileSystemVault{
		name:        name,
		root:        root,
		archivesDir: archivesDir,
	}, nil
}

// PutArchive stores an archive, replacing any previous copy atomically.
func (v *FileSystemVault) PutArchive(name string, r io.Reader, size int64) error {
	if err := validateName(name); err != nil {
		return err
	}
	return v.writeFile(filepath.Join(v.archivesDir, name), r, size)
}

// GetArchive writes the named archive to w.
func (v *FileSystemVault) GetArchive(name string, w io.Writer) error {
	if err := validateName(name); err != nil {
		return err
	}
	f, err := os.Open(filepath.Join(v.archivesDir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", card.ErrProjectNotFound, name)
		}
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("failed to read archive: %w", err)
	}
	return nil
}

// ListArchives returns the stored archive names in ascending order.
func (v *FileSystemVault) ListArchives() ([]string, error) {
	entries, err := os.ReadDir(v.archivesDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list archives: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() && strings.HasSuffix(e.Name(), card.ArchiveExt) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// ValidateSetup verifies that the vault directories are accessible.
func (v *FileSystemVault) ValidateSetup() error {
	info, err := os.Stat(v.root)
	if err != nil {
		return fmt.Errorf("vault root not accessible: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("vault root is not a directory: %s", v.root)
	}

	info, err = os.Stat(v.archivesDir)
	if err != nil {
		return fmt.Errorf("vault directory not accessible: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("vault path is not a directory: %s", v.archivesDir)
	}
	return nil
}

// writeFile writes data from r to destPath using atomic write (temp file + rename).
func (v *FileSystemVault) writeFile(destPath string, r io.Reader, expectedSize int64) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	written, err := io.Copy(tmpFile, r)
	if err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write data: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if written != expectedSize {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", expectedSize, written)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	success = true
	return nil
}

// validateName rejects archive names that are not plain file names.
func validateName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid archive name: %q", name)
	}
	return nil
}

// Compile-time check that FileSystemVault implements card.Vault interface
var _ card.Vault = (*FileSystemVault)(nil)
