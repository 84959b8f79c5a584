// Package documents implements card.Documents on a local directory and in
// memory.
package documents

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"pfoca/internal/card"
)

// Directory is a card.Documents backed by a flat directory:
//
//	<root>/
//	  <name>.pfp      (project archives)
//	  .tmp-*          (in-flight writes, renamed into place on success)
type Directory struct {
	root string
	mu   sync.Mutex
}

var _ card.Documents = (*Directory)(nil)

// NewDirectory creates the directory if needed and returns a store rooted there.
func NewDirectory(root string) (*Directory, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create document directory: %w", err)
	}
	return &Directory{root: root}, nil
}

// Root returns the directory path.
func (d *Directory) Root() string {
	return d.root
}

// Write streams fn's output to a temp file in the same directory and renames
// it over name once fn and the close succeed.
func (d *Directory) Write(name string, fn func(w io.Writer) error) (*card.ProjectFile, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	tmpFile, err := os.CreateTemp(d.root, ".tmp-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if err := fn(tmpFile); err != nil {
		tmpFile.Close()
		return nil, err
	}
	if err := tmpFile.Close(); err != nil {
		return nil, fmt.Errorf("failed to close temp file: %w", err)
	}

	destPath := filepath.Join(d.root, name)
	if err := os.Rename(tmpPath, destPath); err != nil {
		return nil, fmt.Errorf("failed to rename temp file: %w", err)
	}
	success = true

	return d.stat(name)
}

func (d *Directory) Read(name string) ([]byte, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(d.root, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", card.ErrProjectNotFound, name)
		}
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}

func (d *Directory) Stat(name string) (*card.ProjectFile, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	return d.stat(name)
}

func (d *Directory) stat(name string) (*card.ProjectFile, error) {
	path := filepath.Join(d.root, name)
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", card.ErrProjectNotFound, name)
		}
		return nil, fmt.Errorf("failed to stat %s: %w", name, err)
	}
	return &card.ProjectFile{
		Name:       name,
		Path:       path,
		SizeBytes:  info.Size(),
		ModifiedAt: info.ModTime(),
	}, nil
}

func (d *Directory) List() ([]*card.ProjectFile, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	entries, err := os.ReadDir(d.root)
	if err != nil {
		return nil, fmt.Errorf("failed to list document directory: %w", err)
	}

	files := make([]*card.ProjectFile, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() || !isArchive(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			// Removed between ReadDir and Info.
			continue
		}
		files = append(files, &card.ProjectFile{
			Name:       e.Name(),
			Path:       filepath.Join(d.root, e.Name()),
			SizeBytes:  info.Size(),
			ModifiedAt: info.ModTime(),
		})
	}
	sortDescending(files)
	return files, nil
}

func (d *Directory) Delete(name string) error {
	if err := validateName(name); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	err := os.Remove(filepath.Join(d.root, name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete %s: %w", name, err)
	}
	return nil
}

// validateName rejects names that would leave the directory.
func validateName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid document name: %q", name)
	}
	return nil
}

func isArchive(name string) bool {
	return strings.HasSuffix(name, card.ArchiveExt) && !strings.HasPrefix(name, ".")
}

func sortDescending(files []*card.ProjectFile) {
	sort.Slice(files, func(i, j int) bool {
		return files[i].Name > files[j].Name
	})
}
