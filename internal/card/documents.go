package card

import (
	"io"
	"strings"
	"time"
)

// ProjectFile is the handle of a saved archive in a document directory.
type ProjectFile struct {
	Name       string // file name including the extension
	Path       string // location for display; empty for in-memory storage
	SizeBytes  int64
	ModifiedAt time.Time
}

// DisplayName returns the file name without the archive extension.
func (f *ProjectFile) DisplayName() string {
	return strings.TrimSuffix(f.Name, ArchiveExt)
}

// Documents provides an interface for the user-visible project directory.
// Names are plain file names; implementations never create subdirectories.
type Documents interface {
	// Write creates or replaces name with whatever fn writes. The file
	// appears only if fn succeeds; on error nothing is left behind.
	Write(name string, fn func(w io.Writer) error) (*ProjectFile, error)

	// Read returns the full contents of name.
	// Returns an error wrapping ErrProjectNotFound if it does not exist.
	Read(name string) ([]byte, error)

	// Stat returns the handle for name, or an error wrapping ErrProjectNotFound.
	Stat(name string) (*ProjectFile, error)

	// List returns every archive (ArchiveExt) in the directory, sorted by
	// file name descending.
	List() ([]*ProjectFile, error)

	// Delete removes name. Deleting a missing file is not an error.
	Delete(name string) error
}
