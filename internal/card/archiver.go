package card

import (
	"io"
	"time"
)

// Project is the input to an archive write: both photo slots plus the save time.
type Project struct {
	Photos  [slotCount]PhotoSnapshot
	SavedAt time.Time
}

// LoadedSlot is one slot read back from an archive. Err is non-nil when the
// slot's asset could not be decoded; Photo is then zero.
type LoadedSlot struct {
	Photo PhotoSnapshot
	Err   error
}

// LoadedProject is the decoded content of an archive.
type LoadedProject struct {
	Slots   [slotCount]LoadedSlot
	SavedAt time.Time
}

// Archiver converts projects to and from the single-file archive format.
type Archiver interface {
	// Write stages the project's assets and metadata and streams the
	// compressed archive to w. Both photos must carry an image.
	Write(project *Project, w io.Writer) error

	// Read decompresses an archive and decodes its metadata and assets.
	// Metadata failures abort the whole read; asset failures are reported
	// per slot in the result.
	Read(data []byte) (*LoadedProject, error)
}
