package card

import "io"

// Vault is an optional off-device mirror for saved archives.
type Vault interface {
	// PutArchive stores an archive under name, replacing any previous copy.
	// size is the number of bytes that will be read from r.
	PutArchive(name string, r io.Reader, size int64) error

	// GetArchive writes the archive stored under name to w.
	GetArchive(name string, w io.Writer) error

	// ListArchives returns the names of all stored archives.
	ListArchives() ([]string, error)

	// ValidateSetup verifies that the vault is accessible and properly configured.
	ValidateSetup() error
}
