package card

import "io"

// Sealer protects exported archives with a passphrase so they can travel
// through untrusted file-sharing surfaces.
type Sealer interface {
	// Seal encrypts data read from r and writes ciphertext to w.
	Seal(passphrase string, r io.Reader, w io.Writer) error

	// Open decrypts data read from r and writes plaintext to w.
	// Returns an error if the passphrase is incorrect.
	Open(passphrase string, r io.Reader, w io.Writer) error

	// IsSealed reports whether data begins with the sealed-archive header.
	IsSealed(data []byte) bool
}
