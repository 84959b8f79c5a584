package encryption

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"filippo.io/age"

	"pfoca/internal/card"
	"pfoca/internal/config"
)

// ErrWrongPassphrase is returned by Open when the passphrase does not match.
var ErrWrongPassphrase = errors.New("incorrect passphrase")

// ageHeader is the first line of every binary age file.
var ageHeader = []byte("age-encryption.org/v1\n")

// AgeSealer implements card.Sealer with age's scrypt passphrase encryption.
// A sealed archive is a plain age file and can be opened with the age CLI.
type AgeSealer struct {
	workFactor int
}

var _ card.Sealer = (*AgeSealer)(nil)

// NewAgeSealer creates a sealer. workFactor is the log2 scrypt cost used
// when sealing; 0 keeps age's default.
func NewAgeSealer(workFactor int) *AgeSealer {
	return &AgeSealer{workFactor: workFactor}
}

// NewSealerFromConfig creates the sealer for exported archives.
func NewSealerFromConfig(cfg config.ExportConfig) *AgeSealer {
	return NewAgeSealer(cfg.ScryptWorkFactor)
}

// Seal reads plaintext from r and writes age ciphertext to w.
func (s *AgeSealer) Seal(passphrase string, r io.Reader, w io.Writer) error {
	if passphrase == "" {
		return card.ErrPassphraseRequired
	}
	recipient, err := age.NewScryptRecipient(passphrase)
	if err != nil {
		return fmt.Errorf("creating scrypt recipient: %w", err)
	}
	if s.workFactor > 0 {
		recipient.SetWorkFactor(s.workFactor)
	}

	encWriter, err := age.Encrypt(w, recipient)
	if err != nil {
		return fmt.Errorf("creating encrypted writer: %w", err)
	}
	if _, err := io.Copy(encWriter, r); err != nil {
		return fmt.Errorf("encrypting data: %w", err)
	}
	if err := encWriter.Close(); err != nil {
		return fmt.Errorf("finalizing encryption: %w", err)
	}
	return nil
}

// Open reads age ciphertext from r and writes plaintext to w.
func (s *AgeSealer) Open(passphrase string, r io.Reader, w io.Writer) error {
	if passphrase == "" {
		return card.ErrPassphraseRequired
	}
	identity, err := age.NewScryptIdentity(passphrase)
	if err != nil {
		return fmt.Errorf("creating scrypt identity: %w", err)
	}

	decReader, err := age.Decrypt(r, identity)
	if err != nil {
		var noMatch *age.NoIdentityMatchError
		if errors.As(err, &noMatch) {
			return ErrWrongPassphrase
		}
		return fmt.Errorf("creating decrypted reader: %w", err)
	}
	if _, err := io.Copy(w, decReader); err != nil {
		return fmt.Errorf("decrypting data: %w", err)
	}
	return nil
}

// IsSealed reports whether data starts with the age header.
func (s *AgeSealer) IsSealed(data []byte) bool {
	return bytes.HasPrefix(data, ageHeader)
}
