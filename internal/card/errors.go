package card

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the persistence core. Wrapped errors keep these as
// their cause, so callers test with errors.Is.
var (
	// ErrNoPhotosSelected is returned when a save is attempted with one or both slots empty.
	ErrNoPhotosSelected = errors.New("both photo slots must have an image")
	// ErrArchiveWrite covers staging and compression failures while saving.
	ErrArchiveWrite = errors.New("archive write failed")
	// ErrArchiveRead covers decompression failures while loading.
	ErrArchiveRead = errors.New("archive read failed")
	// ErrMetadataDecode means meta.json is missing or malformed.
	ErrMetadataDecode = errors.New("project metadata could not be decoded")
	// ErrAssetDecode means a slot's image bytes are present but not decodable.
	ErrAssetDecode = errors.New("photo asset could not be decoded")
	// ErrStoreDecode means a key-value payload is malformed.
	ErrStoreDecode = errors.New("stored value could not be decoded")
	// ErrProjectNotFound means no saved project exists under the requested name.
	ErrProjectNotFound = errors.New("project not found")
	// ErrPassphraseRequired means a sealed archive was opened without a passphrase.
	ErrPassphraseRequired = errors.New("archive is sealed and needs a passphrase")
)

// SlotError reports a failure confined to one photo slot.
type SlotError struct {
	Slot Slot
	Err  error
}

func (e *SlotError) Error() string {
	return fmt.Sprintf("%s: %v", e.Slot, e.Err)
}

func (e *SlotError) Unwrap() error { return e.Err }
