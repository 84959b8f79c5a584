package testutil

import (
	"errors"
	"io"
	"sync/atomic"

	"pfoca/internal/card"
)

// ErrInjected is returned by FailingDocuments when a failure is switched on.
var ErrInjected = errors.New("injected failure")

// FailingDocuments wraps a card.Documents and fails writes or reads on demand.
type FailingDocuments struct {
	card.Documents
	FailWrites atomic.Bool
	FailReads  atomic.Bool
	writes     atomic.Int32
}

// NewFailingDocuments wraps inner. Nothing fails until switched on.
func NewFailingDocuments(inner card.Documents) *FailingDocuments {
	return &FailingDocuments{Documents: inner}
}

func (f *FailingDocuments) Write(name string, fn func(w io.Writer) error) (*card.ProjectFile, error) {
	f.writes.Add(1)
	if f.FailWrites.Load() {
		return nil, ErrInjected
	}
	return f.Documents.Write(name, fn)
}

func (f *FailingDocuments) Read(name string) ([]byte, error) {
	if f.FailReads.Load() {
		return nil, ErrInjected
	}
	return f.Documents.Read(name)
}

// Writes returns how many writes were attempted.
func (f *FailingDocuments) Writes() int {
	return int(f.writes.Load())
}

// FailingStore wraps a card.KeyValueStore and fails reads on demand.
type FailingStore struct {
	card.KeyValueStore
	FailGets atomic.Bool
}

// NewFailingStore wraps inner. Nothing fails until switched on.
func NewFailingStore(inner card.KeyValueStore) *FailingStore {
	return &FailingStore{KeyValueStore: inner}
}

func (f *FailingStore) Get(key string) ([]byte, bool, error) {
	if f.FailGets.Load() {
		return nil, false, ErrInjected
	}
	return f.KeyValueStore.Get(key)
}
