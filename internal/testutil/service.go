package testutil

import (
	"testing"

	"pfoca/internal/archive"
	"pfoca/internal/card"
	"pfoca/internal/documents"
	"pfoca/internal/imaging"
)

// TestBox is the photo box used by test workspaces.
var TestBox = card.Size{Width: 100, Height: 100}

// Env is a fully wired card.Service over in-memory backends.
type Env struct {
	Service   *card.Service
	Workspace *card.Workspace
	Documents *FailingDocuments
	Autosave  *FailingDocuments
	Store     *FailingStore
	Clock     *StubClock
	IDs       *StubIDGenerator
}

// NewEnv wires a service with a real archive codec (staging below
// t.TempDir()), in-memory documents, an in-memory SQLite store that can be
// made to fail, and a fixed clock. No vault or sealer is configured.
func NewEnv(t *testing.T) *Env {
	t.Helper()

	clock := FixedClock()
	ids := NewStubIDGenerator()
	docs := NewFailingDocuments(documents.NewMemory(clock))
	auto := NewFailingDocuments(documents.NewMemory(clock))
	kv := NewFailingStore(NewTestStore(t))
	codec := archive.NewCodec(imaging.NewCodec(), t.TempDir())

	return &Env{
		Service:   card.NewService(codec, docs, auto, kv, card.NewNopLogger(), clock, ids),
		Workspace: card.NewWorkspace(TestBox),
		Documents: docs,
		Autosave:  auto,
		Store:     kv,
		Clock:     clock,
		IDs:       ids,
	}
}

// FillPhotos puts a distinct test image into each slot of ws.
func FillPhotos(ws *card.Workspace) {
	ws.EditPhoto(card.Slot1, func(p *card.PhotoEditState) { p.SetImage(NewTestImage(40, 30)) })
	ws.EditPhoto(card.Slot2, func(p *card.PhotoEditState) { p.SetImage(NewTestImage(30, 60)) })
}
