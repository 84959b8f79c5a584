package card

import "sync"

// EventKind describes what changed in a workspace.
type EventKind int

const (
	PhotoChanged EventKind = iota
	LayerChanged
	WorkspaceReset
)

// Event is delivered to workspace subscribers after every mutation.
type Event struct {
	Kind EventKind
	Slot Slot
}

// WorkspaceSnapshot is a consistent copy of both slots and both layers,
// taken in a single critical section.
type WorkspaceSnapshot struct {
	Photos [slotCount]PhotoSnapshot
	Layers [slotCount]LayerSnapshot
}

// Workspace is the live editing state of a card: two photo slots and their
// decoration layers. Mutations go through EditPhoto and EditLayer so that
// Snapshot never observes a half-applied edit.
type Workspace struct {
	mu     sync.RWMutex
	photos [slotCount]*PhotoEditState
	layers [slotCount]*DecorationLayerState

	subMu  sync.Mutex
	nextID int
	subs   map[int]func(Event)
}

// NewWorkspace creates an empty workspace whose photo boxes have the given size.
func NewWorkspace(box Size) *Workspace {
	w := &Workspace{subs: make(map[int]func(Event))}
	for _, s := range Slots {
		w.photos[s] = NewPhotoEditState(box)
		w.layers[s] = NewDecorationLayerState()
	}
	return w
}

// EditPhoto runs fn against the slot's photo state under the write lock and
// notifies subscribers afterwards.
func (w *Workspace) EditPhoto(s Slot, fn func(*PhotoEditState)) {
	w.mu.Lock()
	fn(w.photos[s])
	w.mu.Unlock()
	w.emit(Event{Kind: PhotoChanged, Slot: s})
}

// EditLayer runs fn against the slot's decoration layer under the write lock
// and notifies subscribers afterwards.
func (w *Workspace) EditLayer(s Slot, fn func(*DecorationLayerState)) {
	w.mu.Lock()
	fn(w.layers[s])
	w.mu.Unlock()
	w.emit(Event{Kind: LayerChanged, Slot: s})
}

// Photo returns a snapshot of one slot's photo state.
func (w *Workspace) Photo(s Slot) PhotoSnapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.photos[s].Snapshot()
}

// Layer returns a snapshot of one slot's decoration layer.
func (w *Workspace) Layer(s Slot) LayerSnapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.layers[s].Snapshot()
}

// Snapshot copies every slot and layer atomically.
func (w *Workspace) Snapshot() WorkspaceSnapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()
	var snap WorkspaceSnapshot
	for _, s := range Slots {
		snap.Photos[s] = w.photos[s].Snapshot()
		snap.Layers[s] = w.layers[s].Snapshot()
	}
	return snap
}

// Reset clears both photos and detaches both layers.
func (w *Workspace) Reset() {
	w.mu.Lock()
	for _, s := range Slots {
		w.photos[s].Clear()
		w.layers[s].Detach()
	}
	w.mu.Unlock()
	w.emit(Event{Kind: WorkspaceReset})
}

// Subscribe registers fn to receive change events. Events are delivered
// synchronously on the mutating goroutine, after the lock is released.
// The returned function removes the subscription.
func (w *Workspace) Subscribe(fn func(Event)) (unsubscribe func()) {
	w.subMu.Lock()
	defer w.subMu.Unlock()
	id := w.nextID
	w.nextID++
	w.subs[id] = fn
	return func() {
		w.subMu.Lock()
		defer w.subMu.Unlock()
		delete(w.subs, id)
	}
}

func (w *Workspace) emit(e Event) {
	w.subMu.Lock()
	fns := make([]func(Event), 0, len(w.subs))
	for _, fn := range w.subs {
		fns = append(fns, fn)
	}
	w.subMu.Unlock()

	for _, fn := range fns {
		fn(e)
	}
}

// ClearSlot empties one photo slot. Its decoration layer is left alone.
func (w *Workspace) ClearSlot(s Slot) {
	w.EditPhoto(s, func(p *PhotoEditState) { p.Clear() })
}
