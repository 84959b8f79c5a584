package card

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"
)

const (
	// AutosaveProjectName is the fixed archive name used by autosave.
	AutosaveProjectName = "autosave" + ArchiveExt
	// AutosaveLayersName is the fixed side file holding both decoration layers.
	AutosaveLayersName = "autosave_layers.json"
)

// autosaveLayers is the on-disk shape of AutosaveLayersName.
type autosaveLayers struct {
	Version int                      `json:"version"`
	SavedAt time.Time                `json:"savedAt"`
	Layers  [slotCount]LayerSnapshot `json:"layers"`
}

// AutoSave persists the workspace under the fixed autosave names. The
// project archive is written only when both slots have an image, and an
// older one is removed otherwise so recovery never brings back cleared
// photos. The layer side file is always written. Failures are logged and
// never returned.
func (s *Service) AutoSave(ws *Workspace) {
	snap := ws.Snapshot()
	now := s.clock.Now()

	if snap.Photos[Slot1].HasImage() && snap.Photos[Slot2].HasImage() {
		project := &Project{Photos: snap.Photos, SavedAt: now}
		if _, err := s.writeArchive(s.autosave, AutosaveProjectName, project); err != nil {
			s.logger.Warn("autosave of project failed", "error", err)
		}
	} else if err := s.autosave.Delete(AutosaveProjectName); err != nil {
		s.logger.Warn("removing stale autosaved project failed", "error", err)
	} else {
		s.logger.Debug("autosave skipped project, slot empty")
	}

	data, err := json.Marshal(autosaveLayers{Version: 1, SavedAt: now, Layers: snap.Layers})
	if err != nil {
		s.logger.Warn("autosave of layers failed", "error", err)
		return
	}
	_, err = s.autosave.Write(AutosaveLayersName, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
	if err != nil {
		s.logger.Warn("autosave of layers failed", "error", err)
		return
	}
	s.logger.Debug("autosave complete")
}

// TryRestore loads the autosaved project and layers into ws, if present.
// It is meant to run once at start-up. Missing autosave files are the normal
// fresh-install case. Returns true if anything was restored.
func (s *Service) TryRestore(ws *Workspace) bool {
	restored := false

	data, err := s.autosave.Read(AutosaveProjectName)
	switch {
	case errors.Is(err, ErrProjectNotFound):
		s.logger.Debug("no autosaved project")
	case err != nil:
		s.logger.Warn("reading autosaved project failed", "error", err)
	default:
		report, err := s.loadInto(ws, AutosaveProjectName, data)
		if err != nil {
			s.logger.Warn("restoring autosaved project failed", "error", err)
		} else {
			restored = len(report.Loaded) > 0
		}
	}

	layers, err := s.readAutosaveLayers()
	switch {
	case errors.Is(err, ErrProjectNotFound):
		s.logger.Debug("no autosaved layers")
	case err != nil:
		s.logger.Warn("restoring autosaved layers failed", "error", err)
	default:
		for _, slot := range Slots {
			snap := layers.Layers[slot]
			ws.EditLayer(slot, func(l *DecorationLayerState) { l.Restore(snap) })
		}
		restored = true
	}

	if restored {
		s.logger.Info("autosave restored")
	}
	return restored
}

func (s *Service) readAutosaveLayers() (*autosaveLayers, error) {
	data, err := s.autosave.Read(AutosaveLayersName)
	if err != nil {
		return nil, err
	}
	var layers autosaveLayers
	if err := json.Unmarshal(data, &layers); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrStoreDecode, AutosaveLayersName, err)
	}
	return &layers, nil
}

// Autosaver runs AutoSave periodically, but only after the workspace has
// changed since the previous run.
type Autosaver struct {
	service     *Service
	ws          *Workspace
	interval    time.Duration
	dirty       atomic.Bool
	unsubscribe func()
}

// NewAutosaver creates an Autosaver and starts tracking changes to ws
// immediately. Run must be called exactly once to drive it.
func NewAutosaver(service *Service, ws *Workspace, interval time.Duration) *Autosaver {
	a := &Autosaver{service: service, ws: ws, interval: interval}
	a.unsubscribe = ws.Subscribe(func(Event) { a.dirty.Store(true) })
	return a
}

// Run autosaves on every tick while changes are pending. When ctx is
// cancelled it flushes pending changes one last time and returns.
func (a *Autosaver) Run(ctx context.Context) {
	defer a.unsubscribe()

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.Flush()
			return
		case <-ticker.C:
			a.Flush()
		}
	}
}

// Flush autosaves now if there are pending changes.
func (a *Autosaver) Flush() {
	if a.dirty.Swap(false) {
		a.service.AutoSave(a.ws)
	}
}
