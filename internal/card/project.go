package card

import (
	"errors"
	"fmt"
	"io"
	"time"
)

// LoadReport describes the outcome of applying an archive to a workspace.
type LoadReport struct {
	Name     string
	SavedAt  time.Time
	Loaded   []Slot
	Failures []*SlotError
}

// Failed returns the slots that could not be loaded.
func (r *LoadReport) Failed() []Slot {
	slots := make([]Slot, len(r.Failures))
	for i, f := range r.Failures {
		slots[i] = f.Slot
	}
	return slots
}

// Complete reports whether every slot was loaded.
func (r *LoadReport) Complete() bool { return len(r.Failures) == 0 }

// SaveResult is delivered by SaveProjectAsync.
type SaveResult struct {
	File *ProjectFile
	Err  error
}

// SaveProject writes the workspace's photos to an archive in the document
// directory. An empty name selects the timestamp name; otherwise the name is
// sanitized. Both slots must have an image or ErrNoPhotosSelected is
// returned and nothing is written.
func (s *Service) SaveProject(ws *Workspace, name string) (*ProjectFile, error) {
	return s.saveSnapshot(ws.Snapshot(), name)
}

// SaveProjectAsync snapshots the workspace before returning and performs the
// archive write in the background. Edits made after the call returns do not
// affect the saved project. The channel receives exactly one result.
func (s *Service) SaveProjectAsync(ws *Workspace, name string) <-chan SaveResult {
	snap := ws.Snapshot()
	ch := make(chan SaveResult, 1)
	go func() {
		file, err := s.saveSnapshot(snap, name)
		ch <- SaveResult{File: file, Err: err}
	}()
	return ch
}

func (s *Service) saveSnapshot(snap WorkspaceSnapshot, name string) (*ProjectFile, error) {
	if !snap.Photos[Slot1].HasImage() || !snap.Photos[Slot2].HasImage() {
		return nil, ErrNoPhotosSelected
	}

	now := s.clock.Now()
	fileName := resolveName(name, now)
	project := &Project{Photos: snap.Photos, SavedAt: now}

	file, err := s.writeArchive(s.documents, fileName, project)
	if err != nil {
		s.logger.Error("project save failed", "name", fileName, "error", err)
		return nil, fmt.Errorf("saving project %s: %w", fileName, err)
	}

	s.logger.Info("project saved", "name", file.Name, "size", file.SizeBytes)
	s.mirror(file.Name)
	return file, nil
}

// writeArchive streams project into docs under name, tagging any failure as
// an archive write failure.
func (s *Service) writeArchive(docs Documents, name string, project *Project) (*ProjectFile, error) {
	file, err := docs.Write(name, func(w io.Writer) error {
		return s.archiver.Write(project, w)
	})
	if err != nil {
		if !errors.Is(err, ErrArchiveWrite) {
			err = fmt.Errorf("%w: %w", ErrArchiveWrite, err)
		}
		return nil, err
	}
	return file, nil
}

// LoadProject reads the named archive and applies it to the workspace.
// Metadata failures leave the workspace untouched. Asset failures are
// confined to their slot: the other slot is still applied and the report
// lists the failed ones.
func (s *Service) LoadProject(ws *Workspace, name string) (*LoadReport, error) {
	data, err := s.documents.Read(name)
	if err != nil {
		return nil, fmt.Errorf("loading project %s: %w", name, err)
	}
	report, err := s.loadInto(ws, name, data)
	if err != nil {
		s.logger.Error("project load failed", "name", name, "error", err)
		return nil, fmt.Errorf("loading project %s: %w", name, err)
	}
	s.logger.Info("project loaded", "name", name, "failed_slots", len(report.Failures))
	return report, nil
}

func (s *Service) loadInto(ws *Workspace, name string, data []byte) (*LoadReport, error) {
	// Decode fully before touching the workspace.
	loaded, err := s.archiver.Read(data)
	if err != nil {
		return nil, err
	}

	report := &LoadReport{Name: name, SavedAt: loaded.SavedAt}
	for _, slot := range Slots {
		ls := loaded.Slots[slot]
		if ls.Err != nil {
			s.logger.Warn("photo slot not loaded", "name", name, "slot", slot.String(), "error", ls.Err)
			report.Failures = append(report.Failures, &SlotError{Slot: slot, Err: ls.Err})
			continue
		}
		photo := ls.Photo
		ws.EditPhoto(slot, func(p *PhotoEditState) { p.Restore(photo) })
		report.Loaded = append(report.Loaded, slot)
	}
	return report, nil
}

// ListProjects returns the saved projects, sorted by file name descending.
// For timestamp-named projects this is newest first; renamed projects sort
// by name, not by save time.
func (s *Service) ListProjects() ([]*ProjectFile, error) {
	files, err := s.documents.List()
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	return files, nil
}

// DeleteProjects removes each named project. Names that do not exist are
// skipped silently; other failures are collected and returned together
// after every name has been attempted.
func (s *Service) DeleteProjects(names ...string) error {
	var errs []error
	for _, name := range names {
		if err := s.documents.Delete(name); err != nil {
			errs = append(errs, fmt.Errorf("deleting %s: %w", name, err))
			continue
		}
		s.logger.Info("project deleted", "name", name)
	}
	return errors.Join(errs...)
}
