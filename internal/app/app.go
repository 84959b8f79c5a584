package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"pfoca/internal/archive"
	"pfoca/internal/card"
	"pfoca/internal/config"
	"pfoca/internal/documents"
	"pfoca/internal/encryption"
	"pfoca/internal/fonts"
	"pfoca/internal/imaging"
	"pfoca/internal/render"
	"pfoca/internal/store"
	"pfoca/internal/vault"
)

// PfocaApp is the application layer between the CLI and card.Service.
// It constructs all dependencies from config, holds the single workspace a
// command operates on, and exposes operations that accept raw paths.
type PfocaApp struct {
	cfg       *config.Config
	store     *store.SQLiteStore
	vault     card.Vault
	sealer    *encryption.AgeSealer
	images    *imaging.Codec
	fonts     *fonts.Service
	composer  *render.Composer
	service   *card.Service
	workspace *card.Workspace
	autosaver *card.Autosaver
	op        *Operation
	logger    card.Logger
	logFile   *os.File
	tempDir   string

	// autosaveDone is closed once the autosaver has flushed and returned.
	stopAutosave context.CancelFunc
	autosaveDone chan struct{}
}

// NewPfocaApp creates a fully wired PfocaApp from the given config.
// operation identifies the CLI command being run (e.g. "SaveProject").
// The caller must call Close when done.
func NewPfocaApp(ctx context.Context, cfg *config.Config, operation string) (*PfocaApp, error) {
	op := NewOperation(operation, time.Now())
	logger, logFile, err := newLogger(cfg.LogDir, op.ID)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	adapter := &slogAdapter{l: logger}

	a := &PfocaApp{cfg: cfg, op: op, logger: adapter, logFile: logFile}
	if err := a.wire(ctx); err != nil {
		a.closeResources()
		return nil, err
	}
	a.startAutosaver(ctx)
	return a, nil
}

// startAutosaver runs the autosaver in the background until Close or until
// ctx is cancelled.
func (a *PfocaApp) startAutosaver(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	a.stopAutosave = cancel
	a.autosaveDone = make(chan struct{})
	go func() {
		defer close(a.autosaveDone)
		a.autosaver.Run(runCtx)
	}()
}

func (a *PfocaApp) wire(ctx context.Context) error {
	cfg := a.cfg

	docs, err := documents.NewDirectory(cfg.DocumentsDir)
	if err != nil {
		return fmt.Errorf("creating document directory: %w", err)
	}
	autosave, err := documents.NewDirectory(cfg.AutosaveDir)
	if err != nil {
		return fmt.Errorf("creating autosave directory: %w", err)
	}
	if docs.Root() == autosave.Root() {
		return fmt.Errorf("autosave_dir must differ from documents_dir")
	}

	a.store, err = store.NewStoreFromConfig(cfg.Store)
	if err != nil {
		return fmt.Errorf("creating store: %w", err)
	}

	tmpRoot := filepath.Join(cfg.BaseDir, "tmp")
	if err := os.MkdirAll(tmpRoot, 0755); err != nil {
		return fmt.Errorf("creating temp directory: %w", err)
	}
	a.tempDir, err = os.MkdirTemp(tmpRoot, "run-*")
	if err != nil {
		return fmt.Errorf("creating temp directory: %w", err)
	}

	a.images = imaging.NewCodec()
	codec := archive.NewCodec(a.images, a.tempDir)
	a.service = card.NewService(codec, docs, autosave, a.store, a.logger, card.RealClock{}, card.UUIDGenerator{})
	a.sealer = encryption.NewSealerFromConfig(cfg.Export)
	a.service.SetSealer(a.sealer)

	if len(cfg.Vaults) > 0 {
		a.vault, err = vault.NewVaultFromConfig(ctx, cfg.Vaults[0])
		if err != nil {
			return fmt.Errorf("creating vault: %w", err)
		}
		a.service.SetVault(a.vault)
	}

	a.fonts, err = fonts.NewServiceFromConfig(cfg.Fonts, a.store, a.logger)
	if err != nil {
		return fmt.Errorf("creating font service: %w", err)
	}
	a.composer, err = render.NewComposer(cfg.Layout, a.fonts, a.logger)
	if err != nil {
		return fmt.Errorf("creating renderer: %w", err)
	}

	a.workspace = card.NewWorkspace(a.composer.Box())
	a.autosaver = card.NewAutosaver(a.service, a.workspace, cfg.Autosave.Interval())
	return nil
}

// record marks the operation failed when err is non-nil and passes err through.
func (a *PfocaApp) record(err error) error {
	if err != nil {
		a.op.Fail(err)
	}
	return err
}

// Workspace returns the workspace commands operate on.
func (a *PfocaApp) Workspace() *card.Workspace {
	return a.workspace
}

// NewProject decodes the two photo files into the workspace and saves them
// as a project. An empty name selects the timestamp name.
func (a *PfocaApp) NewProject(photo1, photo2, name string) (*card.ProjectFile, error) {
	for slot, path := range map[card.Slot]string{card.Slot1: photo1, card.Slot2: photo2} {
		if path == "" {
			continue
		}
		img, err := a.images.DecodeFile(path)
		if err != nil {
			return nil, a.record(fmt.Errorf("reading %s: %w", slot, err))
		}
		a.workspace.EditPhoto(slot, func(p *card.PhotoEditState) { p.SetImage(img) })
	}
	file, err := a.service.SaveProject(a.workspace, name)
	return file, a.record(err)
}

// ListProjects returns the saved projects, newest timestamp name first.
func (a *PfocaApp) ListProjects() ([]*card.ProjectFile, error) {
	files, err := a.service.ListProjects()
	return files, a.record(err)
}

// OpenProject loads a saved project into the workspace.
func (a *PfocaApp) OpenProject(name string) (*card.LoadReport, error) {
	report, err := a.service.LoadProject(a.workspace, card.SanitizeName(name))
	return report, a.record(err)
}

// DeleteProjects removes the named projects.
func (a *PfocaApp) DeleteProjects(names ...string) error {
	sanitized := make([]string, len(names))
	for i, n := range names {
		sanitized[i] = card.SanitizeName(n)
	}
	return a.record(a.service.DeleteProjects(sanitized...))
}

// RenderProject loads name and writes the composed card to outPath as PNG.
func (a *PfocaApp) RenderProject(name, outPath string) (*card.LoadReport, error) {
	report, err := a.OpenProject(name)
	if err != nil {
		return nil, err
	}
	img, err := a.composer.Render(a.workspace.Snapshot())
	if err != nil {
		return nil, a.record(fmt.Errorf("rendering %s: %w", name, err))
	}
	f, err := os.Create(outPath)
	if err != nil {
		return nil, a.record(fmt.Errorf("creating %s: %w", outPath, err))
	}
	if err := render.EncodePNG(f, img); err != nil {
		f.Close()
		return nil, a.record(err)
	}
	return report, a.record(f.Close())
}

// ExportProject writes the named project to outPath, sealed when passphrase
// is non-empty.
func (a *PfocaApp) ExportProject(name, outPath, passphrase string) error {
	absPath, err := filepath.Abs(outPath)
	if err != nil {
		return a.record(fmt.Errorf("resolving path: %w", err))
	}
	f, err := os.Create(absPath)
	if err != nil {
		return a.record(fmt.Errorf("creating %s: %w", absPath, err))
	}
	if err := a.service.ExportProject(card.SanitizeName(name), f, passphrase); err != nil {
		f.Close()
		os.Remove(absPath)
		return a.record(err)
	}
	return a.record(f.Close())
}

// ImportProject copies an archive file into the document directory. An
// empty name keeps the file's own name.
func (a *PfocaApp) ImportProject(rawPath, name, passphrase string) (*card.ProjectFile, error) {
	f, err := os.Open(rawPath)
	if err != nil {
		return nil, a.record(fmt.Errorf("opening %s: %w", rawPath, err))
	}
	defer f.Close()
	if name == "" {
		name = filepath.Base(rawPath)
	}
	file, err := a.service.ImportProject(name, f, passphrase)
	return file, a.record(err)
}

// OpenExternal imports an archive file and loads it into the workspace.
func (a *PfocaApp) OpenExternal(rawPath, passphrase string) (*card.LoadReport, error) {
	absPath, err := filepath.Abs(rawPath)
	if err != nil {
		return nil, a.record(fmt.Errorf("resolving path: %w", err))
	}
	report, err := a.service.OpenExternal(a.workspace, absPath, passphrase)
	return report, a.record(err)
}

// IsSealedFile reports whether the file at rawPath is a sealed export.
func (a *PfocaApp) IsSealedFile(rawPath string) (bool, error) {
	f, err := os.Open(rawPath)
	if err != nil {
		return false, err
	}
	defer f.Close()
	head := make([]byte, 64)
	n, _ := f.Read(head)
	return a.sealer.IsSealed(head[:n]), nil
}

// BackupProject uploads the named project to the vault.
func (a *PfocaApp) BackupProject(name string) error {
	return a.record(a.service.BackupProject(card.SanitizeName(name)))
}

// FetchProject downloads the named project from the vault.
func (a *PfocaApp) FetchProject(name string) (*card.ProjectFile, error) {
	file, err := a.service.FetchProject(card.SanitizeName(name))
	return file, a.record(err)
}

// RemoteProjects lists the archives held by the vault.
func (a *PfocaApp) RemoteProjects() ([]string, error) {
	names, err := a.service.RemoteProjects()
	return names, a.record(err)
}

// ValidateVault checks that the configured vault is reachable.
func (a *PfocaApp) ValidateVault() error {
	if a.vault == nil {
		return a.record(fmt.Errorf("no vault configured"))
	}
	return a.record(a.vault.ValidateSetup())
}

// NamedLayers returns the decoration layer library.
func (a *PfocaApp) NamedLayers() []card.DecorationLayer {
	return a.service.NamedLayers()
}

// SaveLayer copies the decoration layer of slot in project into the
// library under layerName.
func (a *PfocaApp) SaveLayer(project string, slot card.Slot, layerName string) (*card.DecorationLayer, error) {
	if _, err := a.OpenProject(project); err != nil {
		return nil, err
	}
	layer, err := a.service.SaveNamedLayer(a.workspace.Layer(slot), layerName)
	return layer, a.record(err)
}

// DeleteLayer removes a library entry. Returns false if it did not exist.
func (a *PfocaApp) DeleteLayer(id string) (bool, error) {
	layerID, err := parseID(id)
	if err != nil {
		return false, a.record(err)
	}
	ok, err := a.service.DeleteNamedLayer(layerID)
	return ok, a.record(err)
}

// RestoreAutosave loads the autosaved workspace. When name is non-empty and
// both photos came back, the workspace is saved as a project under name.
func (a *PfocaApp) RestoreAutosave(name string) (bool, *card.ProjectFile, error) {
	if !a.service.TryRestore(a.workspace) {
		return false, nil, nil
	}
	if name == "" {
		return true, nil, nil
	}
	file, err := a.service.SaveProject(a.workspace, name)
	return true, file, a.record(err)
}

// EnsureFont downloads a font into the cache and marks it recently used.
func (a *PfocaApp) EnsureFont(ctx context.Context, f card.FontInfo) (string, error) {
	path, err := a.fonts.Ensure(ctx, f)
	if err != nil {
		return "", a.record(err)
	}
	return path, a.record(a.fonts.MarkUsed(f))
}

// RecentFonts returns the recently used fonts, most recent first.
func (a *PfocaApp) RecentFonts() []card.FontInfo {
	return a.fonts.Recent()
}

// Close stops the autosaver, which saves any pending workspace changes, logs
// the operation outcome and releases all resources.
func (a *PfocaApp) Close() error {
	if a.stopAutosave != nil {
		a.stopAutosave()
		<-a.autosaveDone
		a.stopAutosave = nil
	}
	a.logger.Info("operation finished",
		"operation", a.op.Name,
		"status", a.op.Status,
		"duration", a.op.Elapsed(time.Now()).Truncate(time.Millisecond).String())
	return a.closeResources()
}

func (a *PfocaApp) closeResources() error {
	var firstErr error
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			firstErr = fmt.Errorf("closing store: %w", err)
		}
	}
	if a.tempDir != "" {
		if err := os.RemoveAll(a.tempDir); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("removing temp directory: %w", err)
		}
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
	return firstErr
}

func parseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid layer id %q: %w", s, err)
	}
	return id, nil
}
