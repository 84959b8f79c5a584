package card

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ExportProject writes the named archive to w for sharing. When passphrase
// is non-empty the archive is sealed first.
func (s *Service) ExportProject(name string, w io.Writer, passphrase string) error {
	data, err := s.documents.Read(name)
	if err != nil {
		return fmt.Errorf("exporting %s: %w", name, err)
	}

	if passphrase == "" {
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("exporting %s: %w", name, err)
		}
	} else {
		if s.sealer == nil {
			return fmt.Errorf("exporting %s: sealing is not configured", name)
		}
		if err := s.sealer.Seal(passphrase, bytes.NewReader(data), w); err != nil {
			return fmt.Errorf("sealing %s: %w", name, err)
		}
	}

	s.logger.Info("project exported", "name", name, "sealed", passphrase != "")
	return nil
}

// ImportProject reads an archive from r, unsealing it if needed, checks that
// its metadata decodes, and stores it in the document directory under the
// sanitized name (or the timestamp name when name is empty).
func (s *Service) ImportProject(name string, r io.Reader, passphrase string) (*ProjectFile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrArchiveRead, err)
	}

	if s.sealer != nil && s.sealer.IsSealed(data) {
		if passphrase == "" {
			return nil, ErrPassphraseRequired
		}
		var buf bytes.Buffer
		if err := s.sealer.Open(passphrase, bytes.NewReader(data), &buf); err != nil {
			return nil, fmt.Errorf("unsealing archive: %w", err)
		}
		data = buf.Bytes()
	}

	if _, err := s.archiver.Read(data); err != nil {
		return nil, fmt.Errorf("validating imported archive: %w", err)
	}

	fileName := resolveName(name, s.clock.Now())
	file, err := s.documents.Write(fileName, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("storing imported archive %s: %w", fileName, err)
	}

	s.logger.Info("project imported", "name", file.Name, "size", file.SizeBytes)
	return file, nil
}

// OpenExternal is the entry point for an archive opened from outside the
// application (e.g. a file shared from another app): it imports the file
// under its own name and loads it into ws.
func (s *Service) OpenExternal(ws *Workspace, path string, passphrase string) (*LoadReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	file, err := s.ImportProject(filepath.Base(path), f, passphrase)
	if err != nil {
		return nil, err
	}
	return s.LoadProject(ws, file.Name)
}

// BackupProject uploads the named archive to the configured vault.
func (s *Service) BackupProject(name string) error {
	if s.vault == nil {
		return errors.New("no vault configured")
	}
	data, err := s.documents.Read(name)
	if err != nil {
		return fmt.Errorf("backing up %s: %w", name, err)
	}
	if err := s.vault.PutArchive(name, bytes.NewReader(data), int64(len(data))); err != nil {
		return fmt.Errorf("uploading %s to vault: %w", name, err)
	}
	s.logger.Info("project backed up", "name", name, "size", len(data))
	return nil
}

// FetchProject downloads the named archive from the vault into the document
// directory, replacing any local copy.
func (s *Service) FetchProject(name string) (*ProjectFile, error) {
	if s.vault == nil {
		return nil, errors.New("no vault configured")
	}
	var buf bytes.Buffer
	if err := s.vault.GetArchive(name, &buf); err != nil {
		return nil, fmt.Errorf("downloading %s from vault: %w", name, err)
	}
	file, err := s.documents.Write(SanitizeName(name), func(w io.Writer) error {
		_, err := buf.WriteTo(w)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("storing %s: %w", name, err)
	}
	s.logger.Info("project fetched", "name", name, "size", file.SizeBytes)
	return file, nil
}

// RemoteProjects lists the archives held by the vault.
func (s *Service) RemoteProjects() ([]string, error) {
	if s.vault == nil {
		return nil, errors.New("no vault configured")
	}
	names, err := s.vault.ListArchives()
	if err != nil {
		return nil, fmt.Errorf("listing vault archives: %w", err)
	}
	return names, nil
}

// mirror copies a freshly saved project to the vault, if one is configured.
// Mirroring never fails the save that triggered it.
func (s *Service) mirror(name string) {
	if s.vault == nil {
		return
	}
	if err := s.BackupProject(name); err != nil {
		s.logger.Warn("vault mirror failed", "name", name, "error", err)
	}
}
