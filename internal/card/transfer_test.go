package card_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pfoca/internal/card"
	"pfoca/internal/testutil"
)

func TestService_ExportImport(t *testing.T) {
	env := testutil.NewEnv(t)
	env.Service.SetSealer(testutil.NewTestSealer())
	file := saveFilled(t, env, "share")
	original, err := env.Documents.Read(file.Name)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	t.Run("raw", func(t *testing.T) {
		var buf bytes.Buffer
		if err := env.Service.ExportProject(file.Name, &buf, ""); err != nil {
			t.Fatalf("ExportProject() error = %v", err)
		}
		if !bytes.Equal(buf.Bytes(), original) {
			t.Error("raw export differs from the saved archive")
		}

		imported, err := env.Service.ImportProject("copy", &buf, "")
		if err != nil {
			t.Fatalf("ImportProject() error = %v", err)
		}
		if imported.Name != "copy.pfp" {
			t.Errorf("Name = %q, want copy.pfp", imported.Name)
		}
	})

	t.Run("sealed", func(t *testing.T) {
		var buf bytes.Buffer
		if err := env.Service.ExportProject(file.Name, &buf, "hunter2"); err != nil {
			t.Fatalf("ExportProject() error = %v", err)
		}
		sealed := buf.Bytes()
		if bytes.Contains(sealed, []byte("meta.json")) {
			t.Error("sealed export exposes archive entries")
		}

		if _, err := env.Service.ImportProject("s", bytes.NewReader(sealed), ""); !errors.Is(err, card.ErrPassphraseRequired) {
			t.Errorf("ImportProject(no passphrase) error = %v, want ErrPassphraseRequired", err)
		}
		if _, err := env.Service.ImportProject("s", bytes.NewReader(sealed), "wrong"); err == nil {
			t.Error("ImportProject(wrong passphrase) succeeded")
		}

		imported, err := env.Service.ImportProject("s", bytes.NewReader(sealed), "hunter2")
		if err != nil {
			t.Fatalf("ImportProject() error = %v", err)
		}
		ws := card.NewWorkspace(testutil.TestBox)
		if report, err := env.Service.LoadProject(ws, imported.Name); err != nil || !report.Complete() {
			t.Errorf("LoadProject(imported) = %+v, %v", report, err)
		}
	})

	t.Run("garbage is not stored", func(t *testing.T) {
		before := env.Documents.Writes()
		_, err := env.Service.ImportProject("junk", strings.NewReader("not an archive"), "")
		if !errors.Is(err, card.ErrArchiveRead) {
			t.Errorf("ImportProject() error = %v, want ErrArchiveRead", err)
		}
		if env.Documents.Writes() != before {
			t.Error("garbage import reached the document directory")
		}
	})

	t.Run("missing project", func(t *testing.T) {
		err := env.Service.ExportProject("nope.pfp", &bytes.Buffer{}, "")
		if !errors.Is(err, card.ErrProjectNotFound) {
			t.Errorf("ExportProject() error = %v, want ErrProjectNotFound", err)
		}
	})
}

func TestService_ExportSealedWithoutSealer(t *testing.T) {
	env := testutil.NewEnv(t)
	file := saveFilled(t, env, "x")
	if err := env.Service.ExportProject(file.Name, &bytes.Buffer{}, "pw"); err == nil {
		t.Error("ExportProject() with passphrase but no sealer succeeded")
	}
}

func TestService_OpenExternal(t *testing.T) {
	env := testutil.NewEnv(t)
	file := saveFilled(t, env, "origin")
	data, _ := env.Documents.Read(file.Name)

	path := filepath.Join(t.TempDir(), "shared.pfp")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	ws := card.NewWorkspace(testutil.TestBox)
	report, err := env.Service.OpenExternal(ws, path, "")
	if err != nil {
		t.Fatalf("OpenExternal() error = %v", err)
	}
	if report.Name != "shared.pfp" || !report.Complete() {
		t.Errorf("report = %+v", report)
	}
	if _, err := env.Documents.Stat("shared.pfp"); err != nil {
		t.Errorf("Stat(shared.pfp) error = %v", err)
	}
}

func TestService_Vault(t *testing.T) {
	env := testutil.NewEnv(t)

	if err := env.Service.BackupProject("a.pfp"); err == nil {
		t.Error("BackupProject() without vault succeeded")
	}
	if _, err := env.Service.FetchProject("a.pfp"); err == nil {
		t.Error("FetchProject() without vault succeeded")
	}
	if _, err := env.Service.RemoteProjects(); err == nil {
		t.Error("RemoteProjects() without vault succeeded")
	}

	file := saveFilled(t, env, "kept")
	env.Service.SetVault(testutil.NewTestVault())
	if err := env.Service.BackupProject(file.Name); err != nil {
		t.Fatalf("BackupProject() error = %v", err)
	}
	if err := env.Service.DeleteProjects(file.Name); err != nil {
		t.Fatalf("DeleteProjects() error = %v", err)
	}

	names, err := env.Service.RemoteProjects()
	if err != nil || len(names) != 1 || names[0] != "kept.pfp" {
		t.Fatalf("RemoteProjects() = %v, %v", names, err)
	}

	fetched, err := env.Service.FetchProject("kept.pfp")
	if err != nil {
		t.Fatalf("FetchProject() error = %v", err)
	}
	ws := card.NewWorkspace(testutil.TestBox)
	if _, err := env.Service.LoadProject(ws, fetched.Name); err != nil {
		t.Errorf("LoadProject(fetched) error = %v", err)
	}

	if _, err := env.Service.FetchProject("absent.pfp"); !errors.Is(err, card.ErrProjectNotFound) {
		t.Errorf("FetchProject(absent) error = %v, want ErrProjectNotFound", err)
	}
}
