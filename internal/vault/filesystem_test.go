package vault

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewFileSystemVault(t *testing.T) {
	t.Run("creates directory structure", func(t *testing.T) {
		root := filepath.Join(t.TempDir(), "vault")

		v, err := NewFileSystemVault("test", root)
		if err != nil {
			t.Fatalf("NewFileSystemVault() error = %v", err)
		}
		if _, err := os.Stat(filepath.Join(root, "archives")); err != nil {
			t.Errorf("archives directory not created: %v", err)
		}
		if v.name != "test" {
			t.Errorf("name = %q, want %q", v.name, "test")
		}
	})

	t.Run("works with existing directory", func(t *testing.T) {
		if _, err := NewFileSystemVault("test", t.TempDir()); err != nil {
			t.Fatalf("NewFileSystemVault() error = %v", err)
		}
	})
}

func TestFileSystemVault_RejectsPaths(t *testing.T) {
	root := t.TempDir()
	v, err := NewFileSystemVault("test", root)
	if err != nil {
		t.Fatalf("NewFileSystemVault() error = %v", err)
	}

	for _, name := range []string{"", "..", "../x.pfp", "a/b.pfp"} {
		if err := v.PutArchive(name, strings.NewReader("x"), 1); err == nil {
			t.Errorf("PutArchive(%q) succeeded, want error", name)
		}
	}
	if _, err := os.Stat(filepath.Join(root, "x.pfp")); err == nil {
		t.Error("archive written outside the vault")
	}
}

func TestFileSystemVault_NoTempFilesLeft(t *testing.T) {
	v, err := NewFileSystemVault("test", t.TempDir())
	if err != nil {
		t.Fatalf("NewFileSystemVault() error = %v", err)
	}
	v.PutArchive("a.pfp", strings.NewReader("hello"), 99)

	entries, err := os.ReadDir(v.archivesDir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("archives dir has %d entries after failed put, want 0", len(entries))
	}
}

func TestFileSystemVault_ValidateSetup(t *testing.T) {
	root := t.TempDir()
	v, err := NewFileSystemVault("test", root)
	if err != nil {
		t.Fatalf("NewFileSystemVault() error = %v", err)
	}
	if err := os.RemoveAll(filepath.Join(root, "archives")); err != nil {
		t.Fatalf("RemoveAll() error = %v", err)
	}
	if err := v.ValidateSetup(); err == nil {
		t.Error("ValidateSetup() expected error for missing archives directory")
	}
}
