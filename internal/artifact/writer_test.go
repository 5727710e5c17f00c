package artifact

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/PolarWolf314/huna/internal/tempfile"
)

func TestWriterReplacesTarget(t *testing.T) {
	for _, mode := range []Mode{ModeCopy, ModeRename} {
		t.Run(string(mode), func(t *testing.T) {
			dir := t.TempDir()
			target := filepath.Join(dir, "artifact.age")
			reg := tempfile.New()
			w := NewWriter(reg, mode)

			if err := w.Write(target, []byte("first")); err != nil {
				t.Fatalf("first Write failed: %v", err)
			}
			if err := w.Write(target, []byte("second")); err != nil {
				t.Fatalf("second Write failed: %v", err)
			}

			got, err := os.ReadFile(target)
			if err != nil {
				t.Fatalf("ReadFile failed: %v", err)
			}
			if !bytes.Equal(got, []byte("second")) {
				t.Errorf("expected %q, got %q", "second", got)
			}

			if paths := reg.Paths(); len(paths) != 0 {
				t.Errorf("expected no registered temp files, got %v", paths)
			}
			entries, _ := os.ReadDir(dir)
			if len(entries) != 1 {
				t.Errorf("expected only the target in %s, found %d entries", dir, len(entries))
			}
		})
	}
}

func TestNewWriterDefaultsToCopy(t *testing.T) {
	w := NewWriter(tempfile.New(), "")
	if w.Mode() != ModeCopy {
		t.Errorf("expected %q, got %q", ModeCopy, w.Mode())
	}
}

// A failure after the delete and before the copy completes leaves no
// target behind in copy mode.
func TestCopyModeCrashWindowLosesTarget(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "artifact.age")
	if err := os.WriteFile(target, []byte("old"), 0600); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	reg := tempfile.New()
	w := NewWriter(reg, ModeCopy)
	w.copy = func(src, dst string) error { return errors.New("disk full") }

	if err := w.Write(target, []byte("new")); err == nil {
		t.Fatal("expected Write to fail")
	}
	if _, err := os.Stat(target); !os.IsNotExist(err) {
		t.Errorf("expected target to be missing after failed copy, stat returned %v", err)
	}
	if paths := reg.Paths(); len(paths) != 0 {
		t.Errorf("temp file leaked after failure: %v", paths)
	}
}

func TestRenameModeKeepsTargetOnFailure(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "artifact.age")
	if err := os.WriteFile(target, []byte("old"), 0600); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	reg := tempfile.New()
	w := NewWriter(reg, ModeRename)
	w.copy = func(src, dst string) error { return errors.New("must not be called") }

	// Renaming onto a directory fails after the temp file is staged.
	blocker := filepath.Join(dir, "blocked.age")
	if err := os.MkdirAll(filepath.Join(blocker, "child"), 0700); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	if err := w.Write(blocker, []byte("new")); err == nil {
		t.Fatal("expected rename onto a non-empty directory to fail")
	}

	got, err := os.ReadFile(target)
	if err != nil || string(got) != "old" {
		t.Errorf("expected untouched target, got %q (%v)", got, err)
	}
	if paths := reg.Paths(); len(paths) != 0 {
		t.Errorf("temp file leaked after failure: %v", paths)
	}
}

func TestRemove(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "artifact.age")
	if err := os.WriteFile(target, []byte("ciphertext"), 0600); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	w := NewWriter(tempfile.New(), ModeCopy)
	if err := w.Remove(target); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, err := os.Stat(target); !os.IsNotExist(err) {
		t.Errorf("expected target removed, stat returned %v", err)
	}
	if err := w.Remove(target); err != nil {
		t.Errorf("removing a missing file should succeed, got %v", err)
	}
}
