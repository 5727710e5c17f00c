package artifact

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/PolarWolf314/huna/internal/tempfile"
)

// Mode selects how a target file is replaced.
type Mode string

const (
	// ModeCopy deletes the target, then copies the new content over it.
	ModeCopy Mode = "copy"
	// ModeRename renames the new content over the target.
	ModeRename Mode = "rename"
)

// CopyFunc copies the file at src to dst, creating or truncating dst.
type CopyFunc func(src, dst string) error

// Writer replaces files through registered temporary files.
type Writer struct {
	registry *tempfile.Registry
	mode     Mode
	copy     CopyFunc
}

// NewWriter returns a Writer that registers its temporary files with registry.
func NewWriter(registry *tempfile.Registry, mode Mode) *Writer {
	if mode != ModeRename {
		mode = ModeCopy
	}
	return &Writer{registry: registry, mode: mode, copy: copyFile}
}

// Mode returns the replace mode in use.
func (w *Writer) Mode() Mode {
	return w.mode
}

// Write replaces target with data.
func (w *Writer) Write(target string, data []byte) error {
	tmp, err := w.stage(filepath.Dir(target), data)
	if err != nil {
		return err
	}

	switch w.mode {
	case ModeRename:
		if err := os.Rename(tmp, target); err != nil {
			_ = w.registry.Release(tmp)
			return fmt.Errorf("replacing %s: %w", filepath.Base(target), err)
		}
		w.registry.Forget(tmp)
		return syncDir(filepath.Dir(target))
	default:
		defer func() { _ = w.registry.Release(tmp) }()
		if err := tempfile.Wipe(target); err != nil {
			return fmt.Errorf("removing previous %s: %w", filepath.Base(target), err)
		}
		if err := w.copy(tmp, target); err != nil {
			return fmt.Errorf("copying new %s into place: %w", filepath.Base(target), err)
		}
		return nil
	}
}

// Remove securely deletes target. A missing target is not an error.
func (w *Writer) Remove(target string) error {
	if err := tempfile.Wipe(target); err != nil {
		return fmt.Errorf("deleting %s: %w", filepath.Base(target), err)
	}
	return nil
}

func (w *Writer) stage(dir string, data []byte) (string, error) {
	f, err := w.registry.Create(dir, ".tmp")
	if err != nil {
		return "", err
	}
	path := f.Name()

	if _, err := f.Write(data); err != nil {
		f.Close()
		_ = w.registry.Release(path)
		return "", fmt.Errorf("writing temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		_ = w.registry.Release(path)
		return "", fmt.Errorf("syncing temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = w.registry.Release(path)
		return "", fmt.Errorf("closing temp file: %w", err)
	}
	return path, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return nil
	}
	defer d.Close()
	// Some platforms cannot fsync a directory.
	_ = d.Sync()
	return nil
}
