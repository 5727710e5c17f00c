package tempfile

import (
	"crypto/rand"
	"fmt"
	"io"
	"os"
)

const wipeChunk = 32 * 1024

// Wipe overwrites path with random bytes, syncs it and removes it. If the
// file cannot be overwritten it is still removed. A missing file is not an
// error.
func Wipe(path string) error {
	info, err := os.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("inspecting %s: %w", path, err)
	}

	if info.Mode().IsRegular() && info.Size() > 0 {
		// Overwrite failures fall through to a plain unlink.
		_ = overwrite(path, info.Size())
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing %s: %w", path, err)
	}
	return nil
}

func overwrite(path string, size int64) error {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	defer f.Close()

	buf := make([]byte, wipeChunk)
	for remaining := size; remaining > 0; {
		n := int64(len(buf))
		if remaining < n {
			n = remaining
		}
		if _, err := io.ReadFull(rand.Reader, buf[:n]); err != nil {
			return err
		}
		if _, err := f.Write(buf[:n]); err != nil {
			return err
		}
		remaining -= n
	}
	return f.Sync()
}
