package records

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/PolarWolf314/huna/internal/artifact"
	"github.com/PolarWolf314/huna/internal/editor"
	herrors "github.com/PolarWolf314/huna/internal/errors"
	"github.com/PolarWolf314/huna/internal/recipients"
	"github.com/PolarWolf314/huna/internal/tempfile"
	"github.com/PolarWolf314/huna/internal/utils"
)

// Extension is appended to the ID to form a record file name.
const Extension = ".age"

const maxIDAttempts = 32

// RecipientSource supplies the recipient set new ciphertext is encrypted for.
type RecipientSource interface {
	Load() (recipients.Set, error)
}

// Options configures a Store.
type Options struct {
	Dir        string
	ScratchDir string
	Artifacts  *artifact.Store
	Recipients RecipientSource
	Registry   *tempfile.Registry
	Editor     editor.Editor
}

// Store holds the secret records of one store.
type Store struct {
	opts  Options
	newID func() (string, error)
}

// NewStore returns a record store.
func NewStore(opts Options) *Store {
	return &Store{opts: opts, newID: utils.GenerateID}
}

// Path returns the file of record id.
func (s *Store) Path(id string) string {
	return filepath.Join(s.opts.Dir, id+Extension)
}

// IDs returns the IDs of every record file in the store, sorted.
func (s *Store) IDs() ([]string, error) {
	entries, err := os.ReadDir(s.opts.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing records: %w", err)
	}

	var ids []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, Extension) {
			continue
		}
		id := strings.TrimSuffix(name, Extension)
		if utils.IsID(id) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// Paths returns the files of every record, ordered by ID.
func (s *Store) Paths() ([]string, error) {
	ids, err := s.IDs()
	if err != nil {
		return nil, err
	}
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = s.Path(id)
	}
	return out, nil
}

// Exists reports whether record id has a file.
func (s *Store) Exists(id string) (bool, error) {
	return s.opts.Artifacts.Exists(s.Path(id))
}

// Create stores payload under a freshly drawn ID and returns the ID.
func (s *Store) Create(payload []byte) (string, error) {
	if !utils.HasContent(payload) {
		return "", herrors.ErrEmptyPayload
	}
	set, err := s.opts.Recipients.Load()
	if err != nil {
		return "", err
	}

	id, err := s.allocate()
	if err != nil {
		return "", err
	}
	if err := s.opts.Artifacts.Save(s.Path(id), payload, set); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) allocate() (string, error) {
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id, err := s.newID()
		if err != nil {
			return "", err
		}
		exists, err := s.Exists(id)
		if err != nil {
			return "", err
		}
		if !exists {
			return id, nil
		}
	}
	return "", fmt.Errorf("allocating record id: %d collisions in a row", maxIDAttempts)
}

// Read returns the payload of record id. A missing file is corruption: the
// caller found id in the index.
func (s *Store) Read(id string) ([]byte, error) {
	payload, exists, err := s.opts.Artifacts.Load(s.Path(id))
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", herrors.ErrMissingRecord, id)
	}
	return payload, nil
}

// ReplaceAll overwrites the payload of record id.
func (s *Store) ReplaceAll(id string, payload []byte) error {
	if !utils.HasContent(payload) {
		return herrors.ErrEmptyPayload
	}
	return s.update(id, func([]byte) ([]byte, error) {
		return payload, nil
	})
}

// ReplaceFirstLine substitutes line 1 of record id and keeps the rest.
func (s *Store) ReplaceFirstLine(id, line string) error {
	if strings.TrimSpace(line) == "" || strings.ContainsAny(line, "\r\n") {
		return fmt.Errorf("%w: replacement must be a single non-blank line", herrors.ErrEmptyPayload)
	}
	return s.update(id, func(current []byte) ([]byte, error) {
		return ReplaceFirstLine(current, line), nil
	})
}

// ReplaceFirstLine returns payload with line 1 replaced.
func ReplaceFirstLine(payload []byte, line string) []byte {
	_, rest, found := bytes.Cut(payload, []byte("\n"))
	out := []byte(line + "\n")
	if found {
		out = append(out, rest...)
	}
	return out
}

// FirstLine returns line 1 of payload without its newline.
func FirstLine(payload []byte) string {
	line, _, _ := bytes.Cut(payload, []byte("\n"))
	return strings.TrimSuffix(string(line), "\r")
}

func (s *Store) update(id string, fn func(current []byte) ([]byte, error)) error {
	set, err := s.opts.Recipients.Load()
	if err != nil {
		return err
	}
	return s.opts.Artifacts.Update(s.Path(id), set, func(current []byte, exists bool) ([]byte, error) {
		if !exists {
			return nil, fmt.Errorf("%w: %s", herrors.ErrMissingRecord, id)
		}
		return fn(current)
	})
}

// Edit opens record id in the editor and saves the result. The edit must
// change the content and leave at least one non-blank line.
func (s *Store) Edit(ctx context.Context, id string) error {
	current, err := s.Read(id)
	if err != nil {
		return err
	}
	edited, err := s.runEditor(ctx, current)
	if err != nil {
		return err
	}
	if sha256.Sum256(edited) == sha256.Sum256(current) {
		return herrors.ErrUnchanged
	}
	if !utils.HasContent(edited) {
		return herrors.ErrEmptyPayload
	}
	return s.update(id, func([]byte) ([]byte, error) {
		return edited, nil
	})
}

// Compose opens an empty buffer in the editor and stores the result as a
// new record.
func (s *Store) Compose(ctx context.Context) (string, error) {
	if _, err := s.opts.Recipients.Load(); err != nil {
		return "", err
	}
	payload, err := s.runEditor(ctx, nil)
	if err != nil {
		return "", err
	}
	return s.Create(payload)
}

func (s *Store) runEditor(ctx context.Context, initial []byte) ([]byte, error) {
	if s.opts.Editor == nil {
		return nil, fmt.Errorf("%w: no editor configured", herrors.ErrEditorFailed)
	}

	f, err := s.opts.Registry.Create(s.opts.ScratchDir, ".txt")
	if err != nil {
		return nil, err
	}
	scratch := f.Name()
	defer func() { _ = s.opts.Registry.Release(scratch) }()

	if _, err := f.Write(initial); err != nil {
		f.Close()
		return nil, fmt.Errorf("writing scratch file: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("closing scratch file: %w", err)
	}

	if err := s.opts.Editor.Edit(ctx, scratch); err != nil {
		return nil, err
	}

	edited, err := os.ReadFile(scratch)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: scratch file was removed", herrors.ErrEditorFailed)
		}
		return nil, fmt.Errorf("reading scratch file: %w", err)
	}
	return edited, nil
}

// Delete securely removes record id.
func (s *Store) Delete(id string) error {
	return s.opts.Artifacts.Remove(s.Path(id))
}
