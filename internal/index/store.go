package index

import (
	"fmt"
	"path/filepath"

	"github.com/PolarWolf314/huna/internal/artifact"
	herrors "github.com/PolarWolf314/huna/internal/errors"
	"github.com/PolarWolf314/huna/internal/recipients"
)

// FileName is the index artifact inside the store directory.
const FileName = ".index.age"

// RecipientSource supplies the recipient set new ciphertext is encrypted for.
type RecipientSource interface {
	Load() (recipients.Set, error)
}

// Store reads and mutates the index artifact of one store.
type Store struct {
	path       string
	artifacts  *artifact.Store
	recipients RecipientSource
}

// NewStore returns the index of the store at dir.
func NewStore(dir string, artifacts *artifact.Store, rcpts RecipientSource) *Store {
	return &Store{path: filepath.Join(dir, FileName), artifacts: artifacts, recipients: rcpts}
}

// Path returns the index artifact path.
func (s *Store) Path() string {
	return s.path
}

// Load decrypts the index. A missing index is empty.
func (s *Store) Load() (*Index, error) {
	data, exists, err := s.artifacts.Load(s.path)
	if err != nil {
		return nil, err
	}
	if !exists {
		return New(), nil
	}
	return Parse(data)
}

// LookupByPath returns the ID bound to path.
func (s *Store) LookupByPath(path string) (string, bool, error) {
	idx, err := s.Load()
	if err != nil {
		return "", false, err
	}
	id, ok := idx.LookupByPath(path)
	return id, ok, nil
}

// LookupByID returns the path bound to id.
func (s *Store) LookupByID(id string) (string, bool, error) {
	idx, err := s.Load()
	if err != nil {
		return "", false, err
	}
	path, ok := idx.LookupByID(id)
	return path, ok, nil
}

// Resolve is LookupByPath that fails with ErrPathNotFound for unknown paths.
func (s *Store) Resolve(path string) (string, error) {
	id, ok, err := s.LookupByPath(path)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("%w: %s", herrors.ErrPathNotFound, path)
	}
	return id, nil
}

// Insert binds path to id, creating the index if it does not exist.
func (s *Store) Insert(path, id string) error {
	return s.update(func(idx *Index) error {
		return idx.Add(path, id)
	})
}

// Remove drops every entry bound to id. Removing an absent ID is not an
// error; callers check existence first.
func (s *Store) Remove(id string) error {
	return s.update(func(idx *Index) error {
		idx.Remove(id)
		return nil
	})
}

// Move rebinds the ID of src to dst in a single rewrite.
func (s *Store) Move(src, dst string) (string, error) {
	var id string
	err := s.update(func(idx *Index) error {
		var ok bool
		id, ok = idx.LookupByPath(src)
		if !ok {
			return fmt.Errorf("%w: %s", herrors.ErrPathNotFound, src)
		}
		if err := ValidatePath(dst); err != nil {
			return err
		}
		if _, taken := idx.LookupByPath(dst); taken {
			return fmt.Errorf("%w: %s", herrors.ErrPathExists, dst)
		}
		idx.Remove(id)
		return idx.Add(dst, id)
	})
	return id, err
}

// Paths returns every path, sorted.
func (s *Store) Paths() ([]string, error) {
	idx, err := s.Load()
	if err != nil {
		return nil, err
	}
	return idx.Paths(), nil
}

// Entries returns every entry, sorted by path.
func (s *Store) Entries() ([]Entry, error) {
	idx, err := s.Load()
	if err != nil {
		return nil, err
	}
	return idx.Entries(), nil
}

// Under returns the sorted paths at or below prefix.
func (s *Store) Under(prefix string) ([]string, error) {
	idx, err := s.Load()
	if err != nil {
		return nil, err
	}
	return idx.Under(prefix), nil
}

// Glob returns the sorted paths matching pattern.
func (s *Store) Glob(pattern string) ([]string, error) {
	idx, err := s.Load()
	if err != nil {
		return nil, err
	}
	return idx.Glob(pattern)
}

func (s *Store) update(fn func(idx *Index) error) error {
	set, err := s.recipients.Load()
	if err != nil {
		return err
	}
	return s.artifacts.Update(s.path, set, func(current []byte, exists bool) ([]byte, error) {
		idx := New()
		if exists {
			idx, err = Parse(current)
			if err != nil {
				return nil, err
			}
		}
		if err := fn(idx); err != nil {
			return nil, err
		}
		return idx.Marshal(), nil
	})
}
