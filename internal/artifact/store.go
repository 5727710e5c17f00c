package artifact

import (
	"fmt"
	"os"
	"path/filepath"

	herrors "github.com/PolarWolf314/huna/internal/errors"
	"github.com/PolarWolf314/huna/internal/secrets"
)

// TransformFunc computes the new plaintext of an artifact from its current
// plaintext. exists is false when the artifact is absent.
type TransformFunc func(current []byte, exists bool) ([]byte, error)

// Store reads and writes encrypted artifacts.
type Store struct {
	writer  *Writer
	gateway secrets.Gateway
}

// NewStore returns a Store encrypting through gateway and writing through writer.
func NewStore(writer *Writer, gateway secrets.Gateway) *Store {
	return &Store{writer: writer, gateway: gateway}
}

// Writer returns the underlying writer.
func (s *Store) Writer() *Writer {
	return s.writer
}

// Exists reports whether the artifact at path is present.
func (s *Store) Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("checking %s: %w", filepath.Base(path), err)
}

// Load decrypts the artifact at path. A missing artifact returns exists=false
// and no error.
func (s *Store) Load(path string) ([]byte, bool, error) {
	ciphertext, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("reading %s: %w", filepath.Base(path), err)
	}

	plaintext, err := s.gateway.Decrypt(ciphertext)
	if err != nil {
		return nil, true, fmt.Errorf("decrypting %s: %w", filepath.Base(path), err)
	}
	return plaintext, true, nil
}

// Save encrypts plaintext for recipients and replaces the artifact at path.
func (s *Store) Save(path string, plaintext []byte, recipients []string) error {
	if len(recipients) == 0 {
		return herrors.ErrEmptyRecipients
	}
	ciphertext, err := s.gateway.Encrypt(plaintext, recipients)
	if err != nil {
		return fmt.Errorf("encrypting %s: %w", filepath.Base(path), err)
	}
	return s.writer.Write(path, ciphertext)
}

// Update loads the artifact at path, applies fn and saves the result.
// Nothing is written when fn fails.
func (s *Store) Update(path string, recipients []string, fn TransformFunc) error {
	current, exists, err := s.Load(path)
	if err != nil {
		return err
	}
	next, err := fn(current, exists)
	if err != nil {
		return err
	}
	return s.Save(path, next, recipients)
}

// Reencrypt re-encrypts the existing artifact at path for recipients.
func (s *Store) Reencrypt(path string, recipients []string) error {
	return s.Update(path, recipients, func(current []byte, exists bool) ([]byte, error) {
		if !exists {
			return nil, fmt.Errorf("re-encrypting %s: %w", filepath.Base(path), os.ErrNotExist)
		}
		return current, nil
	})
}

// Remove securely deletes the artifact at path.
func (s *Store) Remove(path string) error {
	return s.writer.Remove(path)
}
