package recipients

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/PolarWolf314/huna/internal/artifact"
	herrors "github.com/PolarWolf314/huna/internal/errors"
	"github.com/PolarWolf314/huna/internal/secrets"
)

// FileName is the recipient artifact inside the store directory.
const FileName = ".recipients.age"

// Inventory lists the artifacts a rotation must re-encrypt, in the order
// they are processed. The recipient artifact itself is not included.
type Inventory func() ([]string, error)

// Manager owns the recipient artifact of one store.
type Manager struct {
	dir       string
	store     *artifact.Store
	inventory Inventory
}

// NewManager returns a Manager for the store at dir.
func NewManager(dir string, store *artifact.Store, inventory Inventory) *Manager {
	return &Manager{dir: dir, store: store, inventory: inventory}
}

// Path returns the recipient artifact path.
func (m *Manager) Path() string {
	return filepath.Join(m.dir, FileName)
}

// Exists reports whether the store has been initialized.
func (m *Manager) Exists() (bool, error) {
	return m.store.Exists(m.Path())
}

// Load returns the active recipient set.
func (m *Manager) Load() (Set, error) {
	data, exists, err := m.store.Load(m.Path())
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, herrors.ErrStoreNotInitialized
	}
	set := ParseSet(data)
	if len(set) == 0 {
		return nil, fmt.Errorf("%w: %s decrypts to no recipients", herrors.ErrEmptyRecipients, FileName)
	}
	return set, nil
}

// InitResult describes what Init did.
type InitResult struct {
	Created   bool
	Rotated   bool
	Artifacts int
	Previous  Set
	Current   Set
}

// PartialRotationError reports a rotation that stopped after re-encrypting
// Done of Total artifacts.
type PartialRotationError struct {
	Done  int
	Total int
	Err   error
}

func (e *PartialRotationError) Error() string {
	return fmt.Sprintf("%s (%d of %d re-encrypted): %v", herrors.ErrPartialRotation, e.Done, e.Total, e.Err)
}

func (e *PartialRotationError) Unwrap() []error {
	return []error{herrors.ErrPartialRotation, e.Err}
}

// Init creates the store for set, or rotates an existing store to set.
// Rotating to the active set is refused unless force is true; force also
// re-encrypts every artifact, which completes an interrupted rotation.
func (m *Manager) Init(ctx context.Context, set Set, force bool) (*InitResult, error) {
	set = NewSet(set...)
	if len(set) == 0 {
		return nil, herrors.ErrEmptyRecipients
	}
	for _, r := range set {
		if err := secrets.ValidateRecipient(r); err != nil {
			return nil, err
		}
	}

	exists, err := m.Exists()
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := os.MkdirAll(m.dir, 0700); err != nil {
			return nil, fmt.Errorf("creating store directory: %w", err)
		}
		if err := m.store.Save(m.Path(), set.Bytes(), set); err != nil {
			return nil, err
		}
		return &InitResult{Created: true, Current: set}, nil
	}

	current, err := m.Load()
	if err != nil {
		return nil, err
	}
	if current.Equal(set) && !force {
		return nil, herrors.ErrRecipientsUnchanged
	}

	// Collect targets before touching anything so a listing failure leaves
	// the store as it was.
	targets, err := m.targets()
	if err != nil {
		return nil, err
	}

	if err := m.store.Save(m.Path(), set.Bytes(), set); err != nil {
		return nil, err
	}

	result := &InitResult{Rotated: true, Previous: current, Current: set}
	for i, path := range targets {
		if err := ctx.Err(); err != nil {
			return result, &PartialRotationError{Done: i, Total: len(targets), Err: err}
		}
		if err := m.store.Reencrypt(path, set); err != nil {
			return result, &PartialRotationError{Done: i, Total: len(targets), Err: err}
		}
		result.Artifacts++
	}
	return result, nil
}

func (m *Manager) targets() ([]string, error) {
	if m.inventory == nil {
		return nil, nil
	}
	paths, err := m.inventory()
	if err != nil {
		return nil, fmt.Errorf("listing artifacts to re-encrypt: %w", err)
	}

	out := paths[:0:0]
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("checking %s: %w", filepath.Base(p), err)
		}
		out = append(out, p)
	}
	return out, nil
}
