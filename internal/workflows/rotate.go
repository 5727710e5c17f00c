package workflows

import (
	"context"

	herrors "github.com/PolarWolf314/huna/internal/errors"
	"github.com/PolarWolf314/huna/internal/recipients"
)

// RotateOptions configures the rotate workflow.
type RotateOptions struct {
	// Recipients is the new recipient set.
	Recipients []string

	// Force re-encrypts even when the set is unchanged, completing an
	// interrupted rotation. Confirmation prompting is done by the caller.
	Force bool
}

// Rotate re-encrypts an existing store for a new recipient set.
//
// The recipient artifact is written first, then every record in ID order,
// then the index. Each artifact is replaced on its own; the rotation is not
// a transaction.
//
// Returns ErrStoreNotInitialized if there is no store.
// Returns ErrEmptyRecipients if no recipients are given.
// Returns ErrRecipientsUnchanged if the set is the active one and Force is false.
// Returns an error wrapping ErrPartialRotation if re-encryption stopped part-way.
func Rotate(ctx context.Context, env *Env, opts RotateOptions) (*InitResult, error) {
	exists, err := env.Recipients.Exists()
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, herrors.ErrStoreNotInitialized
	}
	if _, err := env.requireStore(); err != nil {
		return nil, err
	}
	return applyRecipients(ctx, env, recipients.NewSet(opts.Recipients...), opts.Force, &InitResult{})
}

// Recipients returns the active recipient set.
func Recipients(ctx context.Context, env *Env) ([]string, error) {
	set, err := env.requireStore()
	if err != nil {
		return nil, err
	}
	return set.Strings(), nil
}
