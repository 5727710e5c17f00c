package workflows

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/PolarWolf314/huna/internal/audit"
	herrors "github.com/PolarWolf314/huna/internal/errors"
	"github.com/PolarWolf314/huna/internal/recipients"
	"github.com/PolarWolf314/huna/internal/secrets"
)

// InitOptions configures the init workflow.
type InitOptions struct {
	// Recipients to encrypt the store for. When empty, the recipients of the
	// local identities file are used, generating an identity if needed.
	Recipients []string

	// Force re-encrypts an existing store even when the set is unchanged.
	Force bool
}

// InitResult contains the outcome of an init or rotate operation.
type InitResult struct {
	// Created is true when a new store was created.
	Created bool

	// Rotated is true when an existing store was re-encrypted.
	Rotated bool

	// Artifacts is the number of records and index re-encrypted.
	Artifacts int

	// Recipients is the active recipient set.
	Recipients []string

	// GeneratedIdentity is the identity file created for this store, if any.
	GeneratedIdentity string
}

// Init creates the store, or rotates an existing one to a new recipient set.
//
// Returns ErrStoreExists when the store exists and no recipients are given.
// Returns ErrRecipientsUnchanged when the store is already encrypted for the
// requested set and Force is false. Returns an error wrapping
// ErrPartialRotation, together with a result, when re-encryption stopped
// part-way; running Init again with Force completes it.
func Init(ctx context.Context, env *Env, opts InitOptions) (*InitResult, error) {
	result := &InitResult{}

	requested := opts.Recipients
	if len(requested) == 0 {
		// Without explicit recipients init only creates a store.
		exists, err := env.Recipients.Exists()
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, herrors.ErrStoreExists
		}

		local, generated, err := localRecipients(env)
		if err != nil {
			return nil, err
		}
		requested = local
		result.GeneratedIdentity = generated
	}

	return applyRecipients(ctx, env, recipients.NewSet(requested...), opts.Force, result)
}

func applyRecipients(ctx context.Context, env *Env, set recipients.Set, force bool, result *InitResult) (*InitResult, error) {
	if len(set) == 0 {
		return nil, herrors.ErrEmptyRecipients
	}

	res, err := env.Recipients.Init(ctx, set, force)
	if res != nil {
		result.Created = res.Created
		result.Rotated = res.Rotated
		result.Artifacts = res.Artifacts
	}
	if err != nil {
		if errors.Is(err, herrors.ErrPartialRotation) {
			env.Audit.Log(ctx, audit.Entry{Operation: "rotate", Count: result.Artifacts, Recipients: len(set), Mode: "partial"})
			return result, err
		}
		return nil, err
	}
	result.Recipients = set.Strings()

	if result.Created {
		env.Log.Infof("Created store for %d recipient(s)", len(set))
		if env.Git != nil {
			if err := env.Git.Init(ctx); err != nil {
				env.Log.Warnf("Could not create git repository: %v", err)
			}
		}
		env.Audit.Log(ctx, audit.Entry{Operation: "init", Recipients: len(set)})
		return result, nil
	}

	env.Log.Infof("Re-encrypted %d artifact(s) for %d recipient(s)", result.Artifacts, len(set))
	env.Audit.Log(ctx, audit.Entry{Operation: "rotate", Count: result.Artifacts, Recipients: len(set)})
	return result, nil
}

// localRecipients returns the recipients of the identities file, creating a
// new identity when the file does not exist.
func localRecipients(env *Env) ([]string, string, error) {
	path := env.Config.IdentitiesFile

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		recipient, err := secrets.GenerateIdentity(path)
		if err != nil {
			return nil, "", err
		}
		env.Log.Infof("Generated a new identity")
		return []string{recipient}, path, nil
	}

	rcpts, err := secrets.IdentityRecipients(path)
	if err != nil {
		return nil, "", err
	}
	if len(rcpts) == 0 {
		return nil, "", fmt.Errorf("%w: no recipients can be derived from the identities file", herrors.ErrEmptyRecipients)
	}
	return rcpts, "", nil
}
