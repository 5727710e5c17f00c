package workflows

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/huna/internal/audit"
	herrors "github.com/PolarWolf314/huna/internal/errors"
	"github.com/PolarWolf314/huna/internal/index"
	"github.com/PolarWolf314/huna/internal/records"
	"github.com/PolarWolf314/huna/internal/utils"
)

// AddOptions configures the add workflow.
type AddOptions struct {
	Path string

	// Payload is the secret as typed or piped. Ignored when Generate is set.
	Payload []byte

	// Generate creates a random password instead of using Payload.
	Generate bool
	Length   int
	Charset  string
}

// AddResult contains the outcome of an add operation.
type AddResult struct {
	ID       string
	Path     string
	Password string // Set only when generated.
}

// Add stores a new secret at a path that does not exist yet.
//
// Returns ErrInvalidPath, ErrPathExists or ErrEmptyPayload before anything
// is written.
func Add(ctx context.Context, env *Env, opts AddOptions) (*AddResult, error) {
	if err := prepareNewPath(env, opts.Path); err != nil {
		return nil, err
	}

	result := &AddResult{Path: opts.Path}
	payload := opts.Payload
	if opts.Generate {
		pw, err := generatePassword(env, opts.Length, opts.Charset)
		if err != nil {
			return nil, err
		}
		result.Password = pw
		payload = []byte(pw + "\n")
	}
	if !utils.HasContent(payload) {
		return nil, herrors.ErrEmptyPayload
	}

	id, err := createAt(env, opts.Path, payload)
	if err != nil {
		return nil, err
	}
	result.ID = id

	env.Audit.Log(ctx, audit.Entry{Operation: "add", IDs: []string{id}})
	return result, nil
}

// GenerateOptions configures the generate workflow.
type GenerateOptions struct {
	Path    string
	Length  int
	Charset string

	// Force replaces the whole record of an existing path. Without it only
	// line 1 is replaced and metadata lines are kept.
	Force bool
}

// GenerateResult contains the outcome of a generate operation.
type GenerateResult struct {
	ID       string
	Path     string
	Password string
	Created  bool
	Replaced bool
}

// Generate stores a random password at a path. A new path gets a new record;
// an existing path has its first line replaced, or its whole record with Force.
func Generate(ctx context.Context, env *Env, opts GenerateOptions) (*GenerateResult, error) {
	if err := index.ValidatePath(opts.Path); err != nil {
		return nil, err
	}
	if _, err := env.requireStore(); err != nil {
		return nil, err
	}

	pw, err := generatePassword(env, opts.Length, opts.Charset)
	if err != nil {
		return nil, err
	}
	result := &GenerateResult{Path: opts.Path, Password: pw}

	id, exists, err := env.Index.LookupByPath(opts.Path)
	if err != nil {
		return nil, err
	}

	if !exists {
		id, err := createAt(env, opts.Path, []byte(pw+"\n"))
		if err != nil {
			return nil, err
		}
		result.ID = id
		result.Created = true
		env.Audit.Log(ctx, audit.Entry{Operation: "generate", IDs: []string{id}, Mode: "create"})
		return result, nil
	}

	result.ID = id
	mode := "in-place"
	if opts.Force {
		mode = "replace"
		result.Replaced = true
		err = env.Records.ReplaceAll(id, []byte(pw+"\n"))
	} else {
		err = env.Records.ReplaceFirstLine(id, pw)
	}
	if err != nil {
		return nil, err
	}

	env.Audit.Log(ctx, audit.Entry{Operation: "generate", IDs: []string{id}, Mode: mode})
	return result, nil
}

// EditOptions configures the edit workflow.
type EditOptions struct {
	Path string
}

// EditResult contains the outcome of an edit operation.
type EditResult struct {
	ID      string
	Created bool
}

// Edit opens a secret in the editor, or composes a new one when the path
// does not exist.
//
// Returns ErrUnchanged if an existing secret was saved without changes.
// Returns ErrEmptyPayload if the result has no non-blank line.
// Returns ErrEditorFailed if the editor exits unsuccessfully.
func Edit(ctx context.Context, env *Env, opts EditOptions) (*EditResult, error) {
	if err := index.ValidatePath(opts.Path); err != nil {
		return nil, err
	}
	if _, err := env.requireStore(); err != nil {
		return nil, err
	}

	id, exists, err := env.Index.LookupByPath(opts.Path)
	if err != nil {
		return nil, err
	}

	if exists {
		if err := env.Records.Edit(ctx, id); err != nil {
			return nil, err
		}
		env.Audit.Log(ctx, audit.Entry{Operation: "edit", IDs: []string{id}})
		return &EditResult{ID: id}, nil
	}

	id, err = env.Records.Compose(ctx)
	if err != nil {
		return nil, err
	}
	if err := insertOrDiscard(env, opts.Path, id); err != nil {
		return nil, err
	}
	env.Audit.Log(ctx, audit.Entry{Operation: "edit", IDs: []string{id}, Mode: "create"})
	return &EditResult{ID: id, Created: true}, nil
}

// ShowOptions configures the show workflow.
type ShowOptions struct {
	Path string

	// Clip hands line 1 to the clipboard instead of returning the payload.
	Clip bool
}

// ShowResult contains the outcome of a show operation.
type ShowResult struct {
	ID      string
	Payload []byte // Empty when Clip is set.
	Copied  bool
}

// Show decrypts a secret.
//
// Returns ErrPathNotFound if the path does not exist.
// Returns ErrMissingRecord if the index references a missing record.
func Show(ctx context.Context, env *Env, opts ShowOptions) (*ShowResult, error) {
	if _, err := env.requireStore(); err != nil {
		return nil, err
	}
	id, err := env.Index.Resolve(opts.Path)
	if err != nil {
		return nil, err
	}
	payload, err := env.Records.Read(id)
	if err != nil {
		return nil, err
	}

	if !opts.Clip {
		return &ShowResult{ID: id, Payload: payload}, nil
	}

	if env.Clipboard == nil {
		return nil, fmt.Errorf("%w: clipboard support is not configured", herrors.ErrClipboard)
	}
	first := records.FirstLine(payload)
	if first == "" {
		return nil, fmt.Errorf("%w: the first line of %s is blank", herrors.ErrEmptyPayload, opts.Path)
	}
	if err := env.Clipboard.Copy(ctx, first); err != nil {
		return nil, err
	}
	return &ShowResult{ID: id, Copied: true}, nil
}

// prepareNewPath checks that path is valid, the store exists and the path
// is free.
func prepareNewPath(env *Env, path string) error {
	if err := index.ValidatePath(path); err != nil {
		return err
	}
	if _, err := env.requireStore(); err != nil {
		return err
	}
	_, exists, err := env.Index.LookupByPath(path)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s", herrors.ErrPathExists, path)
	}
	return nil
}

// createAt stores payload in a new record and binds it to path.
func createAt(env *Env, path string, payload []byte) (string, error) {
	id, err := env.Records.Create(payload)
	if err != nil {
		return "", err
	}
	if err := insertOrDiscard(env, path, id); err != nil {
		return "", err
	}
	return id, nil
}

// insertOrDiscard binds path to the freshly created record id, deleting the
// record again if the index cannot be updated.
func insertOrDiscard(env *Env, path, id string) error {
	if err := env.Index.Insert(path, id); err != nil {
		if delErr := env.Records.Delete(id); delErr != nil {
			env.Log.Warnf("Could not remove unreferenced record %s: %v", id, delErr)
		}
		return err
	}
	return nil
}

func generatePassword(env *Env, length int, charset string) (string, error) {
	if length <= 0 {
		length = env.Config.PasswordLength
	}
	if charset == "" {
		charset = env.Config.Charset
	}
	pw, err := utils.GeneratePassword(length, charset)
	if err != nil {
		return "", fmt.Errorf("%w: %v", herrors.ErrInvalidConfig, err)
	}
	return pw, nil
}
