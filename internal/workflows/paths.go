package workflows

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/huna/internal/audit"
	herrors "github.com/PolarWolf314/huna/internal/errors"
	"github.com/PolarWolf314/huna/internal/tree"
)

// ListOptions configures the list workflow.
type ListOptions struct {
	// Prefix restricts the listing to a path and everything below it.
	Prefix string

	// Glob restricts the listing to paths matching a doublestar pattern.
	Glob string
}

// ListResult contains the outcome of a list operation.
type ListResult struct {
	Paths []string
	Nodes []tree.Node
}

// List returns the sorted paths of the store and their tree.
//
// Returns ErrPathNotFound if a prefix is given and nothing is below it.
func List(ctx context.Context, env *Env, opts ListOptions) (*ListResult, error) {
	if _, err := env.requireStore(); err != nil {
		return nil, err
	}

	var paths []string
	var err error
	switch {
	case opts.Glob != "":
		paths, err = env.Index.Glob(opts.Glob)
	default:
		paths, err = env.Index.Under(opts.Prefix)
	}
	if err != nil {
		return nil, err
	}
	if opts.Prefix != "" && len(paths) == 0 {
		return nil, fmt.Errorf("%w: %s", herrors.ErrPathNotFound, opts.Prefix)
	}

	return &ListResult{Paths: paths, Nodes: tree.Render(paths)}, nil
}

// DeleteOptions configures the delete workflow.
type DeleteOptions struct {
	Path string
}

// DeleteResult contains the outcome of a delete operation.
type DeleteResult struct {
	ID string
}

// Delete removes a path and securely deletes its record. The index entry
// goes first, so a failure in between leaves an unreferenced record rather
// than a dangling path.
func Delete(ctx context.Context, env *Env, opts DeleteOptions) (*DeleteResult, error) {
	if _, err := env.requireStore(); err != nil {
		return nil, err
	}
	id, err := env.Index.Resolve(opts.Path)
	if err != nil {
		return nil, err
	}
	if err := env.Index.Remove(id); err != nil {
		return nil, err
	}
	if err := env.Records.Delete(id); err != nil {
		return nil, err
	}

	env.Audit.Log(ctx, audit.Entry{Operation: "delete", IDs: []string{id}})
	return &DeleteResult{ID: id}, nil
}

// MoveOptions configures the move and copy workflows.
type MoveOptions struct {
	From string
	To   string
}

// MoveResult contains the outcome of a move or copy operation.
type MoveResult struct {
	// ID is the record of From.
	ID string
	// NewID is the record created for To by a copy.
	NewID string
}

// Move binds the record of From to To. The record itself is not rewritten.
//
// Returns ErrPathNotFound if From does not exist.
// Returns ErrPathExists if To already exists.
func Move(ctx context.Context, env *Env, opts MoveOptions) (*MoveResult, error) {
	if _, err := env.requireStore(); err != nil {
		return nil, err
	}
	id, err := env.Index.Move(opts.From, opts.To)
	if err != nil {
		return nil, err
	}

	env.Audit.Log(ctx, audit.Entry{Operation: "move", IDs: []string{id}})
	return &MoveResult{ID: id}, nil
}

// Copy duplicates the record of From into a new record bound to To. The two
// paths never share a record.
//
// Returns ErrPathNotFound if From does not exist.
// Returns ErrPathExists if To already exists.
func Copy(ctx context.Context, env *Env, opts MoveOptions) (*MoveResult, error) {
	if err := prepareNewPath(env, opts.To); err != nil {
		return nil, err
	}
	id, err := env.Index.Resolve(opts.From)
	if err != nil {
		return nil, err
	}
	payload, err := env.Records.Read(id)
	if err != nil {
		return nil, err
	}
	newID, err := createAt(env, opts.To, payload)
	if err != nil {
		return nil, err
	}

	env.Audit.Log(ctx, audit.Entry{Operation: "copy", IDs: []string{id, newID}})
	return &MoveResult{ID: id, NewID: newID}, nil
}

// History returns the audit entries recorded in the store's git history.
func History(ctx context.Context, env *Env) ([]audit.Entry, error) {
	if _, err := env.requireStore(); err != nil {
		return nil, err
	}
	if env.Git == nil {
		return nil, fmt.Errorf("%w: git integration is disabled", audit.ErrNotRepository)
	}
	return env.Git.History(ctx)
}
