package workflows

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/huna/internal/artifact"
	"github.com/PolarWolf314/huna/internal/audit"
	"github.com/PolarWolf314/huna/internal/configs"
	"github.com/PolarWolf314/huna/internal/editor"
	herrors "github.com/PolarWolf314/huna/internal/errors"
	"github.com/PolarWolf314/huna/internal/index"
	logger "github.com/PolarWolf314/huna/internal/logging"
	"github.com/PolarWolf314/huna/internal/recipients"
	"github.com/PolarWolf314/huna/internal/records"
	"github.com/PolarWolf314/huna/internal/secrets"
	"github.com/PolarWolf314/huna/internal/tempfile"
)

// Copier puts a secret on the clipboard for a limited time.
type Copier interface {
	Copy(ctx context.Context, secret string) error
}

// Deps are the collaborators an Env is built from.
type Deps struct {
	Log       logger.Logger
	Registry  *tempfile.Registry
	Gateway   secrets.Gateway
	Editor    editor.Editor
	Clipboard Copier
	// Git is nil when git integration is disabled.
	Git *audit.Git
}

// Env is everything a workflow needs to operate on one store.
type Env struct {
	Config     *configs.Config
	Log        logger.Logger
	Registry   *tempfile.Registry
	Artifacts  *artifact.Store
	Recipients *recipients.Manager
	Index      *index.Store
	Records    *records.Store
	Clipboard  Copier
	Git        *audit.Git
	Audit      *audit.Recorder
}

// NewEnv wires the store components for cfg.
func NewEnv(cfg *configs.Config, deps Deps) *Env {
	registry := deps.Registry
	if registry == nil {
		registry = tempfile.New()
	}
	writer := artifact.NewWriter(registry, artifact.Mode(cfg.Replace))
	arts := artifact.NewStore(writer, deps.Gateway)

	env := &Env{
		Config:    cfg,
		Log:       deps.Log,
		Registry:  registry,
		Artifacts: arts,
		Clipboard: deps.Clipboard,
		Git:       deps.Git,
	}

	env.Recipients = recipients.NewManager(cfg.StoreDir, arts, env.rotationTargets)
	env.Index = index.NewStore(cfg.StoreDir, arts, env.Recipients)
	env.Records = records.NewStore(records.Options{
		Dir:        cfg.StoreDir,
		ScratchDir: cfg.ScratchDir,
		Artifacts:  arts,
		Recipients: env.Recipients,
		Registry:   registry,
		Editor:     deps.Editor,
	})

	var committer audit.Committer = audit.Nop{}
	if deps.Git != nil {
		committer = deps.Git
	}
	env.Audit = audit.NewRecorder(committer, deps.Log)
	return env
}

// rotationTargets lists records ordered by ID, then the index. It fails with
// ErrMissingRecord if the index references an ID that has no record.
func (e *Env) rotationTargets() ([]string, error) {
	entries, err := e.Index.Entries()
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		ok, err := e.Records.Exists(entry.ID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: %s (%s)", herrors.ErrMissingRecord, entry.ID, entry.Path)
		}
	}

	paths, err := e.Records.Paths()
	if err != nil {
		return nil, err
	}
	return append(paths, e.Index.Path()), nil
}

// requireStore fails with ErrStoreNotInitialized when there is no store.
func (e *Env) requireStore() (recipients.Set, error) {
	return e.Recipients.Load()
}
