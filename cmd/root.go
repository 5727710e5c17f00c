package cmd

import (
	"os"
	"path/filepath"

	"github.com/PolarWolf314/huna/internal/audit"
	"github.com/PolarWolf314/huna/internal/clipboard"
	"github.com/PolarWolf314/huna/internal/configs"
	"github.com/PolarWolf314/huna/internal/editor"
	logger "github.com/PolarWolf314/huna/internal/logging"
	"github.com/PolarWolf314/huna/internal/secrets"
	"github.com/PolarWolf314/huna/internal/tempfile"
	"github.com/PolarWolf314/huna/internal/utils"
	"github.com/PolarWolf314/huna/internal/workflows"
	"github.com/spf13/cobra"
)

const restoreCommand = "clip-restore"

var (
	verbose bool
	debug   bool
	Logger  logger.Logger

	// Registry tracks plaintext temp files for the whole invocation.
	Registry = tempfile.New()

	RootCmd = &cobra.Command{
		Use:   "huna",
		Short: "A single-user secret store encrypted with age",
		Long: `huna keeps secrets in a directory of age-encrypted records.

Paths such as email/work live only in an encrypted index, so the store
directory reveals nothing but opaque record IDs. Every change can be
committed to a git repository inside the store.

Run 'huna init' to create a store.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			Logger = logger.Logger{
				Verbose: verbose,
				Debug:   debug,
			}
			Logger.Debugf("Running %s with verbose=%t, debug=%t", cmd.Name(), verbose, debug)
		},
	}
)

func init() {
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	RootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug output")

	RootCmd.AddCommand(initCmd)
	RootCmd.AddCommand(rotateCmd)
	RootCmd.AddCommand(recipientsCmd)
	RootCmd.AddCommand(addCmd)
	RootCmd.AddCommand(generateCmd)
	RootCmd.AddCommand(editCmd)
	RootCmd.AddCommand(showCmd)
	RootCmd.AddCommand(listCmd)
	RootCmd.AddCommand(deleteCmd)
	RootCmd.AddCommand(moveCmd)
	RootCmd.AddCommand(copyCmd)
	RootCmd.AddCommand(gitCmd)
	RootCmd.AddCommand(logCmd)
	RootCmd.AddCommand(doctorCmd)
	RootCmd.AddCommand(configCmd)
	RootCmd.AddCommand(clipRestoreCmd)
}

// Execute runs the root command.
func Execute() error {
	return RootCmd.Execute()
}

// loadEnv reads the configuration and wires the store for one command.
func loadEnv() (*workflows.Env, error) {
	cfg, err := configs.Load()
	if err != nil {
		return nil, err
	}
	Logger.Debugf("Store: %s, identities: %s, replace mode: %s", cfg.StoreDir, cfg.IdentitiesFile, cfg.Replace)

	deps := workflows.Deps{
		Log:      Logger,
		Registry: Registry,
		Gateway:  secrets.NewAgeGateway(cfg.IdentitiesFile, cfg.Armor, utils.ReadPassphraseFromTTY),
		Editor:   editor.FromEnv(os.LookupEnv),
	}

	spawner, err := clipboard.NewExecSpawner(restoreCommand)
	if err != nil {
		Logger.Warnf("Clipboard support disabled: %v", err)
	} else {
		deps.Clipboard = clipboard.NewHandoff(clipboard.Options{
			Service: clipboard.System{},
			Spawner: spawner,
			PidFile: filepath.Join(cfg.ScratchDir, "clip.pid"),
			Timeout: cfg.ClipTimeout,
		})
	}

	if cfg.Git {
		git := audit.NewGit(cfg.StoreDir)
		if git.Installed() {
			deps.Git = git
		} else {
			Logger.Debugf("git not found in PATH, audit commits disabled")
		}
	}

	return workflows.NewEnv(cfg, deps), nil
}
