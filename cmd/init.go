package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	herrors "github.com/PolarWolf314/huna/internal/errors"
	"github.com/PolarWolf314/huna/internal/ui"
	"github.com/PolarWolf314/huna/internal/workflows"
	"github.com/spf13/cobra"
)

var initForce bool

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "re-encrypt even if the recipients are unchanged")
}

var initCmd = &cobra.Command{
	Use:   "init [recipient...]",
	Short: "Create a store, or re-encrypt it for new recipients",
	Long: `Creates the store directory and encrypts it for the given recipients.

Without recipients, the public keys of your identities file are used. If the
identities file does not exist a new age identity is generated for you.

On an existing store, init with recipients behaves like rotate.

Examples:
  # Create a store for a freshly generated identity
  huna init

  # Create a store for two recipients
  huna init age1ql3z7hjy54pw3hyww5ayyfg7zqgvc7w3j2elw8zmrj2kg5sfn9aqmcac8p age1...`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting init command")
		env, err := loadEnv()
		if err != nil {
			return report(err)
		}

		spinner, cleanup := startSpinner("Initializing store...")
		defer cleanup()

		result, err := workflows.Init(context.Background(), env, workflows.InitOptions{
			Recipients: args,
			Force:      initForce,
		})
		if err != nil {
			spinner.FinalMSG = describe(err)
			if result != nil && errors.Is(err, herrors.ErrPartialRotation) {
				spinner.FinalMSG += fmt.Sprintf("\n%d artifact(s) were re-encrypted before the failure", result.Artifacts)
			}
			return errReported
		}

		spinner.FinalMSG = formatInitResult(env, result)
		return nil
	},
}

func formatInitResult(env *workflows.Env, result *workflows.InitResult) string {
	var b strings.Builder
	if result.Created {
		b.WriteString(ui.Done("Store created at " + ui.Path.Sprint(env.Config.StoreDir)))
	} else {
		b.WriteString(ui.Done(fmt.Sprintf("Re-encrypted %d artifact(s)", result.Artifacts)))
	}
	if result.GeneratedIdentity != "" {
		b.WriteString("\n" + ui.Info.Sprint("→") + " Generated a new identity in " + ui.Path.Sprint(result.GeneratedIdentity))
		b.WriteString("\n" + ui.Warning.Sprint("⚠") + " Back it up: without it the store cannot be decrypted")
	}
	b.WriteString(fmt.Sprintf("\nEncrypted for %d recipient(s):", len(result.Recipients)))
	for _, r := range result.Recipients {
		b.WriteString("\n  " + ui.Highlight.Sprint(r))
	}
	return b.String()
}
