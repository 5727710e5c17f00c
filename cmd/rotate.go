package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	herrors "github.com/PolarWolf314/huna/internal/errors"
	"github.com/PolarWolf314/huna/internal/ui"
	"github.com/PolarWolf314/huna/internal/workflows"
	"github.com/spf13/cobra"
)

var (
	rotateForce bool
	rotateYes   bool
)

func init() {
	rotateCmd.Flags().BoolVar(&rotateForce, "force", false, "re-encrypt even if the recipients are unchanged")
	rotateCmd.Flags().BoolVarP(&rotateYes, "yes", "y", false, "skip confirmation prompt")
}

var rotateCmd = &cobra.Command{
	Use:   "rotate <recipient>...",
	Short: "Re-encrypt the store for a new set of recipients",
	Long: `Re-encrypts the recipient list, every record and the index for the given
recipients. The set replaces the current one; list every recipient that
should keep access, including yourself.

Artifacts are rewritten one at a time. If rotation stops part-way, run the
same command again with --force to finish it.

Examples:
  # Share the store with a second key
  huna rotate age1mine... age1theirs...

  # Finish an interrupted rotation without prompting
  huna rotate --force --yes age1mine... age1theirs...`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting rotate command")
		env, err := loadEnv()
		if err != nil {
			return report(err)
		}

		if !rotateYes {
			question := fmt.Sprintf("%s Re-encrypt the store for %d recipient(s)? Recipients not listed lose access.",
				ui.Warning.Sprint("Warning:"), len(args))
			ok, err := confirm(question)
			if err != nil {
				return report(err)
			}
			if !ok {
				fmt.Fprintln(os.Stderr, ui.Warning.Sprint("⚠")+" Rotation cancelled.")
				return nil
			}
		}

		spinner, cleanup := startSpinner("Re-encrypting store...")
		defer cleanup()

		result, err := workflows.Rotate(context.Background(), env, workflows.RotateOptions{
			Recipients: args,
			Force:      rotateForce,
		})
		if err != nil {
			spinner.FinalMSG = describe(err)
			if result != nil && errors.Is(err, herrors.ErrPartialRotation) {
				spinner.FinalMSG += fmt.Sprintf("\n%d artifact(s) were re-encrypted before the failure", result.Artifacts)
			}
			return errReported
		}

		spinner.FinalMSG = formatInitResult(env, result) + "\n" +
			ui.Info.Sprint("→") + " Other recipients need no action; commit history is in " + ui.Code.Sprint("huna log")
		return nil
	},
}

var recipientsCmd = &cobra.Command{
	Use:   "recipients",
	Short: "Print the recipients the store is encrypted for",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadEnv()
		if err != nil {
			return report(err)
		}
		list, err := workflows.Recipients(context.Background(), env)
		if err != nil {
			return report(err)
		}
		for _, r := range list {
			fmt.Println(r)
		}
		return nil
	},
}
