package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/PolarWolf314/huna/internal/clipboard"
	"github.com/spf13/cobra"
)

// clipRestoreCmd is the detached process started by show --clip. It reads its
// request from stdin, never the secret itself.
var clipRestoreCmd = &cobra.Command{
	Use:    restoreCommand,
	Short:  "Restore the clipboard after a timeout",
	Hidden: true,
	Args:   cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := clipboard.ReadRequest(os.Stdin)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		restorer := &clipboard.Restorer{
			Service: clipboard.System{},
			History: clipboard.NewManagerHistory(),
		}
		outcome, err := restorer.Run(ctx, req)
		if err != nil {
			return err
		}
		Logger.Debugf("Clipboard restorer finished with outcome %d", outcome)
		return nil
	},
}
