package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/PolarWolf314/huna/internal/audit"
	"github.com/PolarWolf314/huna/internal/configs"
	"github.com/PolarWolf314/huna/internal/workflows"
	"github.com/spf13/cobra"
)

var (
	logJSON bool
	logOp   string
)

func init() {
	logCmd.Flags().BoolVar(&logJSON, "json", false, "output as JSON array")
	logCmd.Flags().StringVar(&logOp, "operation", "", "only show entries for one operation, such as rotate")
}

var gitCmd = &cobra.Command{
	Use:                "git <args>...",
	Short:              "Run git inside the store",
	Long:               `Runs git with the store directory as its working tree, for example to push the history to a backup remote.`,
	DisableFlagParsing: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := configs.Load()
		if err != nil {
			return report(err)
		}
		if _, err := os.Stat(cfg.StoreDir); err != nil {
			return report(fmt.Errorf("store directory %s: %w", cfg.StoreDir, err))
		}

		git := audit.NewGit(cfg.StoreDir)
		err = git.Run(context.Background(), os.Stdin, os.Stdout, os.Stderr, args...)
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// git already explained itself.
			return errReported
		}
		if err != nil {
			return report(err)
		}
		return nil
	},
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "View the audit history",
	Long: `Displays the operations recorded in the store's git history.

Entries name record IDs, never paths.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadEnv()
		if err != nil {
			return report(err)
		}
		entries, err := workflows.History(context.Background(), env)
		if err != nil {
			return report(err)
		}

		if logOp != "" {
			filtered := entries[:0]
			for _, e := range entries {
				if e.Operation == logOp {
					filtered = append(filtered, e)
				}
			}
			entries = filtered
		}

		if logJSON {
			data, err := json.MarshalIndent(entries, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal entries to JSON: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}

		if len(entries) == 0 {
			fmt.Println("No audit log entries found.")
			return nil
		}
		for _, e := range entries {
			fmt.Printf("%-27s  %-9s  %s\n", e.Timestamp, e.Operation, formatDetails(e))
		}
		return nil
	},
}

func formatDetails(e audit.Entry) string {
	parts := append([]string{}, e.IDs...)
	if e.Recipients > 0 {
		parts = append(parts, fmt.Sprintf("recipients=%d", e.Recipients))
	}
	if e.Count > 0 {
		parts = append(parts, fmt.Sprintf("artifacts=%d", e.Count))
	}
	if e.Mode != "" {
		parts = append(parts, "mode="+e.Mode)
	}
	return strings.Join(parts, " ")
}
