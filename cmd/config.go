package cmd

import (
	"fmt"
	"os"

	"github.com/PolarWolf314/huna/internal/configs"
	"github.com/PolarWolf314/huna/internal/ui"
	"github.com/spf13/cobra"
)

var (
	configWrite bool
	configForce bool
)

func init() {
	configCmd.Flags().BoolVar(&configWrite, "write", false, "save the effective configuration to the config file")
	configCmd.Flags().BoolVar(&configForce, "force", false, "overwrite an existing config file when writing")
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Display the effective configuration",
	Long: `Prints the configuration after applying defaults, the config file and
HUNA_* environment variables, in config file format.

Examples:
  huna config
  huna config --write`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := configs.Load()
		if err != nil {
			return report(err)
		}
		Logger.Debugf("Config file: %s", cfg.ConfigFile)

		if !configWrite {
			return configs.EncodeTOML(os.Stdout, cfg.View())
		}

		if _, err := os.Stat(cfg.ConfigFile); err == nil && !configForce {
			return report(fmt.Errorf("%s already exists, pass --force to overwrite it", cfg.ConfigFile))
		}
		if err := configs.SaveTOML(cfg.ConfigFile, cfg.View()); err != nil {
			return report(err)
		}
		fmt.Fprintln(os.Stderr, ui.Done("Wrote "+ui.Path.Sprint(cfg.ConfigFile)))
		return nil
	},
}
