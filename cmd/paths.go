package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/PolarWolf314/huna/internal/tree"
	"github.com/PolarWolf314/huna/internal/ui"
	"github.com/PolarWolf314/huna/internal/workflows"
	"github.com/spf13/cobra"
)

var (
	listGlob  string
	listFlat  bool
	deleteYes bool
)

func init() {
	listCmd.Flags().StringVarP(&listGlob, "glob", "g", "", "only list paths matching a pattern such as 'email/**'")
	listCmd.Flags().BoolVar(&listFlat, "flat", false, "print one full path per line instead of a tree")

	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "skip confirmation prompt")
}

var listCmd = &cobra.Command{
	Use:     "list [prefix]",
	Aliases: []string{"ls"},
	Short:   "List stored paths as a tree",
	Long: `Lists the paths in the store as a tree. With a prefix only that path and
everything below it are shown.

Examples:
  huna list
  huna list email
  huna list --glob '**/work'`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadEnv()
		if err != nil {
			return report(err)
		}

		opts := workflows.ListOptions{Glob: listGlob}
		if len(args) == 1 {
			opts.Prefix = args[0]
		}
		result, err := workflows.List(context.Background(), env, opts)
		if err != nil {
			return report(err)
		}
		Logger.Debugf("Listing %d path(s)", len(result.Paths))

		if listFlat {
			for _, p := range result.Paths {
				fmt.Println(p)
			}
			return nil
		}
		branch := func(name string) string { return ui.Branch.Sprint(name) }
		leaf := func(name string) string { return ui.Leaf.Sprint(name) }
		fmt.Print(tree.Format(result.Nodes, branch, leaf))
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:     "delete <path>",
	Aliases: []string{"rm"},
	Short:   "Delete a secret",
	Long: `Removes the path from the index and securely deletes its record.

The record remains in the git history of the store.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting delete command")
		env, err := loadEnv()
		if err != nil {
			return report(err)
		}

		if !deleteYes {
			ok, err := confirm("Delete " + ui.Path.Sprint(args[0]) + "?")
			if err != nil {
				return report(err)
			}
			if !ok {
				fmt.Fprintln(os.Stderr, ui.Warning.Sprint("⚠")+" Delete cancelled.")
				return nil
			}
		}

		result, err := workflows.Delete(context.Background(), env, workflows.DeleteOptions{Path: args[0]})
		if err != nil {
			return report(err)
		}
		fmt.Fprintln(os.Stderr, ui.Done("Deleted "+ui.Path.Sprint(args[0])+" "+ui.Muted.Sprint(result.ID)))
		return nil
	},
}

var moveCmd = &cobra.Command{
	Use:     "move <from> <to>",
	Aliases: []string{"mv"},
	Short:   "Rename a secret",
	Long:    `Binds the secret at <from> to <to>. The encrypted record is not rewritten.`,
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting move command")
		env, err := loadEnv()
		if err != nil {
			return report(err)
		}
		if _, err := workflows.Move(context.Background(), env, workflows.MoveOptions{From: args[0], To: args[1]}); err != nil {
			return report(err)
		}
		fmt.Fprintln(os.Stderr, ui.Done("Moved "+ui.Path.Sprint(args[0])+" to "+ui.Path.Sprint(args[1])))
		return nil
	},
}

var copyCmd = &cobra.Command{
	Use:     "copy <from> <to>",
	Aliases: []string{"cp"},
	Short:   "Duplicate a secret",
	Long:    `Stores a copy of the secret at <from> under <to>. The copy is an independent record.`,
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting copy command")
		env, err := loadEnv()
		if err != nil {
			return report(err)
		}
		result, err := workflows.Copy(context.Background(), env, workflows.MoveOptions{From: args[0], To: args[1]})
		if err != nil {
			return report(err)
		}
		fmt.Fprintln(os.Stderr, ui.Done("Copied "+ui.Path.Sprint(args[0])+" to "+ui.Path.Sprint(args[1])+" "+ui.Muted.Sprint(result.NewID)))
		return nil
	},
}
