package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	herrors "github.com/PolarWolf314/huna/internal/errors"
	"github.com/PolarWolf314/huna/internal/ui"
	"github.com/PolarWolf314/huna/internal/utils"
	"github.com/PolarWolf314/huna/internal/workflows"
	"github.com/spf13/cobra"
)

var (
	addGenerate bool
	addLength   int
	addCharset  string

	generateForce   bool
	generateLength  int
	generateCharset string
	generateClip    bool

	showClip bool
)

func init() {
	addCmd.Flags().BoolVarP(&addGenerate, "generate", "g", false, "store a generated password instead of reading one")
	addCmd.Flags().IntVarP(&addLength, "length", "n", 0, "length of the generated password (default from config)")
	addCmd.Flags().StringVar(&addCharset, "charset", "", "character set of the generated password: alnum or symbols")

	generateCmd.Flags().BoolVarP(&generateForce, "force", "f", false, "replace the whole secret, dropping its metadata lines")
	generateCmd.Flags().IntVarP(&generateLength, "length", "n", 0, "length of the password (default from config)")
	generateCmd.Flags().StringVar(&generateCharset, "charset", "", "character set of the password: alnum or symbols")
	generateCmd.Flags().BoolVarP(&generateClip, "clip", "c", false, "copy the password to the clipboard instead of printing it")

	showCmd.Flags().BoolVarP(&showClip, "clip", "c", false, "copy the first line to the clipboard instead of printing")
}

var addCmd = &cobra.Command{
	Use:   "add <path>",
	Short: "Store a new secret",
	Long: `Stores a new secret at a path that does not exist yet.

The secret is read from stdin when it is piped, otherwise you are prompted
for it without echo. Use --generate to store a random password instead.

Examples:
  huna add email/work
  printf 'hunter2\nuser: alice\n' | huna add email/home
  huna add --generate --length 32 bank`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting add command")
		env, err := loadEnv()
		if err != nil {
			return report(err)
		}

		opts := workflows.AddOptions{
			Path:     args[0],
			Generate: addGenerate,
			Length:   addLength,
			Charset:  addCharset,
		}
		if !addGenerate {
			payload, err := readSecret(args[0])
			if err != nil {
				return report(err)
			}
			opts.Payload = payload
		}

		result, err := workflows.Add(context.Background(), env, opts)
		if err != nil {
			return report(err)
		}

		fmt.Fprintln(os.Stderr, ui.Done("Stored "+ui.Path.Sprint(result.Path)+" "+ui.Muted.Sprint(result.ID)))
		if result.Password != "" {
			fmt.Println(result.Password)
		}
		return nil
	},
}

// readSecret reads a secret from piped stdin, or prompts for it twice.
func readSecret(path string) ([]byte, error) {
	if !utils.IsTerminal() {
		return utils.ReadStdin()
	}
	first, err := utils.ReadPassphrase("Secret for " + path + ": ")
	if err != nil {
		return nil, err
	}
	second, err := utils.ReadPassphrase("Retype secret for " + path + ": ")
	if err != nil {
		return nil, err
	}
	if string(first) != string(second) {
		return nil, fmt.Errorf("the entered secrets do not match")
	}
	return append(first, '\n'), nil
}

var generateCmd = &cobra.Command{
	Use:   "generate <path>",
	Short: "Generate a password and store it",
	Long: `Generates a random password and stores it at path.

A new path gets a new secret. For an existing path only the first line is
replaced and metadata lines are kept, unless --force is given.

Examples:
  huna generate web/forum
  huna generate --length 16 --charset alnum wifi
  huna generate --force --clip web/forum`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting generate command")
		env, err := loadEnv()
		if err != nil {
			return report(err)
		}

		ctx := context.Background()
		result, err := workflows.Generate(ctx, env, workflows.GenerateOptions{
			Path:    args[0],
			Length:  generateLength,
			Charset: generateCharset,
			Force:   generateForce,
		})
		if err != nil {
			return report(err)
		}

		action := "Updated"
		if result.Created {
			action = "Stored"
		}
		fmt.Fprintln(os.Stderr, ui.Done(action+" "+ui.Path.Sprint(result.Path)+" "+ui.Muted.Sprint(result.ID)))

		if generateClip {
			if env.Clipboard == nil {
				return report(herrors.ErrClipboard)
			}
			if err := env.Clipboard.Copy(ctx, result.Password); err != nil {
				return report(err)
			}
			fmt.Fprintf(os.Stderr, "%s Copied to the clipboard for %s\n", ui.Info.Sprint("→"), env.Config.ClipTimeout)
			return nil
		}
		fmt.Println(result.Password)
		return nil
	},
}

var editCmd = &cobra.Command{
	Use:   "edit <path>",
	Short: "Edit a secret, or compose a new one",
	Long: `Opens the secret in $VISUAL or $EDITOR. The plaintext lives in a private
scratch file that is overwritten and removed afterwards.

If the path does not exist, the editor starts empty and the result is
stored as a new secret.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting edit command")
		env, err := loadEnv()
		if err != nil {
			return report(err)
		}

		result, err := workflows.Edit(context.Background(), env, workflows.EditOptions{Path: args[0]})
		if errors.Is(err, herrors.ErrUnchanged) {
			fmt.Fprintln(os.Stderr, ui.Warning.Sprint("⚠")+" "+ui.Path.Sprint(args[0])+" was not changed")
			return nil
		}
		if err != nil {
			return report(err)
		}

		action := "Updated"
		if result.Created {
			action = "Stored"
		}
		fmt.Fprintln(os.Stderr, ui.Done(action+" "+ui.Path.Sprint(args[0])+" "+ui.Muted.Sprint(result.ID)))
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show <path>",
	Short: "Print a secret",
	Long: `Decrypts the secret at path and prints it.

With --clip the first line is copied to the clipboard instead. After the
configured timeout the previous clipboard content is restored, or the
clipboard is cleared if something else was copied in the meantime.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting show command")
		env, err := loadEnv()
		if err != nil {
			return report(err)
		}

		result, err := workflows.Show(context.Background(), env, workflows.ShowOptions{
			Path: args[0],
			Clip: showClip,
		})
		if err != nil {
			return report(err)
		}

		if result.Copied {
			fmt.Fprintf(os.Stderr, "%s Copied %s to the clipboard for %s\n",
				ui.Success.Sprint("✓"), ui.Path.Sprint(args[0]), env.Config.ClipTimeout)
			return nil
		}
		_, err = os.Stdout.Write(result.Payload)
		return err
	},
}
