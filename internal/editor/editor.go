// Package editor runs the user's text editor on a file.
package editor

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	herrors "github.com/PolarWolf314/huna/internal/errors"
)

// Editor edits the file at path in place.
type Editor interface {
	Edit(ctx context.Context, path string) error
}

// Command is an Editor backed by an external program.
type Command struct {
	// Argv is the program and its leading arguments; the file path is
	// appended.
	Argv   []string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// FromEnv returns the editor named by $VISUAL, then $EDITOR, then vi.
func FromEnv(lookup func(string) (string, bool)) *Command {
	name := "vi"
	for _, key := range []string{"VISUAL", "EDITOR"} {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			name = v
			break
		}
	}
	return &Command{
		Argv:   strings.Fields(name),
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Edit runs the editor and waits for it to exit.
func (c *Command) Edit(ctx context.Context, path string) error {
	if len(c.Argv) == 0 {
		return fmt.Errorf("%w: no editor configured", herrors.ErrEditorFailed)
	}
	args := append(append([]string{}, c.Argv[1:]...), path)

	// #nosec G204 -- the editor is chosen by the user through $VISUAL/$EDITOR.
	cmd := exec.CommandContext(ctx, c.Argv[0], args...)
	cmd.Stdin = c.Stdin
	cmd.Stdout = c.Stdout
	cmd.Stderr = c.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: %s: %v", herrors.ErrEditorFailed, c.Argv[0], err)
	}
	return nil
}
