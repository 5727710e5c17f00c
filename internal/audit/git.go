package audit

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Git commits to the repository at Dir using the git binary.
type Git struct {
	Dir    string
	Binary string
}

// NewGit returns a Git for the store at dir.
func NewGit(dir string) *Git {
	return &Git{Dir: dir, Binary: "git"}
}

// Installed reports whether the git binary can be found.
func (g *Git) Installed() bool {
	_, err := exec.LookPath(g.Binary)
	return err == nil
}

// IsRepository reports whether Dir is the top of a git work tree.
func (g *Git) IsRepository() bool {
	info, err := os.Stat(filepath.Join(g.Dir, ".git"))
	return err == nil && (info.IsDir() || info.Mode().IsRegular())
}

// Init creates the repository if it does not exist yet.
func (g *Git) Init(ctx context.Context) error {
	if g.IsRepository() {
		return nil
	}
	if !g.Installed() {
		return fmt.Errorf("%w: git is not installed", ErrNotRepository)
	}
	_, err := g.output(ctx, nil, "init", "--quiet")
	return err
}

// Commit stages every change in the store and commits it.
func (g *Git) Commit(ctx context.Context, message string) error {
	if !g.Installed() {
		return fmt.Errorf("%w: git is not installed", ErrNotRepository)
	}
	if !g.IsRepository() {
		return ErrNotRepository
	}
	if _, err := g.output(ctx, nil, "add", "--all", "."); err != nil {
		return err
	}
	_, err := g.output(ctx, strings.NewReader(message), "commit", "--quiet", "--no-verify", "--file", "-")
	return err
}

// History returns every audit entry recorded in the repository, oldest first.
func (g *Git) History(ctx context.Context) ([]Entry, error) {
	if !g.IsRepository() {
		return nil, ErrNotRepository
	}
	out, err := g.output(ctx, nil, "log", "--reverse", "--format=%b")
	if err != nil {
		// A repository without commits has no history.
		if strings.Contains(err.Error(), "does not have any commits") {
			return nil, nil
		}
		return nil, err
	}
	return ParseEntries(out)
}

// Run passes args to git inside the store, attached to the given streams.
func (g *Git) Run(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer, args ...string) error {
	// #nosec G204 -- arguments come from the user invoking huna git.
	cmd := exec.CommandContext(ctx, g.Binary, append([]string{"-C", g.Dir}, args...)...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	return cmd.Run()
}

func (g *Git) output(ctx context.Context, stdin io.Reader, argv ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	// #nosec G204 -- fixed git subcommands.
	cmd := exec.CommandContext(ctx, g.Binary, append([]string{"-C", g.Dir}, argv...)...)
	cmd.Stdin = stdin
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return nil, fmt.Errorf("git %s: %s", argv[0], msg)
	}
	return stdout.Bytes(), nil
}
