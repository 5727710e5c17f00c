package clipboard

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/atotto/clipboard"

	herrors "github.com/PolarWolf314/huna/internal/errors"
)

// Service reads and writes the system clipboard.
type Service interface {
	Read() (string, error)
	Write(text string) error
}

// System is the clipboard of the current desktop session.
type System struct{}

func (System) Read() (string, error) {
	if clipboard.Unsupported {
		return "", fmt.Errorf("%w: no clipboard utility found", herrors.ErrClipboard)
	}
	text, err := clipboard.ReadAll()
	if err != nil {
		return "", fmt.Errorf("%w: %v", herrors.ErrClipboard, err)
	}
	return text, nil
}

func (System) Write(text string) error {
	if clipboard.Unsupported {
		return fmt.Errorf("%w: no clipboard utility found", herrors.ErrClipboard)
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("%w: %v", herrors.ErrClipboard, err)
	}
	return nil
}

// HistoryClearer removes entries from clipboard-manager history.
type HistoryClearer interface {
	ClearHistory(ctx context.Context) error
}

// ManagerHistory clears the history of known clipboard managers that are
// installed. Managers that are absent are skipped.
type ManagerHistory struct {
	lookPath func(string) (string, error)
	run      func(ctx context.Context, name string, args ...string) error
}

// NewManagerHistory returns a HistoryClearer for cliphist and klipper.
func NewManagerHistory() *ManagerHistory {
	return &ManagerHistory{lookPath: exec.LookPath, run: runQuiet}
}

var historyCommands = [][]string{
	{"cliphist", "wipe"},
	{"qdbus", "org.kde.klipper", "/klipper", "org.kde.klipper.klipper.clearClipboardHistory"},
}

func (m *ManagerHistory) ClearHistory(ctx context.Context) error {
	var firstErr error
	for _, argv := range historyCommands {
		if _, err := m.lookPath(argv[0]); err != nil {
			continue
		}
		if err := m.run(ctx, argv[0], argv[1:]...); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("%s: %w", argv[0], err)
		}
	}
	return firstErr
}

func runQuiet(ctx context.Context, name string, args ...string) error {
	// #nosec G204 -- fixed commands from historyCommands.
	return exec.CommandContext(ctx, name, args...).Run()
}
