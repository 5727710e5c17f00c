package cmd

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PolarWolf314/huna/internal/audit"
	herrors "github.com/PolarWolf314/huna/internal/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// setupTestEnvironment points every huna location at a temp directory.
func setupTestEnvironment(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	t.Setenv("HUNA_DIR", filepath.Join(base, "store"))
	t.Setenv("HUNA_IDENTITIES", filepath.Join(base, "config", "identities"))
	t.Setenv("HUNA_SCRATCH", filepath.Join(base, "scratch"))
	t.Setenv("HUNA_CONFIG", filepath.Join(base, "config", "config.toml"))
	t.Setenv("HUNA_NOGIT", "1")
	t.Setenv("HUNA_CHARSET", "alnum")
	t.Setenv("NO_COLOR", "1")
	resetCommandState()
	t.Cleanup(resetCommandState)
	return base
}

// resetCommandState resets every flag to its default and restores the
// package-level hooks.
func resetCommandState() {
	resetFlags(RootCmd)
	doctorExitFunc = os.Exit
	confirm = func(string) (bool, error) { return false, errors.New("no terminal in tests") }
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// run executes the root command and captures stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	original := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("Failed to create pipe: %v", err)
	}
	os.Stdout = w

	RootCmd.SetArgs(args)
	execErr := RootCmd.Execute()

	w.Close()
	os.Stdout = original
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		t.Fatalf("Failed to read output: %v", err)
	}
	return buf.String(), execErr
}

func TestCommandLifecycle(t *testing.T) {
	setupTestEnvironment(t)

	if _, err := run(t, "init"); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	password, err := run(t, "add", "--generate", "--length", "20", "email/work")
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	password = strings.TrimSpace(password)
	if len(password) != 20 {
		t.Fatalf("expected a 20 character password, got %q", password)
	}

	out, err := run(t, "show", "email/work")
	if err != nil {
		t.Fatalf("show failed: %v", err)
	}
	if out != password+"\n" {
		t.Errorf("show printed %q, want %q", out, password+"\n")
	}

	out, err = run(t, "list")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if out != "email/\n  work\n" {
		t.Errorf("unexpected tree %q", out)
	}

	if _, err := run(t, "move", "email/work", "email/office"); err != nil {
		t.Fatalf("move failed: %v", err)
	}
	deleteYes = true
	if _, err := run(t, "delete", "email/office"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	listFlat = true
	out, err = run(t, "list")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if out != "" {
		t.Errorf("expected an empty store, got %q", out)
	}
}

func TestCommandFailuresAreReported(t *testing.T) {
	setupTestEnvironment(t)

	_, err := run(t, "show", "anything")
	if !Reported(err) {
		t.Errorf("expected a reported failure, got %v", err)
	}

	if _, err := run(t, "init"); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	_, err = run(t, "init")
	if !Reported(err) {
		t.Errorf("second init should report ErrStoreExists, got %v", err)
	}
}

func TestDeleteCancelledWithoutConfirmation(t *testing.T) {
	setupTestEnvironment(t)
	if _, err := run(t, "init"); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	if _, err := run(t, "generate", "keep"); err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	confirm = func(string) (bool, error) { return false, nil }
	if _, err := run(t, "delete", "keep"); err != nil {
		t.Fatalf("cancelled delete should succeed, got %v", err)
	}
	listFlat = true
	out, _ := run(t, "list")
	if out != "keep\n" {
		t.Errorf("secret should survive a cancelled delete, got %q", out)
	}
}

func TestDoctorExitCodes(t *testing.T) {
	setupTestEnvironment(t)

	var code int
	doctorExitFunc = func(c int) { code = c }
	if _, err := run(t, "doctor"); err != nil {
		t.Fatalf("doctor failed: %v", err)
	}
	if code != 2 {
		t.Errorf("doctor on a missing store should exit 2, got %d", code)
	}

	if _, err := run(t, "init"); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	code = 0
	if _, err := run(t, "doctor"); err != nil {
		t.Fatalf("doctor failed: %v", err)
	}
	if code != 0 {
		t.Errorf("doctor on a fresh store should pass, got exit %d", code)
	}
}

func TestConfigPrintsTOML(t *testing.T) {
	base := setupTestEnvironment(t)

	out, err := run(t, "config")
	if err != nil {
		t.Fatalf("config failed: %v", err)
	}
	if !strings.Contains(out, `charset = "alnum"`) || !strings.Contains(out, filepath.Join(base, "store")) {
		t.Errorf("unexpected config output:\n%s", out)
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{herrors.ErrStoreNotInitialized, "huna init"},
		{herrors.ErrRecipientsUnchanged, "--force"},
		{herrors.ErrPartialRotation, "huna rotate --force"},
		{herrors.ErrPathNotFound, "huna list"},
		{herrors.ErrMissingRecord, "huna doctor"},
		{audit.ErrNotRepository, "huna git init"},
	}
	for _, tt := range tests {
		if got := describe(tt.err); !strings.Contains(got, tt.want) {
			t.Errorf("describe(%v) = %q, want it to mention %q", tt.err, got, tt.want)
		}
	}
}

func TestFormatDetails(t *testing.T) {
	got := formatDetails(audit.Entry{Operation: "rotate", Count: 3, Recipients: 2, Mode: "partial"})
	if got != "recipients=2 artifacts=3 mode=partial" {
		t.Errorf("unexpected details %q", got)
	}
	got = formatDetails(audit.Entry{Operation: "copy", IDs: []string{"a", "b"}})
	if got != "a b" {
		t.Errorf("unexpected details %q", got)
	}
}
