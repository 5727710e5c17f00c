package workflows

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/PolarWolf314/huna/internal/configs"
	logger "github.com/PolarWolf314/huna/internal/logging"
	"github.com/PolarWolf314/huna/internal/secrets"
	"github.com/PolarWolf314/huna/internal/tempfile"
)

// scriptedEditor replaces the buffer with the result of fn.
type scriptedEditor struct {
	fn    func(before string) string
	calls int
}

func (e *scriptedEditor) Edit(_ context.Context, path string) error {
	e.calls++
	before, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(e.fn(string(before))), 0600)
}

type fakeCopier struct {
	copied []string
}

func (c *fakeCopier) Copy(_ context.Context, secret string) error {
	c.copied = append(c.copied, secret)
	return nil
}

type testEnv struct {
	*Env
	editor    *scriptedEditor
	clipboard *fakeCopier
}

func newTestConfig(t *testing.T) *configs.Config {
	t.Helper()
	base := t.TempDir()
	return &configs.Config{
		StoreDir:       filepath.Join(base, "store"),
		IdentitiesFile: filepath.Join(base, "config", "identities"),
		ScratchDir:     filepath.Join(base, "scratch"),
		PasswordLength: 24,
		Charset:        configs.CharsetAlnum,
		ClipTimeout:    45 * time.Second,
		Replace:        configs.ReplaceCopy,
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithConfig(t, newTestConfig(t))
}

func newTestEnvWithConfig(t *testing.T, cfg *configs.Config) *testEnv {
	t.Helper()
	te := &testEnv{
		editor:    &scriptedEditor{fn: func(s string) string { return s }},
		clipboard: &fakeCopier{},
	}
	te.Env = NewEnv(cfg, Deps{
		Log:       logger.Logger{},
		Registry:  tempfile.New(),
		Gateway:   secrets.NewAgeGateway(cfg.IdentitiesFile, cfg.Armor, nil),
		Editor:    te.editor,
		Clipboard: te.clipboard,
	})
	return te
}

// initStore creates a store for a freshly generated local identity.
func initStore(t *testing.T, te *testEnv) *InitResult {
	t.Helper()
	res, err := Init(context.Background(), te.Env, InitOptions{})
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	return res
}

func assertNoTempFiles(t *testing.T, te *testEnv) {
	t.Helper()
	if paths := te.Registry.Paths(); len(paths) != 0 {
		t.Errorf("temp files still registered: %v", paths)
	}
	for _, dir := range []string{te.Config.StoreDir, te.Config.ScratchDir} {
		matches, _ := filepath.Glob(filepath.Join(dir, tempfile.Prefix+"*"))
		if len(matches) != 0 {
			t.Errorf("temp files left in %s: %v", dir, matches)
		}
	}
}
