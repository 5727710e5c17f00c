package configs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	herrors "github.com/PolarWolf314/huna/internal/errors"
)

// envFrom returns a lookup over a fixed map, isolating tests from the host.
func envFrom(t *testing.T, vars map[string]string) LookupFunc {
	t.Helper()
	base := t.TempDir()
	env := map[string]string{
		"HOME":            base,
		"XDG_CONFIG_HOME": filepath.Join(base, "config"),
		"XDG_DATA_HOME":   filepath.Join(base, "data"),
		"XDG_RUNTIME_DIR": filepath.Join(base, "run"),
	}
	for k, v := range vars {
		env[k] = v
	}
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestLoadDefaults(t *testing.T) {
	lookup := envFrom(t, nil)
	home, _ := lookup("HOME")

	cfg, err := LoadFrom(lookup)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}

	if want := filepath.Join(home, "data", "huna", "store"); cfg.StoreDir != want {
		t.Errorf("StoreDir = %q, want %q", cfg.StoreDir, want)
	}
	if want := filepath.Join(home, "config", "huna", "identities"); cfg.IdentitiesFile != want {
		t.Errorf("IdentitiesFile = %q, want %q", cfg.IdentitiesFile, want)
	}
	if want := filepath.Join(home, "run", "huna"); cfg.ScratchDir != want {
		t.Errorf("ScratchDir = %q, want %q", cfg.ScratchDir, want)
	}
	if cfg.PasswordLength != 50 {
		t.Errorf("PasswordLength = %d, want 50", cfg.PasswordLength)
	}
	if cfg.Charset != CharsetSymbols {
		t.Errorf("Charset = %q, want %q", cfg.Charset, CharsetSymbols)
	}
	if cfg.ClipTimeout != 45*time.Second {
		t.Errorf("ClipTimeout = %v, want 45s", cfg.ClipTimeout)
	}
	if !cfg.Git {
		t.Error("Git should default to true")
	}
	if cfg.Replace != ReplaceCopy {
		t.Errorf("Replace = %q, want %q", cfg.Replace, ReplaceCopy)
	}
	if cfg.Armor {
		t.Error("Armor should default to false")
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.toml")
	content := `store = "/srv/huna"
length = 24
charset = "alnum"
clip_timeout = 10
git = false
replace = "rename"
armor = true
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := LoadFrom(envFrom(t, map[string]string{"HUNA_CONFIG": configPath}))
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}

	if cfg.StoreDir != "/srv/huna" {
		t.Errorf("StoreDir = %q, want /srv/huna", cfg.StoreDir)
	}
	if cfg.PasswordLength != 24 {
		t.Errorf("PasswordLength = %d, want 24", cfg.PasswordLength)
	}
	if cfg.Charset != CharsetAlnum {
		t.Errorf("Charset = %q, want %q", cfg.Charset, CharsetAlnum)
	}
	if cfg.ClipTimeout != 10*time.Second {
		t.Errorf("ClipTimeout = %v, want 10s", cfg.ClipTimeout)
	}
	if cfg.Git {
		t.Error("Git should be disabled by the config file")
	}
	if cfg.Replace != ReplaceRename {
		t.Errorf("Replace = %q, want %q", cfg.Replace, ReplaceRename)
	}
	if !cfg.Armor {
		t.Error("Armor should be enabled by the config file")
	}
}

func TestEnvironmentOverridesFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(configPath, []byte("store = \"/from/file\"\nlength = 24\n"), 0600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := LoadFrom(envFrom(t, map[string]string{
		"HUNA_CONFIG":    configPath,
		"HUNA_DIR":       "/from/env",
		"HUNA_LENGTH":    "12",
		"HUNA_NOGIT":     "1",
		"HUNA_CLIP_TIME": "5",
	}))
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}

	if cfg.StoreDir != "/from/env" {
		t.Errorf("StoreDir = %q, want /from/env", cfg.StoreDir)
	}
	if cfg.PasswordLength != 12 {
		t.Errorf("PasswordLength = %d, want 12", cfg.PasswordLength)
	}
	if cfg.Git {
		t.Error("HUNA_NOGIT should disable git")
	}
	if cfg.ClipTimeout != 5*time.Second {
		t.Errorf("ClipTimeout = %v, want 5s", cfg.ClipTimeout)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
	}{
		{"non-numeric length", map[string]string{"HUNA_LENGTH": "long"}},
		{"zero length", map[string]string{"HUNA_LENGTH": "0"}},
		{"negative length", map[string]string{"HUNA_LENGTH": "-4"}},
		{"unknown charset", map[string]string{"HUNA_CHARSET": "emoji"}},
		{"unknown replace mode", map[string]string{"HUNA_REPLACE": "hardlink"}},
		{"bad clip time", map[string]string{"HUNA_CLIP_TIME": "soon"}},
		{"bad armor flag", map[string]string{"HUNA_ARMOR": "maybe"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(envFrom(t, tt.vars))
			if !errors.Is(err, herrors.ErrInvalidConfig) {
				t.Errorf("Expected ErrInvalidConfig, got: %v", err)
			}
		})
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(configPath, []byte("store = [unterminated"), 0600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	_, err := LoadFrom(envFrom(t, map[string]string{"HUNA_CONFIG": configPath}))
	if !errors.Is(err, herrors.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got: %v", err)
	}
}

func TestViewRoundTripsThroughTOML(t *testing.T) {
	cfg, err := LoadFrom(envFrom(t, map[string]string{"HUNA_DIR": "/tmp/store", "HUNA_REPLACE": "rename"}))
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "effective.toml")
	if err := SaveTOML(path, cfg.View()); err != nil {
		t.Fatalf("SaveTOML failed: %v", err)
	}

	reloaded, err := LoadFrom(envFrom(t, map[string]string{"HUNA_CONFIG": path}))
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if reloaded.StoreDir != "/tmp/store" || reloaded.Replace != ReplaceRename {
		t.Errorf("Reloaded config = %+v", reloaded)
	}
	if reloaded.ClipTimeout != cfg.ClipTimeout {
		t.Errorf("ClipTimeout = %v, want %v", reloaded.ClipTimeout, cfg.ClipTimeout)
	}
}
