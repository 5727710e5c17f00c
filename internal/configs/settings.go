package configs

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Paths holds the default filesystem locations before overrides.
type Paths struct {
	StoreDir       string
	IdentitiesFile string
	ScratchDir     string
	ConfigFile     string
}

func defaultPaths(lookup LookupFunc) (Paths, error) {
	homeDir, ok := lookup("HOME")
	if !ok || homeDir == "" {
		var err error
		homeDir, err = os.UserHomeDir()
		if err != nil {
			return Paths{}, fmt.Errorf("getting home directory: %w", err)
		}
	}

	configDir, ok := lookup("XDG_CONFIG_HOME")
	if !ok || configDir == "" {
		configDir = filepath.Join(homeDir, ".config")
	}

	dataDir, ok := lookup("XDG_DATA_HOME")
	if !ok || dataDir == "" {
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	// Plaintext only ever lands in the scratch directory, so prefer the
	// per-user tmpfs when the session has one.
	scratchDir := filepath.Join(os.TempDir(), "huna-"+strconv.Itoa(os.Getuid()))
	if runtimeDir, ok := lookup("XDG_RUNTIME_DIR"); ok && runtimeDir != "" {
		scratchDir = filepath.Join(runtimeDir, "huna")
	}

	return Paths{
		StoreDir:       filepath.Join(dataDir, "huna", "store"),
		IdentitiesFile: filepath.Join(configDir, "huna", "identities"),
		ScratchDir:     scratchDir,
		ConfigFile:     filepath.Join(configDir, "huna", "config.toml"),
	}, nil
}
