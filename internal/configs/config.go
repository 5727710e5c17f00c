package configs

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	herrors "github.com/PolarWolf314/huna/internal/errors"
	"github.com/PolarWolf314/huna/internal/utils"
)

// Replace modes for the artifact writer.
const (
	// ReplaceCopy securely deletes the target and copies the temp file over
	// it. A crash between the two steps loses the artifact.
	ReplaceCopy = "copy"

	// ReplaceRename renames the temp file over the target.
	ReplaceRename = "rename"
)

// Character sets for generated secrets.
const (
	CharsetAlnum   = utils.CharsetAlnum
	CharsetSymbols = utils.CharsetSymbols
)

// Config is the effective configuration for one invocation. It is built once
// by Load and never mutated afterwards.
type Config struct {
	StoreDir       string
	IdentitiesFile string
	ScratchDir     string
	PasswordLength int
	Charset        string
	ClipTimeout    time.Duration
	Git            bool
	Replace        string
	Armor          bool

	// ConfigFile is where the TOML file was looked for.
	ConfigFile string
}

// fileConfig mirrors config.toml. Pointers distinguish "unset" from zero.
type fileConfig struct {
	Store       string `toml:"store"`
	Identities  string `toml:"identities"`
	Scratch     string `toml:"scratch"`
	Length      int    `toml:"length"`
	Charset     string `toml:"charset"`
	ClipTimeout int    `toml:"clip_timeout"`
	Git         *bool  `toml:"git"`
	Replace     string `toml:"replace"`
	Armor       *bool  `toml:"armor"`
}

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// Load builds the configuration from defaults, the TOML config file and the
// process environment.
func Load() (*Config, error) {
	return LoadFrom(os.LookupEnv)
}

// LoadFrom is Load with an explicit environment, used by tests.
func LoadFrom(lookup LookupFunc) (*Config, error) {
	paths, err := defaultPaths(lookup)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		StoreDir:       paths.StoreDir,
		IdentitiesFile: paths.IdentitiesFile,
		ScratchDir:     paths.ScratchDir,
		PasswordLength: 50,
		Charset:        CharsetSymbols,
		ClipTimeout:    45 * time.Second,
		Git:            true,
		Replace:        ReplaceCopy,
	}

	configPath := paths.ConfigFile
	if v, ok := lookup("HUNA_CONFIG"); ok && v != "" {
		configPath = v
	}
	cfg.ConfigFile = configPath
	if err := applyFile(cfg, configPath); err != nil {
		return nil, err
	}
	if err := applyEnv(cfg, lookup); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	var fc fileConfig
	if err := LoadTOML(path, &fc); err != nil {
		return fmt.Errorf("%w: parsing %s: %v", herrors.ErrInvalidConfig, path, err)
	}

	if fc.Store != "" {
		cfg.StoreDir = expandHome(fc.Store)
	}
	if fc.Identities != "" {
		cfg.IdentitiesFile = expandHome(fc.Identities)
	}
	if fc.Scratch != "" {
		cfg.ScratchDir = expandHome(fc.Scratch)
	}
	if fc.Length != 0 {
		cfg.PasswordLength = fc.Length
	}
	if fc.Charset != "" {
		cfg.Charset = fc.Charset
	}
	if fc.ClipTimeout != 0 {
		cfg.ClipTimeout = time.Duration(fc.ClipTimeout) * time.Second
	}
	if fc.Git != nil {
		cfg.Git = *fc.Git
	}
	if fc.Replace != "" {
		cfg.Replace = fc.Replace
	}
	if fc.Armor != nil {
		cfg.Armor = *fc.Armor
	}
	return nil
}

func applyEnv(cfg *Config, lookup LookupFunc) error {
	if v, ok := lookup("HUNA_DIR"); ok && v != "" {
		cfg.StoreDir = expandHome(v)
	}
	if v, ok := lookup("HUNA_IDENTITIES"); ok && v != "" {
		cfg.IdentitiesFile = expandHome(v)
	}
	if v, ok := lookup("HUNA_SCRATCH"); ok && v != "" {
		cfg.ScratchDir = expandHome(v)
	}
	if v, ok := lookup("HUNA_LENGTH"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: HUNA_LENGTH=%q is not a number", herrors.ErrInvalidConfig, v)
		}
		cfg.PasswordLength = n
	}
	if v, ok := lookup("HUNA_CHARSET"); ok && v != "" {
		cfg.Charset = v
	}
	if v, ok := lookup("HUNA_CLIP_TIME"); ok && v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: HUNA_CLIP_TIME=%q is not a number of seconds", herrors.ErrInvalidConfig, v)
		}
		cfg.ClipTimeout = time.Duration(secs) * time.Second
	}
	if v, ok := lookup("HUNA_NOGIT"); ok && v != "" {
		cfg.Git = false
	}
	if v, ok := lookup("HUNA_REPLACE"); ok && v != "" {
		cfg.Replace = v
	}
	if v, ok := lookup("HUNA_ARMOR"); ok && v != "" {
		armor, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: HUNA_ARMOR=%q is not a boolean", herrors.ErrInvalidConfig, v)
		}
		cfg.Armor = armor
	}
	return nil
}

func (c *Config) validate() error {
	if c.StoreDir == "" {
		return fmt.Errorf("%w: store directory is empty", herrors.ErrInvalidConfig)
	}
	if c.PasswordLength <= 0 {
		return fmt.Errorf("%w: password length must be positive, got %d", herrors.ErrInvalidConfig, c.PasswordLength)
	}
	if c.ClipTimeout <= 0 {
		return fmt.Errorf("%w: clipboard timeout must be positive", herrors.ErrInvalidConfig)
	}
	switch c.Charset {
	case CharsetAlnum, CharsetSymbols:
	default:
		return fmt.Errorf("%w: unknown charset %q (want %s or %s)", herrors.ErrInvalidConfig, c.Charset, CharsetAlnum, CharsetSymbols)
	}
	switch c.Replace {
	case ReplaceCopy, ReplaceRename:
	default:
		return fmt.Errorf("%w: unknown replace mode %q (want %s or %s)", herrors.ErrInvalidConfig, c.Replace, ReplaceCopy, ReplaceRename)
	}
	return nil
}

// View returns the configuration in the same shape as config.toml.
func (c *Config) View() any {
	git, armor := c.Git, c.Armor
	return fileConfig{
		Store:       c.StoreDir,
		Identities:  c.IdentitiesFile,
		Scratch:     c.ScratchDir,
		Length:      c.PasswordLength,
		Charset:     c.Charset,
		ClipTimeout: int(c.ClipTimeout / time.Second),
		Git:         &git,
		Replace:     c.Replace,
		Armor:       &armor,
	}
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return home + p[1:]
		}
	}
	return p
}
