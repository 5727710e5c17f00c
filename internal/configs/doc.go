// Package configs builds the effective configuration for huna.
//
// Configuration is resolved once per invocation, in precedence order:
//
//  1. built-in defaults
//  2. the TOML file at $HUNA_CONFIG or <config dir>/huna/config.toml
//  3. HUNA_* environment variables
//
// The result is a *Config that is passed explicitly to every component.
// Nothing in this package holds mutable global state.
//
// # Config File
//
//	store        = "~/.local/share/huna/store"
//	identities   = "~/.config/huna/identities"
//	length       = 50
//	charset      = "symbols"   # or "alnum"
//	clip_timeout = 45          # seconds
//	git          = true
//	replace      = "copy"      # or "rename"
//	armor        = false
//
// # Environment
//
// HUNA_DIR, HUNA_IDENTITIES, HUNA_SCRATCH, HUNA_LENGTH, HUNA_CHARSET,
// HUNA_CLIP_TIME, HUNA_NOGIT, HUNA_REPLACE and HUNA_ARMOR override the
// matching file settings.
package configs
