// Package utils provides shared helpers for huna commands.
//
// # Random Tokens
//
//   - GenerateID: the opaque name of a secret record
//   - GeneratePassword: a human-facing generated secret
//
// # I/O Utilities
//
//   - ReadStdin: reads a piped secret from standard input
//   - HasContent: reports whether a payload has a non-blank line
//
// # Terminal Utilities
//
//   - ReadPassphrase, ReadPassphraseFromTTY: hidden input
//   - Confirm: yes/no question on the terminal
//   - IsTerminal: checks whether stdin is a terminal
package utils
