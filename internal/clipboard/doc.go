// Package clipboard hands a secret to the system clipboard for a limited
// time.
//
// Handoff.Copy captures the current clipboard, writes the secret and starts
// a restorer: a separate, detached huna process that outlives the command.
// After the timeout the restorer puts the previous content back if the
// clipboard still holds the secret, clears the clipboard otherwise, and
// wipes clipboard-manager history.
//
// The restorer never sees the secret. It receives a sha256 digest and the
// previous clipboard content over its standard input, never on the command
// line. Its pid and digest are kept in a pid file; a later Copy terminates
// a pending restorer instead of stacking another delay on top of it.
package clipboard
