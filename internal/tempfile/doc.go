// Package tempfile is the process-wide registry of temporary files.
//
// Every temporary file huna creates, whether a ciphertext staged for the
// artifact writer or a plaintext scratch buffer handed to an editor, is
// created through a Registry. Registered files are wiped and removed on
// every exit path: when the owner releases them, when main drains the
// registry after a command (successful or not), and when SIGINT, SIGTERM
// or SIGHUP arrives.
//
// Final store artifacts are never registered. They are deleted with Wipe
// directly by the artifact writer.
//
// Wiping is best effort: the file is overwritten with random bytes and
// synced before it is unlinked. On filesystems where overwriting in place
// does not reach the old blocks (copy-on-write, journaling data) this
// reduces but does not remove the risk of recovery.
package tempfile
