// Package records stores one encrypted artifact per secret, <store>/<id>.age.
//
// A record's plaintext is a sequence of lines. Line 1 is the secret itself;
// the lines after it are free-form metadata. Records never carry their path:
// only the index knows which path an ID belongs to.
//
// Edits go through a plaintext scratch file registered with the temp
// registry, so the decrypted copy is wiped on every exit path.
package records
