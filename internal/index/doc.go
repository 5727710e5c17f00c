// Package index implements the encrypted path to ID mapping.
//
// The index is one artifact, <store>/.index.age, whose plaintext holds one
// entry per line:
//
//	<id> <path>
//
// The mapping is a bijection. A path or ID that appears twice is corruption
// and every read fails with ErrCorruptIndex rather than guessing which entry
// is right. A missing index is an empty store.
//
// Every mutation decrypts the whole index, changes it in memory and writes
// it back through the artifact writer. There is no locking: two processes
// mutating the index at the same time race, and the last writer wins.
package index
