// Package recipients manages the set of principals a store is encrypted for.
//
// A store has exactly one recipient set, kept in <store>/.recipients.age and
// encrypted for itself. Every other artifact is encrypted for the same set.
// Init creates a store or rotates it to a new set; a rotation re-encrypts
// every artifact one at a time, so an interrupted rotation leaves a store
// that is readable with either the old or the new credentials until it is
// run again.
package recipients
