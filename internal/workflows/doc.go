// Package workflows implements the huna commands on top of the store
// components.
//
// An Env wires one store: the artifact store, recipient manager, index,
// record store, clipboard handoff and audit recorder. Each workflow takes a
// context, an Env and an options struct and returns a result struct:
//
//	res, err := workflows.Add(ctx, env, workflows.AddOptions{Path: "email/work", Payload: p})
//
// The cmd package parses flags, reads secrets from the terminal and prints
// results. Everything else happens here: path and precondition checks,
// the mutation itself and the audit commit.
//
// Preconditions are checked before any artifact is written. A record
// created for a path that could not be indexed is deleted again. Delete
// removes the index entry before the record, so an interruption leaves an
// unreferenced record, which Doctor reports, and never a path without one.
//
// Errors are the sentinels of internal/errors, wrapped with detail.
package workflows
