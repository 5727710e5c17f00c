// Package audit records store mutations as commits in the store's git
// repository.
//
// Each mutating command produces one Entry. The entry becomes a commit whose
// subject names the operation and the record IDs it touched, and whose body
// is the entry as a single JSON line:
//
//	edit: 4kq0c7d1m2x8s9ab
//
//	{"ts":"2026-10-19T08:00:00.000000Z","op":"edit","ids":["4kq0c7d1m2x8s9ab"]}
//
// Entries never contain secret paths: the index is encrypted precisely so
// that paths do not leak, and a commit message is plaintext.
//
// # Failure Handling
//
// Auditing is best-effort. If git is missing, the store is not a repository
// or the commit fails, the operation still succeeds and a warning is logged.
//
// # Reading Logs
//
// History reads commit bodies back and ParseEntries decodes them. Lines that
// are not entries are skipped.
package audit
