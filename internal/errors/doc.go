// Package errors defines the sentinel errors huna returns.
//
// Callers test for them with errors.Is; messages carry detail through %w
// wrapping, for example
//
//	return fmt.Errorf("%w: %s", errors.ErrPathNotFound, path)
//
// The sentinels fall into four groups:
//
//   - Precondition: the store or a path is not in the state the command
//     needs (ErrStoreNotInitialized, ErrPathExists, ErrInvalidPath).
//   - Corruption: the index or a record is inconsistent (ErrCorruptIndex,
//     ErrMissingRecord). huna reports these and never repairs them.
//   - Collaborator: age, the editor or the clipboard failed
//     (ErrDecryptFailed, ErrEditorFailed, ErrClipboard).
//   - Degraded: ErrPartialRotation, a rotation that stopped part-way.
//     Running the rotation again with force completes it.
//
// The package is imported as herrors so it does not shadow the standard
// library.
package errors
