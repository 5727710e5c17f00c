package errors

import "errors"

// Precondition errors indicate the store is not in the state a command needs.
// They are reported before any artifact is mutated.
var (
	// ErrStoreNotInitialized indicates the recipient artifact does not exist.
	ErrStoreNotInitialized = errors.New("store has not been initialized (run init first)")

	// ErrStoreExists indicates init was asked to create a store that already exists.
	ErrStoreExists = errors.New("store already exists")

	// ErrEmptyRecipients indicates a recipient set with no members.
	ErrEmptyRecipients = errors.New("recipient set is empty")

	// ErrRecipientsUnchanged indicates a rotation to the currently active set.
	ErrRecipientsUnchanged = errors.New("recipient set is unchanged")

	// ErrInvalidRecipient indicates a recipient string the gateway cannot use.
	ErrInvalidRecipient = errors.New("invalid recipient")

	// ErrPathExists indicates the path is already present in the index.
	ErrPathExists = errors.New("path already exists")

	// ErrIDExists indicates the ID is already present in the index.
	ErrIDExists = errors.New("id already exists")

	// ErrPathNotFound indicates the path is not present in the index.
	ErrPathNotFound = errors.New("path not found")

	// ErrInvalidPath indicates a malformed secret path.
	ErrInvalidPath = errors.New("invalid path")

	// ErrEmptyPayload indicates a secret with no non-blank lines.
	ErrEmptyPayload = errors.New("secret is empty")

	// ErrUnchanged indicates an edit that did not modify the secret.
	ErrUnchanged = errors.New("secret was not changed")

	// ErrInvalidConfig indicates a configuration value that cannot be used.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Corruption errors indicate the store violates its own invariants.
// They are always fatal and never repaired automatically.
var (
	// ErrCorruptIndex indicates a duplicated path or ID, or an unparseable entry.
	ErrCorruptIndex = errors.New("index is corrupt")

	// ErrMissingRecord indicates the index references an ID with no record.
	ErrMissingRecord = errors.New("record referenced by index is missing")
)

// Collaborator errors indicate a failure in an external dependency.
var (
	// ErrEncryptFailed indicates the encryption gateway could not encrypt.
	ErrEncryptFailed = errors.New("failed to encrypt")

	// ErrDecryptFailed indicates the encryption gateway could not decrypt.
	ErrDecryptFailed = errors.New("failed to decrypt")

	// ErrNoIdentity indicates no usable private identity is available.
	ErrNoIdentity = errors.New("no identity available for decryption")

	// ErrEditorFailed indicates the external editor exited unsuccessfully.
	ErrEditorFailed = errors.New("editor failed")

	// ErrClipboard indicates the clipboard service is unavailable.
	ErrClipboard = errors.New("clipboard unavailable")
)

// ErrPartialRotation indicates a rotation stopped after re-encrypting only
// some artifacts. The store is readable by holders of either the old or the
// new credentials; re-running the rotation with force completes it.
var ErrPartialRotation = errors.New("rotation incomplete: some artifacts are still encrypted for the previous recipients")
