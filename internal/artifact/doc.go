// Package artifact persists encrypted store artifacts.
//
// Writer replaces a file with new content through a registered temporary
// file, so a target is never left holding a half-written ciphertext. Two
// replace modes exist:
//
//   - ModeCopy securely deletes the target and then copies the temporary file
//     over it. Between the delete and the end of the copy the target does
//     not exist; a crash in that window loses the artifact.
//   - ModeRename syncs the temporary file and renames it over the target.
//     The target always holds either the old or the new content.
//
// Store layers an encryption gateway on top of Writer and offers the single
// update primitive the rest of huna uses: decrypt the whole artifact, transform
// the plaintext, encrypt and replace the whole artifact.
package artifact
