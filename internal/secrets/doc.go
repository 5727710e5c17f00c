// Package secrets is the encryption gateway for huna.
//
// Every artifact in the store (recipient list, index, secret records) is a
// complete age ciphertext produced by this package. Nothing else in huna
// touches key material.
//
// # Recipients
//
// A recipient is either an age X25519 public key (age1...) or an ssh
// authorized-key line (ssh-ed25519 ..., ssh-rsa ...). Artifacts are always
// encrypted for the whole recipient set; holding any one matching identity
// is enough to decrypt.
//
// # Identities
//
// The identities file holds either age secret keys (AGE-SECRET-KEY-1...,
// one per line, # comments allowed, the format age-keygen writes) or a
// single OpenSSH private key. Passphrase-protected ssh keys are supported
// when a PassphraseFunc is supplied; the passphrase is asked for lazily on
// first use.
//
// # Armor
//
// With armor enabled, ciphertexts are written PEM-style. Decrypt detects
// either encoding, so toggling armor never strands existing artifacts.
package secrets
