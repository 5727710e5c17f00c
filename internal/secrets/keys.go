package secrets

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"filippo.io/age"
	"filippo.io/age/agessh"
	"golang.org/x/crypto/ssh"

	herrors "github.com/PolarWolf314/huna/internal/errors"
)

// ErrPassphraseRequired indicates the ssh private key is passphrase-protected
// and no way to ask for the passphrase was provided.
var ErrPassphraseRequired = errors.New("passphrase required for encrypted private key")

// PassphraseFunc prompts for a passphrase.
type PassphraseFunc func(prompt string) ([]byte, error)

// ParseRecipient parses an age X25519 recipient or an ssh authorized key line.
func ParseRecipient(s string) (age.Recipient, error) {
	switch {
	case strings.HasPrefix(s, "age1"):
		r, err := age.ParseX25519Recipient(s)
		if err != nil {
			return nil, fmt.Errorf("%w %q: %v", herrors.ErrInvalidRecipient, s, err)
		}
		return r, nil
	case strings.HasPrefix(s, "ssh-"):
		r, err := agessh.ParseRecipient(s)
		if err != nil {
			return nil, fmt.Errorf("%w %q: %v", herrors.ErrInvalidRecipient, s, err)
		}
		return r, nil
	default:
		return nil, fmt.Errorf("%w %q: expected an age1... key or an ssh public key", herrors.ErrInvalidRecipient, s)
	}
}

// ValidateRecipient reports whether s can be used as a recipient.
func ValidateRecipient(s string) error {
	_, err := ParseRecipient(s)
	return err
}

// ParseIdentities parses an identity file. It accepts either age native
// identities (one per line, # comments allowed) or a single OpenSSH private key.
func ParseIdentities(data []byte, passphrase PassphraseFunc) ([]age.Identity, error) {
	if bytes.Contains(data, []byte("-----BEGIN")) {
		id, err := parseSSHIdentity(data, passphrase)
		if err != nil {
			return nil, err
		}
		return []age.Identity{id}, nil
	}

	identities, err := age.ParseIdentities(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", herrors.ErrNoIdentity, err)
	}
	return identities, nil
}

func parseSSHIdentity(pemBytes []byte, passphrase PassphraseFunc) (age.Identity, error) {
	id, err := agessh.ParseIdentity(pemBytes)
	if err == nil {
		return id, nil
	}

	var missing *ssh.PassphraseMissingError
	if !errors.As(err, &missing) {
		return nil, fmt.Errorf("parsing ssh private key: %w", err)
	}
	if missing.PublicKey == nil {
		return nil, fmt.Errorf("%w: key has no embedded public key", ErrPassphraseRequired)
	}
	if passphrase == nil {
		return nil, ErrPassphraseRequired
	}

	return agessh.NewEncryptedSSHIdentity(missing.PublicKey, pemBytes, func() ([]byte, error) {
		return passphrase("Enter passphrase for ssh key: ")
	})
}

// IdentityRecipients returns the public recipient string for every identity
// in the file, in file order.
func IdentityRecipients(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s does not exist", herrors.ErrNoIdentity, path)
		}
		return nil, fmt.Errorf("reading identities: %w", err)
	}

	if bytes.Contains(data, []byte("-----BEGIN")) {
		pub, err := sshPublicKey(data)
		if err != nil {
			return nil, err
		}
		return []string{strings.TrimSpace(string(ssh.MarshalAuthorizedKey(pub)))}, nil
	}

	identities, err := age.ParseIdentities(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", herrors.ErrNoIdentity, err)
	}

	var recipients []string
	for _, id := range identities {
		if x, ok := id.(*age.X25519Identity); ok {
			recipients = append(recipients, x.Recipient().String())
		}
	}
	if len(recipients) == 0 {
		return nil, fmt.Errorf("%w: no X25519 identities in %s", herrors.ErrNoIdentity, path)
	}
	return recipients, nil
}

func sshPublicKey(pemBytes []byte) (ssh.PublicKey, error) {
	signer, err := ssh.ParsePrivateKey(pemBytes)
	if err == nil {
		return signer.PublicKey(), nil
	}
	var missing *ssh.PassphraseMissingError
	if errors.As(err, &missing) && missing.PublicKey != nil {
		return missing.PublicKey, nil
	}
	return nil, fmt.Errorf("parsing ssh private key: %w", err)
}

// GenerateIdentity creates a new X25519 identity at path and returns its
// recipient. It refuses to overwrite an existing file.
func GenerateIdentity(path string) (string, error) {
	identity, err := age.GenerateX25519Identity()
	if err != nil {
		return "", fmt.Errorf("generating age identity: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return "", fmt.Errorf("creating identity directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return "", fmt.Errorf("creating identity file: %w", err)
	}
	defer f.Close()

	recipient := identity.Recipient().String()
	_, err = fmt.Fprintf(f, "# created: %s\n# public key: %s\n%s\n",
		time.Now().Format(time.RFC3339), recipient, identity.String())
	if err != nil {
		return "", fmt.Errorf("writing identity file: %w", err)
	}

	return recipient, nil
}
