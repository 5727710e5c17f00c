package secrets

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"filippo.io/age"
	"filippo.io/age/armor"

	herrors "github.com/PolarWolf314/huna/internal/errors"
)

// Gateway is the encryption engine every artifact goes through.
type Gateway interface {
	// Encrypt produces a self-describing ciphertext for the recipients.
	Encrypt(plaintext []byte, recipients []string) ([]byte, error)

	// Decrypt recovers plaintext using whatever identities are available.
	Decrypt(ciphertext []byte) ([]byte, error)
}

// AgeGateway implements Gateway with age. Identities are read from disk on
// the first decryption so commands that only encrypt never touch them.
type AgeGateway struct {
	identitiesFile string
	armor          bool
	passphrase     PassphraseFunc

	mu         sync.Mutex
	identities []age.Identity
}

var _ Gateway = (*AgeGateway)(nil)

// NewAgeGateway returns a gateway reading identities from identitiesFile.
// passphrase is consulted only for passphrase-protected ssh keys and may be nil.
func NewAgeGateway(identitiesFile string, armored bool, passphrase PassphraseFunc) *AgeGateway {
	return &AgeGateway{
		identitiesFile: identitiesFile,
		armor:          armored,
		passphrase:     passphrase,
	}
}

// NewAgeGatewayWithIdentities returns a gateway with identities already in memory.
func NewAgeGatewayWithIdentities(identities []age.Identity, armored bool) *AgeGateway {
	return &AgeGateway{
		armor:      armored,
		identities: identities,
	}
}

// Encrypt encrypts plaintext to every recipient in the set.
func (g *AgeGateway) Encrypt(plaintext []byte, recipients []string) ([]byte, error) {
	if len(recipients) == 0 {
		return nil, herrors.ErrEmptyRecipients
	}

	parsed := make([]age.Recipient, 0, len(recipients))
	for _, r := range recipients {
		recipient, err := ParseRecipient(r)
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, recipient)
	}

	var buf bytes.Buffer
	var out io.Writer = &buf
	var armorWriter io.WriteCloser
	if g.armor {
		armorWriter = armor.NewWriter(&buf)
		out = armorWriter
	}

	w, err := age.Encrypt(out, parsed...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", herrors.ErrEncryptFailed, err)
	}
	if _, err := w.Write(plaintext); err != nil {
		return nil, fmt.Errorf("%w: write failed: %v", herrors.ErrEncryptFailed, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("%w: close failed: %v", herrors.ErrEncryptFailed, err)
	}
	if armorWriter != nil {
		if err := armorWriter.Close(); err != nil {
			return nil, fmt.Errorf("%w: finalizing armor: %v", herrors.ErrEncryptFailed, err)
		}
	}

	return buf.Bytes(), nil
}

// Decrypt decrypts binary or armored ciphertext.
func (g *AgeGateway) Decrypt(ciphertext []byte) ([]byte, error) {
	identities, err := g.loadIdentities()
	if err != nil {
		return nil, err
	}

	var in io.Reader = bytes.NewReader(ciphertext)
	if isArmored(ciphertext) {
		in = armor.NewReader(in)
	}

	r, err := age.Decrypt(in, identities...)
	if err != nil {
		var noMatch *age.NoIdentityMatchError
		if errors.As(err, &noMatch) {
			return nil, fmt.Errorf("%w: none of the available identities is a recipient", herrors.ErrDecryptFailed)
		}
		return nil, fmt.Errorf("%w: %v", herrors.ErrDecryptFailed, err)
	}

	plaintext, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: read failed: %v", herrors.ErrDecryptFailed, err)
	}
	return plaintext, nil
}

func (g *AgeGateway) loadIdentities() ([]age.Identity, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.identities != nil {
		return g.identities, nil
	}
	if g.identitiesFile == "" {
		return nil, herrors.ErrNoIdentity
	}

	data, err := os.ReadFile(g.identitiesFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s does not exist", herrors.ErrNoIdentity, g.identitiesFile)
		}
		return nil, fmt.Errorf("reading identities: %w", err)
	}

	identities, err := ParseIdentities(data, g.passphrase)
	if err != nil {
		return nil, fmt.Errorf("parsing identities in %s: %w", g.identitiesFile, err)
	}
	g.identities = identities
	return identities, nil
}

func isArmored(data []byte) bool {
	return bytes.HasPrefix(bytes.TrimSpace(data), []byte(armor.Header))
}
