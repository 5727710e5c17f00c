package secrets

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/crypto/ssh"
)

func TestGenerateIdentity(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config", "identities")

	recipient, err := GenerateIdentity(path)
	if err != nil {
		t.Fatalf("GenerateIdentity failed: %v", err)
	}
	if !strings.HasPrefix(recipient, "age1") {
		t.Errorf("Expected age1 recipient, got %q", recipient)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("identity file missing: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("Expected identity mode 0600, got %o", perm)
	}

	recipients, err := IdentityRecipients(path)
	if err != nil {
		t.Fatalf("IdentityRecipients failed: %v", err)
	}
	if len(recipients) != 1 || recipients[0] != recipient {
		t.Errorf("IdentityRecipients = %v, want [%s]", recipients, recipient)
	}

	// The file round-trips through the gateway.
	gw := NewAgeGateway(path, false, nil)
	ciphertext, err := gw.Encrypt([]byte("from file"), recipients)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	plaintext, err := gw.Decrypt(ciphertext)
	if err != nil {
		t.Fatalf("Decrypt failed: %v", err)
	}
	if string(plaintext) != "from file" {
		t.Errorf("Decrypt = %q", plaintext)
	}
}

func TestGenerateIdentityRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "identities")
	if _, err := GenerateIdentity(path); err != nil {
		t.Fatalf("GenerateIdentity failed: %v", err)
	}
	if _, err := GenerateIdentity(path); err == nil {
		t.Fatal("Expected error when identity file already exists")
	}
}

func writeSSHKey(t *testing.T, passphrase string) (string, string) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("failed to generate ed25519 key: %v", err)
	}

	var block *pem.Block
	if passphrase == "" {
		block, err = ssh.MarshalPrivateKey(priv, "test")
	} else {
		block, err = ssh.MarshalPrivateKeyWithPassphrase(priv, "test", []byte(passphrase))
	}
	if err != nil {
		t.Fatalf("failed to marshal private key: %v", err)
	}

	sshPub, err := ssh.NewPublicKey(pub)
	if err != nil {
		t.Fatalf("failed to convert public key: %v", err)
	}

	path := filepath.Join(t.TempDir(), "id_ed25519")
	if err := os.WriteFile(path, pem.EncodeToMemory(block), 0600); err != nil {
		t.Fatalf("failed to write key: %v", err)
	}
	return path, strings.TrimSpace(string(ssh.MarshalAuthorizedKey(sshPub)))
}

func TestSSHIdentityRoundTrip(t *testing.T) {
	keyPath, authorized := writeSSHKey(t, "")

	recipients, err := IdentityRecipients(keyPath)
	if err != nil {
		t.Fatalf("IdentityRecipients failed: %v", err)
	}
	if len(recipients) != 1 || recipients[0] != authorized {
		t.Fatalf("IdentityRecipients = %v, want [%s]", recipients, authorized)
	}

	gw := NewAgeGateway(keyPath, false, nil)
	ciphertext, err := gw.Encrypt([]byte("over ssh"), recipients)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	plaintext, err := gw.Decrypt(ciphertext)
	if err != nil {
		t.Fatalf("Decrypt failed: %v", err)
	}
	if string(plaintext) != "over ssh" {
		t.Errorf("Decrypt = %q", plaintext)
	}
}

func TestPassphraseProtectedSSHIdentity(t *testing.T) {
	keyPath, authorized := writeSSHKey(t, "correct horse")
	data, err := os.ReadFile(keyPath)
	if err != nil {
		t.Fatalf("failed to read key: %v", err)
	}

	if _, err := ParseIdentities(data, nil); !errors.Is(err, ErrPassphraseRequired) {
		t.Fatalf("Expected ErrPassphraseRequired, got: %v", err)
	}

	recipients, err := IdentityRecipients(keyPath)
	if err != nil {
		t.Fatalf("IdentityRecipients failed: %v", err)
	}
	if recipients[0] != authorized {
		t.Errorf("IdentityRecipients = %v, want [%s]", recipients, authorized)
	}

	prompts := 0
	gw := NewAgeGateway(keyPath, false, func(string) ([]byte, error) {
		prompts++
		return []byte("correct horse"), nil
	})
	ciphertext, err := gw.Encrypt([]byte("locked"), recipients)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	plaintext, err := gw.Decrypt(ciphertext)
	if err != nil {
		t.Fatalf("Decrypt failed: %v", err)
	}
	if string(plaintext) != "locked" {
		t.Errorf("Decrypt = %q", plaintext)
	}
	if prompts == 0 {
		t.Error("Expected the passphrase to be requested")
	}
}

func TestParseRecipient(t *testing.T) {
	id := newIdentity(t)
	_, authorized := writeSSHKey(t, "")

	valid := []string{id.Recipient().String(), authorized}
	for _, r := range valid {
		if _, err := ParseRecipient(r); err != nil {
			t.Errorf("ParseRecipient(%q) failed: %v", r, err)
		}
	}

	invalid := []string{"", "age1notbech32", "ssh-ed25519 AAAAnope", "alice@example.com"}
	for _, r := range invalid {
		if _, err := ParseRecipient(r); err == nil {
			t.Errorf("ParseRecipient(%q) should fail", r)
		}
	}
}
