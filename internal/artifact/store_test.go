package artifact

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"filippo.io/age"

	herrors "github.com/PolarWolf314/huna/internal/errors"
	"github.com/PolarWolf314/huna/internal/secrets"
	"github.com/PolarWolf314/huna/internal/tempfile"
)

func newTestStore(t *testing.T) (*Store, []*age.X25519Identity) {
	t.Helper()
	var ids []*age.X25519Identity
	var identities []age.Identity
	for i := 0; i < 2; i++ {
		id, err := age.GenerateX25519Identity()
		if err != nil {
			t.Fatalf("GenerateX25519Identity failed: %v", err)
		}
		ids = append(ids, id)
		identities = append(identities, id)
	}
	gw := secrets.NewAgeGatewayWithIdentities(identities, false)
	return NewStore(NewWriter(tempfile.New(), ModeRename), gw), ids
}

func TestStoreLoadMissing(t *testing.T) {
	s, _ := newTestStore(t)
	data, exists, err := s.Load(filepath.Join(t.TempDir(), "absent.age"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if exists || data != nil {
		t.Errorf("expected absent artifact, got exists=%v data=%q", exists, data)
	}
}

func TestStoreSaveLoad(t *testing.T) {
	s, ids := newTestStore(t)
	path := filepath.Join(t.TempDir(), "record.age")
	recipients := []string{ids[0].Recipient().String()}

	if err := s.Save(path, []byte("hunter2\n"), recipients); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	raw, _ := os.ReadFile(path)
	if bytes.Contains(raw, []byte("hunter2")) {
		t.Fatal("plaintext found in persisted artifact")
	}

	got, exists, err := s.Load(path)
	if err != nil || !exists {
		t.Fatalf("Load failed: exists=%v err=%v", exists, err)
	}
	if string(got) != "hunter2\n" {
		t.Errorf("expected round trip, got %q", got)
	}
}

func TestStoreSaveRequiresRecipients(t *testing.T) {
	s, _ := newTestStore(t)
	err := s.Save(filepath.Join(t.TempDir(), "x.age"), []byte("x"), nil)
	if !errors.Is(err, herrors.ErrEmptyRecipients) {
		t.Errorf("expected ErrEmptyRecipients, got %v", err)
	}
}

func TestStoreUpdate(t *testing.T) {
	s, ids := newTestStore(t)
	path := filepath.Join(t.TempDir(), "index.age")
	recipients := []string{ids[0].Recipient().String()}

	appendLine := func(line string) TransformFunc {
		return func(current []byte, exists bool) ([]byte, error) {
			return append(current, []byte(line+"\n")...), nil
		}
	}

	if err := s.Update(path, recipients, appendLine("a")); err != nil {
		t.Fatalf("first Update failed: %v", err)
	}
	if err := s.Update(path, recipients, appendLine("b")); err != nil {
		t.Fatalf("second Update failed: %v", err)
	}
	got, _, _ := s.Load(path)
	if string(got) != "a\nb\n" {
		t.Errorf("expected %q, got %q", "a\nb\n", got)
	}

	boom := errors.New("boom")
	err := s.Update(path, recipients, func([]byte, bool) ([]byte, error) { return nil, boom })
	if !errors.Is(err, boom) {
		t.Fatalf("expected transform error, got %v", err)
	}
	got, _, _ = s.Load(path)
	if string(got) != "a\nb\n" {
		t.Errorf("failed transform must not write, got %q", got)
	}
}

func TestStoreReencrypt(t *testing.T) {
	s, ids := newTestStore(t)
	path := filepath.Join(t.TempDir(), "record.age")

	if err := s.Save(path, []byte("secret"), []string{ids[0].Recipient().String()}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := s.Reencrypt(path, []string{ids[1].Recipient().String()}); err != nil {
		t.Fatalf("Reencrypt failed: %v", err)
	}

	// Only the second identity may read it now.
	only := secrets.NewAgeGatewayWithIdentities([]age.Identity{ids[1]}, false)
	raw, _ := os.ReadFile(path)
	got, err := only.Decrypt(raw)
	if err != nil || string(got) != "secret" {
		t.Errorf("expected second identity to decrypt, got %q (%v)", got, err)
	}
	first := secrets.NewAgeGatewayWithIdentities([]age.Identity{ids[0]}, false)
	if _, err := first.Decrypt(raw); !errors.Is(err, herrors.ErrDecryptFailed) {
		t.Errorf("expected old identity to be rejected, got %v", err)
	}

	if err := s.Reencrypt(filepath.Join(t.TempDir(), "missing.age"), []string{ids[1].Recipient().String()}); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected ErrNotExist for missing artifact, got %v", err)
	}
}
