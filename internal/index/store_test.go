package index

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"filippo.io/age"

	"github.com/PolarWolf314/huna/internal/artifact"
	herrors "github.com/PolarWolf314/huna/internal/errors"
	"github.com/PolarWolf314/huna/internal/recipients"
	"github.com/PolarWolf314/huna/internal/secrets"
	"github.com/PolarWolf314/huna/internal/tempfile"
)

type staticRecipients recipients.Set

func (s staticRecipients) Load() (recipients.Set, error) {
	if len(s) == 0 {
		return nil, herrors.ErrStoreNotInitialized
	}
	return recipients.Set(s), nil
}

func newTestStore(t *testing.T) (*Store, *artifact.Store, recipients.Set) {
	t.Helper()
	id, err := age.GenerateX25519Identity()
	if err != nil {
		t.Fatalf("GenerateX25519Identity failed: %v", err)
	}
	gw := secrets.NewAgeGatewayWithIdentities([]age.Identity{id}, false)
	arts := artifact.NewStore(artifact.NewWriter(tempfile.New(), artifact.ModeCopy), gw)
	set := recipients.NewSet(id.Recipient().String())
	return NewStore(t.TempDir(), arts, staticRecipients(set)), arts, set
}

func TestLookupWithoutIndex(t *testing.T) {
	s, _, _ := newTestStore(t)

	id, ok, err := s.LookupByPath("a/b")
	if err != nil {
		t.Fatalf("LookupByPath failed: %v", err)
	}
	if ok || id != "" {
		t.Errorf("expected absent, got %q", id)
	}
	paths, err := s.Paths()
	if err != nil || len(paths) != 0 {
		t.Errorf("expected empty listing, got %v (%v)", paths, err)
	}
}

func TestInsertLookupRemove(t *testing.T) {
	s, _, _ := newTestStore(t)

	if err := s.Insert("email/work", "X1"); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := s.Insert("email/home", "X2"); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	if id, ok, _ := s.LookupByPath("email/home"); !ok || id != "X2" {
		t.Errorf("expected X2, got %q", id)
	}
	if p, ok, _ := s.LookupByID("X1"); !ok || p != "email/work" {
		t.Errorf("expected email/work, got %q", p)
	}
	if err := s.Insert("email/work", "X3"); !errors.Is(err, herrors.ErrPathExists) {
		t.Errorf("expected ErrPathExists, got %v", err)
	}

	if err := s.Remove("X1"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, ok, _ := s.LookupByID("X1"); ok {
		t.Error("X1 still present after Remove")
	}
	if _, err := s.Resolve("email/work"); !errors.Is(err, herrors.ErrPathNotFound) {
		t.Errorf("expected ErrPathNotFound, got %v", err)
	}
}

func TestIndexIsEncrypted(t *testing.T) {
	s, arts, _ := newTestStore(t)
	if err := s.Insert("bank/checking", "X1"); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if ok, _ := arts.Exists(s.Path()); !ok {
		t.Fatal("index artifact was not created")
	}
	if filepath.Base(s.Path()) != FileName {
		t.Errorf("unexpected index name %s", s.Path())
	}
}

func TestInsertRequiresInitializedStore(t *testing.T) {
	_, arts, _ := newTestStore(t)
	s := NewStore(t.TempDir(), arts, staticRecipients(nil))
	if err := s.Insert("a", "X1"); !errors.Is(err, herrors.ErrStoreNotInitialized) {
		t.Errorf("expected ErrStoreNotInitialized, got %v", err)
	}
}

func TestMove(t *testing.T) {
	s, _, _ := newTestStore(t)
	_ = s.Insert("old/name", "X1")
	_ = s.Insert("taken", "X2")

	if _, err := s.Move("old/name", "taken"); !errors.Is(err, herrors.ErrPathExists) {
		t.Errorf("expected ErrPathExists, got %v", err)
	}
	if _, err := s.Move("missing", "x"); !errors.Is(err, herrors.ErrPathNotFound) {
		t.Errorf("expected ErrPathNotFound, got %v", err)
	}

	id, err := s.Move("old/name", "new/name")
	if err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	if id != "X1" {
		t.Errorf("expected X1 to move, got %q", id)
	}
	paths, _ := s.Paths()
	if strings.Join(paths, ",") != "new/name,taken" {
		t.Errorf("unexpected paths after move %v", paths)
	}
}

func TestCorruptIndexIsFatal(t *testing.T) {
	s, arts, set := newTestStore(t)
	if err := arts.Save(s.Path(), []byte("X1 a\nX2 a\n"), set); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, _, err := s.LookupByPath("a"); !errors.Is(err, herrors.ErrCorruptIndex) {
		t.Errorf("expected ErrCorruptIndex on lookup, got %v", err)
	}
	if err := s.Insert("b", "X3"); !errors.Is(err, herrors.ErrCorruptIndex) {
		t.Errorf("expected ErrCorruptIndex on insert, got %v", err)
	}
}

// Two writers interleaving on the index: the second replace wins and the
// first writer's entry is lost. There is no locking to prevent this.
func TestConcurrentInsertLosesUpdate(t *testing.T) {
	s, arts, set := newTestStore(t)
	if err := s.Insert("seed", "X0"); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	err := arts.Update(s.Path(), set, func(current []byte, exists bool) ([]byte, error) {
		// Another process inserts after this writer decrypted the index.
		if err := s.Insert("from/other", "X2"); err != nil {
			return nil, err
		}
		idx, err := Parse(current)
		if err != nil {
			return nil, err
		}
		if err := idx.Add("from/this", "X1"); err != nil {
			return nil, err
		}
		return idx.Marshal(), nil
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	paths, err := s.Paths()
	if err != nil {
		t.Fatalf("Paths failed: %v", err)
	}
	if strings.Join(paths, ",") != "from/this,seed" {
		t.Errorf("expected the concurrent insert to be lost, got %v", paths)
	}
}
