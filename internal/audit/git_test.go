package audit

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestRepo(t *testing.T) *Git {
	t.Helper()
	g := NewGit(t.TempDir())
	if !g.Installed() {
		t.Skip("git is not installed")
	}
	t.Setenv("GIT_AUTHOR_NAME", "huna test")
	t.Setenv("GIT_AUTHOR_EMAIL", "test@example.com")
	t.Setenv("GIT_COMMITTER_NAME", "huna test")
	t.Setenv("GIT_COMMITTER_EMAIL", "test@example.com")
	t.Setenv("GIT_CONFIG_GLOBAL", filepath.Join(t.TempDir(), "gitconfig"))
	t.Setenv("GIT_CONFIG_NOSYSTEM", "1")
	return g
}

func TestGit_CommitWithoutRepository(t *testing.T) {
	g := newTestRepo(t)
	if err := g.Commit(context.Background(), "x"); !errors.Is(err, ErrNotRepository) {
		t.Errorf("expected ErrNotRepository, got %v", err)
	}
	if _, err := g.History(context.Background()); !errors.Is(err, ErrNotRepository) {
		t.Errorf("expected ErrNotRepository from History, got %v", err)
	}
}

func TestGit_InitCommitHistory(t *testing.T) {
	g := newTestRepo(t)
	ctx := context.Background()

	if err := g.Init(ctx); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if !g.IsRepository() {
		t.Fatal("expected a repository after Init")
	}
	if err := g.Init(ctx); err != nil {
		t.Fatalf("second Init should be a no-op, got %v", err)
	}

	entries, err := g.History(ctx)
	if err != nil || len(entries) != 0 {
		t.Fatalf("expected empty history, got %v (%v)", entries, err)
	}

	for i, op := range []string{"init", "add"} {
		if err := os.WriteFile(filepath.Join(g.Dir, op+".age"), []byte{byte(i)}, 0600); err != nil {
			t.Fatalf("setup failed: %v", err)
		}
		msg, _ := Message(Entry{Operation: op, IDs: []string{"aaaabbbbccccdddd"}})
		if err := g.Commit(ctx, msg); err != nil {
			t.Fatalf("Commit failed: %v", err)
		}
	}

	entries, err = g.History(ctx)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(entries) != 2 || entries[0].Operation != "init" || entries[1].Operation != "add" {
		t.Errorf("unexpected history %+v", entries)
	}

	var out bytes.Buffer
	if err := g.Run(ctx, nil, &out, &out, "log", "--format=%s"); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !strings.Contains(out.String(), "add: aaaabbbbccccdddd") {
		t.Errorf("expected subject in git log, got %q", out.String())
	}
}
