package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCollectUpFiles_SortedUpOnly(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"002_subscribers.up.sql",
		"000_drop_all.sql",
		"001_contact_submissions.up.sql",
		"001_contact_submissions.down.sql",
		"README.md",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("--"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "003_dir.up.sql"), 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := collectUpFiles(dir)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"001_contact_submissions.up.sql", "002_subscribers.up.sql"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("collectUpFiles (-want +got):\n%s", diff)
	}
}

func TestCollectUpFiles_MissingDir(t *testing.T) {
	if _, err := collectUpFiles(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestMigrationName(t *testing.T) {
	if got := migrationName("004_payments.up.sql"); got != "004_payments" {
		t.Errorf("expected 004_payments, got %q", got)
	}
}

func TestRun_UnknownCommand(t *testing.T) {
	m := &migrator{dir: t.TempDir()}
	err := m.run(context.Background(), "sideways")
	if !errors.Is(err, errUsage) {
		t.Fatalf("expected errUsage, got %v", err)
	}
}
