package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/riskibarqy/swiss-league/internal/domain/league"
)

const sampleJSON = `{
  "leagues": {
    "spring": {
      "league": {"name": "Spring Swiss", "status": "active"},
      "players": [{"id": "p-alice", "name": "alice"}, {"id": "p-bob", "name": "bob"}],
      "rounds": []
    }
  }
}
`

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "league.json")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(sampleJSON), 0o644); err != nil {
		t.Fatalf("write sample: %v", err)
	}
	return path
}

func TestDocumentStore_FetchAppliesDefaults(t *testing.T) {
	store := NewDocumentStore(writeSample(t))

	snap, err := store.Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	spring := snap.Document.Leagues["spring"]
	if spring == nil {
		t.Fatalf("expected spring league")
	}
	if spring.Info.BestOfFrames != league.DefaultBestOfFrames {
		t.Fatalf("expected default best of frames, got %d", spring.Info.BestOfFrames)
	}
	if !spring.Players[0].IsActive() {
		t.Fatalf("expected players to default to active")
	}
	if len(snap.Version) != 64 {
		t.Fatalf("expected sha256 version, got %q", snap.Version)
	}
}

func TestDocumentStore_CommitWritesSortedIndentedJSON(t *testing.T) {
	path := writeSample(t)
	store := NewDocumentStore(path)
	ctx := context.Background()

	snap, err := store.Fetch(ctx)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	snap.Document.Leagues["autumn"] = &league.League{Info: league.Info{Name: "Autumn Swiss", Status: league.StatusPending}}

	next, err := store.Commit(ctx, snap.Document, snap.Version, "add autumn")
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if next == snap.Version {
		t.Fatalf("expected a new version token")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	text := string(raw)
	if !strings.HasSuffix(text, "\n") || !strings.Contains(text, "\n  \"leagues\"") {
		t.Fatalf("expected indented document with trailing newline:\n%s", text)
	}
	if strings.Index(text, "\"autumn\"") > strings.Index(text, "\"spring\"") {
		t.Fatalf("expected league ids in sorted order:\n%s", text)
	}

	again, err := store.Fetch(ctx)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if again.Version != next {
		t.Fatalf("expected fetched version %s, got %s", next, again.Version)
	}
}

func TestDocumentStore_ExternalEditConflicts(t *testing.T) {
	path := writeSample(t)
	store := NewDocumentStore(path)
	ctx := context.Background()

	snap, err := store.Fetch(ctx)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if err := os.WriteFile(path, []byte(strings.Replace(sampleJSON, "Spring Swiss", "Edited", 1)), 0o644); err != nil {
		t.Fatalf("edit: %v", err)
	}

	if _, err := store.Commit(ctx, snap.Document, snap.Version, "stale"); !errors.Is(err, league.ErrVersionConflict) {
		t.Fatalf("expected version conflict, got %v", err)
	}
}

func TestDocumentStore_MissingFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "league.json")
	store := NewDocumentStore(path)
	ctx := context.Background()

	snap, err := store.Fetch(ctx)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(snap.Document.Leagues) != 0 {
		t.Fatalf("expected empty document, got %d leagues", len(snap.Document.Leagues))
	}

	if _, err := store.Commit(ctx, snap.Document, snap.Version, "init"); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected file to exist: %v", err)
	}
}
