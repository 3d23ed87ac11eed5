package file

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/riskibarqy/swiss-league/internal/domain/league"
)

// missingVersion is the token for a data file that does not exist yet.
const missingVersion = "absent"

// DocumentStore keeps the league document in a JSON file. The version token is the
// sha256 of the file contents, so edits made outside the process are detected too.
type DocumentStore struct {
	mu   sync.Mutex
	path string
}

func NewDocumentStore(path string) *DocumentStore {
	return &DocumentStore{path: path}
}

func (s *DocumentStore) Path() string {
	return s.path
}

func (s *DocumentStore) Fetch(_ context.Context) (league.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, version, err := s.read()
	if err != nil {
		return league.Snapshot{}, err
	}
	if raw == nil {
		return league.Snapshot{Document: league.Document{Leagues: map[string]*league.League{}}, Version: version}, nil
	}

	doc, err := league.Decode(raw)
	if err != nil {
		return league.Snapshot{}, fmt.Errorf("read %s: %w", s.path, err)
	}
	return league.Snapshot{Document: doc, Version: version}, nil
}

// Commit ignores message; the CLI records it in git when asked to.
func (s *DocumentStore) Commit(ctx context.Context, doc league.Document, version, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, current, err := s.read()
	if err != nil {
		return "", err
	}
	if current != version {
		return "", league.ErrVersionConflict
	}

	raw, err := league.Encode(doc)
	if err != nil {
		return "", err
	}
	if err := s.write(raw); err != nil {
		return "", err
	}
	return hashOf(raw), nil
}

func (s *DocumentStore) read() ([]byte, string, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, missingVersion, nil
		}
		return nil, "", fmt.Errorf("read %s: %w", s.path, err)
	}
	return raw, hashOf(raw), nil
}

// write replaces the file atomically through a temp file in the same directory.
func (s *DocumentStore) write(raw []byte) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}

func hashOf(raw []byte) string {
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
