package memory

import (
	"context"
	"strconv"
	"sync"

	"github.com/riskibarqy/swiss-league/internal/domain/league"
)

// DocumentStore holds the league document in process. Versions are a counter.
type DocumentStore struct {
	mu       sync.RWMutex
	doc      league.Document
	version  int64
	messages []string
}

func NewDocumentStore(seed league.Document) *DocumentStore {
	if seed.Leagues == nil {
		seed.Leagues = map[string]*league.League{}
	}
	league.ApplyDefaults(&seed)
	return &DocumentStore{doc: seed, version: 1}
}

func (s *DocumentStore) Fetch(_ context.Context) (league.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, err := league.Clone(s.doc)
	if err != nil {
		return league.Snapshot{}, err
	}
	return league.Snapshot{Document: doc, Version: strconv.FormatInt(s.version, 10)}, nil
}

func (s *DocumentStore) Commit(_ context.Context, doc league.Document, version, message string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if version != strconv.FormatInt(s.version, 10) {
		return "", league.ErrVersionConflict
	}
	clone, err := league.Clone(doc)
	if err != nil {
		return "", err
	}

	s.doc = clone
	s.version++
	s.messages = append(s.messages, message)
	return strconv.FormatInt(s.version, 10), nil
}

// Messages returns the commit messages accepted so far, oldest first.
func (s *DocumentStore) Messages() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]string(nil), s.messages...)
}
