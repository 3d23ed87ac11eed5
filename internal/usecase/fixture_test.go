package usecase

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/riskibarqy/swiss-league/internal/domain/league"
	"github.com/riskibarqy/swiss-league/internal/platform/logging"
)

var fixedNow = time.Date(2025, 4, 2, 20, 15, 0, 0, time.UTC)

// stubStore keeps one document in memory. Each pending conflict makes the next
// commit fail as if another writer had committed first.
type stubStore struct {
	mu        sync.Mutex
	doc       league.Document
	version   int
	fetches   int
	conflicts int
	messages  []string
}

func newStubStore(doc league.Document) *stubStore {
	return &stubStore{doc: doc, version: 1}
}

func (s *stubStore) Fetch(context.Context) (league.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.fetches++
	clone, err := league.Clone(s.doc)
	if err != nil {
		return league.Snapshot{}, err
	}
	return league.Snapshot{Document: clone, Version: strconv.Itoa(s.version)}, nil
}

func (s *stubStore) Commit(_ context.Context, doc league.Document, version, message string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conflicts > 0 {
		s.conflicts--
		s.version++
		return "", league.ErrVersionConflict
	}
	if version != strconv.Itoa(s.version) {
		return "", league.ErrVersionConflict
	}
	clone, err := league.Clone(doc)
	if err != nil {
		return "", err
	}
	s.doc = clone
	s.version++
	s.messages = append(s.messages, message)
	return strconv.Itoa(s.version), nil
}

func (s *stubStore) leagueByID(id string) *league.League {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Leagues[id]
}

func (s *stubStore) fetchCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetches
}

type recordingListener struct {
	mu      sync.Mutex
	changed []string
}

func (l *recordingListener) LeagueChanged(_ context.Context, leagueID string) {
	l.mu.Lock()
	l.changed = append(l.changed, leagueID)
	l.mu.Unlock()
}

func boolPtr(v bool) *bool { return &v }

func pendingMatch(id, p1, p2 string) league.Match {
	return league.Match{
		ID:        id,
		Player1ID: p1,
		Player2ID: p2,
		IsBye:     p2 == "",
		Status:    league.StatusPending,
		Frames:    []league.Frame{},
	}
}

func roster(names ...string) []league.Player {
	out := make([]league.Player, 0, len(names))
	for _, name := range names {
		out = append(out, league.Player{ID: "p-" + name, Name: name, Active: boolPtr(true)})
	}
	return out
}

// sampleDocument has an active spring league and a pending autumn league in
// which alice and bob also meet.
func sampleDocument() league.Document {
	return league.Document{Leagues: map[string]*league.League{
		"spring": {
			Info:    league.Info{Name: "Spring Swiss", Status: league.StatusActive, BestOfFrames: 3},
			Players: roster("alice", "bob", "carol", "dave"),
			Rounds: []league.Round{
				{RoundNumber: 1, Status: league.StatusPending, Matches: []league.Match{
					pendingMatch("spring-r1-m1", "p-alice", "p-bob"),
					pendingMatch("spring-r1-m2", "p-carol", "p-dave"),
				}},
				{RoundNumber: 2, Status: league.StatusPending, Matches: []league.Match{
					pendingMatch("spring-r2-m1", "p-carol", "p-alice"),
					pendingMatch("spring-r2-m2", "p-bob", "p-dave"),
				}},
			},
		},
		"autumn": {
			Info:    league.Info{Name: "Autumn Swiss", Status: league.StatusPending, BestOfFrames: 5},
			Players: roster("alice", "bob", "erin"),
			Rounds: []league.Round{
				{RoundNumber: 1, Status: league.StatusPending, Matches: []league.Match{
					pendingMatch("autumn-r1-m1", "p-bob", "p-alice"),
					pendingMatch("autumn-r1-m2", "p-erin", ""),
				}},
			},
		},
	}}
}

func newTestResultService(store league.DocumentStore, listeners ...CommitListener) *ResultService {
	svc := NewResultService(store, nil, ResultServiceConfig{MaxAttempts: 3}, logging.NewNop(), listeners...)
	svc.now = func() time.Time { return fixedNow }
	return svc
}
