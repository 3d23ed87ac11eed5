package cache

import (
	"context"
	"errors"

	"github.com/riskibarqy/swiss-league/internal/domain/league"
	basecache "github.com/riskibarqy/swiss-league/internal/platform/cache"
)

const snapshotKey = "league:document"

// DocumentStore serves Fetch from a short-lived snapshot so that read-heavy
// routes do not hit a remote store on every request. The snapshot is replaced on
// a successful commit and dropped on a conflict, which keeps retries honest.
type DocumentStore struct {
	next  league.DocumentStore
	cache *basecache.Store[league.Snapshot]
}

func NewDocumentStore(next league.DocumentStore, cache *basecache.Store[league.Snapshot]) *DocumentStore {
	return &DocumentStore{next: next, cache: cache}
}

func (s *DocumentStore) Fetch(ctx context.Context) (league.Snapshot, error) {
	snap, err := s.cache.GetOrLoad(ctx, snapshotKey, s.next.Fetch)
	if err != nil {
		return league.Snapshot{}, err
	}

	doc, err := league.Clone(snap.Document)
	if err != nil {
		return league.Snapshot{}, err
	}
	return league.Snapshot{Document: doc, Version: snap.Version}, nil
}

func (s *DocumentStore) Commit(ctx context.Context, doc league.Document, version, message string) (string, error) {
	next, err := s.next.Commit(ctx, doc, version, message)
	if err != nil {
		if errors.Is(err, league.ErrVersionConflict) {
			s.cache.Delete(ctx, snapshotKey)
		}
		return "", err
	}

	committed, cloneErr := league.Clone(doc)
	if cloneErr != nil {
		s.cache.Delete(ctx, snapshotKey)
		return next, nil
	}
	s.cache.Set(ctx, snapshotKey, league.Snapshot{Document: committed, Version: next})
	return next, nil
}
