package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/swiss-league/internal/domain/league"
	"github.com/riskibarqy/swiss-league/internal/domain/swiss"
	"github.com/riskibarqy/swiss-league/internal/platform/logging"
)

const (
	defaultRecalculateWorkers = 4
	recalculateCommitMessage  = "recalculate stats"
)

type RecalculateInput struct {
	MaxWorkers int
	// DryRun computes the changes without writing them.
	DryRun bool
}

type RecalculateResult struct {
	LeagueCount    int      `json:"league_count"`
	ChangedLeagues []string `json:"changed_leagues"`
	WorkerCount    int      `json:"worker_count"`
	Version        string   `json:"version"`
	Committed      bool     `json:"committed"`
}

// RecalculateService rebuilds every player's stats from match history. It repairs
// documents edited by hand.
type RecalculateService struct {
	store       league.DocumentStore
	logger      *logging.Logger
	workers     int
	maxAttempts int
	listeners   []CommitListener
}

func NewRecalculateService(store league.DocumentStore, workers, maxAttempts int, logger *logging.Logger, listeners ...CommitListener) *RecalculateService {
	if logger == nil {
		logger = logging.Default()
	}
	if workers <= 0 {
		workers = defaultRecalculateWorkers
	}
	if maxAttempts <= 0 {
		maxAttempts = defaultCommitAttempts
	}
	return &RecalculateService{
		store:       store,
		logger:      logger,
		workers:     workers,
		maxAttempts: maxAttempts,
		listeners:   listeners,
	}
}

func (s *RecalculateService) RecalculateAll(ctx context.Context, input RecalculateInput) (RecalculateResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RecalculateService.RecalculateAll")
	defer span.End()

	workerCount := input.MaxWorkers
	if workerCount <= 0 {
		workerCount = s.workers
	}

	var lastErr error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		snap, err := s.store.Fetch(ctx)
		if err != nil {
			return RecalculateResult{}, fmt.Errorf("fetch league document: %w", err)
		}

		changed, err := recalculateLeagues(&snap.Document, workerCount)
		if err != nil {
			return RecalculateResult{}, err
		}
		result := RecalculateResult{
			LeagueCount:    len(snap.Document.Leagues),
			ChangedLeagues: changed,
			WorkerCount:    workerCount,
			Version:        snap.Version,
		}
		if input.DryRun || len(changed) == 0 {
			return result, nil
		}

		version, err := s.store.Commit(ctx, snap.Document, snap.Version, recalculateCommitMessage)
		if errors.Is(err, league.ErrVersionConflict) {
			lastErr = err
			s.logger.WarnContext(ctx, "league document changed during recalculation, retrying", "attempt", attempt)
			continue
		}
		if err != nil {
			return RecalculateResult{}, fmt.Errorf("commit league document: %w", err)
		}

		result.Version = version
		result.Committed = true
		for _, id := range changed {
			for _, l := range s.listeners {
				l.LeagueChanged(ctx, id)
			}
		}
		s.logger.InfoContext(ctx, "league stats recalculated",
			"league_count", result.LeagueCount,
			"changed_count", len(changed),
			"version", version,
		)
		return result, nil
	}
	return RecalculateResult{}, fmt.Errorf("%w: gave up after %d attempts: %w", ErrConflict, s.maxAttempts, lastErr)
}

// recalculateLeagues rebuilds each league on its own worker and returns the ids
// whose stats differ from what was stored.
func recalculateLeagues(doc *league.Document, workerCount int) ([]string, error) {
	ids := doc.IDs()
	if len(ids) == 0 {
		return []string{}, nil
	}

	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var (
		workers sync.WaitGroup
		mu      sync.Mutex
		changed = make([]string, 0, len(ids))
	)
	for _, id := range ids {
		id := id
		lg := doc.Leagues[id]
		if lg == nil {
			continue
		}
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			before := snapshotStats(lg)
			swiss.RecalculateAllStats(lg)
			if statsChanged(before, lg) {
				mu.Lock()
				changed = append(changed, id)
				mu.Unlock()
			}
		}); err != nil {
			workers.Done()
			workers.Wait()
			return nil, fmt.Errorf("submit task to worker pool: %w", err)
		}
	}
	workers.Wait()

	sort.Strings(changed)
	return changed, nil
}

func snapshotStats(l *league.League) map[string]league.PlayerStats {
	out := make(map[string]league.PlayerStats, len(l.Players))
	for _, p := range l.Players {
		out[p.ID] = p.Stats
	}
	return out
}

func statsChanged(before map[string]league.PlayerStats, l *league.League) bool {
	for _, p := range l.Players {
		if before[p.ID] != p.Stats {
			return true
		}
	}
	return false
}
