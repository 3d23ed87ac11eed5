package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/swiss-league/internal/domain/league"
	"github.com/riskibarqy/swiss-league/internal/domain/swiss"
	"github.com/riskibarqy/swiss-league/internal/platform/cache"
)

const standingsCachePrefix = "standings:"

// standingsKey ties a cached table to the document version it was ranked
// from, so edits made by another process are picked up on the next read.
func standingsKey(leagueID, version string) string {
	return standingsCachePrefix + leagueID + "@" + version
}

type StandingsView struct {
	LeagueID   string           `json:"league_id"`
	LeagueName string           `json:"league_name"`
	Status     string           `json:"status"`
	Version    string           `json:"version"`
	Rows       []swiss.Standing `json:"rows"`
}

type StandingsService struct {
	store    league.DocumentStore
	cache    *cache.Store[StandingsView]
	leagueID string
}

// NewStandingsService serves ranked tables. A nil cache computes every call.
func NewStandingsService(store league.DocumentStore, views *cache.Store[StandingsView], defaultLeagueID string) *StandingsService {
	return &StandingsService{
		store:    store,
		cache:    views,
		leagueID: strings.TrimSpace(defaultLeagueID),
	}
}

// Get returns the standings of leagueID, or of the default league when empty.
// A positive limit truncates the table.
func (s *StandingsService) Get(ctx context.Context, leagueID string, limit int) (StandingsView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingsService.Get")
	defer span.End()

	if limit < 0 {
		return StandingsView{}, fmt.Errorf("%w: limit must not be negative", ErrInvalidInput)
	}

	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		leagueID = s.leagueID
	}

	snap, err := s.store.Fetch(ctx)
	if err != nil {
		return StandingsView{}, fmt.Errorf("fetch league document: %w", err)
	}
	id, lg, err := selectLeague(&snap.Document, leagueID, "")
	if err != nil {
		return StandingsView{}, err
	}

	rank := func(context.Context) (StandingsView, error) {
		return StandingsView{
			LeagueID:   id,
			LeagueName: lg.Info.Name,
			Status:     lg.Info.Status,
			Version:    snap.Version,
			Rows:       swiss.Standings(lg),
		}, nil
	}

	var view StandingsView
	if s.cache != nil {
		view, err = s.cache.GetOrLoad(ctx, standingsKey(id, snap.Version), rank)
	} else {
		view, err = rank(ctx)
	}
	if err != nil {
		return StandingsView{}, err
	}

	if limit > 0 && limit < len(view.Rows) {
		view.Rows = view.Rows[:limit]
	}
	return view, nil
}

// LeagueChanged drops every cached table of leagueID, whatever its version.
func (s *StandingsService) LeagueChanged(ctx context.Context, leagueID string) {
	if s.cache == nil {
		return
	}
	s.cache.DeletePrefix(ctx, standingsCachePrefix+leagueID+"@")
}
