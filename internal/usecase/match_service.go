package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/swiss-league/internal/domain/league"
	"github.com/riskibarqy/swiss-league/internal/domain/player"
	"github.com/riskibarqy/swiss-league/internal/domain/swiss"
)

type PendingMatchView struct {
	Round        int    `json:"round"`
	MatchID      string `json:"match_id"`
	OpponentID   string `json:"opponent_id"`
	OpponentName string `json:"opponent_name"`
}

type PlayerMatchesView struct {
	LeagueID   string             `json:"league_id"`
	LeagueName string             `json:"league_name"`
	PlayerID   string             `json:"player_id"`
	PlayerName string             `json:"player_name"`
	Pending    []PendingMatchView `json:"pending"`
}

type MatchService struct {
	store     league.DocumentStore
	directory player.Directory
	leagueID  string
}

func NewMatchService(store league.DocumentStore, directory player.Directory, defaultLeagueID string) *MatchService {
	return &MatchService{
		store:     store,
		directory: directory,
		leagueID:  strings.TrimSpace(defaultLeagueID),
	}
}

// ListPending returns the pending matches of the player whose name equals name.
func (s *MatchService) ListPending(ctx context.Context, leagueID, name string) (PlayerMatchesView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.ListPending")
	defer span.End()

	name = strings.TrimSpace(name)
	if name == "" {
		return PlayerMatchesView{}, fmt.Errorf("%w: player name is required", ErrInvalidInput)
	}

	snap, err := s.store.Fetch(ctx)
	if err != nil {
		return PlayerMatchesView{}, fmt.Errorf("fetch league document: %w", err)
	}
	id, lg, err := selectLeague(&snap.Document, leagueID, s.leagueID)
	if err != nil {
		return PlayerMatchesView{}, err
	}

	p, _, ok := player.ExactResolver{}.Resolve(lg.Players, name)
	if !ok {
		return PlayerMatchesView{}, fmt.Errorf("%w: %s is not in %s", ErrPlayerNotFound, name, lg.Info.Name)
	}

	pending := swiss.FindPendingMatchesForPlayer(lg, p.ID)
	out := PlayerMatchesView{
		LeagueID:   id,
		LeagueName: lg.Info.Name,
		PlayerID:   p.ID,
		PlayerName: p.Name,
		Pending:    make([]PendingMatchView, 0, len(pending)),
	}
	for _, pm := range pending {
		out.Pending = append(out.Pending, PendingMatchView{
			Round:        pm.Round,
			MatchID:      pm.Match.ID,
			OpponentID:   pm.OpponentID,
			OpponentName: player.FormatName(ctx, s.directory, pm.OpponentName),
		})
	}
	return out, nil
}
