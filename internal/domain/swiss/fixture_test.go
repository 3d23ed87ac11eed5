package swiss

import (
	"strconv"
	"time"

	"github.com/riskibarqy/swiss-league/internal/domain/league"
	"github.com/riskibarqy/swiss-league/internal/domain/submission"
)

var fixedNow = time.Date(2025, 3, 14, 19, 30, 0, 0, time.UTC)

func boolPtr(v bool) *bool { return &v }

func newLeague(bestOf int, names ...string) *league.League {
	l := &league.League{Info: league.Info{Name: "Test League", Status: league.StatusActive, BestOfFrames: bestOf}}
	for _, name := range names {
		l.Players = append(l.Players, league.Player{ID: name, Name: name, Active: boolPtr(true)})
	}
	return l
}

func addRound(l *league.League, pairs ...[2]string) *league.Round {
	n := len(l.Rounds) + 1
	round := league.Round{RoundNumber: n, Status: league.StatusPending}
	for i, pair := range pairs {
		m := league.Match{
			ID:        "r" + strconv.Itoa(n) + "m" + strconv.Itoa(i+1),
			Player1ID: pair[0],
			Player2ID: pair[1],
			Status:    league.StatusPending,
			Frames:    []league.Frame{},
		}
		if pair[1] == "" {
			m.IsBye = true
		}
		round.Matches = append(round.Matches, m)
	}
	l.Rounds = append(l.Rounds, round)
	return &l.Rounds[len(l.Rounds)-1]
}

func scores(pairs ...int) []submission.Score {
	out := make([]submission.Score, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, submission.Score{Left: pairs[i], Right: pairs[i+1]})
	}
	return out
}

func mustMatch(l *league.League, a, b string) *league.Match {
	m, _, ok := FindPendingMatch(l, a, b)
	if !ok {
		panic("no pending match between " + a + " and " + b)
	}
	return m
}

func statsOf(l *league.League, id string) league.PlayerStats {
	p, ok := l.Player(id)
	if !ok {
		panic("unknown player " + id)
	}
	return p.Stats
}
