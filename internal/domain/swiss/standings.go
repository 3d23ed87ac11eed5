package swiss

import (
	"sort"
	"strconv"
	"strings"

	"github.com/riskibarqy/swiss-league/internal/domain/league"
)

// Standing is one row of the ranked table.
type Standing struct {
	Position int           `json:"position"`
	Rank     int           `json:"rank"`
	Tied     bool          `json:"tied"`
	Player   league.Player `json:"player"`
}

// Label renders the display rank, prefixed with "T" when shared.
func (s Standing) Label() string {
	if s.Tied {
		return "T" + strconv.Itoa(s.Rank)
	}
	return strconv.Itoa(s.Rank)
}

// Rank orders active players by points, Buchholz, strength of schedule, frame
// difference and frames won, all descending, then by name.
func Rank(l *league.League) []league.Player {
	if l == nil {
		return nil
	}
	out := make([]league.Player, 0, len(l.Players))
	for _, p := range l.Players {
		if p.IsActive() {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Stats, out[j].Stats
		switch {
		case a.Points != b.Points:
			return a.Points > b.Points
		case a.BuchholzScore != b.BuchholzScore:
			return a.BuchholzScore > b.BuchholzScore
		case a.StrengthOfSchedule != b.StrengthOfSchedule:
			return a.StrengthOfSchedule > b.StrengthOfSchedule
		case a.FrameDifference != b.FrameDifference:
			return a.FrameDifference > b.FrameDifference
		case a.FramesWon != b.FramesWon:
			return a.FramesWon > b.FramesWon
		}
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}

// Standings ranks the league and assigns display ranks. Players level on every
// numeric key share the rank of the first of them.
func Standings(l *league.League) []Standing {
	ranked := Rank(l)
	out := make([]Standing, len(ranked))
	for i, p := range ranked {
		rank := i + 1
		if i > 0 && level(ranked[i-1].Stats, p.Stats) {
			rank = out[i-1].Rank
		}
		out[i] = Standing{Position: i + 1, Rank: rank, Player: p}
	}
	for i := range out {
		out[i].Tied = (i > 0 && out[i-1].Rank == out[i].Rank) ||
			(i < len(out)-1 && out[i+1].Rank == out[i].Rank)
	}
	return out
}

func level(a, b league.PlayerStats) bool {
	return a.Points == b.Points &&
		a.BuchholzScore == b.BuchholzScore &&
		a.StrengthOfSchedule == b.StrengthOfSchedule &&
		a.FrameDifference == b.FrameDifference &&
		a.FramesWon == b.FramesWon
}
