package swiss

import "github.com/riskibarqy/swiss-league/internal/domain/league"

// PendingMatch is a pending match seen from one participant.
type PendingMatch struct {
	Round        int
	OpponentID   string
	OpponentName string
	Match        *league.Match
}

func isPending(m *league.Match) bool {
	return !m.IsCompleted() && !m.IsBye
}

// FindPendingMatch returns the first pending, non-bye match between a and b in
// document order together with its round number.
func FindPendingMatch(l *league.League, a, b string) (*league.Match, int, bool) {
	return FindPendingMatchInRound(l, a, b, 0)
}

// FindPendingMatchInRound narrows the search to one round; round 0 searches all.
func FindPendingMatchInRound(l *league.League, a, b string, round int) (*league.Match, int, bool) {
	if l == nil {
		return nil, 0, false
	}
	for r := range l.Rounds {
		rd := &l.Rounds[r]
		if round > 0 && rd.RoundNumber != round {
			continue
		}
		for i := range rd.Matches {
			m := &rd.Matches[i]
			if isPending(m) && m.Pairs(a, b) {
				return m, rd.RoundNumber, true
			}
		}
	}
	return nil, 0, false
}

// FindPendingMatchesBetween lists every pending match between a and b in round
// order, seen from a.
func FindPendingMatchesBetween(l *league.League, a, b string) []PendingMatch {
	var out []PendingMatch
	for _, pm := range FindPendingMatchesForPlayer(l, a) {
		if pm.OpponentID == b {
			out = append(out, pm)
		}
	}
	return out
}

// FindPendingMatchesForPlayer lists every pending match involving id in round
// order. Matches against an opponent missing from the roster are skipped.
func FindPendingMatchesForPlayer(l *league.League, id string) []PendingMatch {
	if l == nil {
		return nil
	}
	var out []PendingMatch
	for r := range l.Rounds {
		rd := &l.Rounds[r]
		for i := range rd.Matches {
			m := &rd.Matches[i]
			if !isPending(m) || !m.Involves(id) {
				continue
			}
			opponent, ok := l.Player(m.Opponent(id))
			if !ok {
				continue
			}
			out = append(out, PendingMatch{
				Round:        rd.RoundNumber,
				OpponentID:   opponent.ID,
				OpponentName: opponent.Name,
				Match:        m,
			})
		}
	}
	return out
}

// FindMatch looks a match up by id and returns it with its owning round.
func FindMatch(l *league.League, matchID string) (*league.Match, *league.Round, bool) {
	if l == nil {
		return nil, nil, false
	}
	for r := range l.Rounds {
		rd := &l.Rounds[r]
		for i := range rd.Matches {
			if rd.Matches[i].ID == matchID {
				return &rd.Matches[i], rd, true
			}
		}
	}
	return nil, nil, false
}

func owningRound(l *league.League, m *league.Match) (*league.Round, bool) {
	for r := range l.Rounds {
		rd := &l.Rounds[r]
		for i := range rd.Matches {
			if &rd.Matches[i] == m {
				return rd, true
			}
		}
	}
	return nil, false
}
