package swiss

import "github.com/riskibarqy/swiss-league/internal/domain/league"

// RecalculateAllStats rebuilds every player's stats from the full completed-match
// history. Basic counts for all players are finished before schedule strength is
// read from them.
func RecalculateAllStats(l *league.League) {
	if l == nil {
		return
	}

	index := make(map[string]int, len(l.Players))
	for i := range l.Players {
		index[l.Players[i].ID] = i
	}
	fresh := make([]league.PlayerStats, len(l.Players))
	opponents := make([][]string, len(l.Players))

	record := func(id string, won bool) (*league.PlayerStats, int, bool) {
		i, ok := index[id]
		if !ok {
			return nil, 0, false
		}
		s := &fresh[i]
		s.MatchesPlayed++
		if won {
			s.MatchesWon++
			s.Points++
		} else {
			s.MatchesLost++
		}
		return s, i, true
	}

	for r := range l.Rounds {
		for mi := range l.Rounds[r].Matches {
			m := &l.Rounds[r].Matches[mi]
			if !m.IsCompleted() {
				continue
			}

			if m.IsBye {
				if s, _, ok := record(m.Player1ID, true); ok {
					s.ByesReceived++
				}
				continue
			}

			if m.IsForfeit() {
				record(m.Player1ID, m.WinnerID != "" && m.WinnerID == m.Player1ID)
				record(m.Player2ID, m.WinnerID != "" && m.WinnerID == m.Player2ID)
				continue
			}

			if s, i, ok := record(m.Player1ID, m.WinnerID == m.Player1ID); ok {
				s.FramesWon += m.Player1FramesWon
				s.FramesLost += m.Player2FramesWon
				opponents[i] = append(opponents[i], m.Player2ID)
			}
			if s, i, ok := record(m.Player2ID, m.WinnerID == m.Player2ID); ok {
				s.FramesWon += m.Player2FramesWon
				s.FramesLost += m.Player1FramesWon
				opponents[i] = append(opponents[i], m.Player1ID)
			}
		}
	}

	for i := range fresh {
		fresh[i].FrameDifference = fresh[i].FramesWon - fresh[i].FramesLost
	}

	for i := range fresh {
		if len(opponents[i]) == 0 {
			continue
		}
		var rateSum float64
		rates, buchholz := 0, 0
		for _, oppID := range opponents[i] {
			j, ok := index[oppID]
			if !ok {
				continue
			}
			opp := fresh[j]
			if opp.MatchesPlayed > 0 {
				rateSum += float64(opp.MatchesWon) / float64(opp.MatchesPlayed)
				rates++
			}
			buchholz += opp.Points
		}
		if rates > 0 {
			fresh[i].StrengthOfSchedule = rateSum / float64(rates)
		}
		fresh[i].BuchholzScore = buchholz
	}

	for i := range l.Players {
		l.Players[i].Stats = fresh[i]
	}
}
