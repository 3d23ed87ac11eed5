package swiss

import (
	"fmt"
	"time"

	"github.com/riskibarqy/swiss-league/internal/domain/league"
	"github.com/riskibarqy/swiss-league/internal/domain/submission"
)

// ApplyMatchResult records a played result on m. Frames are given from the
// submitter's side and stored in the match's canonical player order. Stats are
// rebuilt from history afterwards. Nothing is changed when an error is returned.
func ApplyMatchResult(l *league.League, m *league.Match, submitterID, opponentID string, frames []submission.Score, now time.Time) error {
	round, err := checkOpen(l, m)
	if err != nil {
		return err
	}
	if !m.Pairs(submitterID, opponentID) || submitterID == opponentID {
		return fmt.Errorf("%w: %s vs %s does not match %s", ErrNotParticipant, submitterID, opponentID, m.ID)
	}
	if err := ValidateFrameScores(frames); err != nil {
		return err
	}
	if err := ValidateMatchCompletion(frames, l.Info.BestOfFrames); err != nil {
		return err
	}

	canonical := frames
	if submitterID != m.Player1ID {
		canonical = make([]submission.Score, len(frames))
		for i, f := range frames {
			canonical[i] = f.Swap()
		}
	}

	stored := make([]league.Frame, 0, len(canonical))
	p1Won, p2Won := 0, 0
	for i, f := range canonical {
		winner := m.Player2ID
		if f.Left > f.Right {
			winner = m.Player1ID
			p1Won++
		} else {
			p2Won++
		}
		stored = append(stored, league.Frame{
			FrameNumber:  i + 1,
			Player1Score: f.Left,
			Player2Score: f.Right,
			WinnerID:     winner,
		})
	}

	winner := m.Player2ID
	if p1Won > p2Won {
		winner = m.Player1ID
	}

	m.Frames = stored
	m.Player1FramesWon = p1Won
	m.Player2FramesWon = p2Won
	m.WinnerID = winner
	m.Forfeit = ""
	m.ForfeitedBy = nil
	complete(l, round, m, now)
	return nil
}

// ApplyForfeitResult completes m without frames. A single forfeit gives the win to
// the other player; a double forfeit records a loss for both and no winner.
func ApplyForfeitResult(l *league.League, m *league.Match, kind, forfeiterID string, now time.Time) error {
	round, err := checkOpen(l, m)
	if err != nil {
		return err
	}

	var winner string
	var forfeitedBy []string
	switch kind {
	case league.ForfeitSingle:
		if !m.Involves(forfeiterID) {
			return fmt.Errorf("%w: forfeiting player %s is not in %s", ErrNotParticipant, forfeiterID, m.ID)
		}
		winner = m.Opponent(forfeiterID)
		forfeitedBy = []string{forfeiterID}
	case league.ForfeitDouble:
		forfeitedBy = []string{m.Player1ID, m.Player2ID}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownForfeit, kind)
	}

	m.Frames = []league.Frame{}
	m.Player1FramesWon = 0
	m.Player2FramesWon = 0
	m.WinnerID = winner
	m.Forfeit = kind
	m.ForfeitedBy = forfeitedBy
	complete(l, round, m, now)
	return nil
}

func checkOpen(l *league.League, m *league.Match) (*league.Round, error) {
	if l == nil || m == nil {
		return nil, ErrMatchNotFound
	}
	round, ok := owningRound(l, m)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not part of this league", ErrMatchNotFound, m.ID)
	}
	if m.IsCompleted() {
		return nil, fmt.Errorf("%w: %s", ErrMatchCompleted, m.ID)
	}
	if m.IsBye {
		return nil, fmt.Errorf("%w: %s", ErrByeMatch, m.ID)
	}
	return round, nil
}

func complete(l *league.League, round *league.Round, m *league.Match, now time.Time) {
	completedAt := now.UTC()
	m.Status = league.StatusCompleted
	m.CompletedAt = &completedAt
	if round.AllCompleted() {
		round.Status = league.StatusCompleted
	}
	l.Info.UpdatedAt = completedAt
	RecalculateAllStats(l)
}
