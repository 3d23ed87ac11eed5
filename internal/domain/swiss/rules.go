package swiss

import (
	"errors"
	"fmt"

	"github.com/riskibarqy/swiss-league/internal/domain/league"
	"github.com/riskibarqy/swiss-league/internal/domain/submission"
)

// ErrInvalidResult is the parent of every rule violation below.
var ErrInvalidResult = errors.New("invalid match result")

var (
	ErrNoFrames        = fmt.Errorf("%w: no frame scores provided", ErrInvalidResult)
	ErrTiedFrame       = fmt.Errorf("%w: tied frame", ErrInvalidResult)
	ErrMatchEndedEarly = fmt.Errorf("%w: match ended early", ErrInvalidResult)
	ErrMatchIncomplete = fmt.Errorf("%w: match incomplete", ErrInvalidResult)
	ErrScoreMismatch   = fmt.Errorf("%w: frame scores do not match overall score", ErrInvalidResult)
	ErrNotParticipant  = fmt.Errorf("%w: player is not in this match", ErrInvalidResult)
	ErrMatchCompleted  = fmt.Errorf("%w: match already completed", ErrInvalidResult)
	ErrByeMatch        = fmt.Errorf("%w: bye matches take no result", ErrInvalidResult)
	ErrUnknownForfeit  = fmt.Errorf("%w: unknown forfeit kind", ErrInvalidResult)
	ErrMatchNotFound   = errors.New("match not found")
)

// ValidateFrameScores rejects an empty list and any tied frame.
func ValidateFrameScores(frames []submission.Score) error {
	if len(frames) == 0 {
		return ErrNoFrames
	}
	for i, f := range frames {
		if f.Left == f.Right {
			return fmt.Errorf("%w: frame %d is a tie (%d-%d), which is not allowed", ErrTiedFrame, i+1, f.Left, f.Right)
		}
	}
	return nil
}

// ValidateMatchCompletion requires the frames to be exactly the ones needed to
// decide a best-of-N match.
func ValidateMatchCompletion(frames []submission.Score, bestOfFrames int) error {
	toWin := league.FramesToWin(bestOfFrames)
	left, right := 0, 0
	for i, f := range frames {
		switch {
		case f.Left > f.Right:
			left++
		case f.Right > f.Left:
			right++
		}
		if (left >= toWin || right >= toWin) && i < len(frames)-1 {
			return fmt.Errorf("%w: decided %d-%d after frame %d but %d frames were submitted",
				ErrMatchEndedEarly, left, right, i+1, len(frames))
		}
	}
	if left < toWin && right < toWin {
		return fmt.Errorf("%w: %d-%d after %d frames, best of %d needs %d",
			ErrMatchIncomplete, left, right, len(frames), bestOfFrames, toWin)
	}
	return nil
}

// ValidateClaimedScore cross-checks per-frame wins against a claimed overall score.
func ValidateClaimedScore(frames []submission.Score, claimed submission.Score) error {
	won := FrameWins(frames)
	if won != claimed {
		return fmt.Errorf("%w: frames give %s, claimed %s", ErrScoreMismatch, won, claimed)
	}
	return nil
}

// FrameWins counts frames won by each side in submission order.
func FrameWins(frames []submission.Score) submission.Score {
	var out submission.Score
	for _, f := range frames {
		switch {
		case f.Left > f.Right:
			out.Left++
		case f.Right > f.Left:
			out.Right++
		}
	}
	return out
}
