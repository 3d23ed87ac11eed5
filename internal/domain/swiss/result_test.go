package swiss

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/riskibarqy/swiss-league/internal/domain/league"
)

func TestApplyMatchResult_AliceBeatsBob(t *testing.T) {
	t.Parallel()

	l := newLeague(3, "A", "B")
	addRound(l, [2]string{"A", "B"})
	m := mustMatch(l, "A", "B")

	if err := ApplyMatchResult(l, m, "A", "B", scores(63, 45, 52, 60, 71, 38), fixedNow); err != nil {
		t.Fatalf("apply: %v", err)
	}

	wantFrames := []league.Frame{
		{FrameNumber: 1, Player1Score: 63, Player2Score: 45, WinnerID: "A"},
		{FrameNumber: 2, Player1Score: 52, Player2Score: 60, WinnerID: "B"},
		{FrameNumber: 3, Player1Score: 71, Player2Score: 38, WinnerID: "A"},
	}
	if diff := cmp.Diff(wantFrames, m.Frames); diff != "" {
		t.Fatalf("frames mismatch (-want +got):\n%s", diff)
	}
	if m.Player1FramesWon != 2 || m.Player2FramesWon != 1 || m.WinnerID != "A" {
		t.Fatalf("unexpected match totals: %d-%d winner=%s", m.Player1FramesWon, m.Player2FramesWon, m.WinnerID)
	}
	if m.Status != league.StatusCompleted || m.CompletedAt == nil || !m.CompletedAt.Equal(fixedNow) {
		t.Fatalf("expected completed match stamped at %v, got %s %v", fixedNow, m.Status, m.CompletedAt)
	}
	if l.Rounds[0].Status != league.StatusCompleted {
		t.Fatalf("expected round to complete with its only match")
	}
	if !l.Info.UpdatedAt.Equal(fixedNow) {
		t.Fatalf("expected league updatedAt to move")
	}

	wantA := league.PlayerStats{
		MatchesPlayed: 1, MatchesWon: 1, FramesWon: 2, FramesLost: 1,
		FrameDifference: 1, Points: 1, StrengthOfSchedule: 0, BuchholzScore: 0,
	}
	wantB := league.PlayerStats{
		MatchesPlayed: 1, MatchesLost: 1, FramesWon: 1, FramesLost: 2,
		FrameDifference: -1, Points: 0, StrengthOfSchedule: 1, BuchholzScore: 1,
	}
	if diff := cmp.Diff(wantA, statsOf(l, "A")); diff != "" {
		t.Fatalf("A stats mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(wantB, statsOf(l, "B")); diff != "" {
		t.Fatalf("B stats mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyMatchResult_SubmitterSideSymmetry(t *testing.T) {
	t.Parallel()

	fromPlayer1 := newLeague(3, "A", "B")
	addRound(fromPlayer1, [2]string{"A", "B"})
	fromPlayer2 := newLeague(3, "A", "B")
	addRound(fromPlayer2, [2]string{"A", "B"})

	m1 := mustMatch(fromPlayer1, "A", "B")
	m2 := mustMatch(fromPlayer2, "A", "B")
	if err := ApplyMatchResult(fromPlayer1, m1, "A", "B", scores(40, 60, 70, 20, 30, 50), fixedNow); err != nil {
		t.Fatalf("apply as player1: %v", err)
	}
	if err := ApplyMatchResult(fromPlayer2, m2, "B", "A", scores(60, 40, 20, 70, 50, 30), fixedNow); err != nil {
		t.Fatalf("apply as player2: %v", err)
	}

	if diff := cmp.Diff(*m1, *m2); diff != "" {
		t.Fatalf("match records differ by submitter (-player1 +player2):\n%s", diff)
	}
	if m1.WinnerID != "B" {
		t.Fatalf("expected B to win, got %s", m1.WinnerID)
	}
}

func TestApplyMatchResult_RoundStaysPendingUntilAllMatchesComplete(t *testing.T) {
	t.Parallel()

	l := newLeague(3, "A", "B", "C", "D")
	addRound(l, [2]string{"A", "B"}, [2]string{"C", "D"})

	if err := ApplyMatchResult(l, mustMatch(l, "A", "B"), "A", "B", scores(1, 0, 1, 0), fixedNow); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if l.Rounds[0].Status != league.StatusPending {
		t.Fatalf("expected round to stay pending, got %s", l.Rounds[0].Status)
	}
	if err := ApplyMatchResult(l, mustMatch(l, "C", "D"), "D", "C", scores(1, 0, 1, 0), fixedNow); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if l.Rounds[0].Status != league.StatusCompleted {
		t.Fatalf("expected round to complete, got %s", l.Rounds[0].Status)
	}
}

func TestApplyMatchResult_RejectsWithoutMutation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		submitter string
		opponent  string
		frames    []int
		prepare   func(m *league.Match)
		wantErr   error
	}{
		{name: "wrong opponent", submitter: "A", opponent: "C", frames: []int{1, 0, 1, 0}, wantErr: ErrNotParticipant},
		{name: "self", submitter: "A", opponent: "A", frames: []int{1, 0, 1, 0}, wantErr: ErrNotParticipant},
		{name: "tied frame", submitter: "A", opponent: "B", frames: []int{1, 1, 1, 0}, wantErr: ErrTiedFrame},
		{name: "incomplete", submitter: "A", opponent: "B", frames: []int{1, 0}, wantErr: ErrMatchIncomplete},
		{name: "ended early", submitter: "A", opponent: "B", frames: []int{1, 0, 1, 0, 1, 0}, wantErr: ErrMatchEndedEarly},
		{
			name: "already completed", submitter: "A", opponent: "B", frames: []int{1, 0, 1, 0},
			prepare: func(m *league.Match) { m.Status = league.StatusCompleted },
			wantErr: ErrMatchCompleted,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			l := newLeague(3, "A", "B", "C")
			addRound(l, [2]string{"A", "B"})
			m := &l.Rounds[0].Matches[0]
			if tc.prepare != nil {
				tc.prepare(m)
			}
			before := *m
			beforePlayers := append([]league.Player(nil), l.Players...)

			err := ApplyMatchResult(l, m, tc.submitter, tc.opponent, scores(tc.frames...), fixedNow)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
			if diff := cmp.Diff(before, *m); diff != "" {
				t.Fatalf("match mutated on error:\n%s", diff)
			}
			if diff := cmp.Diff(beforePlayers, l.Players); diff != "" {
				t.Fatalf("players mutated on error:\n%s", diff)
			}
			if !l.Info.UpdatedAt.IsZero() {
				t.Fatalf("league timestamp moved on error")
			}
		})
	}
}

func TestApplyMatchResult_RejectsForeignMatch(t *testing.T) {
	t.Parallel()

	l := newLeague(3, "A", "B")
	addRound(l, [2]string{"A", "B"})
	foreign := league.Match{ID: "x", Player1ID: "A", Player2ID: "B", Status: league.StatusPending}

	if err := ApplyMatchResult(l, &foreign, "A", "B", scores(1, 0, 1, 0), fixedNow); !errors.Is(err, ErrMatchNotFound) {
		t.Fatalf("expected ErrMatchNotFound, got %v", err)
	}
}

func TestApplyForfeitResult_Single(t *testing.T) {
	t.Parallel()

	l := newLeague(3, "A", "B")
	addRound(l, [2]string{"A", "B"})
	m := mustMatch(l, "A", "B")

	if err := ApplyForfeitResult(l, m, league.ForfeitSingle, "A", fixedNow); err != nil {
		t.Fatalf("apply forfeit: %v", err)
	}
	if m.WinnerID != "B" || m.Forfeit != league.ForfeitSingle || len(m.Frames) != 0 {
		t.Fatalf("unexpected forfeit record: %+v", m)
	}
	if diff := cmp.Diff([]string{"A"}, m.ForfeitedBy); diff != "" {
		t.Fatalf("forfeitedBy mismatch:\n%s", diff)
	}

	a, b := statsOf(l, "A"), statsOf(l, "B")
	if a.MatchesLost != 1 || a.Points != 0 || b.MatchesWon != 1 || b.Points != 1 {
		t.Fatalf("unexpected forfeit stats: A=%+v B=%+v", a, b)
	}
	if a.FramesWon+a.FramesLost+b.FramesWon+b.FramesLost != 0 {
		t.Fatalf("forfeits must not count frames")
	}
	if a.BuchholzScore != 0 || b.StrengthOfSchedule != 0 {
		t.Fatalf("forfeits must not give schedule credit: A=%+v B=%+v", a, b)
	}
}

func TestApplyForfeitResult_Errors(t *testing.T) {
	t.Parallel()

	l := newLeague(3, "A", "B", "C")
	addRound(l, [2]string{"A", "B"}, [2]string{"C", ""})

	if err := ApplyForfeitResult(l, mustMatch(l, "A", "B"), league.ForfeitSingle, "C", fixedNow); !errors.Is(err, ErrNotParticipant) {
		t.Fatalf("expected ErrNotParticipant, got %v", err)
	}
	if err := ApplyForfeitResult(l, mustMatch(l, "A", "B"), "triple", "", fixedNow); !errors.Is(err, ErrUnknownForfeit) {
		t.Fatalf("expected ErrUnknownForfeit, got %v", err)
	}
	if err := ApplyForfeitResult(l, &l.Rounds[0].Matches[1], league.ForfeitDouble, "", fixedNow); !errors.Is(err, ErrByeMatch) {
		t.Fatalf("expected ErrByeMatch, got %v", err)
	}
	if l.Rounds[0].Matches[0].Status != league.StatusPending {
		t.Fatalf("rejected forfeit must leave the match pending")
	}
}
