package swiss

import (
	"testing"

	"github.com/riskibarqy/swiss-league/internal/domain/league"
)

func TestFindPendingMatch(t *testing.T) {
	t.Parallel()

	l := newLeague(3, "alice", "bob", "carol", "dave")
	r1 := addRound(l, [2]string{"alice", "bob"}, [2]string{"carol", ""})
	addRound(l, [2]string{"bob", "alice"}, [2]string{"carol", "dave"})

	m, round, ok := FindPendingMatch(l, "bob", "alice")
	if !ok || round != 1 || m.ID != "r1m1" {
		t.Fatalf("expected first pending match r1m1 in round 1, got %v round=%d ok=%v", m, round, ok)
	}

	r1.Matches[0].Status = league.StatusCompleted
	m, round, ok = FindPendingMatch(l, "alice", "bob")
	if !ok || round != 2 || m.ID != "r2m1" {
		t.Fatalf("expected completed match to be skipped, got round=%d ok=%v", round, ok)
	}

	if _, _, ok := FindPendingMatch(l, "carol", ""); ok {
		t.Fatalf("bye matches must never be returned")
	}
	if _, _, ok := FindPendingMatch(l, "alice", "dave"); ok {
		t.Fatalf("expected no match for a pair that never met")
	}
}

func TestFindPendingMatchInRound(t *testing.T) {
	t.Parallel()

	l := newLeague(3, "alice", "bob")
	addRound(l, [2]string{"alice", "bob"})
	addRound(l, [2]string{"alice", "bob"})

	m, round, ok := FindPendingMatchInRound(l, "alice", "bob", 2)
	if !ok || round != 2 || m.ID != "r2m1" {
		t.Fatalf("expected round 2 match, got round=%d ok=%v", round, ok)
	}
	if _, _, ok := FindPendingMatchInRound(l, "alice", "bob", 3); ok {
		t.Fatalf("expected no match in a missing round")
	}
}

func TestFindPendingMatchesForPlayer(t *testing.T) {
	t.Parallel()

	l := newLeague(3, "alice", "bob", "carol")
	l.Players[2].Name = "Carol C"
	addRound(l, [2]string{"alice", "bob"}, [2]string{"carol", ""})
	addRound(l, [2]string{"carol", "alice"})
	r3 := addRound(l, [2]string{"alice", "ghost"})
	r3.Matches[0].Status = league.StatusCompleted
	addRound(l, [2]string{"ghost", "alice"})

	got := FindPendingMatchesForPlayer(l, "alice")
	if len(got) != 2 {
		t.Fatalf("expected 2 pending matches, got %d", len(got))
	}
	if got[0].Round != 1 || got[0].OpponentID != "bob" || got[0].OpponentName != "bob" {
		t.Fatalf("unexpected first entry: %+v", got[0])
	}
	if got[1].Round != 2 || got[1].OpponentID != "carol" || got[1].OpponentName != "Carol C" {
		t.Fatalf("unexpected second entry: %+v", got[1])
	}

	if got := FindPendingMatchesForPlayer(l, "carol"); len(got) != 1 || got[0].Round != 2 {
		t.Fatalf("expected only the non-bye match for carol, got %+v", got)
	}
}

func TestFindMatch(t *testing.T) {
	t.Parallel()

	l := newLeague(3, "alice", "bob")
	addRound(l, [2]string{"alice", "bob"})

	m, round, ok := FindMatch(l, "r1m1")
	if !ok || m.Player1ID != "alice" || round.RoundNumber != 1 {
		t.Fatalf("expected to find r1m1")
	}
	if _, _, ok := FindMatch(l, "missing"); ok {
		t.Fatalf("expected miss for unknown match id")
	}
}

func TestFindPendingMatchesBetween(t *testing.T) {
	t.Parallel()

	l := newLeague(3, "alice", "bob", "carol")
	addRound(l, [2]string{"alice", "bob"})
	addRound(l, [2]string{"alice", "carol"})
	r3 := addRound(l, [2]string{"bob", "alice"})
	addRound(l, [2]string{"alice", "bob"})
	r3.Matches[0].Status = league.StatusCompleted

	got := FindPendingMatchesBetween(l, "bob", "alice")
	if len(got) != 2 {
		t.Fatalf("expected two pending meetings, got %d", len(got))
	}
	if got[0].Round != 1 || got[1].Round != 4 {
		t.Fatalf("unexpected rounds: %d, %d", got[0].Round, got[1].Round)
	}
	if got[0].OpponentID != "alice" {
		t.Fatalf("expected matches seen from bob, got opponent %s", got[0].OpponentID)
	}
}
