package usecase

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/riskibarqy/swiss-league/internal/domain/league"
	"github.com/riskibarqy/swiss-league/internal/platform/logging"
)

func TestRecalculateService_RepairsTamperedStats(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	doc := sampleDocument()
	spring := doc.Leagues["spring"]
	spring.Rounds[0].Matches[1] = league.Match{
		ID:               "spring-r1-m2",
		Player1ID:        "p-carol",
		Player2ID:        "p-dave",
		Status:           league.StatusCompleted,
		WinnerID:         "p-carol",
		Player1FramesWon: 2,
		Player2FramesWon: 0,
		Frames: []league.Frame{
			{FrameNumber: 1, Player1Score: 70, Player2Score: 10, WinnerID: "p-carol"},
			{FrameNumber: 2, Player1Score: 55, Player2Score: 40, WinnerID: "p-carol"},
		},
	}
	spring.Players[0].Stats.Points = 9

	store := newStubStore(doc)
	listener := &recordingListener{}
	svc := NewRecalculateService(store, 2, 3, logging.NewNop(), listener)

	preview, err := svc.RecalculateAll(ctx, RecalculateInput{DryRun: true})
	if err != nil {
		t.Fatalf("preview recalculation: %v", err)
	}
	if preview.Committed || len(store.messages) != 0 {
		t.Fatalf("dry run must not commit: %+v", preview)
	}

	got, err := svc.RecalculateAll(ctx, RecalculateInput{})
	if err != nil {
		t.Fatalf("recalculate: %v", err)
	}
	if diff := cmp.Diff([]string{"spring"}, got.ChangedLeagues); diff != "" {
		t.Fatalf("changed leagues mismatch (-want +got):\n%s", diff)
	}
	if !got.Committed || got.LeagueCount != 2 || got.WorkerCount != 2 {
		t.Fatalf("unexpected result: %+v", got)
	}
	if diff := cmp.Diff([]string{"recalculate stats"}, store.messages); diff != "" {
		t.Fatalf("commit messages mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"spring"}, listener.changed); diff != "" {
		t.Fatalf("listener mismatch (-want +got):\n%s", diff)
	}

	lg := store.leagueByID("spring")
	alice, _ := lg.Player("p-alice")
	carol, _ := lg.Player("p-carol")
	if alice.Stats.Points != 0 || carol.Stats.Points != 1 || carol.Stats.FrameDifference != 2 {
		t.Fatalf("stats not rebuilt: alice=%+v carol=%+v", alice.Stats, carol.Stats)
	}

	again, err := svc.RecalculateAll(ctx, RecalculateInput{})
	if err != nil {
		t.Fatalf("second recalculation: %v", err)
	}
	if again.Committed || len(again.ChangedLeagues) != 0 {
		t.Fatalf("consistent stats should not be committed again: %+v", again)
	}
}
