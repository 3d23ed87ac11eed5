package usecase

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/riskibarqy/swiss-league/internal/domain/league"
	"github.com/riskibarqy/swiss-league/internal/domain/submission"
	"github.com/riskibarqy/swiss-league/internal/domain/swiss"
	leaguemock "github.com/riskibarqy/swiss-league/internal/mocks/domain/league"
	playermock "github.com/riskibarqy/swiss-league/internal/mocks/domain/player"
	"github.com/riskibarqy/swiss-league/internal/platform/logging"
	"github.com/stretchr/testify/mock"
)

func TestResultService_SubmitResult_ResolvesOpponentThroughDirectory(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newStubStore(sampleDocument())
	dir := playermock.NewDirectory(t)
	dir.On("ResolveDisplayName", mock.Anything, "Bobby B").Return("bob", true, nil).Once()

	listener := &recordingListener{}
	svc := NewResultService(store, dir, ResultServiceConfig{}, logging.NewNop(), listener)
	svc.now = func() time.Time { return fixedNow }

	receipt, err := svc.SubmitResult(ctx, SubmitResultInput{
		Submitter: "alice",
		Opponent:  "Bobby B",
		Frames:    []string{"50-30", "20-40", "60-10"},
	})
	if err != nil {
		t.Fatalf("submit result: %v", err)
	}

	if receipt.LeagueID != "spring" || receipt.Round != 1 || receipt.MatchID != "spring-r1-m1" {
		t.Fatalf("unexpected target: %+v", receipt)
	}
	if diff := cmp.Diff(submission.Score{Left: 2, Right: 1}, receipt.Score); diff != "" {
		t.Fatalf("score mismatch (-want +got):\n%s", diff)
	}
	if receipt.WinnerName != "alice" || receipt.Version != "2" {
		t.Fatalf("unexpected winner/version: %s %s", receipt.WinnerName, receipt.Version)
	}
	if diff := cmp.Diff([]string{"alice vs bob 2-1"}, store.messages); diff != "" {
		t.Fatalf("commit messages mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"spring"}, listener.changed); diff != "" {
		t.Fatalf("listener mismatch (-want +got):\n%s", diff)
	}

	lg := store.leagueByID("spring")
	m, _, _ := swiss.FindMatch(lg, "spring-r1-m1")
	if m.Status != league.StatusCompleted || m.WinnerID != "p-alice" || m.Player1FramesWon != 2 {
		t.Fatalf("stored match not completed: %+v", m)
	}
	alice, _ := lg.Player("p-alice")
	if alice.Stats.Points != 1 || alice.Stats.FramesWon != 2 || alice.Stats.FramesLost != 1 {
		t.Fatalf("stats not recalculated: %+v", alice.Stats)
	}
}

func TestResultService_SubmitResult_SubmitterMustMatchExactly(t *testing.T) {
	t.Parallel()

	store := newStubStore(sampleDocument())
	svc := newTestResultService(store)

	_, err := svc.SubmitResult(context.Background(), SubmitResultInput{
		Submitter: "alic",
		Opponent:  "bob",
		Frames:    []string{"50-30", "60-10"},
	})
	if !errors.Is(err, ErrPlayerNotFound) {
		t.Fatalf("expected ErrPlayerNotFound, got %v", err)
	}
	if len(store.messages) != 0 {
		t.Fatalf("expected no commit, got %v", store.messages)
	}
}

func TestResultService_SubmitResult_RejectsBadFramesBeforeFetching(t *testing.T) {
	t.Parallel()

	store := leaguemock.NewDocumentStore(t)
	svc := newTestResultService(store)

	tests := []struct {
		name   string
		frames []string
		target error
	}{
		{name: "malformed", frames: []string{"50-30", "abc"}, target: submission.ErrInvalidFrameFormat},
		{name: "tied frame", frames: []string{"40-40", "60-10"}, target: swiss.ErrTiedFrame},
		{name: "no frames", frames: nil, target: swiss.ErrNoFrames},
	}
	for _, tc := range tests {
		_, err := svc.SubmitResult(context.Background(), SubmitResultInput{Submitter: "alice", Opponent: "bob", Frames: tc.frames})
		if !errors.Is(err, ErrInvalidInput) || !errors.Is(err, tc.target) {
			t.Fatalf("%s: expected ErrInvalidInput wrapping %v, got %v", tc.name, tc.target, err)
		}
	}
}

func TestResultService_SubmitResult_IncompleteMatchIsInvalid(t *testing.T) {
	t.Parallel()

	store := newStubStore(sampleDocument())
	svc := newTestResultService(store)

	_, err := svc.SubmitResult(context.Background(), SubmitResultInput{
		Submitter: "bob",
		Opponent:  "alice",
		Frames:    []string{"50-30"},
	})
	if !errors.Is(err, ErrInvalidInput) || !errors.Is(err, swiss.ErrMatchIncomplete) {
		t.Fatalf("expected incomplete match error, got %v", err)
	}
}

func TestResultService_SubmitResult_RetriesOnVersionConflict(t *testing.T) {
	t.Parallel()

	store := newStubStore(sampleDocument())
	store.conflicts = 1
	svc := newTestResultService(store)

	receipt, err := svc.SubmitResult(context.Background(), SubmitResultInput{
		Submitter: "bob",
		Opponent:  "alice",
		Frames:    []string{"30-50", "40-20", "10-60"},
	})
	if err != nil {
		t.Fatalf("submit result: %v", err)
	}
	if store.fetchCount() != 2 {
		t.Fatalf("expected a refetch after the conflict, got %d fetches", store.fetchCount())
	}
	if receipt.Version != "3" {
		t.Fatalf("unexpected version %s", receipt.Version)
	}
	if diff := cmp.Diff(submission.Score{Left: 1, Right: 2}, receipt.Score); diff != "" {
		t.Fatalf("score should be seen from the submitter (-want +got):\n%s", diff)
	}
	if receipt.WinnerID != "p-alice" {
		t.Fatalf("expected alice to win, got %s", receipt.WinnerID)
	}
}

func TestResultService_SubmitResult_GivesUpAfterMaxAttempts(t *testing.T) {
	t.Parallel()

	store := leaguemock.NewDocumentStore(t)
	store.On("Fetch", mock.Anything).
		Return(func(context.Context) (league.Snapshot, error) {
			doc, err := league.Clone(sampleDocument())
			return league.Snapshot{Document: doc, Version: "7"}, err
		}).
		Times(2)
	store.On("Commit", mock.Anything, mock.Anything, "7", "alice vs bob 2-0").
		Return("", league.ErrVersionConflict).
		Times(2)

	svc := NewResultService(store, nil, ResultServiceConfig{MaxAttempts: 2}, logging.NewNop())
	_, err := svc.SubmitResult(context.Background(), SubmitResultInput{
		Submitter: "alice",
		Opponent:  "bob",
		Frames:    []string{"50-30", "60-10"},
	})
	if !errors.Is(err, ErrConflict) || !errors.Is(err, league.ErrVersionConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestResultService_SubmitResult_DryRunDoesNotCommit(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	store := newStubStore(sampleDocument())
	svc := newTestResultService(store)
	svc.logger = logging.New(&logs, logging.LevelDebug, false)

	receipt, err := svc.SubmitResult(context.Background(), SubmitResultInput{
		Submitter: "alice",
		Opponent:  "bob",
		Frames:    []string{"50-30", "60-10"},
		DryRun:    true,
	})
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if !receipt.DryRun || receipt.Version != "1" || receipt.WinnerID != "p-alice" {
		t.Fatalf("unexpected preview receipt: %+v", receipt)
	}
	if len(store.messages) != 0 {
		t.Fatalf("preview must not commit, got %v", store.messages)
	}
	m, _, _ := swiss.FindMatch(store.leagueByID("spring"), "spring-r1-m1")
	if m.IsCompleted() {
		t.Fatalf("preview must not change the stored document")
	}
	if !strings.Contains(logs.String(), `"msg":"dry run, league document left unchanged"`) || !strings.Contains(logs.String(), `"level":"DEBUG"`) {
		t.Fatalf("expected a debug entry for the dry run, got %s", logs.String())
	}
}

func TestResultService_FindCandidates_SearchesEveryLeague(t *testing.T) {
	t.Parallel()

	store := newStubStore(sampleDocument())
	svc := newTestResultService(store)

	got, err := svc.FindCandidates(context.Background(), "Alicee vs bob 2-1 50-30 20-40 60-10")
	if err != nil {
		t.Fatalf("find candidates: %v", err)
	}
	if got.Kind != SubmissionKindResult {
		t.Fatalf("unexpected kind %s", got.Kind)
	}

	ids := make([]string, 0, len(got.Candidates))
	for _, c := range got.Candidates {
		ids = append(ids, c.LeagueID+"/"+c.MatchID)
	}
	if diff := cmp.Diff([]string{"autumn/autumn-r1-m1", "spring/spring-r1-m1"}, ids); diff != "" {
		t.Fatalf("candidates mismatch (-want +got):\n%s", diff)
	}

	first := got.Candidates[0].Player1
	if first.ID != "p-alice" || first.Confidence >= 1 || first.Confidence < 0.6 {
		t.Fatalf("expected fuzzy match on alice, got %+v", first)
	}
	if got.Candidates[0].Player2.Confidence != 1 {
		t.Fatalf("expected exact match on bob, got %+v", got.Candidates[0].Player2)
	}
}

func TestResultService_FindCandidates_RejectsClaimedScoreMismatch(t *testing.T) {
	t.Parallel()

	svc := newTestResultService(leaguemock.NewDocumentStore(t))

	_, err := svc.FindCandidates(context.Background(), "alice vs bob 2-0 50-30 20-40 60-10")
	if !errors.Is(err, ErrInvalidInput) || !errors.Is(err, swiss.ErrScoreMismatch) {
		t.Fatalf("expected score mismatch, got %v", err)
	}
}

func TestResultService_SubmitText_RequiresUnambiguousCandidate(t *testing.T) {
	t.Parallel()

	store := newStubStore(sampleDocument())
	svc := newTestResultService(store)
	text := "alice vs bob 2-1 50-30 20-40 60-10"

	if _, err := svc.SubmitText(context.Background(), SubmitTextInput{Text: text}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ambiguity error, got %v", err)
	}

	receipt, err := svc.SubmitText(context.Background(), SubmitTextInput{Text: text, LeagueID: "spring", Round: 1})
	if err != nil {
		t.Fatalf("submit text: %v", err)
	}
	if receipt.MatchID != "spring-r1-m1" || receipt.WinnerID != "p-alice" {
		t.Fatalf("unexpected receipt: %+v", receipt)
	}
	if diff := cmp.Diff([]string{text}, store.messages); diff != "" {
		t.Fatalf("raw text should be the commit message (-want +got):\n%s", diff)
	}
}

func TestResultService_SubmitText_SingleForfeit(t *testing.T) {
	t.Parallel()

	store := newStubStore(sampleDocument())
	svc := newTestResultService(store)

	receipt, err := svc.SubmitText(context.Background(), SubmitTextInput{
		Text:     "alice vs bob forfeit bobb",
		LeagueID: "autumn",
	})
	if err != nil {
		t.Fatalf("submit forfeit: %v", err)
	}
	if receipt.Kind != SubmissionKindForfeit || receipt.Forfeit != league.ForfeitSingle {
		t.Fatalf("unexpected receipt kind: %+v", receipt)
	}
	if receipt.WinnerID != "p-alice" {
		t.Fatalf("expected alice to win by forfeit, got %s", receipt.WinnerID)
	}
	if diff := cmp.Diff([]string{"p-bob"}, receipt.ForfeitedBy); diff != "" {
		t.Fatalf("forfeitedBy mismatch (-want +got):\n%s", diff)
	}

	m, _, _ := swiss.FindMatch(store.leagueByID("autumn"), "autumn-r1-m1")
	if !m.IsForfeit() || len(m.Frames) != 0 {
		t.Fatalf("stored match should be a frameless forfeit: %+v", m)
	}
}

func TestResultService_SubmitText_UnknownForfeiter(t *testing.T) {
	t.Parallel()

	store := newStubStore(sampleDocument())
	svc := newTestResultService(store)

	_, err := svc.SubmitText(context.Background(), SubmitTextInput{
		Text:     "alice vs bob forfeit zed",
		LeagueID: "spring",
	})
	if !errors.Is(err, ErrPlayerNotFound) {
		t.Fatalf("expected ErrPlayerNotFound, got %v", err)
	}
}

func TestResultService_SubmitForfeit_Double(t *testing.T) {
	t.Parallel()

	store := newStubStore(sampleDocument())
	svc := newTestResultService(store)

	receipt, err := svc.SubmitForfeit(context.Background(), SubmitForfeitInput{
		Player1: "carol",
		Player2: "dave",
		Kind:    "double",
	})
	if err != nil {
		t.Fatalf("submit forfeit: %v", err)
	}
	if receipt.WinnerID != "" || receipt.Forfeit != league.ForfeitDouble {
		t.Fatalf("double forfeit must have no winner: %+v", receipt)
	}
	if diff := cmp.Diff([]string{"carol vs dave double_forfeit"}, store.messages); diff != "" {
		t.Fatalf("commit message mismatch (-want +got):\n%s", diff)
	}

	lg := store.leagueByID("spring")
	carol, _ := lg.Player("p-carol")
	if carol.Stats.MatchesLost != 1 || carol.Stats.Points != 0 {
		t.Fatalf("double forfeit should be a loss for carol: %+v", carol.Stats)
	}
}

func TestResultService_SubmitForfeit_ValidatesInput(t *testing.T) {
	t.Parallel()

	svc := newTestResultService(leaguemock.NewDocumentStore(t))

	tests := []SubmitForfeitInput{
		{Player1: "carol", Kind: "double"},
		{Player1: "carol", Player2: "dave", Kind: "single"},
		{Player1: "carol", Player2: "dave", Kind: "walkover"},
	}
	for _, in := range tests {
		if _, err := svc.SubmitForfeit(context.Background(), in); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput for %+v, got %v", in, err)
		}
	}
}
