package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/swiss-league/internal/domain/league"
	"github.com/riskibarqy/swiss-league/internal/domain/player"
	"github.com/riskibarqy/swiss-league/internal/domain/submission"
	"github.com/riskibarqy/swiss-league/internal/domain/swiss"
	"github.com/riskibarqy/swiss-league/internal/platform/logging"
	"github.com/sourcegraph/conc/iter"
)

const defaultCommitAttempts = 3

const (
	SubmissionKindResult  = "result"
	SubmissionKindForfeit = "forfeit"
)

type ResultServiceConfig struct {
	// LeagueID pins submissions without an explicit league; empty selects the active league.
	LeagueID       string
	MaxAttempts    int
	FuzzyThreshold float64
}

// CommitListener is told about every league whose document changed.
type CommitListener interface {
	LeagueChanged(ctx context.Context, leagueID string)
}

type ResultService struct {
	store     league.DocumentStore
	directory player.Directory
	listeners []CommitListener
	logger    *logging.Logger
	cfg       ResultServiceConfig
	fuzzy     player.FuzzyResolver
	now       func() time.Time
}

func NewResultService(
	store league.DocumentStore,
	directory player.Directory,
	cfg ResultServiceConfig,
	logger *logging.Logger,
	listeners ...CommitListener,
) *ResultService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultCommitAttempts
	}
	fuzzy := player.NewFuzzyResolver(cfg.FuzzyThreshold)
	cfg.FuzzyThreshold = fuzzy.Threshold

	return &ResultService{
		store:     store,
		directory: directory,
		listeners: listeners,
		logger:    logger,
		cfg:       cfg,
		fuzzy:     fuzzy,
		now:       time.Now,
	}
}

type ResolvedPlayer struct {
	Input      string  `json:"input,omitempty"`
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

// SubmissionReceipt describes an applied (or previewed) result. Player1 is the
// first-named side of the submission and Frames and Score are seen from it.
type SubmissionReceipt struct {
	Kind          string             `json:"kind"`
	LeagueID      string             `json:"league_id"`
	LeagueName    string             `json:"league_name"`
	Round         int                `json:"round"`
	MatchID       string             `json:"match_id"`
	Player1       ResolvedPlayer     `json:"player1"`
	Player2       ResolvedPlayer     `json:"player2"`
	Frames        []submission.Score `json:"frames"`
	Score         submission.Score   `json:"score"`
	WinnerID      string             `json:"winner_id,omitempty"`
	WinnerName    string             `json:"winner_name,omitempty"`
	Forfeit       string             `json:"forfeit,omitempty"`
	ForfeitedBy   []string           `json:"forfeited_by,omitempty"`
	CommitMessage string             `json:"commit_message"`
	Version       string             `json:"version,omitempty"`
	DryRun        bool               `json:"dry_run"`
}

type SubmitResultInput struct {
	LeagueID string
	// Submitter is the caller's account username and must match a player exactly.
	Submitter string
	// Opponent may be a directory display name or a username.
	Opponent string
	Round    int
	Frames   []string
	DryRun   bool
}

// SubmitResult records a result reported by one of the two players.
func (s *ResultService) SubmitResult(ctx context.Context, input SubmitResultInput) (SubmissionReceipt, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ResultService.SubmitResult")
	defer span.End()

	submitterName := strings.TrimSpace(input.Submitter)
	opponentInput := strings.TrimSpace(input.Opponent)
	if submitterName == "" || opponentInput == "" {
		return SubmissionReceipt{}, fmt.Errorf("%w: submitter and opponent are required", ErrInvalidInput)
	}

	frames, err := submission.ParseFrameScores(input.Frames)
	if err != nil {
		return SubmissionReceipt{}, invalidInput(err)
	}
	if err := swiss.ValidateFrameScores(frames); err != nil {
		return SubmissionReceipt{}, invalidInput(err)
	}

	opponentUsername := s.lookupUsername(ctx, opponentInput)

	return s.commit(ctx, input.DryRun, func(doc *league.Document) (SubmissionReceipt, error) {
		leagueID, lg, err := s.selectLeague(doc, input.LeagueID)
		if err != nil {
			return SubmissionReceipt{}, err
		}

		exact := player.ExactResolver{}
		submitter, _, ok := exact.Resolve(lg.Players, submitterName)
		if !ok {
			return SubmissionReceipt{}, fmt.Errorf("%w: could not find you (%s) in %s", ErrPlayerNotFound, submitterName, lg.Info.Name)
		}
		opponent, _, ok := exact.Resolve(lg.Players, opponentUsername)
		if !ok && opponentUsername != opponentInput {
			opponent, _, ok = exact.Resolve(lg.Players, opponentInput)
		}
		if !ok {
			return SubmissionReceipt{}, fmt.Errorf("%w: could not find opponent %q in %s", ErrPlayerNotFound, opponentInput, lg.Info.Name)
		}

		m, round, ok := swiss.FindPendingMatchInRound(lg, submitter.ID, opponent.ID, input.Round)
		if !ok {
			return SubmissionReceipt{}, fmt.Errorf("%w: no pending match between %s and %s", ErrNotFound, submitter.Name, opponent.Name)
		}
		if err := swiss.ApplyMatchResult(lg, m, submitter.ID, opponent.ID, frames, s.now()); err != nil {
			return SubmissionReceipt{}, engineError(err)
		}

		receipt := matchReceipt(leagueID, lg, round, m,
			ResolvedPlayer{Input: submitterName, ID: submitter.ID, Name: submitter.Name, Confidence: 1},
			ResolvedPlayer{Input: opponentInput, ID: opponent.ID, Name: opponent.Name, Confidence: 1},
			frames,
		)
		receipt.CommitMessage = fmt.Sprintf("%s vs %s %s", submitter.Name, opponent.Name, receipt.Score)
		return receipt, nil
	})
}

// Candidate is one pending match a free-text submission could refer to.
type Candidate struct {
	LeagueID   string         `json:"league_id"`
	LeagueName string         `json:"league_name"`
	Round      int            `json:"round"`
	MatchID    string         `json:"match_id"`
	Player1    ResolvedPlayer `json:"player1"`
	Player2    ResolvedPlayer `json:"player2"`
}

// TextSubmission is a parsed free-text line with every match it could apply to.
type TextSubmission struct {
	Kind       string             `json:"kind"`
	Text       string             `json:"text"`
	Result     submission.Result  `json:"-"`
	Forfeit    submission.Forfeit `json:"-"`
	Candidates []Candidate        `json:"candidates"`
	Version    string             `json:"version"`
}

// FindCandidates parses text and searches every league for pending matches
// between the two named players.
func (s *ResultService) FindCandidates(ctx context.Context, text string) (TextSubmission, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ResultService.FindCandidates")
	defer span.End()

	parsed, err := parseSubmissionText(text)
	if err != nil {
		return TextSubmission{}, err
	}

	snap, err := s.store.Fetch(ctx)
	if err != nil {
		return TextSubmission{}, fmt.Errorf("fetch league document: %w", err)
	}

	candidates := s.collectCandidates(&snap.Document, parsed.first, parsed.second)
	if len(candidates) == 0 {
		return TextSubmission{}, fmt.Errorf("%w: no pending matches found between '%s' and '%s'", ErrNotFound, parsed.first, parsed.second)
	}

	return TextSubmission{
		Kind:       parsed.kind,
		Text:       parsed.message,
		Result:     parsed.result,
		Forfeit:    parsed.forfeit,
		Candidates: candidates,
		Version:    snap.Version,
	}, nil
}

type SubmitTextInput struct {
	Text string
	// LeagueID, Round and MatchID narrow the candidates; exactly one must remain.
	LeagueID string
	Round    int
	MatchID  string
	DryRun   bool
}

// SubmitText applies a free-text result or forfeit line. Player names are
// matched fuzzily and the raw line becomes the commit message.
func (s *ResultService) SubmitText(ctx context.Context, input SubmitTextInput) (SubmissionReceipt, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ResultService.SubmitText")
	defer span.End()

	parsed, err := parseSubmissionText(input.Text)
	if err != nil {
		return SubmissionReceipt{}, err
	}
	sel := selection{leagueID: strings.TrimSpace(input.LeagueID), round: input.Round, matchID: strings.TrimSpace(input.MatchID)}
	return s.commit(ctx, input.DryRun, func(doc *league.Document) (SubmissionReceipt, error) {
		return s.applyParsed(doc, parsed, sel)
	})
}

type SubmitForfeitInput struct {
	LeagueID  string
	Round     int
	MatchID   string
	Player1   string
	Player2   string
	Kind      string
	Forfeiter string
	DryRun    bool
}

// SubmitForfeit records a single or double forfeit between two named players.
func (s *ResultService) SubmitForfeit(ctx context.Context, input SubmitForfeitInput) (SubmissionReceipt, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ResultService.SubmitForfeit")
	defer span.End()

	f := submission.Forfeit{
		Player1:   strings.TrimSpace(input.Player1),
		Player2:   strings.TrimSpace(input.Player2),
		Kind:      submission.ForfeitKind(strings.ToLower(strings.TrimSpace(input.Kind))),
		Forfeiter: strings.TrimSpace(input.Forfeiter),
	}
	if f.Player1 == "" || f.Player2 == "" {
		return SubmissionReceipt{}, fmt.Errorf("%w: both players are required", ErrInvalidInput)
	}

	var message string
	switch f.Kind {
	case submission.ForfeitSingle:
		if f.Forfeiter == "" {
			return SubmissionReceipt{}, fmt.Errorf("%w: forfeiting player is required for a single forfeit", ErrInvalidInput)
		}
		message = fmt.Sprintf("%s vs %s forfeit %s", f.Player1, f.Player2, f.Forfeiter)
	case submission.ForfeitDouble:
		f.Forfeiter = ""
		message = fmt.Sprintf("%s vs %s double_forfeit", f.Player1, f.Player2)
	default:
		return SubmissionReceipt{}, fmt.Errorf("%w: forfeit kind must be single or double, got %q", ErrInvalidInput, input.Kind)
	}

	parsed := parsedText{kind: SubmissionKindForfeit, first: f.Player1, second: f.Player2, forfeit: f, message: message}
	sel := selection{leagueID: strings.TrimSpace(input.LeagueID), round: input.Round, matchID: strings.TrimSpace(input.MatchID)}
	return s.commit(ctx, input.DryRun, func(doc *league.Document) (SubmissionReceipt, error) {
		return s.applyParsed(doc, parsed, sel)
	})
}

type parsedText struct {
	kind    string
	first   string
	second  string
	result  submission.Result
	forfeit submission.Forfeit
	message string
}

func parseSubmissionText(text string) (parsedText, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return parsedText{}, fmt.Errorf("%w: submission text is required", ErrInvalidInput)
	}

	if submission.IsForfeit(text) {
		f, err := submission.ParseForfeit(text)
		if err != nil {
			return parsedText{}, invalidInput(err)
		}
		return parsedText{kind: SubmissionKindForfeit, first: f.Player1, second: f.Player2, forfeit: f, message: text}, nil
	}

	r, err := submission.ParseResult(text)
	if err != nil {
		return parsedText{}, invalidInput(err)
	}
	if err := swiss.ValidateFrameScores(r.Frames); err != nil {
		return parsedText{}, invalidInput(err)
	}
	if err := swiss.ValidateClaimedScore(r.Frames, r.Overall); err != nil {
		return parsedText{}, invalidInput(err)
	}
	return parsedText{kind: SubmissionKindResult, first: r.Player1, second: r.Player2, result: r, message: text}, nil
}

type selection struct {
	leagueID string
	round    int
	matchID  string
}

func (sel selection) accepts(c Candidate) bool {
	if sel.leagueID != "" && c.LeagueID != sel.leagueID {
		return false
	}
	if sel.round > 0 && c.Round != sel.round {
		return false
	}
	if sel.matchID != "" && c.MatchID != sel.matchID {
		return false
	}
	return true
}

func (s *ResultService) applyParsed(doc *league.Document, parsed parsedText, sel selection) (SubmissionReceipt, error) {
	var chosen []Candidate
	for _, c := range s.collectCandidates(doc, parsed.first, parsed.second) {
		if sel.accepts(c) {
			chosen = append(chosen, c)
		}
	}
	switch {
	case len(chosen) == 0:
		return SubmissionReceipt{}, fmt.Errorf("%w: no pending matches found between '%s' and '%s'", ErrNotFound, parsed.first, parsed.second)
	case len(chosen) > 1:
		return SubmissionReceipt{}, fmt.Errorf("%w: %d pending matches found between '%s' and '%s', choose a league and round", ErrInvalidInput, len(chosen), parsed.first, parsed.second)
	}

	c := chosen[0]
	lg := doc.Leagues[c.LeagueID]
	m, rd, ok := swiss.FindMatch(lg, c.MatchID)
	if !ok {
		return SubmissionReceipt{}, fmt.Errorf("%w: match=%s", ErrNotFound, c.MatchID)
	}

	if parsed.kind == SubmissionKindResult {
		frames := parsed.result.Frames
		if err := swiss.ApplyMatchResult(lg, m, c.Player1.ID, c.Player2.ID, frames, s.now()); err != nil {
			return SubmissionReceipt{}, engineError(err)
		}
		receipt := matchReceipt(c.LeagueID, lg, rd.RoundNumber, m, c.Player1, c.Player2, frames)
		receipt.CommitMessage = parsed.message
		return receipt, nil
	}

	var forfeiterID string
	if parsed.forfeit.Kind == submission.ForfeitSingle {
		first := league.Player{ID: c.Player1.ID, Name: c.Player1.Name}
		second := league.Player{ID: c.Player2.ID, Name: c.Player2.Name}
		forfeiter, _, ok := player.ChooseBetween(parsed.forfeit.Forfeiter, first, second, s.cfg.FuzzyThreshold)
		if !ok {
			return SubmissionReceipt{}, fmt.Errorf("%w: could not match forfeiting player '%s', expected one of: %s, %s",
				ErrPlayerNotFound, parsed.forfeit.Forfeiter, c.Player1.Name, c.Player2.Name)
		}
		forfeiterID = forfeiter.ID
	}
	if err := swiss.ApplyForfeitResult(lg, m, string(parsed.forfeit.Kind), forfeiterID, s.now()); err != nil {
		return SubmissionReceipt{}, engineError(err)
	}
	receipt := matchReceipt(c.LeagueID, lg, rd.RoundNumber, m, c.Player1, c.Player2, nil)
	receipt.CommitMessage = parsed.message
	return receipt, nil
}

func (s *ResultService) collectCandidates(doc *league.Document, first, second string) []Candidate {
	ids := doc.IDs()
	perLeague := iter.Map(ids, func(id *string) []Candidate {
		return s.candidatesIn(*id, doc.Leagues[*id], first, second)
	})

	var out []Candidate
	for _, items := range perLeague {
		out = append(out, items...)
	}
	return out
}

func (s *ResultService) candidatesIn(leagueID string, lg *league.League, first, second string) []Candidate {
	if lg == nil {
		return nil
	}
	p1, score1, ok := s.fuzzy.Resolve(lg.Players, first)
	if !ok {
		return nil
	}
	p2, score2, ok := s.fuzzy.Resolve(lg.Players, second)
	if !ok || p1.ID == p2.ID {
		return nil
	}

	var out []Candidate
	for _, pm := range swiss.FindPendingMatchesBetween(lg, p1.ID, p2.ID) {
		out = append(out, Candidate{
			LeagueID:   leagueID,
			LeagueName: lg.Info.Name,
			Round:      pm.Round,
			MatchID:    pm.Match.ID,
			Player1:    ResolvedPlayer{Input: first, ID: p1.ID, Name: p1.Name, Confidence: score1},
			Player2:    ResolvedPlayer{Input: second, ID: p2.ID, Name: p2.Name, Confidence: score2},
		})
	}
	return out
}

type mutation func(doc *league.Document) (SubmissionReceipt, error)

// commit runs apply against a fresh snapshot and writes it back, starting over
// when another writer got there first.
func (s *ResultService) commit(ctx context.Context, dryRun bool, apply mutation) (SubmissionReceipt, error) {
	var lastErr error
	for attempt := 1; attempt <= s.cfg.MaxAttempts; attempt++ {
		snap, err := s.store.Fetch(ctx)
		if err != nil {
			return SubmissionReceipt{}, fmt.Errorf("fetch league document: %w", err)
		}

		receipt, err := apply(&snap.Document)
		if err != nil {
			s.logger.WarnContext(ctx, "submission rejected", "error", err)
			return SubmissionReceipt{}, err
		}
		if dryRun {
			receipt.DryRun = true
			receipt.Version = snap.Version
			s.logger.DebugContext(ctx, "dry run, league document left unchanged",
				"kind", receipt.Kind,
				"league_id", receipt.LeagueID,
				"match_id", receipt.MatchID,
				"version", snap.Version,
			)
			return receipt, nil
		}

		version, err := s.store.Commit(ctx, snap.Document, snap.Version, receipt.CommitMessage)
		if errors.Is(err, league.ErrVersionConflict) {
			lastErr = err
			s.logger.WarnContext(ctx, "league document changed during submission, retrying",
				"attempt", attempt,
				"league_id", receipt.LeagueID,
				"match_id", receipt.MatchID,
			)
			continue
		}
		if err != nil {
			return SubmissionReceipt{}, fmt.Errorf("commit league document: %w", err)
		}

		receipt.Version = version
		s.notify(ctx, receipt.LeagueID)
		s.logger.InfoContext(ctx, "match result committed",
			"kind", receipt.Kind,
			"league_id", receipt.LeagueID,
			"round", receipt.Round,
			"match_id", receipt.MatchID,
			"version", version,
		)
		return receipt, nil
	}
	return SubmissionReceipt{}, fmt.Errorf("%w: gave up after %d attempts: %w", ErrConflict, s.cfg.MaxAttempts, lastErr)
}

func (s *ResultService) notify(ctx context.Context, leagueID string) {
	for _, l := range s.listeners {
		l.LeagueChanged(ctx, leagueID)
	}
}

// selectLeague picks the requested league, then the configured one, then the active one.
func (s *ResultService) selectLeague(doc *league.Document, requested string) (string, *league.League, error) {
	return selectLeague(doc, requested, s.cfg.LeagueID)
}

func selectLeague(doc *league.Document, requested, fallback string) (string, *league.League, error) {
	id := strings.TrimSpace(requested)
	if id == "" {
		id = strings.TrimSpace(fallback)
	}
	if id != "" {
		lg, ok := doc.Leagues[id]
		if !ok || lg == nil {
			return "", nil, fmt.Errorf("%w: league=%s", ErrNotFound, id)
		}
		return id, lg, nil
	}

	id, lg, ok := doc.Active()
	if !ok {
		return "", nil, fmt.Errorf("%w: no leagues configured", ErrNotFound)
	}
	return id, lg, nil
}

func (s *ResultService) lookupUsername(ctx context.Context, name string) string {
	if s.directory == nil {
		return name
	}
	username, ok, err := s.directory.ResolveDisplayName(ctx, name)
	if err != nil {
		s.logger.WarnContext(ctx, "directory lookup failed, using name as given", "name", name, "error", err)
		return name
	}
	if !ok || strings.TrimSpace(username) == "" {
		return name
	}
	return username
}

func matchReceipt(leagueID string, lg *league.League, round int, m *league.Match, first, second ResolvedPlayer, frames []submission.Score) SubmissionReceipt {
	receipt := SubmissionReceipt{
		Kind:       SubmissionKindResult,
		LeagueID:   leagueID,
		LeagueName: lg.Info.Name,
		Round:      round,
		MatchID:    m.ID,
		Player1:    first,
		Player2:    second,
		Frames:     frames,
		Score:      swiss.FrameWins(frames),
		WinnerID:   m.WinnerID,
	}
	if receipt.Frames == nil {
		receipt.Frames = []submission.Score{}
	}
	if m.WinnerID != "" {
		receipt.WinnerName = lg.PlayerName(m.WinnerID)
	}
	if m.IsForfeit() {
		receipt.Kind = SubmissionKindForfeit
		receipt.Forfeit = m.Forfeit
		receipt.ForfeitedBy = append([]string(nil), m.ForfeitedBy...)
	}
	return receipt
}

func invalidInput(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidInput, err)
}

func engineError(err error) error {
	switch {
	case errors.Is(err, swiss.ErrMatchNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, swiss.ErrInvalidResult):
		return invalidInput(err)
	default:
		return err
	}
}
