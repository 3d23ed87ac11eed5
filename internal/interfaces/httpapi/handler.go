package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/swiss-league/internal/platform/logging"
	"github.com/riskibarqy/swiss-league/internal/usecase"
)

type Handler struct {
	resultService      *usecase.ResultService
	standingsService   *usecase.StandingsService
	matchService       *usecase.MatchService
	recalculateService *usecase.RecalculateService
	logger             *logging.Logger
	validator          *validator.Validate
}

func NewHandler(
	resultService *usecase.ResultService,
	standingsService *usecase.StandingsService,
	matchService *usecase.MatchService,
	recalculateService *usecase.RecalculateService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		resultService:      resultService,
		standingsService:   standingsService,
		matchService:       matchService,
		recalculateService: recalculateService,
		logger:             logger,
		validator:          validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

type submitResultRequest struct {
	LeagueID  string   `json:"league_id" validate:"omitempty,max=100"`
	Submitter string   `json:"submitter" validate:"required,max=100"`
	Opponent  string   `json:"opponent" validate:"required,max=100"`
	Round     int      `json:"round" validate:"gte=0"`
	Frames    []string `json:"frames" validate:"required,min=1,max=25,dive,required"`
	DryRun    bool     `json:"dry_run"`
}

func (h *Handler) SubmitResult(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SubmitResult")
	defer span.End()

	var req submitResultRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	receipt, err := h.resultService.SubmitResult(ctx, usecase.SubmitResultInput{
		LeagueID:  req.LeagueID,
		Submitter: req.Submitter,
		Opponent:  req.Opponent,
		Round:     req.Round,
		Frames:    req.Frames,
		DryRun:    req.DryRun,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "submit result failed", "submitter", req.Submitter, "opponent", req.Opponent, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, receiptStatus(receipt), receipt)
}

type submitTextRequest struct {
	Text     string `json:"text" validate:"required,max=500"`
	LeagueID string `json:"league_id" validate:"omitempty,max=100"`
	Round    int    `json:"round" validate:"gte=0"`
	MatchID  string `json:"match_id" validate:"omitempty,max=200"`
	DryRun   bool   `json:"dry_run"`
}

// SubmitText applies a free-text line. A line that matches several pending
// matches is rejected until league_id, round or match_id narrows it to one;
// FindCandidates lists them.
func (h *Handler) SubmitText(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SubmitText")
	defer span.End()

	var req submitTextRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	receipt, err := h.resultService.SubmitText(ctx, usecase.SubmitTextInput{
		Text:     req.Text,
		LeagueID: req.LeagueID,
		Round:    req.Round,
		MatchID:  req.MatchID,
		DryRun:   req.DryRun,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "submit text failed", "text", req.Text, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, receiptStatus(receipt), receipt)
}

func (h *Handler) FindCandidates(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.FindCandidates")
	defer span.End()

	text := strings.TrimSpace(r.URL.Query().Get("text"))
	if text == "" {
		writeError(ctx, w, fmt.Errorf("%w: text query parameter is required", usecase.ErrInvalidInput))
		return
	}

	found, err := h.resultService.FindCandidates(ctx, text)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, found)
}

type submitForfeitRequest struct {
	LeagueID  string `json:"league_id" validate:"omitempty,max=100"`
	Round     int    `json:"round" validate:"gte=0"`
	MatchID   string `json:"match_id" validate:"omitempty,max=200"`
	Player1   string `json:"player1" validate:"required,max=100"`
	Player2   string `json:"player2" validate:"required,max=100"`
	Kind      string `json:"kind" validate:"required,oneof=single double"`
	Forfeiter string `json:"forfeiter" validate:"required_if=Kind single,max=100"`
	DryRun    bool   `json:"dry_run"`
}

func (h *Handler) SubmitForfeit(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SubmitForfeit")
	defer span.End()

	var req submitForfeitRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	req.Kind = strings.ToLower(strings.TrimSpace(req.Kind))
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	receipt, err := h.resultService.SubmitForfeit(ctx, usecase.SubmitForfeitInput{
		LeagueID:  req.LeagueID,
		Round:     req.Round,
		MatchID:   req.MatchID,
		Player1:   req.Player1,
		Player2:   req.Player2,
		Kind:      req.Kind,
		Forfeiter: req.Forfeiter,
		DryRun:    req.DryRun,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "submit forfeit failed", "player1", req.Player1, "player2", req.Player2, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, receiptStatus(receipt), receipt)
}

func (h *Handler) GetStandings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetStandings")
	defer span.End()

	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	view, err := h.standingsService.Get(ctx, r.PathValue("leagueID"), limit)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, view)
}

func (h *Handler) ListPlayerMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPlayerMatches")
	defer span.End()

	leagueID := r.PathValue("leagueID")
	name := r.PathValue("player")
	view, err := h.matchService.ListPending(ctx, leagueID, name)
	if err != nil {
		h.logger.WarnContext(ctx, "list player matches failed", "league_id", leagueID, "player", name, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, view)
}

type recalculateRequest struct {
	MaxWorkers int  `json:"max_workers" validate:"gte=0,lte=64"`
	DryRun     bool `json:"dry_run"`
}

func (h *Handler) Recalculate(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Recalculate")
	defer span.End()

	var req recalculateRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.recalculateService.RecalculateAll(ctx, usecase.RecalculateInput{
		MaxWorkers: req.MaxWorkers,
		DryRun:     req.DryRun,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "recalculate failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

var errEmptyBody = fmt.Errorf("%w: request body is required", usecase.ErrInvalidInput)

func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return errEmptyBody
	}
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

func parseLimit(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, fmt.Errorf("%w: limit must be a non-negative integer", usecase.ErrInvalidInput)
	}
	return limit, nil
}

// receiptStatus is 200 for dry runs and 201 once the document has been written.
func receiptStatus(receipt usecase.SubmissionReceipt) int {
	if receipt.DryRun {
		return http.StatusOK
	}
	return http.StatusCreated
}
