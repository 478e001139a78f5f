package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"

	"github.com/riskibarqy/fantasy-matchday/internal/domain/lifecycle"
	"github.com/riskibarqy/fantasy-matchday/internal/platform/logging"
	"github.com/riskibarqy/fantasy-matchday/internal/usecase"
)

// TransferStateReader answers phase and refresh questions for a league type.
type TransferStateReader interface {
	GetTransferState(ctx context.Context, leagueType string) (lifecycle.TransferState, error)
	IsRefreshing(ctx context.Context, leagueType string) (bool, error)
	AwaitRefreshComplete(ctx context.Context, leagueType string) error
	RequestRefresh(ctx context.Context, leagueType string) error
}

// ScoringAdmin exposes the administrative scoring operations.
type ScoringAdmin interface {
	RunScoringPass(ctx context.Context, target string) error
	HistoricalPredictionPoints(ctx context.Context, leagueID, userID int64, matchday int) (int, error)
}

type Handler struct {
	transfers TransferStateReader
	scoring   ScoringAdmin
	logger    *logging.Logger
	validator *validator.Validate
}

func NewHandler(transfers TransferStateReader, scoring ScoringAdmin, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		transfers: transfers,
		scoring:   scoring,
		logger:    logger,
		validator: validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

type transferStateDTO struct {
	LeagueType   string `json:"league_type"`
	TransferOpen bool   `json:"transfer_open"`
	SecondsLeft  int64  `json:"seconds_left"`
	Known        bool   `json:"known"`
}

func (h *Handler) GetTransferState(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTransferState")
	defer span.End()

	state, err := h.transfers.GetTransferState(ctx, r.PathValue("league"))
	if err != nil {
		h.logger.WarnContext(ctx, "get transfer state failed", "league_type", r.PathValue("league"), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, transferStateDTO{
		LeagueType:   state.LeagueType,
		TransferOpen: state.TransferOpen,
		SecondsLeft:  state.SecondsLeft,
		Known:        state.Known,
	})
}

type refreshStatusDTO struct {
	LeagueType string `json:"league_type"`
	Refreshing bool   `json:"refreshing"`
}

// GetRefreshStatus reports whether a refresh is running. With wait=true it first blocks until the
// running refresh finishes or the request is cancelled.
func (h *Handler) GetRefreshStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetRefreshStatus")
	defer span.End()

	leagueType := r.PathValue("league")
	wait, err := parseOptionalBool(r.URL.Query().Get("wait"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	if wait {
		if err := h.transfers.AwaitRefreshComplete(ctx, leagueType); err != nil {
			h.logger.WarnContext(ctx, "await refresh failed", "league_type", leagueType, "error", err)
			writeError(ctx, w, err)
			return
		}
	}

	refreshing, err := h.transfers.IsRefreshing(ctx, leagueType)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, refreshStatusDTO{
		LeagueType: strings.TrimSpace(leagueType),
		Refreshing: refreshing,
	})
}

func (h *Handler) RequestRefresh(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RequestRefresh")
	defer span.End()

	leagueType := r.PathValue("league")
	if err := h.transfers.RequestRefresh(ctx, leagueType); err != nil {
		h.logger.WarnContext(ctx, "request refresh failed", "league_type", leagueType, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusAccepted, map[string]string{
		"league_type": strings.TrimSpace(leagueType),
		"status":      "requested",
	})
}

type runScoringRequest struct {
	Target string `json:"target" validate:"required"`
}

func (h *Handler) RunScoringPass(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunScoringPass")
	defer span.End()

	var req runScoringRequest
	if err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload", usecase.ErrInvalidInput))
		return
	}
	req.Target = strings.TrimSpace(req.Target)
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.scoring.RunScoringPass(ctx, req.Target); err != nil {
		h.logger.ErrorContext(ctx, "scoring pass failed", "target", req.Target, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{
		"target": req.Target,
		"status": "scored",
	})
}

type predictionPointsDTO struct {
	LeagueID int64 `json:"league_id"`
	UserID   int64 `json:"user_id"`
	Matchday int   `json:"matchday"`
	Points   int   `json:"points"`
}

func (h *Handler) GetHistoricalPredictionPoints(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetHistoricalPredictionPoints")
	defer span.End()

	leagueID, err := parsePathInt(r, "leagueID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	userID, err := parsePathInt(r, "userID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	matchday, err := parsePathInt(r, "matchday")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	points, err := h.scoring.HistoricalPredictionPoints(ctx, leagueID, userID, int(matchday))
	if err != nil {
		h.logger.WarnContext(ctx, "historical prediction points failed",
			"league_id", leagueID,
			"user_id", userID,
			"matchday", matchday,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, predictionPointsDTO{
		LeagueID: leagueID,
		UserID:   userID,
		Matchday: int(matchday),
		Points:   points,
	})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

func parsePathInt(r *http.Request, name string) (int64, error) {
	raw := strings.TrimSpace(r.PathValue(name))
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value < 1 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", usecase.ErrInvalidInput, name)
	}
	return value, nil
}

func parseOptionalBool(raw string) (bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%w: wait must be a boolean", usecase.ErrInvalidInput)
	}
	return value, nil
}
