package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"fides/internal/platform/middleware"
	"fides/internal/risk"
	id "fides/pkg/domain"
	dErrors "fides/pkg/domain-errors"
	"fides/pkg/platform/httputil"
)

// Service defines the interface for risk registry operations.
type Service interface {
	AddFraudAnalyst(ctx context.Context, analyst id.Identity) error
	RemoveFraudAnalyst(ctx context.Context, analyst id.Identity) error
	SetRiskThreshold(ctx context.Context, activityType id.ActivityType, medium, high uint8) error
	LogActivity(ctx context.Context, user id.Identity, activityType id.ActivityType, riskScore uint8, metadata string, ipHash id.Hash) (risk.LogActivityResult, error)
	FlagUser(ctx context.Context, user id.Identity) error
	ClearUserFlag(ctx context.Context, user id.Identity) error
	TransferAdmin(ctx context.Context, newAdmin id.Identity) error
	GetUserRiskScore(ctx context.Context, user id.Identity) (risk.Score, bool, error)
	GetActivityLog(ctx context.Context, user id.Identity, activityID uint64) (risk.ActivityLogEntry, bool, error)
	GetActivityCount(ctx context.Context, user id.Identity) (uint64, error)
	IsUserFlagged(ctx context.Context, user id.Identity) (bool, error)
}

// Handler exposes the risk registry over HTTP.
type Handler struct {
	logger       *slog.Logger
	service      Service
	jwtValidator middleware.JWTValidator
}

func New(service Service, logger *slog.Logger, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{logger: logger, service: service, jwtValidator: jwtValidator}
}

// Register mounts the risk routes.
func (h *Handler) Register(r chi.Router) {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
	router.Post("/analysts", h.handleAddAnalyst)
	router.Post("/analysts/remove", h.handleRemoveAnalyst)
	router.Post("/thresholds", h.handleSetThreshold)
	router.Post("/users/{user}/activities", h.handleLogActivity)
	router.Post("/users/{user}/flag", h.handleFlag)
	router.Post("/users/{user}/flag/clear", h.handleClearFlag)
	router.Post("/admin/transfer", h.handleTransferAdmin)
	router.Get("/users/{user}/score", h.handleScore)
	router.Get("/users/{user}/activities/{id}", h.handleActivity)
	router.Get("/users/{user}/activities/count", h.handleActivityCount)
	router.Get("/users/{user}/flagged", h.handleFlagged)

	r.Mount("/risk", router)
}

type analystRequest struct {
	Analyst string `json:"analyst"`
}

type thresholdRequest struct {
	Type   uint8 `json:"type"`
	Medium uint8 `json:"medium"`
	High   uint8 `json:"high"`
}

type logActivityRequest struct {
	Type      uint8  `json:"type"`
	RiskScore uint8  `json:"risk_score"`
	Metadata  string `json:"metadata"`
	IPHash    string `json:"ip_hash"`
}

type logActivityResponse struct {
	ActivityID uint64 `json:"activity_id"`
	RiskLevel  string `json:"risk_level"`
}

type transferAdminRequest struct {
	NewAdmin string `json:"new_admin"`
}

type scoreResponse struct {
	Score       uint8  `json:"score"`
	LastUpdated uint64 `json:"last_updated"`
	Flagged     bool   `json:"flagged"`
}

type activityResponse struct {
	ID        uint64 `json:"id"`
	Type      uint8  `json:"type"`
	Timestamp uint64 `json:"timestamp"`
	RiskScore uint8  `json:"risk_score"`
	Metadata  string `json:"metadata,omitempty"`
	IPHash    string `json:"ip_hash"`
}

func (h *Handler) handleAddAnalyst(w http.ResponseWriter, r *http.Request) {
	h.toggleAnalyst(w, r, h.service.AddFraudAnalyst)
}

func (h *Handler) handleRemoveAnalyst(w http.ResponseWriter, r *http.Request) {
	h.toggleAnalyst(w, r, h.service.RemoveFraudAnalyst)
}

func (h *Handler) toggleAnalyst(w http.ResponseWriter, r *http.Request, op func(context.Context, id.Identity) error) {
	var req analystRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	analyst, err := id.ParseIdentity(req.Analyst)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := op(r.Context(), analyst); err != nil {
		h.logError(r, "analyst toggle failed", err)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSetThreshold(w http.ResponseWriter, r *http.Request) {
	var req thresholdRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	activityType, err := id.ParseActivityType(req.Type)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.SetRiskThreshold(r.Context(), activityType, req.Medium, req.High); err != nil {
		h.logError(r, "threshold update failed", err)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleLogActivity(w http.ResponseWriter, r *http.Request) {
	user, err := id.ParseIdentity(chi.URLParam(r, "user"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req logActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	activityType, err := id.ParseActivityType(req.Type)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	ipHash, err := id.ParseHash(req.IPHash)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	res, err := h.service.LogActivity(r.Context(), user, activityType, req.RiskScore, req.Metadata, ipHash)
	if err != nil {
		h.logError(r, "activity logging failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, logActivityResponse{
		ActivityID: res.ActivityID,
		RiskLevel:  res.Level.String(),
	})
}

func (h *Handler) handleFlag(w http.ResponseWriter, r *http.Request) {
	h.setFlag(w, r, h.service.FlagUser)
}

func (h *Handler) handleClearFlag(w http.ResponseWriter, r *http.Request) {
	h.setFlag(w, r, h.service.ClearUserFlag)
}

func (h *Handler) setFlag(w http.ResponseWriter, r *http.Request, op func(context.Context, id.Identity) error) {
	user, err := id.ParseIdentity(chi.URLParam(r, "user"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := op(r.Context(), user); err != nil {
		h.logError(r, "flag update failed", err)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleTransferAdmin(w http.ResponseWriter, r *http.Request) {
	var req transferAdminRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	newAdmin, err := id.ParseIdentity(req.NewAdmin)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.TransferAdmin(r.Context(), newAdmin); err != nil {
		h.logError(r, "admin transfer failed", err)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleScore(w http.ResponseWriter, r *http.Request) {
	user, err := id.ParseIdentity(chi.URLParam(r, "user"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	score, ok, err := h.service.GetUserRiskScore(r.Context(), user)
	if err != nil {
		h.logError(r, "score lookup failed", err)
		httputil.WriteError(w, err)
		return
	}
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "user has no risk score"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, scoreResponse{
		Score:       score.Score,
		LastUpdated: score.LastUpdated,
		Flagged:     score.Flagged,
	})
}

func (h *Handler) handleActivity(w http.ResponseWriter, r *http.Request) {
	user, err := id.ParseIdentity(chi.URLParam(r, "user"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	activityID, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid activity id"))
		return
	}
	entry, ok, err := h.service.GetActivityLog(r.Context(), user, activityID)
	if err != nil {
		h.logError(r, "activity lookup failed", err)
		httputil.WriteError(w, err)
		return
	}
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "no activity with that id"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, activityResponse{
		ID:        entry.ID,
		Type:      uint8(entry.Type),
		Timestamp: entry.Timestamp,
		RiskScore: entry.RiskScore,
		Metadata:  entry.Metadata,
		IPHash:    entry.IPHash.String(),
	})
}

func (h *Handler) handleActivityCount(w http.ResponseWriter, r *http.Request) {
	user, err := id.ParseIdentity(chi.URLParam(r, "user"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	count, err := h.service.GetActivityCount(r.Context(), user)
	if err != nil {
		h.logError(r, "activity count failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]uint64{"count": count})
}

func (h *Handler) handleFlagged(w http.ResponseWriter, r *http.Request) {
	user, err := id.ParseIdentity(chi.URLParam(r, "user"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	flagged, err := h.service.IsUserFlagged(r.Context(), user)
	if err != nil {
		h.logError(r, "flag lookup failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"flagged": flagged})
}

func (h *Handler) logError(r *http.Request, msg string, err error) {
	h.logger.WarnContext(r.Context(), msg, "error", err.Error(), "path", r.URL.Path)
}
