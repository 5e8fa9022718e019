package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"fides/internal/consent"
	"fides/internal/platform/middleware"
	id "fides/pkg/domain"
	dErrors "fides/pkg/domain-errors"
	"fides/pkg/platform/httputil"
)

// Service defines the interface for consent registry operations.
type Service interface {
	GrantConsent(ctx context.Context, requester id.Identity, consentType id.ConsentType, purpose string, expiresAt *uint64) error
	RevokeConsent(ctx context.Context, requester id.Identity, consentType id.ConsentType) error
	TransferAdmin(ctx context.Context, newAdmin id.Identity) error
	CheckConsent(ctx context.Context, user, requester id.Identity, consentType id.ConsentType) (bool, error)
	GetConsentRecord(ctx context.Context, user, requester id.Identity, consentType id.ConsentType) (consent.Record, bool, error)
	GetAuditLogEntry(ctx context.Context, user, requester id.Identity, consentType id.ConsentType, logID uint64) (consent.AuditEntry, bool, error)
	GetAuditLogCount(ctx context.Context, user, requester id.Identity, consentType id.ConsentType) (uint64, error)
}

// Handler exposes the consent registry over HTTP.
type Handler struct {
	logger       *slog.Logger
	service      Service
	jwtValidator middleware.JWTValidator
}

func New(service Service, logger *slog.Logger, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{logger: logger, service: service, jwtValidator: jwtValidator}
}

// Register mounts the consent routes.
func (h *Handler) Register(r chi.Router) {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
	router.Post("/grants", h.handleGrant)
	router.Post("/grants/revoke", h.handleRevoke)
	router.Post("/admin/transfer", h.handleTransferAdmin)
	router.Get("/users/{user}/requesters/{requester}/types/{type}/active", h.handleCheck)
	router.Get("/users/{user}/requesters/{requester}/types/{type}", h.handleRecord)
	router.Get("/users/{user}/requesters/{requester}/types/{type}/log", h.handleAuditCount)
	router.Get("/users/{user}/requesters/{requester}/types/{type}/log/{id}", h.handleAuditEntry)

	r.Mount("/consents", router)
}

type grantRequest struct {
	Requester string  `json:"requester"`
	Type      uint8   `json:"type"`
	Purpose   string  `json:"purpose"`
	ExpiresAt *uint64 `json:"expires_at,omitempty"`
}

type revokeRequest struct {
	Requester string `json:"requester"`
	Type      uint8  `json:"type"`
}

type transferAdminRequest struct {
	NewAdmin string `json:"new_admin"`
}

type recordResponse struct {
	Granted   bool    `json:"granted"`
	GrantedAt uint64  `json:"granted_at"`
	ExpiresAt *uint64 `json:"expires_at,omitempty"`
	RevokedAt *uint64 `json:"revoked_at,omitempty"`
	Purpose   string  `json:"purpose,omitempty"`
}

type auditEntryResponse struct {
	LogID     uint64 `json:"log_id"`
	Action    string `json:"action"`
	Timestamp uint64 `json:"timestamp"`
	Actor     string `json:"actor"`
}

func (h *Handler) handleGrant(w http.ResponseWriter, r *http.Request) {
	var req grantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	requester, err := id.ParseIdentity(req.Requester)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	consentType, err := id.ParseConsentType(req.Type)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.GrantConsent(r.Context(), requester, consentType, req.Purpose, req.ExpiresAt); err != nil {
		h.logError(r, "grant failed", err)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleRevoke(w http.ResponseWriter, r *http.Request) {
	var req revokeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	requester, err := id.ParseIdentity(req.Requester)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	consentType, err := id.ParseConsentType(req.Type)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.RevokeConsent(r.Context(), requester, consentType); err != nil {
		h.logError(r, "revoke failed", err)
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

func (h *Handler) handleCheck(w http.ResponseWriter, r *http.Request) {
	user, requester, consentType, err := pathScope(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	active, err := h.service.CheckConsent(r.Context(), user, requester, consentType)
	if err != nil {
		h.logError(r, "consent check failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"active": active})
}

func (h *Handler) handleRecord(w http.ResponseWriter, r *http.Request) {
	user, requester, consentType, err := pathScope(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	rec, ok, err := h.service.GetConsentRecord(r.Context(), user, requester, consentType)
	if err != nil {
		h.logError(r, "record lookup failed", err)
		httputil.WriteError(w, err)
		return
	}
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "no consent record for scope"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, recordResponse{
		Granted:   rec.Granted,
		GrantedAt: rec.GrantedAt,
		ExpiresAt: rec.ExpiresAt,
		RevokedAt: rec.RevokedAt,
		Purpose:   rec.Purpose,
	})
}

func (h *Handler) handleAuditCount(w http.ResponseWriter, r *http.Request) {
	user, requester, consentType, err := pathScope(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	count, err := h.service.GetAuditLogCount(r.Context(), user, requester, consentType)
	if err != nil {
		h.logError(r, "audit count failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]uint64{"count": count})
}

func (h *Handler) handleAuditEntry(w http.ResponseWriter, r *http.Request) {
	user, requester, consentType, err := pathScope(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	logID, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid log id"))
		return
	}
	entry, ok, err := h.service.GetAuditLogEntry(r.Context(), user, requester, consentType, logID)
	if err != nil {
		h.logError(r, "audit entry lookup failed", err)
		httputil.WriteError(w, err)
		return
	}
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "no audit entry with that id"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, auditEntryResponse{
		LogID:     entry.LogID,
		Action:    entry.Action,
		Timestamp: entry.Timestamp,
		Actor:     entry.Actor.String(),
	})
}

func pathScope(r *http.Request) (id.Identity, id.Identity, id.ConsentType, error) {
	user, err := id.ParseIdentity(chi.URLParam(r, "user"))
	if err != nil {
		return "", "", 0, err
	}
	requester, err := id.ParseIdentity(chi.URLParam(r, "requester"))
	if err != nil {
		return "", "", 0, err
	}
	raw, err := strconv.ParseUint(chi.URLParam(r, "type"), 10, 8)
	if err != nil {
		return "", "", 0, dErrors.New(dErrors.CodeBadRequest, "invalid consent type")
	}
	consentType, err := id.ParseConsentType(uint8(raw))
	if err != nil {
		return "", "", 0, err
	}
	return user, requester, consentType, nil
}

func (h *Handler) logError(r *http.Request, msg string, err error) {
	h.logger.WarnContext(r.Context(), msg, "error", err.Error(), "path", r.URL.Path)
}
