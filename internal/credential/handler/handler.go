package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"fides/internal/credential"
	"fides/internal/platform/middleware"
	id "fides/pkg/domain"
	dErrors "fides/pkg/domain-errors"
	"fides/pkg/platform/httputil"
)

// Service defines the interface for credential registry operations.
type Service interface {
	AuthorizeIssuer(ctx context.Context, issuer id.Identity, credType id.CredentialType) error
	RevokeIssuerAuthorization(ctx context.Context, issuer id.Identity, credType id.CredentialType) error
	IssueCredential(ctx context.Context, user id.Identity, credType id.CredentialType, expiresAt uint64, dataHash id.Hash) (uint64, error)
	RevokeCredential(ctx context.Context, user id.Identity, credID uint64) error
	TransferAdmin(ctx context.Context, newAdmin id.Identity) error
	GetCredential(ctx context.Context, user id.Identity, credID uint64) (credential.Credential, bool, error)
	VerifyCredential(ctx context.Context, user id.Identity, credID uint64) (bool, error)
	GetUserCredentialCount(ctx context.Context, user id.Identity) (uint64, error)
}

// Handler exposes the credential registry over HTTP.
type Handler struct {
	logger       *slog.Logger
	service      Service
	jwtValidator middleware.JWTValidator
}

func New(service Service, logger *slog.Logger, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{logger: logger, service: service, jwtValidator: jwtValidator}
}

// Register mounts the credential routes.
func (h *Handler) Register(r chi.Router) {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
	router.Post("/issuers", h.handleAuthorizeIssuer)
	router.Post("/issuers/revoke", h.handleRevokeIssuer)
	router.Post("/users/{user}/credentials", h.handleIssue)
	router.Post("/users/{user}/credentials/{id}/revoke", h.handleRevoke)
	router.Post("/admin/transfer", h.handleTransferAdmin)
	router.Get("/users/{user}/credentials/{id}", h.handleGet)
	router.Get("/users/{user}/credentials/{id}/valid", h.handleVerify)
	router.Get("/users/{user}/credentials/count", h.handleCount)

	r.Mount("/credentials", router)
}

type issuerRequest struct {
	Issuer string `json:"issuer"`
	Type   uint8  `json:"type"`
}

type issueRequest struct {
	Type      uint8  `json:"type"`
	ExpiresAt uint64 `json:"expires_at"`
	DataHash  string `json:"data_hash"`
}

type transferAdminRequest struct {
	NewAdmin string `json:"new_admin"`
}

type credentialResponse struct {
	ID        uint64 `json:"id"`
	Type      uint8  `json:"type"`
	Issuer    string `json:"issuer"`
	IssuedAt  uint64 `json:"issued_at"`
	ExpiresAt uint64 `json:"expires_at"`
	Revoked   bool   `json:"revoked"`
	DataHash  string `json:"data_hash"`
}

func (h *Handler) handleAuthorizeIssuer(w http.ResponseWriter, r *http.Request) {
	h.toggleIssuer(w, r, h.service.AuthorizeIssuer)
}

func (h *Handler) handleRevokeIssuer(w http.ResponseWriter, r *http.Request) {
	h.toggleIssuer(w, r, h.service.RevokeIssuerAuthorization)
}

func (h *Handler) toggleIssuer(w http.ResponseWriter, r *http.Request, op func(context.Context, id.Identity, id.CredentialType) error) {
	var req issuerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	issuer, err := id.ParseIdentity(req.Issuer)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	credType, err := id.ParseCredentialType(req.Type)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := op(r.Context(), issuer, credType); err != nil {
		h.logError(r, "issuer toggle failed", err)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleIssue(w http.ResponseWriter, r *http.Request) {
	user, err := id.ParseIdentity(chi.URLParam(r, "user"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req issueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	credType, err := id.ParseCredentialType(req.Type)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	dataHash, err := id.ParseHash(req.DataHash)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	credID, err := h.service.IssueCredential(r.Context(), user, credType, req.ExpiresAt, dataHash)
	if err != nil {
		h.logError(r, "issuance failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]uint64{"id": credID})
}

func (h *Handler) handleRevoke(w http.ResponseWriter, r *http.Request) {
	user, credID, err := h.pathTarget(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.RevokeCredential(r.Context(), user, credID); err != nil {
		h.logError(r, "revocation failed", err)
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

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	user, credID, err := h.pathTarget(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	cred, ok, err := h.service.GetCredential(r.Context(), user, credID)
	if err != nil {
		h.logError(r, "credential lookup failed", err)
		httputil.WriteError(w, err)
		return
	}
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "credential not found"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, credentialResponse{
		ID:        cred.ID,
		Type:      uint8(cred.Type),
		Issuer:    cred.Issuer.String(),
		IssuedAt:  cred.IssuedAt,
		ExpiresAt: cred.ExpiresAt,
		Revoked:   cred.Revoked,
		DataHash:  cred.DataHash.String(),
	})
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	user, credID, err := h.pathTarget(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	valid, err := h.service.VerifyCredential(r.Context(), user, credID)
	if err != nil {
		h.logError(r, "credential verify failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"valid": valid})
}

func (h *Handler) handleCount(w http.ResponseWriter, r *http.Request) {
	user, err := id.ParseIdentity(chi.URLParam(r, "user"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	count, err := h.service.GetUserCredentialCount(r.Context(), user)
	if err != nil {
		h.logError(r, "credential count failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]uint64{"count": count})
}

func (h *Handler) pathTarget(r *http.Request) (id.Identity, uint64, error) {
	user, err := id.ParseIdentity(chi.URLParam(r, "user"))
	if err != nil {
		return "", 0, err
	}
	credID, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return "", 0, dErrors.New(dErrors.CodeBadRequest, "invalid credential id")
	}
	return user, credID, nil
}

func (h *Handler) logError(r *http.Request, msg string, err error) {
	h.logger.WarnContext(r.Context(), msg, "error", err.Error(), "path", r.URL.Path)
}
