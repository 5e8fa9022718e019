package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"fides/internal/platform/middleware"
	"fides/internal/verification"
	id "fides/pkg/domain"
	dErrors "fides/pkg/domain-errors"
	"fides/pkg/platform/httputil"
)

// Service defines the interface for verification registry operations.
type Service interface {
	AddTrustedVerifier(ctx context.Context, verifier id.Identity) error
	RemoveTrustedVerifier(ctx context.Context, verifier id.Identity) error
	SubmitForVerification(ctx context.Context, name string, documentHash id.Hash, metadata string) error
	VerifyUser(ctx context.Context, user id.Identity) error
	RejectVerification(ctx context.Context, user id.Identity) error
	TransferAdmin(ctx context.Context, newAdmin id.Identity) error
	GetVerificationStatus(ctx context.Context, user id.Identity) (verification.Record, error)
	GetUserInfo(ctx context.Context, user id.Identity) (verification.UserInfo, bool, error)
	IsVerified(ctx context.Context, user id.Identity) (bool, error)
}

// Handler exposes the verification registry over HTTP.
type Handler struct {
	logger       *slog.Logger
	service      Service
	jwtValidator middleware.JWTValidator
}

func New(service Service, logger *slog.Logger, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{logger: logger, service: service, jwtValidator: jwtValidator}
}

// Register mounts the verification routes.
func (h *Handler) Register(r chi.Router) {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
	router.Post("/verifiers", h.handleAddVerifier)
	router.Post("/verifiers/remove", h.handleRemoveVerifier)
	router.Post("/submissions", h.handleSubmit)
	router.Post("/users/{user}/verify", h.handleVerify)
	router.Post("/users/{user}/reject", h.handleReject)
	router.Post("/admin/transfer", h.handleTransferAdmin)
	router.Get("/users/{user}/status", h.handleStatus)
	router.Get("/users/{user}/info", h.handleUserInfo)
	router.Get("/users/{user}/verified", h.handleIsVerified)

	r.Mount("/verification", router)
}

type verifierRequest struct {
	Verifier string `json:"verifier"`
}

type submitRequest struct {
	Name         string `json:"name"`
	DocumentHash string `json:"document_hash"`
	Metadata     string `json:"metadata"`
}

type transferAdminRequest struct {
	NewAdmin string `json:"new_admin"`
}

type statusResponse struct {
	Status    string  `json:"status"`
	Timestamp uint64  `json:"timestamp"`
	Verifier  *string `json:"verifier,omitempty"`
}

type userInfoResponse struct {
	Name         string `json:"name"`
	DocumentHash string `json:"document_hash"`
	Metadata     string `json:"metadata,omitempty"`
}

func (h *Handler) handleAddVerifier(w http.ResponseWriter, r *http.Request) {
	h.toggleVerifier(w, r, h.service.AddTrustedVerifier)
}

func (h *Handler) handleRemoveVerifier(w http.ResponseWriter, r *http.Request) {
	h.toggleVerifier(w, r, h.service.RemoveTrustedVerifier)
}

func (h *Handler) toggleVerifier(w http.ResponseWriter, r *http.Request, op func(context.Context, id.Identity) error) {
	var req verifierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	verifier, err := id.ParseIdentity(req.Verifier)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := op(r.Context(), verifier); err != nil {
		h.logError(r, "verifier toggle failed", err)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	docHash, err := id.ParseHash(req.DocumentHash)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.SubmitForVerification(r.Context(), req.Name, docHash, req.Metadata); err != nil {
		h.logError(r, "submission failed", err)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.service.VerifyUser)
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.service.RejectVerification)
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, op func(context.Context, id.Identity) error) {
	user, err := id.ParseIdentity(chi.URLParam(r, "user"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := op(r.Context(), user); err != nil {
		h.logError(r, "verification decision failed", err)
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

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	user, err := id.ParseIdentity(chi.URLParam(r, "user"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	rec, err := h.service.GetVerificationStatus(r.Context(), user)
	if err != nil {
		h.logError(r, "status lookup failed", err)
		httputil.WriteError(w, err)
		return
	}
	resp := statusResponse{Status: rec.Status.String(), Timestamp: rec.Timestamp}
	if rec.Verifier != nil {
		v := rec.Verifier.String()
		resp.Verifier = &v
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleUserInfo(w http.ResponseWriter, r *http.Request) {
	user, err := id.ParseIdentity(chi.URLParam(r, "user"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	info, ok, err := h.service.GetUserInfo(r.Context(), user)
	if err != nil {
		h.logError(r, "user info lookup failed", err)
		httputil.WriteError(w, err)
		return
	}
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "no submission for user"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, userInfoResponse{
		Name:         info.Name,
		DocumentHash: info.DocumentHash.String(),
		Metadata:     info.Metadata,
	})
}

func (h *Handler) handleIsVerified(w http.ResponseWriter, r *http.Request) {
	user, err := id.ParseIdentity(chi.URLParam(r, "user"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	verified, err := h.service.IsVerified(r.Context(), user)
	if err != nil {
		h.logError(r, "verified lookup failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"verified": verified})
}

func (h *Handler) logError(r *http.Request, msg string, err error) {
	h.logger.WarnContext(r.Context(), msg, "error", err.Error(), "path", r.URL.Path)
}
