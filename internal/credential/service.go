package credential

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"fides/internal/platform/metrics"
	id "fides/pkg/domain"
	dErrors "fides/pkg/domain-errors"
	audit "fides/pkg/platform/audit"
	"fides/pkg/platform/sentinel"
	"fides/pkg/requestcontext"
)

// AuditPublisher records operational audit events after successful writes.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service implements the credential registry: per-user issuance and
// revocation of typed claims, gated per (issuer, credential type).
type Service struct {
	store   Store
	logger  *slog.Logger
	auditor AuditPublisher
	metrics *metrics.Metrics
}

type serviceConfig struct {
	logger  *slog.Logger
	auditor AuditPublisher
	metrics *metrics.Metrics
}

// Option configures optional service collaborators.
type Option func(*serviceConfig)

func WithLogger(logger *slog.Logger) Option {
	return func(c *serviceConfig) { c.logger = logger }
}

func WithAuditPublisher(auditor AuditPublisher) Option {
	return func(c *serviceConfig) { c.auditor = auditor }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *serviceConfig) { c.metrics = m }
}

func NewService(store Store, opts ...Option) *Service {
	cfg := &serviceConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return &Service{store: store, logger: cfg.logger, auditor: cfg.auditor, metrics: cfg.metrics}
}

// AuthorizeIssuer grants an issuer the right to issue one credential type.
// Admin only; idempotent per (issuer, type) pair.
func (s *Service) AuthorizeIssuer(ctx context.Context, issuer id.Identity, credType id.CredentialType) error {
	return s.setIssuer(ctx, issuer, credType, true, audit.EventIssuerAuthorized)
}

// RevokeIssuerAuthorization withdraws the right. Admin only; idempotent.
func (s *Service) RevokeIssuerAuthorization(ctx context.Context, issuer id.Identity, credType id.CredentialType) error {
	return s.setIssuer(ctx, issuer, credType, false, audit.EventIssuerRevoked)
}

func (s *Service) setIssuer(ctx context.Context, issuer id.Identity, credType id.CredentialType, authorized bool, event audit.AuditEvent) error {
	caller, err := s.requireAdmin(ctx)
	if err != nil {
		return err
	}
	if issuer.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "issuer identity is required")
	}
	if !credType.IsValid() {
		return dErrors.New(dErrors.CodeInvalidInput, "unknown credential type")
	}
	if err := s.store.SetIssuerAuthorization(ctx, issuer, credType, authorized); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update issuer authorization")
	}
	s.emit(ctx, event, issuer, caller, fmt.Sprintf("type=%d", credType))
	return nil
}

// IssueCredential writes a new credential for user and returns its id.
// The caller must be authorized for the credential type, and expiry must be
// strictly after the current height.
func (s *Service) IssueCredential(ctx context.Context, user id.Identity, credType id.CredentialType, expiresAt uint64, dataHash id.Hash) (uint64, error) {
	caller := requestcontext.Caller(ctx)
	if !credType.IsValid() {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "unknown credential type")
	}
	authorized, err := s.store.IsAuthorizedIssuer(ctx, caller, credType)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check issuer authorization")
	}
	if caller.IsZero() || !authorized {
		return 0, dErrors.New(dErrors.CodeUnauthorized, "caller is not authorized for this credential type")
	}
	if user.IsZero() {
		return 0, dErrors.New(dErrors.CodeValidation, "user identity is required")
	}

	height := requestcontext.Height(ctx)
	if expiresAt <= height {
		return 0, dErrors.New(dErrors.CodeInvalidExpiry, "expiry must be strictly in the future")
	}

	credID, err := s.store.AppendCredential(ctx, user, Credential{
		Type:      credType,
		Issuer:    caller,
		IssuedAt:  height,
		ExpiresAt: expiresAt,
		DataHash:  dataHash,
	})
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store credential")
	}

	if s.metrics != nil {
		s.metrics.CredentialsIssued.Inc()
	}
	s.emit(ctx, audit.EventCredentialIssued, user, caller, fmt.Sprintf("id=%d type=%d", credID, credType))
	return credID, nil
}

// RevokeCredential permanently revokes one credential. Allowed for the
// original issuer or the registry admin; revocation is one-way.
func (s *Service) RevokeCredential(ctx context.Context, user id.Identity, credID uint64) error {
	cred, ok, err := s.store.Credential(ctx, user, credID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to read credential")
	}
	if !ok {
		return dErrors.New(dErrors.CodeNotFound, "credential not found")
	}

	caller := requestcontext.Caller(ctx)
	admin, err := s.store.Admin(ctx)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to read admin")
	}
	if caller.IsZero() || (caller != cred.Issuer && caller != admin) {
		return dErrors.New(dErrors.CodeUnauthorized, "only the issuer or admin may revoke")
	}

	_, err = s.store.UpdateCredential(ctx, user, credID,
		func(c Credential) error {
			if c.Revoked {
				return dErrors.New(dErrors.CodeAlreadyRevoked, "credential is already revoked")
			}
			return nil
		},
		func(c *Credential) {
			c.Revoked = true
		},
	)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "credential not found")
		}
		if dErrors.HasCode(err, dErrors.CodeAlreadyRevoked) {
			return err
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke credential")
	}

	if s.metrics != nil {
		s.metrics.CredentialsRevoked.Inc()
	}
	s.emit(ctx, audit.EventCredentialVoided, user, caller, fmt.Sprintf("id=%d", credID))
	return nil
}

// TransferAdmin replaces the registry admin. Current admin only.
func (s *Service) TransferAdmin(ctx context.Context, newAdmin id.Identity) error {
	caller, err := s.requireAdmin(ctx)
	if err != nil {
		return err
	}
	if newAdmin.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "new admin identity is required")
	}
	if err := s.store.SetAdmin(ctx, newAdmin); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to transfer admin")
	}
	s.emit(ctx, audit.EventAdminTransferred, newAdmin, caller, "")
	return nil
}

// GetCredential returns one credential; the bool reports presence.
func (s *Service) GetCredential(ctx context.Context, user id.Identity, credID uint64) (Credential, bool, error) {
	cred, ok, err := s.store.Credential(ctx, user, credID)
	if err != nil {
		return Credential{}, false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read credential")
	}
	return cred, ok, nil
}

// VerifyCredential reports whether the credential exists, is unrevoked, and
// is unexpired at the current height.
func (s *Service) VerifyCredential(ctx context.Context, user id.Identity, credID uint64) (bool, error) {
	cred, ok, err := s.store.Credential(ctx, user, credID)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read credential")
	}
	if !ok {
		return false, nil
	}
	return cred.Valid(requestcontext.Height(ctx)), nil
}

// GetUserCredentialCount returns how many credentials were ever issued to the
// user; 0 when none. Revoked and expired credentials still count.
func (s *Service) GetUserCredentialCount(ctx context.Context, user id.Identity) (uint64, error) {
	count, err := s.store.CredentialCount(ctx, user)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read credential count")
	}
	return count, nil
}

func (s *Service) requireAdmin(ctx context.Context) (id.Identity, error) {
	caller := requestcontext.Caller(ctx)
	admin, err := s.store.Admin(ctx)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to read admin")
	}
	if caller.IsZero() || caller != admin {
		return "", dErrors.New(dErrors.CodeUnauthorized, "caller is not the registry admin")
	}
	return caller, nil
}

func (s *Service) emit(ctx context.Context, action audit.AuditEvent, subject, actor id.Identity, detail string) {
	if s.auditor == nil {
		return
	}
	event := audit.Event{
		Registry:  "credential",
		Subject:   subject,
		Actor:     actor,
		Action:    string(action),
		Detail:    detail,
		Height:    requestcontext.Height(ctx),
		RequestID: requestcontext.RequestID(ctx),
	}
	if err := s.auditor.Emit(ctx, event); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "audit emit failed", "action", action, "error", err)
	}
}
