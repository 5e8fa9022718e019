package consent

import (
	"context"
	"fmt"
	"log/slog"

	"fides/internal/platform/metrics"
	id "fides/pkg/domain"
	dErrors "fides/pkg/domain-errors"
	audit "fides/pkg/platform/audit"
	"fides/pkg/requestcontext"
)

// AuditPublisher records operational audit events after successful writes.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service implements the consent registry: per-scope grant/revoke lifecycle
// with an append-only audit log. Users act only on their own consents; the
// admin exists solely to hand the role on.
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

// GrantConsent grants the caller's consent for requester to access one data
// category. A live grant must be revoked before it can be granted again;
// expiry, when present, must be strictly in the future. The record is
// overwritten whole and a GRANTED entry is appended in the same atomic step.
func (s *Service) GrantConsent(ctx context.Context, requester id.Identity, consentType id.ConsentType, purpose string, expiresAt *uint64) error {
	caller := requestcontext.Caller(ctx)
	if caller.IsZero() {
		return dErrors.New(dErrors.CodeUnauthorized, "caller identity is required")
	}
	if requester.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "requester identity is required")
	}
	if !consentType.IsValid() {
		return dErrors.New(dErrors.CodeInvalidInput, "unknown consent type")
	}
	if len(purpose) > MaxPurposeLen {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("purpose exceeds %d bytes", MaxPurposeLen))
	}

	height := requestcontext.Height(ctx)
	scope := Scope{User: caller, Requester: requester, Type: consentType}

	_, err := s.store.UpdateScope(ctx, scope, func(rec Record, ok bool) (Record, AuditEntry, error) {
		// Only an explicit revoke clears a grant; expiry does not.
		if ok && rec.Granted {
			return Record{}, AuditEntry{}, dErrors.New(dErrors.CodeAlreadyGranted, "consent is already granted")
		}
		if expiresAt != nil && *expiresAt <= height {
			return Record{}, AuditEntry{}, dErrors.New(dErrors.CodeInvalidExpiry, "expiry must be strictly in the future")
		}
		next := Record{
			Granted:   true,
			GrantedAt: height,
			ExpiresAt: expiresAt,
			Purpose:   purpose,
		}
		entry := AuditEntry{Action: ActionGranted, Timestamp: height, Actor: caller}
		return next, entry, nil
	})
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeAlreadyGranted) || dErrors.HasCode(err, dErrors.CodeInvalidExpiry) {
			return err
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to grant consent")
	}

	if s.metrics != nil {
		s.metrics.ConsentsGranted.Inc()
	}
	s.emit(ctx, audit.EventConsentGranted, caller, caller, fmt.Sprintf("requester=%s type=%d", requester, consentType))
	return nil
}

// RevokeConsent revokes the caller's prior grant for one scope. Revocation
// keeps GrantedAt, ExpiresAt, and Purpose and appends a REVOKED entry.
func (s *Service) RevokeConsent(ctx context.Context, requester id.Identity, consentType id.ConsentType) error {
	caller := requestcontext.Caller(ctx)
	if caller.IsZero() {
		return dErrors.New(dErrors.CodeUnauthorized, "caller identity is required")
	}
	if !consentType.IsValid() {
		return dErrors.New(dErrors.CodeInvalidInput, "unknown consent type")
	}

	height := requestcontext.Height(ctx)
	scope := Scope{User: caller, Requester: requester, Type: consentType}

	_, err := s.store.UpdateScope(ctx, scope, func(rec Record, ok bool) (Record, AuditEntry, error) {
		if !ok {
			return Record{}, AuditEntry{}, dErrors.New(dErrors.CodeNotGranted, "consent was never granted")
		}
		if rec.RevokedAt != nil {
			return Record{}, AuditEntry{}, dErrors.New(dErrors.CodeAlreadyRevoked, "consent is already revoked")
		}
		if !rec.Granted {
			return Record{}, AuditEntry{}, dErrors.New(dErrors.CodeNotGranted, "consent is not granted")
		}
		rec.Granted = false
		rec.RevokedAt = &height
		entry := AuditEntry{Action: ActionRevoked, Timestamp: height, Actor: caller}
		return rec, entry, nil
	})
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotGranted) || dErrors.HasCode(err, dErrors.CodeAlreadyRevoked) {
			return err
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke consent")
	}

	if s.metrics != nil {
		s.metrics.ConsentsRevoked.Inc()
	}
	s.emit(ctx, audit.EventConsentRevoked, caller, caller, fmt.Sprintf("requester=%s type=%d", requester, consentType))
	return nil
}

// TransferAdmin replaces the registry admin. Current admin only.
func (s *Service) TransferAdmin(ctx context.Context, newAdmin id.Identity) error {
	caller := requestcontext.Caller(ctx)
	admin, err := s.store.Admin(ctx)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to read admin")
	}
	if caller.IsZero() || caller != admin {
		return dErrors.New(dErrors.CodeUnauthorized, "caller is not the registry admin")
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

// CheckConsent reports whether an active, unexpired grant exists for the
// scope at the current height. Absent scopes are simply false.
func (s *Service) CheckConsent(ctx context.Context, user, requester id.Identity, consentType id.ConsentType) (bool, error) {
	rec, ok, err := s.store.Record(ctx, Scope{User: user, Requester: requester, Type: consentType})
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read consent record")
	}
	if !ok {
		return false, nil
	}
	return rec.Active(requestcontext.Height(ctx)), nil
}

// GetConsentRecord returns the scope's record; the bool reports presence.
func (s *Service) GetConsentRecord(ctx context.Context, user, requester id.Identity, consentType id.ConsentType) (Record, bool, error) {
	rec, ok, err := s.store.Record(ctx, Scope{User: user, Requester: requester, Type: consentType})
	if err != nil {
		return Record{}, false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read consent record")
	}
	return rec, ok, nil
}

// GetAuditLogEntry returns one audit entry by log id; the bool reports
// presence.
func (s *Service) GetAuditLogEntry(ctx context.Context, user, requester id.Identity, consentType id.ConsentType, logID uint64) (AuditEntry, bool, error) {
	entry, ok, err := s.store.AuditEntry(ctx, Scope{User: user, Requester: requester, Type: consentType}, logID)
	if err != nil {
		return AuditEntry{}, false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read audit entry")
	}
	return entry, ok, nil
}

// GetAuditLogCount returns the number of audit entries for the scope; 0 when
// none were ever logged.
func (s *Service) GetAuditLogCount(ctx context.Context, user, requester id.Identity, consentType id.ConsentType) (uint64, error) {
	count, err := s.store.AuditCount(ctx, Scope{User: user, Requester: requester, Type: consentType})
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read audit count")
	}
	return count, nil
}

func (s *Service) emit(ctx context.Context, action audit.AuditEvent, subject, actor id.Identity, detail string) {
	if s.auditor == nil {
		return
	}
	event := audit.Event{
		Registry:  "consent",
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
