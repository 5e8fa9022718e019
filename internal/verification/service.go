package verification

import (
	"context"
	"log/slog"

	"fides/internal/platform/metrics"
	id "fides/pkg/domain"
	dErrors "fides/pkg/domain-errors"
	audit "fides/pkg/platform/audit"
	"fides/pkg/requestcontext"
)

// AuditPublisher records operational audit events. Emission happens after the
// state write succeeds; a trail failure is logged, never surfaced, so the
// registry outcome stays deterministic.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service implements the identity verification registry: a per-user
// submission → decision lifecycle gated by a pool of trusted verifiers.
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
	return &Service{
		store:   store,
		logger:  cfg.logger,
		auditor: cfg.auditor,
		metrics: cfg.metrics,
	}
}

// AddTrustedVerifier activates a verifier. Admin only; idempotent.
func (s *Service) AddTrustedVerifier(ctx context.Context, verifier id.Identity) error {
	caller, err := s.requireAdmin(ctx)
	if err != nil {
		return err
	}
	if verifier.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "verifier identity is required")
	}
	if err := s.store.SetVerifier(ctx, verifier, true); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to add verifier")
	}
	s.emit(ctx, audit.EventVerifierAdded, verifier, caller, "")
	return nil
}

// RemoveTrustedVerifier deactivates a verifier. Admin only; idempotent.
func (s *Service) RemoveTrustedVerifier(ctx context.Context, verifier id.Identity) error {
	caller, err := s.requireAdmin(ctx)
	if err != nil {
		return err
	}
	if verifier.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "verifier identity is required")
	}
	if err := s.store.SetVerifier(ctx, verifier, false); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to remove verifier")
	}
	s.emit(ctx, audit.EventVerifierRemoved, verifier, caller, "")
	return nil
}

// SubmitForVerification records the caller's identity documents and resets
// their lifecycle to pending. Re-submission always resets the flow, even from
// Verified or Rejected: a user who submits new documents restarts review.
func (s *Service) SubmitForVerification(ctx context.Context, name string, documentHash id.Hash, metadata string) error {
	caller := requestcontext.Caller(ctx)
	if caller.IsZero() {
		return dErrors.New(dErrors.CodeUnauthorized, "caller identity is required")
	}
	if name == "" || len(name) > MaxNameLen {
		return dErrors.New(dErrors.CodeValidation, "name must be non-empty and bounded")
	}
	if len(metadata) > MaxMetadataLen {
		return dErrors.New(dErrors.CodeValidation, "metadata exceeds maximum length")
	}

	info := UserInfo{Name: name, DocumentHash: documentHash, Metadata: metadata}
	rec := Record{Status: StatusPending, Timestamp: requestcontext.Height(ctx)}
	if err := s.store.PutSubmission(ctx, caller, info, rec); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store submission")
	}

	if s.metrics != nil {
		s.metrics.VerificationsSubmitted.Inc()
	}
	s.emit(ctx, audit.EventVerificationSubmitted, caller, caller, "")
	return nil
}

// VerifyUser marks a pending submission as verified. Caller must be an active
// trusted verifier; the record must be exactly Pending.
func (s *Service) VerifyUser(ctx context.Context, user id.Identity) error {
	return s.decide(ctx, user, StatusVerified)
}

// RejectVerification marks a pending submission as rejected under the same
// gating as VerifyUser.
func (s *Service) RejectVerification(ctx context.Context, user id.Identity) error {
	return s.decide(ctx, user, StatusRejected)
}

func (s *Service) decide(ctx context.Context, user id.Identity, outcome Status) error {
	caller := requestcontext.Caller(ctx)
	active, err := s.store.IsVerifier(ctx, caller)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check verifier status")
	}
	if caller.IsZero() || !active {
		return dErrors.New(dErrors.CodeUnauthorized, "caller is not an active trusted verifier")
	}

	height := requestcontext.Height(ctx)
	_, err = s.store.UpdateRecord(ctx, user,
		func(rec Record) error {
			if rec.Status != StatusPending {
				return dErrors.New(dErrors.CodeInvalidStatus, "verification is not pending")
			}
			return nil
		},
		func(rec *Record) {
			rec.Status = outcome
			rec.Timestamp = height
			verifier := caller
			rec.Verifier = &verifier
		},
	)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvalidStatus) {
			return err
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update verification record")
	}

	if s.metrics != nil {
		s.metrics.VerificationsCompleted.WithLabelValues(outcome.String()).Inc()
	}
	event := audit.EventUserVerified
	if outcome == StatusRejected {
		event = audit.EventVerificationRejected
	}
	s.emit(ctx, event, user, caller, "")
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

// GetVerificationStatus returns the user's verification record. Absence is
// not an error: unknown users report the Unverified default.
func (s *Service) GetVerificationStatus(ctx context.Context, user id.Identity) (Record, error) {
	rec, ok, err := s.store.Record(ctx, user)
	if err != nil {
		return Record{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read verification record")
	}
	if !ok {
		return Record{Status: StatusUnverified}, nil
	}
	return rec, nil
}

// GetUserInfo returns the user's submitted info; the bool reports presence.
func (s *Service) GetUserInfo(ctx context.Context, user id.Identity) (UserInfo, bool, error) {
	info, ok, err := s.store.UserInfo(ctx, user)
	if err != nil {
		return UserInfo{}, false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read user info")
	}
	return info, ok, nil
}

// IsVerified reports whether the user's status is exactly Verified.
func (s *Service) IsVerified(ctx context.Context, user id.Identity) (bool, error) {
	rec, err := s.GetVerificationStatus(ctx, user)
	if err != nil {
		return false, err
	}
	return rec.Status == StatusVerified, nil
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
		Registry:  "verification",
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
