package risk

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

// Service implements the risk registry: per-user activity logging with a
// rolling score, threshold classification, and analyst-driven flagging.
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

// LogActivityResult is returned by LogActivity.
type LogActivityResult struct {
	ActivityID uint64
	Level      RiskLevel
}

// AddFraudAnalyst adds an analyst to the pool. Admin only; idempotent.
func (s *Service) AddFraudAnalyst(ctx context.Context, analyst id.Identity) error {
	return s.setAnalyst(ctx, analyst, true, audit.EventAnalystAdded)
}

// RemoveFraudAnalyst removes an analyst from the pool. Admin only; idempotent.
func (s *Service) RemoveFraudAnalyst(ctx context.Context, analyst id.Identity) error {
	return s.setAnalyst(ctx, analyst, false, audit.EventAnalystRemoved)
}

func (s *Service) setAnalyst(ctx context.Context, analyst id.Identity, active bool, event audit.AuditEvent) error {
	caller, err := s.requireAdmin(ctx)
	if err != nil {
		return err
	}
	if analyst.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "analyst identity is required")
	}
	if err := s.store.SetAnalyst(ctx, analyst, active); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update analyst pool")
	}
	s.emit(ctx, event, analyst, caller, "")
	return nil
}

// SetRiskThreshold configures the classification boundaries for one activity
// type. Admin only; medium must be strictly below high.
func (s *Service) SetRiskThreshold(ctx context.Context, activityType id.ActivityType, medium, high uint8) error {
	caller, err := s.requireAdmin(ctx)
	if err != nil {
		return err
	}
	if !activityType.IsValid() {
		return dErrors.New(dErrors.CodeInvalidInput, "unknown activity type")
	}
	if medium >= high || high > MaxScore {
		return dErrors.New(dErrors.CodeInvalidRiskLevel, "medium threshold must be strictly below high")
	}
	if err := s.store.SetThreshold(ctx, activityType, Threshold{Medium: medium, High: high}); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to set threshold")
	}
	s.emit(ctx, audit.EventThresholdSet, "", caller, fmt.Sprintf("type=%d medium=%d high=%d", activityType, medium, high))
	return nil
}

// LogActivity appends an activity entry for user and folds riskScore into
// the rolling score: newScore = floor((oldScore + riskScore) / 2), old score
// defaulting to 0 for a first-time user. The new score is classified against
// the activity type's thresholds and the flag tracks the High band. Allowed
// for the admin, an active analyst, or the user themself.
func (s *Service) LogActivity(ctx context.Context, user id.Identity, activityType id.ActivityType, riskScore uint8, metadata string, ipHash id.Hash) (LogActivityResult, error) {
	caller := requestcontext.Caller(ctx)
	allowed, err := s.canScore(ctx, caller, user)
	if err != nil {
		return LogActivityResult{}, err
	}
	if !allowed {
		return LogActivityResult{}, dErrors.New(dErrors.CodeUnauthorized, "caller may not log activity for this user")
	}
	if user.IsZero() {
		return LogActivityResult{}, dErrors.New(dErrors.CodeValidation, "user identity is required")
	}
	if !activityType.IsValid() {
		return LogActivityResult{}, dErrors.New(dErrors.CodeInvalidInput, "unknown activity type")
	}
	if riskScore > MaxScore {
		return LogActivityResult{}, dErrors.New(dErrors.CodeValidation, fmt.Sprintf("risk score exceeds %d", MaxScore))
	}
	if len(metadata) > MaxMetadataLen {
		return LogActivityResult{}, dErrors.New(dErrors.CodeValidation, fmt.Sprintf("metadata exceeds %d bytes", MaxMetadataLen))
	}

	threshold, ok, err := s.store.Threshold(ctx, activityType)
	if err != nil {
		return LogActivityResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read threshold")
	}
	if !ok {
		threshold = DefaultThreshold
	}

	height := requestcontext.Height(ctx)
	entry := ActivityLogEntry{
		Type:      activityType,
		Timestamp: height,
		RiskScore: riskScore,
		Metadata:  metadata,
		IPHash:    ipHash,
	}

	var level RiskLevel
	activityID, err := s.store.AppendActivity(ctx, user, entry, func(old Score, _ bool) Score {
		newScore := uint8((uint16(old.Score) + uint16(riskScore)) / 2)
		level = threshold.Classify(newScore)
		return Score{
			Score:       newScore,
			LastUpdated: height,
			Flagged:     level == LevelHigh,
		}
	})
	if err != nil {
		return LogActivityResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to append activity")
	}

	if s.metrics != nil {
		s.metrics.ActivitiesLogged.WithLabelValues(level.String()).Inc()
		if level == LevelHigh {
			s.metrics.UsersFlagged.Inc()
		}
	}
	s.emit(ctx, audit.EventActivityLogged, user, caller, fmt.Sprintf("id=%d type=%d level=%s", activityID, activityType, level))
	if level == LevelHigh {
		s.emit(ctx, audit.EventUserFlagged, user, caller, "scored into high band")
	}
	return LogActivityResult{ActivityID: activityID, Level: level}, nil
}

// FlagUser manually sets the flag on a scored user. Admin or active analyst
// only; score and last-updated stay untouched.
func (s *Service) FlagUser(ctx context.Context, user id.Identity) error {
	if err := s.setFlag(ctx, user, true, audit.EventUserFlagged); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.UsersFlagged.Inc()
	}
	return nil
}

// ClearUserFlag manually clears the flag. Admin or active analyst only.
func (s *Service) ClearUserFlag(ctx context.Context, user id.Identity) error {
	return s.setFlag(ctx, user, false, audit.EventUserFlagCleared)
}

func (s *Service) setFlag(ctx context.Context, user id.Identity, flagged bool, event audit.AuditEvent) error {
	caller := requestcontext.Caller(ctx)
	allowed, err := s.canScore(ctx, caller, "")
	if err != nil {
		return err
	}
	if !allowed {
		return dErrors.New(dErrors.CodeUnauthorized, "caller is not the admin or an active analyst")
	}

	_, err = s.store.UpdateScore(ctx, user,
		func(Score) error { return nil },
		func(score *Score) { score.Flagged = flagged },
	)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "user has no risk score")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update flag")
	}
	s.emit(ctx, event, user, caller, "manual")
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

// GetUserRiskScore returns the user's score record; the bool reports
// presence.
func (s *Service) GetUserRiskScore(ctx context.Context, user id.Identity) (Score, bool, error) {
	score, ok, err := s.store.Score(ctx, user)
	if err != nil {
		return Score{}, false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read risk score")
	}
	return score, ok, nil
}

// GetActivityLog returns one activity entry; the bool reports presence.
func (s *Service) GetActivityLog(ctx context.Context, user id.Identity, activityID uint64) (ActivityLogEntry, bool, error) {
	entry, ok, err := s.store.ActivityEntry(ctx, user, activityID)
	if err != nil {
		return ActivityLogEntry{}, false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read activity entry")
	}
	return entry, ok, nil
}

// GetActivityCount returns how many activities were logged for the user;
// 0 when none.
func (s *Service) GetActivityCount(ctx context.Context, user id.Identity) (uint64, error) {
	count, err := s.store.ActivityCount(ctx, user)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read activity count")
	}
	return count, nil
}

// IsUserFlagged reports the flag; false when the user has no score record.
func (s *Service) IsUserFlagged(ctx context.Context, user id.Identity) (bool, error) {
	score, ok, err := s.store.Score(ctx, user)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read risk score")
	}
	return ok && score.Flagged, nil
}

// canScore reports whether caller holds scoring authority: admin, active
// analyst, or (when selfOK is non-zero) the subject themself.
func (s *Service) canScore(ctx context.Context, caller, selfOK id.Identity) (bool, error) {
	if caller.IsZero() {
		return false, nil
	}
	if !selfOK.IsZero() && caller == selfOK {
		return true, nil
	}
	admin, err := s.store.Admin(ctx)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read admin")
	}
	if caller == admin {
		return true, nil
	}
	active, err := s.store.IsAnalyst(ctx, caller)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check analyst pool")
	}
	return active, nil
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
		Registry:  "risk",
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
