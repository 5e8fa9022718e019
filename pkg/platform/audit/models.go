package audit

import (
	"context"
	"time"

	id "fides/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies, storage backends, and routing.
type EventCategory string

const (
	// CategoryCompliance covers events with legal/regulatory significance.
	// These require tamper-proof storage and long retention (e.g., 7 years).
	// Examples: consent changes, verification outcomes, credential issuance.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers events relevant to security monitoring and forensics.
	// Examples: admin transfers, role changes, fraud flags.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers events useful for debugging and operational
	// visibility. These can be sampled or aggregated with shorter retention.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from registry services to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	Registry  string      // which registry emitted the event
	Subject   id.Identity // the user the action concerns
	Actor     id.Identity // the principal who performed the action
	Action    string
	Detail    string // free-form context (category code, credential id, ...)
	Height    uint64 // logical clock height of the originating call
	RequestID string // correlation ID from the request context
}

type AuditEvent string

const (
	// Verification registry events
	EventVerifierAdded         AuditEvent = "verifier_added"
	EventVerifierRemoved       AuditEvent = "verifier_removed"
	EventVerificationSubmitted AuditEvent = "verification_submitted"
	EventUserVerified          AuditEvent = "user_verified"
	EventVerificationRejected  AuditEvent = "verification_rejected"

	// Credential registry events
	EventIssuerAuthorized AuditEvent = "issuer_authorized"
	EventIssuerRevoked    AuditEvent = "issuer_revoked"
	EventCredentialIssued AuditEvent = "credential_issued"
	EventCredentialVoided AuditEvent = "credential_revoked"

	// Consent registry events
	EventConsentGranted AuditEvent = "consent_granted"
	EventConsentRevoked AuditEvent = "consent_revoked"

	// Risk registry events
	EventAnalystAdded    AuditEvent = "analyst_added"
	EventAnalystRemoved  AuditEvent = "analyst_removed"
	EventThresholdSet    AuditEvent = "risk_threshold_set"
	EventActivityLogged  AuditEvent = "activity_logged"
	EventUserFlagged     AuditEvent = "user_flagged"
	EventUserFlagCleared AuditEvent = "user_flag_cleared"

	// Shared events
	EventAdminTransferred AuditEvent = "admin_transferred"
)

// eventCategories maps each audit event to its category.
var eventCategories = map[AuditEvent]EventCategory{
	EventVerificationSubmitted: CategoryCompliance,
	EventUserVerified:          CategoryCompliance,
	EventVerificationRejected:  CategoryCompliance,
	EventCredentialIssued:      CategoryCompliance,
	EventCredentialVoided:      CategoryCompliance,
	EventConsentGranted:        CategoryCompliance,
	EventConsentRevoked:        CategoryCompliance,

	EventVerifierAdded:    CategorySecurity,
	EventVerifierRemoved:  CategorySecurity,
	EventIssuerAuthorized: CategorySecurity,
	EventIssuerRevoked:    CategorySecurity,
	EventAnalystAdded:     CategorySecurity,
	EventAnalystRemoved:   CategorySecurity,
	EventUserFlagged:      CategorySecurity,
	EventUserFlagCleared:  CategorySecurity,
	EventAdminTransferred: CategorySecurity,

	EventThresholdSet:   CategoryOperations,
	EventActivityLogged: CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store persists audit events. Implementations must be append-only.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListBySubject(ctx context.Context, subject id.Identity) ([]Event, error)
}
