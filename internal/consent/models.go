package consent

import (
	id "fides/pkg/domain"
)

// MaxPurposeLen bounds the free-text purpose field.
const MaxPurposeLen = 512

// Audit log actions.
const (
	ActionGranted = "GRANTED"
	ActionRevoked = "REVOKED"
)

// Scope identifies one consent relationship. All records, audit entries, and
// log-id counters are keyed by the full triple.
type Scope struct {
	User      id.Identity
	Requester id.Identity
	Type      id.ConsentType
}

// Record is the current consent state for one scope. A revoke keeps
// GrantedAt, ExpiresAt, and Purpose so the audit trail stays interpretable;
// a later re-grant overwrites the whole record.
type Record struct {
	Granted   bool
	GrantedAt uint64
	ExpiresAt *uint64
	RevokedAt *uint64
	Purpose   string
}

// Active reports whether the consent is usable at the given height: granted,
// not revoked, and either unexpired or without expiry.
func (r Record) Active(height uint64) bool {
	if !r.Granted || r.RevokedAt != nil {
		return false
	}
	return r.ExpiresAt == nil || *r.ExpiresAt > height
}

// AuditEntry is one immutable line of a scope's consent history. Log ids are
// dense per scope, starting at 1, and never reused.
type AuditEntry struct {
	LogID     uint64
	Action    string
	Timestamp uint64
	Actor     id.Identity
}
