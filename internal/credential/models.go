package credential

import (
	id "fides/pkg/domain"
)

// Credential is a typed claim issued to a user. Ids are dense per user,
// starting at 1. Revocation is one-way; an expired credential keeps its
// record but no longer verifies.
type Credential struct {
	ID        uint64
	Type      id.CredentialType
	Issuer    id.Identity
	IssuedAt  uint64
	ExpiresAt uint64
	Revoked   bool
	DataHash  id.Hash
}

// Valid reports whether the credential verifies at the given height: issued,
// not revoked, and not yet expired.
func (c Credential) Valid(height uint64) bool {
	return !c.Revoked && c.ExpiresAt > height
}
