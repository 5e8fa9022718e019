package domain

import (
	"unicode"
	"unicode/utf8"

	dErrors "fides/pkg/domain-errors"
)

// Identity is an opaque principal identifier. It is the key type for every
// registry: callers, users, verifiers, issuers, requesters, and analysts are
// all identities. Equality is the only structure the registries assume.
//
// Usage: construct via ParseIdentity at trust boundaries to enforce the
// invariants; direct casting bypasses validation.
type Identity string

// maxIdentityLen bounds identifiers so they stay usable as store keys.
const maxIdentityLen = 128

// ParseIdentity constructs an Identity from external input.
//
// Errors: returns CodeInvalidInput when the value is empty, oversized, or
// contains control characters; no other errors are expected.
func ParseIdentity(s string) (Identity, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "identity cannot be empty")
	}
	if len(s) > maxIdentityLen {
		return "", dErrors.New(dErrors.CodeInvalidInput, "identity exceeds maximum length")
	}
	if !utf8.ValidString(s) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "identity must be valid UTF-8")
	}
	for _, r := range s {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return "", dErrors.New(dErrors.CodeInvalidInput, "identity contains invalid characters")
		}
	}
	return Identity(s), nil
}

// IsZero reports whether the identity is unset.
func (i Identity) IsZero() bool { return i == "" }

// String returns the string representation of the identity.
func (i Identity) String() string { return string(i) }
