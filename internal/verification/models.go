package verification

import (
	id "fides/pkg/domain"
)

// Status is the identity verification lifecycle state.
type Status uint8

const (
	StatusUnverified Status = iota
	StatusPending
	StatusVerified
	StatusRejected
)

// String returns the lifecycle state name for logs and wire responses.
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusVerified:
		return "verified"
	case StatusRejected:
		return "rejected"
	default:
		return "unverified"
	}
}

// Record captures where a user stands in the verification lifecycle.
// Verifier is set only when a trusted verifier decided the outcome; it is nil
// while the submission is pending or absent.
type Record struct {
	Status    Status
	Timestamp uint64
	Verifier  *id.Identity
}

// UserInfo holds the data a user submitted for verification. The document
// hash is opaque to the registry; it is stored and returned as-is.
type UserInfo struct {
	Name         string
	DocumentHash id.Hash
	Metadata     string
}

// Bounds for submitted text fields.
const (
	MaxNameLen     = 256
	MaxMetadataLen = 1024
)
