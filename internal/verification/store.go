package verification

import (
	"context"

	id "fides/pkg/domain"
)

// Store is the persistence port for the verification registry. Point lookups
// only; enumeration happens through the lifecycle fields themselves.
//
// Mutations must be atomic: UpdateRecord holds the store's lock (or
// transaction) across both the validate and mutate callbacks so a failed
// precondition leaves no partial state.
type Store interface {
	Admin(ctx context.Context) (id.Identity, error)
	SetAdmin(ctx context.Context, admin id.Identity) error

	IsVerifier(ctx context.Context, verifier id.Identity) (bool, error)
	SetVerifier(ctx context.Context, verifier id.Identity, active bool) error

	// Record returns the verification record for user, reporting absence via
	// the bool instead of an error: an absent record means Unverified.
	Record(ctx context.Context, user id.Identity) (Record, bool, error)
	UserInfo(ctx context.Context, user id.Identity) (UserInfo, bool, error)

	// PutSubmission overwrites both the user info and the verification record
	// in one atomic write.
	PutSubmission(ctx context.Context, user id.Identity, info UserInfo, rec Record) error

	// UpdateRecord applies validate-then-mutate atomically. An absent record
	// is materialized as the zero (Unverified) record before validation, so
	// lifecycle checks see the documented default.
	UpdateRecord(ctx context.Context, user id.Identity, validate func(Record) error, mutate func(*Record)) (Record, error)
}
