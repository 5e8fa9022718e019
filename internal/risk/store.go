package risk

import (
	"context"

	id "fides/pkg/domain"
)

// Store is the persistence port for the risk registry. Point lookups only.
//
// AppendActivity is the combined write path for activity logging: id
// allocation, the entry write, and the score recompute must land in one
// atomic step. UpdateScore covers the manual flag operations and must hold
// the lock across validate and mutate.
type Store interface {
	Admin(ctx context.Context) (id.Identity, error)
	SetAdmin(ctx context.Context, admin id.Identity) error

	IsAnalyst(ctx context.Context, analyst id.Identity) (bool, error)
	SetAnalyst(ctx context.Context, analyst id.Identity, active bool) error

	// Threshold reports absence via the bool; callers fall back to
	// DefaultThreshold.
	Threshold(ctx context.Context, activityType id.ActivityType) (Threshold, bool, error)
	SetThreshold(ctx context.Context, activityType id.ActivityType, t Threshold) error

	// Score reports absence via the bool; an absent score means the user has
	// never been scored.
	Score(ctx context.Context, user id.Identity) (Score, bool, error)

	ActivityEntry(ctx context.Context, user id.Identity, activityID uint64) (ActivityLogEntry, bool, error)
	ActivityCount(ctx context.Context, user id.Identity) (uint64, error)

	// AppendActivity assigns the next dense activity id, writes the entry,
	// and replaces the user's score with the value recompute returns, all in
	// one atomic step. recompute sees the prior score (ok=false when absent).
	AppendActivity(ctx context.Context, user id.Identity, entry ActivityLogEntry, recompute func(old Score, ok bool) Score) (uint64, error)

	// UpdateScore applies validate-then-mutate atomically. Returns
	// sentinel.ErrNotFound when the user has no score record.
	UpdateScore(ctx context.Context, user id.Identity, validate func(Score) error, mutate func(*Score)) (Score, error)
}
