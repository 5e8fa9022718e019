package consent

import (
	"context"

	id "fides/pkg/domain"
)

// Store is the persistence port for the consent registry. Point lookups only.
//
// UpdateScope is the single write path: it must hold the scope's lock (or
// run the transaction) across op, so the record overwrite and the audit
// append land together or not at all, and the allocated log id stays dense.
type Store interface {
	Admin(ctx context.Context) (id.Identity, error)
	SetAdmin(ctx context.Context, admin id.Identity) error

	// Record reports absence via the bool; an absent record means the scope
	// has never been granted.
	Record(ctx context.Context, scope Scope) (Record, bool, error)

	AuditEntry(ctx context.Context, scope Scope, logID uint64) (AuditEntry, bool, error)
	AuditCount(ctx context.Context, scope Scope) (uint64, error)

	// UpdateScope calls op with the current record (ok=false when absent).
	// On nil error the returned record replaces the stored one and entry is
	// appended with the next dense log id, which UpdateScope assigns and
	// returns.
	UpdateScope(ctx context.Context, scope Scope, op func(rec Record, ok bool) (Record, AuditEntry, error)) (uint64, error)
}
