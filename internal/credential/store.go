package credential

import (
	"context"

	id "fides/pkg/domain"
)

// Store is the persistence port for the credential registry.
//
// AppendCredential must allocate the next dense id and write the credential
// in one atomic step; UpdateCredential must hold the lock across validate and
// mutate so revocation preconditions cannot race a concurrent write.
type Store interface {
	Admin(ctx context.Context) (id.Identity, error)
	SetAdmin(ctx context.Context, admin id.Identity) error

	IsAuthorizedIssuer(ctx context.Context, issuer id.Identity, credType id.CredentialType) (bool, error)
	SetIssuerAuthorization(ctx context.Context, issuer id.Identity, credType id.CredentialType, authorized bool) error

	// Credential reports absence via the bool; queries translate that into
	// their documented defaults, mutations into CredentialNotFound.
	Credential(ctx context.Context, user id.Identity, credID uint64) (Credential, bool, error)
	CredentialCount(ctx context.Context, user id.Identity) (uint64, error)

	// AppendCredential assigns id = count+1, stores the credential, and bumps
	// the count. The assigned id is returned.
	AppendCredential(ctx context.Context, user id.Identity, cred Credential) (uint64, error)

	// UpdateCredential applies validate-then-mutate atomically. Returns
	// sentinel.ErrNotFound when the credential does not exist.
	UpdateCredential(ctx context.Context, user id.Identity, credID uint64, validate func(Credential) error, mutate func(*Credential)) (Credential, error)
}
