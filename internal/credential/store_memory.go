package credential

import (
	"context"
	"sync"

	id "fides/pkg/domain"
	"fides/pkg/platform/sentinel"
)

type issuerKey struct {
	issuer   id.Identity
	credType id.CredentialType
}

type credKey struct {
	user   id.Identity
	credID uint64
}

// InMemory is the default store. One mutex guards all registry state so id
// allocation and writes are a single atomic unit.
type InMemory struct {
	mu          sync.RWMutex
	admin       id.Identity
	issuers     map[issuerKey]bool
	credentials map[credKey]Credential
	counts      map[id.Identity]uint64
}

// NewInMemory creates a store with the given bootstrap admin.
func NewInMemory(admin id.Identity) *InMemory {
	return &InMemory{
		admin:       admin,
		issuers:     make(map[issuerKey]bool),
		credentials: make(map[credKey]Credential),
		counts:      make(map[id.Identity]uint64),
	}
}

func (s *InMemory) Admin(_ context.Context) (id.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.admin, nil
}

func (s *InMemory) SetAdmin(_ context.Context, admin id.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.admin = admin
	return nil
}

func (s *InMemory) IsAuthorizedIssuer(_ context.Context, issuer id.Identity, credType id.CredentialType) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.issuers[issuerKey{issuer, credType}], nil
}

func (s *InMemory) SetIssuerAuthorization(_ context.Context, issuer id.Identity, credType id.CredentialType, authorized bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issuers[issuerKey{issuer, credType}] = authorized
	return nil
}

func (s *InMemory) Credential(_ context.Context, user id.Identity, credID uint64) (Credential, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cred, ok := s.credentials[credKey{user, credID}]
	return cred, ok, nil
}

func (s *InMemory) CredentialCount(_ context.Context, user id.Identity) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.counts[user], nil
}

func (s *InMemory) AppendCredential(_ context.Context, user id.Identity, cred Credential) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.counts[user] + 1
	cred.ID = next
	s.credentials[credKey{user, next}] = cred
	s.counts[user] = next
	return next, nil
}

func (s *InMemory) UpdateCredential(_ context.Context, user id.Identity, credID uint64, validate func(Credential) error, mutate func(*Credential)) (Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cred, ok := s.credentials[credKey{user, credID}]
	if !ok {
		return Credential{}, sentinel.ErrNotFound
	}
	if err := validate(cred); err != nil {
		return Credential{}, err
	}
	mutate(&cred)
	s.credentials[credKey{user, credID}] = cred
	return cred, nil
}
