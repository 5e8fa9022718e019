package verification

import (
	"context"
	"sync"

	id "fides/pkg/domain"
)

// InMemory is the default store. All registry state sits behind one mutex so
// each operation's reads and writes are a single atomic unit.
type InMemory struct {
	mu        sync.RWMutex
	admin     id.Identity
	verifiers map[id.Identity]bool
	records   map[id.Identity]Record
	userInfo  map[id.Identity]UserInfo
}

// NewInMemory creates a store with the given bootstrap admin.
func NewInMemory(admin id.Identity) *InMemory {
	return &InMemory{
		admin:     admin,
		verifiers: make(map[id.Identity]bool),
		records:   make(map[id.Identity]Record),
		userInfo:  make(map[id.Identity]UserInfo),
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

func (s *InMemory) IsVerifier(_ context.Context, verifier id.Identity) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.verifiers[verifier], nil
}

func (s *InMemory) SetVerifier(_ context.Context, verifier id.Identity, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.verifiers[verifier] = active
	return nil
}

func (s *InMemory) Record(_ context.Context, user id.Identity) (Record, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[user]
	return rec, ok, nil
}

func (s *InMemory) UserInfo(_ context.Context, user id.Identity) (UserInfo, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	info, ok := s.userInfo[user]
	return info, ok, nil
}

func (s *InMemory) PutSubmission(_ context.Context, user id.Identity, info UserInfo, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userInfo[user] = info
	s.records[user] = rec
	return nil
}

func (s *InMemory) UpdateRecord(_ context.Context, user id.Identity, validate func(Record) error, mutate func(*Record)) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.records[user] // zero value is the Unverified default
	if err := validate(rec); err != nil {
		return Record{}, err
	}
	mutate(&rec)
	s.records[user] = rec
	return rec, nil
}
