package consent

import (
	"context"
	"sync"

	id "fides/pkg/domain"
)

// InMemory is the default store. One mutex guards all scopes so the record
// overwrite and the audit append of a single call form one atomic unit.
type InMemory struct {
	mu      sync.RWMutex
	admin   id.Identity
	records map[Scope]Record
	logs    map[Scope][]AuditEntry
}

// NewInMemory creates a store with the given bootstrap admin.
func NewInMemory(admin id.Identity) *InMemory {
	return &InMemory{
		admin:   admin,
		records: make(map[Scope]Record),
		logs:    make(map[Scope][]AuditEntry),
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

func (s *InMemory) Record(_ context.Context, scope Scope) (Record, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[scope]
	return rec, ok, nil
}

func (s *InMemory) AuditEntry(_ context.Context, scope Scope, logID uint64) (AuditEntry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	log := s.logs[scope]
	if logID == 0 || logID > uint64(len(log)) {
		return AuditEntry{}, false, nil
	}
	return log[logID-1], true, nil
}

func (s *InMemory) AuditCount(_ context.Context, scope Scope) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint64(len(s.logs[scope])), nil
}

func (s *InMemory) UpdateScope(_ context.Context, scope Scope, op func(rec Record, ok bool) (Record, AuditEntry, error)) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[scope]
	next, entry, err := op(rec, ok)
	if err != nil {
		return 0, err
	}
	logID := uint64(len(s.logs[scope])) + 1
	entry.LogID = logID
	s.records[scope] = next
	s.logs[scope] = append(s.logs[scope], entry)
	return logID, nil
}
