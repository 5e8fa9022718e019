package risk

import (
	"context"
	"sync"

	id "fides/pkg/domain"
	"fides/pkg/platform/sentinel"
)

type activityKey struct {
	user       id.Identity
	activityID uint64
}

// InMemory is the default store. One mutex guards all registry state so id
// allocation, the entry write, and the score recompute form one atomic unit.
type InMemory struct {
	mu         sync.RWMutex
	admin      id.Identity
	analysts   map[id.Identity]bool
	thresholds map[id.ActivityType]Threshold
	scores     map[id.Identity]Score
	activities map[activityKey]ActivityLogEntry
	counts     map[id.Identity]uint64
}

// NewInMemory creates a store with the given bootstrap admin.
func NewInMemory(admin id.Identity) *InMemory {
	return &InMemory{
		admin:      admin,
		analysts:   make(map[id.Identity]bool),
		thresholds: make(map[id.ActivityType]Threshold),
		scores:     make(map[id.Identity]Score),
		activities: make(map[activityKey]ActivityLogEntry),
		counts:     make(map[id.Identity]uint64),
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

func (s *InMemory) IsAnalyst(_ context.Context, analyst id.Identity) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.analysts[analyst], nil
}

func (s *InMemory) SetAnalyst(_ context.Context, analyst id.Identity, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.analysts[analyst] = active
	return nil
}

func (s *InMemory) Threshold(_ context.Context, activityType id.ActivityType) (Threshold, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.thresholds[activityType]
	return t, ok, nil
}

func (s *InMemory) SetThreshold(_ context.Context, activityType id.ActivityType, t Threshold) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.thresholds[activityType] = t
	return nil
}

func (s *InMemory) Score(_ context.Context, user id.Identity) (Score, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	score, ok := s.scores[user]
	return score, ok, nil
}

func (s *InMemory) ActivityEntry(_ context.Context, user id.Identity, activityID uint64) (ActivityLogEntry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.activities[activityKey{user, activityID}]
	return entry, ok, nil
}

func (s *InMemory) ActivityCount(_ context.Context, user id.Identity) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.counts[user], nil
}

func (s *InMemory) AppendActivity(_ context.Context, user id.Identity, entry ActivityLogEntry, recompute func(old Score, ok bool) Score) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.counts[user] + 1
	entry.ID = next
	old, ok := s.scores[user]
	s.activities[activityKey{user, next}] = entry
	s.counts[user] = next
	s.scores[user] = recompute(old, ok)
	return next, nil
}

func (s *InMemory) UpdateScore(_ context.Context, user id.Identity, validate func(Score) error, mutate func(*Score)) (Score, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	score, ok := s.scores[user]
	if !ok {
		return Score{}, sentinel.ErrNotFound
	}
	if err := validate(score); err != nil {
		return Score{}, err
	}
	mutate(&score)
	s.scores[user] = score
	return score, nil
}
