package consent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	platformredis "fides/internal/platform/redis"
	id "fides/pkg/domain"
	"fides/pkg/platform/sentinel"
)

const (
	adminKey    = "consent:admin"
	maxCASTries = 5
)

// scopeState is the persisted form of one scope: current record plus the
// full audit log. Kept as a single JSON value so a grant or revoke replaces
// the scope with one compare-and-set write.
type scopeState struct {
	Record *Record      `json:"record,omitempty"`
	Log    []AuditEntry `json:"log,omitempty"`
}

// RedisStore persists consent state in Redis, one key per scope. Scope
// updates run under WATCH so the record overwrite and audit append commit
// together or retry.
type RedisStore struct {
	client *platformredis.Client
	admin  id.Identity
}

// NewRedisStore creates a store backed by the given client. The bootstrap
// admin is written only when no admin key exists yet, so restarts do not
// undo a transfer.
func NewRedisStore(ctx context.Context, client *platformredis.Client, admin id.Identity) (*RedisStore, error) {
	s := &RedisStore{client: client, admin: admin}
	if err := client.SetNX(ctx, adminKey, admin.String(), 0).Err(); err != nil {
		return nil, fmt.Errorf("bootstrap consent admin: %w", err)
	}
	return s, nil
}

// Identities cannot contain control characters, so the unit separator is a
// collision-free scope delimiter.
func scopeKey(scope Scope) string {
	return fmt.Sprintf("consent:scope:%s\x1f%s\x1f%d", scope.User, scope.Requester, scope.Type)
}

func (s *RedisStore) Admin(ctx context.Context) (id.Identity, error) {
	val, err := s.client.Get(ctx, adminKey).Result()
	if err != nil {
		return "", fmt.Errorf("read consent admin: %w", err)
	}
	return id.Identity(val), nil
}

func (s *RedisStore) SetAdmin(ctx context.Context, admin id.Identity) error {
	if err := s.client.Set(ctx, adminKey, admin.String(), 0).Err(); err != nil {
		return fmt.Errorf("write consent admin: %w", err)
	}
	return nil
}

func (s *RedisStore) Record(ctx context.Context, scope Scope) (Record, bool, error) {
	state, err := s.load(ctx, scopeKey(scope))
	if err != nil {
		return Record{}, false, err
	}
	if state.Record == nil {
		return Record{}, false, nil
	}
	return *state.Record, true, nil
}

func (s *RedisStore) AuditEntry(ctx context.Context, scope Scope, logID uint64) (AuditEntry, bool, error) {
	state, err := s.load(ctx, scopeKey(scope))
	if err != nil {
		return AuditEntry{}, false, err
	}
	if logID == 0 || logID > uint64(len(state.Log)) {
		return AuditEntry{}, false, nil
	}
	return state.Log[logID-1], true, nil
}

func (s *RedisStore) AuditCount(ctx context.Context, scope Scope) (uint64, error) {
	state, err := s.load(ctx, scopeKey(scope))
	if err != nil {
		return 0, err
	}
	return uint64(len(state.Log)), nil
}

func (s *RedisStore) UpdateScope(ctx context.Context, scope Scope, op func(rec Record, ok bool) (Record, AuditEntry, error)) (uint64, error) {
	key := scopeKey(scope)
	var logID uint64

	txn := func(tx *redis.Tx) error {
		state, err := s.loadTx(ctx, tx, key)
		if err != nil {
			return err
		}

		var rec Record
		ok := state.Record != nil
		if ok {
			rec = *state.Record
		}
		next, entry, err := op(rec, ok)
		if err != nil {
			return err
		}

		logID = uint64(len(state.Log)) + 1
		entry.LogID = logID
		state.Record = &next
		state.Log = append(state.Log, entry)

		raw, err := json.Marshal(state)
		if err != nil {
			return fmt.Errorf("marshal consent scope: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, raw, 0)
			return nil
		})
		return err
	}

	for i := 0; i < maxCASTries; i++ {
		err := s.client.Watch(ctx, txn, key)
		if err == nil {
			return logID, nil
		}
		if err == redis.TxFailedErr {
			continue
		}
		return 0, err
	}
	return 0, sentinel.ErrConflict
}

func (s *RedisStore) load(ctx context.Context, key string) (scopeState, error) {
	raw, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return scopeState{}, nil
	}
	if err != nil {
		return scopeState{}, fmt.Errorf("read consent scope: %w", err)
	}
	return decodeScope(raw)
}

func (s *RedisStore) loadTx(ctx context.Context, tx *redis.Tx, key string) (scopeState, error) {
	raw, err := tx.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return scopeState{}, nil
	}
	if err != nil {
		return scopeState{}, fmt.Errorf("read consent scope: %w", err)
	}
	return decodeScope(raw)
}

func decodeScope(raw []byte) (scopeState, error) {
	var state scopeState
	if err := json.Unmarshal(raw, &state); err != nil {
		return scopeState{}, fmt.Errorf("decode consent scope: %w", err)
	}
	return state, nil
}
