//go:build integration

package consent

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"fides/internal/platform/config"
	platformredis "fides/internal/platform/redis"
	id "fides/pkg/domain"
	"fides/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	container *containers.RedisContainer
	client    *platformredis.Client
	store     *RedisStore
}

func (s *RedisStoreSuite) SetupSuite() {
	s.container = containers.NewRedisContainer(s.T())

	client, err := platformredis.New(config.RedisConfig{
		URL:          s.container.Addr,
		PoolSize:     5,
		MinIdleConns: 1,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	s.Require().NoError(err)
	s.client = client
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.container.FlushAll(context.Background()))
	store, err := NewRedisStore(context.Background(), s.client, id.Identity("registry-admin"))
	s.Require().NoError(err)
	s.store = store
}

func (s *RedisStoreSuite) TearDownSuite() {
	if s.client != nil {
		_ = s.client.Close()
	}
}

func TestRedisStoreSuite(t *testing.T) {
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) scope() Scope {
	return Scope{User: "user-1", Requester: "broker-1", Type: id.ConsentTypeAccountData}
}

func (s *RedisStoreSuite) TestAdminBootstrap() {
	ctx := context.Background()

	admin, err := s.store.Admin(ctx)
	s.Require().NoError(err)
	s.Equal(id.Identity("registry-admin"), admin)

	// A restart must not undo a transfer.
	s.Require().NoError(s.store.SetAdmin(ctx, "next-admin"))
	again, err := NewRedisStore(ctx, s.client, id.Identity("registry-admin"))
	s.Require().NoError(err)
	admin, err = again.Admin(ctx)
	s.Require().NoError(err)
	s.Equal(id.Identity("next-admin"), admin)
}

func (s *RedisStoreSuite) TestUpdateScopeAppendsDenseLog() {
	ctx := context.Background()
	scope := s.scope()

	for i := uint64(1); i <= 3; i++ {
		logID, err := s.store.UpdateScope(ctx, scope, func(rec Record, ok bool) (Record, AuditEntry, error) {
			rec.Granted = !rec.Granted
			return rec, AuditEntry{Action: ActionGranted, Timestamp: 100 * i, Actor: "user-1"}, nil
		})
		s.Require().NoError(err)
		s.Equal(i, logID)
	}

	count, err := s.store.AuditCount(ctx, scope)
	s.Require().NoError(err)
	s.Equal(uint64(3), count)

	entry, ok, err := s.store.AuditEntry(ctx, scope, 2)
	s.Require().NoError(err)
	s.Require().True(ok)
	s.Equal(uint64(2), entry.LogID)
	s.Equal(uint64(200), entry.Timestamp)
}

func (s *RedisStoreSuite) TestUpdateScopeAbortsOnValidationError() {
	ctx := context.Background()
	scope := s.scope()

	_, err := s.store.UpdateScope(ctx, scope, func(rec Record, ok bool) (Record, AuditEntry, error) {
		return Record{}, AuditEntry{}, context.Canceled
	})
	s.Require().Error(err)

	// The aborted call must leave no record and no audit entry.
	_, ok, err := s.store.Record(ctx, scope)
	s.Require().NoError(err)
	s.False(ok)
	count, err := s.store.AuditCount(ctx, scope)
	s.Require().NoError(err)
	s.Equal(uint64(0), count)
}

func (s *RedisStoreSuite) TestRecordRoundTrip() {
	ctx := context.Background()
	scope := s.scope()
	expiry := uint64(1100)

	_, err := s.store.UpdateScope(ctx, scope, func(rec Record, ok bool) (Record, AuditEntry, error) {
		s.False(ok)
		return Record{Granted: true, GrantedAt: 100, ExpiresAt: &expiry, Purpose: "tax filing"},
			AuditEntry{Action: ActionGranted, Timestamp: 100, Actor: "user-1"}, nil
	})
	s.Require().NoError(err)

	rec, ok, err := s.store.Record(ctx, scope)
	s.Require().NoError(err)
	s.Require().True(ok)
	s.True(rec.Granted)
	s.Equal(uint64(100), rec.GrantedAt)
	s.Require().NotNil(rec.ExpiresAt)
	s.Equal(uint64(1100), *rec.ExpiresAt)
	s.Equal("tax filing", rec.Purpose)
}
