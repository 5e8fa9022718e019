package consent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	id "fides/pkg/domain"
	dErrors "fides/pkg/domain-errors"
	"fides/pkg/requestcontext"
)

const (
	adminID     = id.Identity("registry-admin")
	userID      = id.Identity("user-1")
	requesterID = id.Identity("broker-1")
)

type ConsentServiceSuite struct {
	suite.Suite
	store   *InMemory
	service *Service
}

func (s *ConsentServiceSuite) SetupTest() {
	s.store = NewInMemory(adminID)
	s.service = NewService(s.store)
}

func (s *ConsentServiceSuite) SetupSubTest() {
	s.SetupTest()
}

func TestConsentServiceSuite(t *testing.T) {
	suite.Run(t, new(ConsentServiceSuite))
}

func (s *ConsentServiceSuite) ctxAs(caller id.Identity, height uint64) context.Context {
	ctx := requestcontext.WithCaller(context.Background(), caller)
	return requestcontext.WithHeight(ctx, height)
}

func (s *ConsentServiceSuite) grant(height uint64, expiresAt *uint64) {
	err := s.service.GrantConsent(s.ctxAs(userID, height), requesterID, id.ConsentTypeAccountData, "tax filing", expiresAt)
	s.Require().NoError(err)
}

func uptr(v uint64) *uint64 { return &v }

// TestGrant verifies the grant path, the re-grant guard, and expiry
// validation.
func (s *ConsentServiceSuite) TestGrant() {
	s.Run("grant writes the record and one audit entry", func() {
		s.grant(100, uptr(1100))

		rec, ok, err := s.service.GetConsentRecord(context.Background(), userID, requesterID, id.ConsentTypeAccountData)
		s.Require().NoError(err)
		s.Require().True(ok)
		s.True(rec.Granted)
		s.Equal(uint64(100), rec.GrantedAt)
		s.Require().NotNil(rec.ExpiresAt)
		s.Equal(uint64(1100), *rec.ExpiresAt)
		s.Nil(rec.RevokedAt)
		s.Equal("tax filing", rec.Purpose)

		count, err := s.service.GetAuditLogCount(context.Background(), userID, requesterID, id.ConsentTypeAccountData)
		s.Require().NoError(err)
		s.Equal(uint64(1), count)
	})

	s.Run("re-grant while granted fails even after expiry", func() {
		s.grant(100, uptr(200))

		// Height 300 is past expiry, but only a revoke clears the grant.
		err := s.service.GrantConsent(s.ctxAs(userID, 300), requesterID, id.ConsentTypeAccountData, "", nil)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeAlreadyGranted))
	})

	s.Run("expiry must be strictly in the future", func() {
		err := s.service.GrantConsent(s.ctxAs(userID, 100), requesterID, id.ConsentTypeAccountData, "", uptr(100))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidExpiry))

		// Failed grant must leave no trace in the audit log.
		count, err := s.service.GetAuditLogCount(context.Background(), userID, requesterID, id.ConsentTypeAccountData)
		s.Require().NoError(err)
		s.Equal(uint64(0), count)
	})

	s.Run("grant without expiry never expires", func() {
		s.grant(100, nil)

		active, err := s.service.CheckConsent(s.ctxAs(requesterID, 1<<40), userID, requesterID, id.ConsentTypeAccountData)
		s.Require().NoError(err)
		s.True(active)
	})

	s.Run("scopes are independent", func() {
		s.grant(100, nil)

		active, err := s.service.CheckConsent(s.ctxAs(requesterID, 101), userID, requesterID, id.ConsentTypeCreditHistory)
		s.Require().NoError(err)
		s.False(active)

		active, err = s.service.CheckConsent(s.ctxAs(requesterID, 101), userID, id.Identity("broker-2"), id.ConsentTypeAccountData)
		s.Require().NoError(err)
		s.False(active)
	})
}

// TestRevoke verifies revoke preconditions and field retention.
func (s *ConsentServiceSuite) TestRevoke() {
	s.Run("revoke keeps grant fields for the audit trail", func() {
		s.grant(100, uptr(1100))
		s.Require().NoError(s.service.RevokeConsent(s.ctxAs(userID, 200), requesterID, id.ConsentTypeAccountData))

		rec, ok, err := s.service.GetConsentRecord(context.Background(), userID, requesterID, id.ConsentTypeAccountData)
		s.Require().NoError(err)
		s.Require().True(ok)
		s.False(rec.Granted)
		s.Equal(uint64(100), rec.GrantedAt)
		s.Require().NotNil(rec.ExpiresAt)
		s.Equal(uint64(1100), *rec.ExpiresAt)
		s.Require().NotNil(rec.RevokedAt)
		s.Equal(uint64(200), *rec.RevokedAt)
		s.Equal("tax filing", rec.Purpose)
	})

	s.Run("revoke before any grant fails", func() {
		err := s.service.RevokeConsent(s.ctxAs(userID, 100), requesterID, id.ConsentTypeAccountData)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotGranted))
	})

	s.Run("double revoke fails", func() {
		s.grant(100, nil)
		s.Require().NoError(s.service.RevokeConsent(s.ctxAs(userID, 200), requesterID, id.ConsentTypeAccountData))

		err := s.service.RevokeConsent(s.ctxAs(userID, 300), requesterID, id.ConsentTypeAccountData)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeAlreadyRevoked))
	})

	s.Run("re-grant after revoke starts a fresh record", func() {
		s.grant(100, uptr(1100))
		s.Require().NoError(s.service.RevokeConsent(s.ctxAs(userID, 200), requesterID, id.ConsentTypeAccountData))
		s.Require().NoError(s.service.GrantConsent(s.ctxAs(userID, 300), requesterID, id.ConsentTypeAccountData, "new purpose", nil))

		rec, ok, err := s.service.GetConsentRecord(context.Background(), userID, requesterID, id.ConsentTypeAccountData)
		s.Require().NoError(err)
		s.Require().True(ok)
		s.True(rec.Granted)
		s.Equal(uint64(300), rec.GrantedAt)
		s.Nil(rec.ExpiresAt)
		s.Nil(rec.RevokedAt)
		s.Equal("new purpose", rec.Purpose)
	})
}

// TestCheckConsent verifies the activity predicate against expiry and
// revocation.
func (s *ConsentServiceSuite) TestCheckConsent() {
	s.grant(100, uptr(200))

	active, err := s.service.CheckConsent(s.ctxAs(requesterID, 150), userID, requesterID, id.ConsentTypeAccountData)
	s.Require().NoError(err)
	s.True(active)

	// Expiry height itself is already inactive.
	active, err = s.service.CheckConsent(s.ctxAs(requesterID, 200), userID, requesterID, id.ConsentTypeAccountData)
	s.Require().NoError(err)
	s.False(active)

	active, err = s.service.CheckConsent(s.ctxAs(requesterID, 150), id.Identity("nobody"), requesterID, id.ConsentTypeAccountData)
	s.Require().NoError(err)
	s.False(active)
}

// TestAuditLog verifies dense ids from 1, alternating actions, and
// non-decreasing timestamps across the full grant/revoke history.
func (s *ConsentServiceSuite) TestAuditLog() {
	s.grant(100, nil)
	s.Require().NoError(s.service.RevokeConsent(s.ctxAs(userID, 200), requesterID, id.ConsentTypeAccountData))
	s.grant(300, nil)
	s.Require().NoError(s.service.RevokeConsent(s.ctxAs(userID, 400), requesterID, id.ConsentTypeAccountData))

	count, err := s.service.GetAuditLogCount(context.Background(), userID, requesterID, id.ConsentTypeAccountData)
	s.Require().NoError(err)
	s.Require().Equal(uint64(4), count)

	var prevTimestamp uint64
	for logID := uint64(1); logID <= count; logID++ {
		entry, ok, err := s.service.GetAuditLogEntry(context.Background(), userID, requesterID, id.ConsentTypeAccountData, logID)
		s.Require().NoError(err)
		s.Require().True(ok, "log id %d must exist", logID)
		s.Equal(logID, entry.LogID)
		s.Equal(userID, entry.Actor)
		s.GreaterOrEqual(entry.Timestamp, prevTimestamp)
		prevTimestamp = entry.Timestamp

		want := ActionGranted
		if logID%2 == 0 {
			want = ActionRevoked
		}
		s.Equal(want, entry.Action)
	}

	// Ids outside 1..N do not resolve.
	_, ok, err := s.service.GetAuditLogEntry(context.Background(), userID, requesterID, id.ConsentTypeAccountData, 0)
	s.Require().NoError(err)
	s.False(ok)
	_, ok, err = s.service.GetAuditLogEntry(context.Background(), userID, requesterID, id.ConsentTypeAccountData, 5)
	s.Require().NoError(err)
	s.False(ok)
}

// TestAdminTransfer verifies the admin role moves only by explicit transfer.
func (s *ConsentServiceSuite) TestAdminTransfer() {
	next := id.Identity("next-admin")
	s.Require().NoError(s.service.TransferAdmin(s.ctxAs(adminID, 10), next))

	err := s.service.TransferAdmin(s.ctxAs(adminID, 11), adminID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))

	s.Require().NoError(s.service.TransferAdmin(s.ctxAs(next, 12), adminID))
}

// TestQueryDefaults verifies queries report absence via defaults.
func (s *ConsentServiceSuite) TestQueryDefaults() {
	_, ok, err := s.service.GetConsentRecord(context.Background(), userID, requesterID, id.ConsentTypeAccountData)
	s.Require().NoError(err)
	s.False(ok)

	count, err := s.service.GetAuditLogCount(context.Background(), userID, requesterID, id.ConsentTypeAccountData)
	s.Require().NoError(err)
	s.Equal(uint64(0), count)

	active, err := s.service.CheckConsent(s.ctxAs(requesterID, 100), userID, requesterID, id.ConsentTypeAccountData)
	s.Require().NoError(err)
	s.False(active)
}
