package verification

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	id "fides/pkg/domain"
	dErrors "fides/pkg/domain-errors"
	"fides/pkg/requestcontext"
)

const (
	adminID    = id.Identity("registry-admin")
	verifierID = id.Identity("verifier-1")
	userID     = id.Identity("user-1")
)

type VerificationServiceSuite struct {
	suite.Suite
	store   *InMemory
	service *Service
}

func (s *VerificationServiceSuite) SetupTest() {
	s.store = NewInMemory(adminID)
	s.service = NewService(s.store)
}

func TestVerificationServiceSuite(t *testing.T) {
	suite.Run(t, new(VerificationServiceSuite))
}

func (s *VerificationServiceSuite) ctxAs(caller id.Identity, height uint64) context.Context {
	ctx := requestcontext.WithCaller(context.Background(), caller)
	return requestcontext.WithHeight(ctx, height)
}

func (s *VerificationServiceSuite) docHash() id.Hash {
	h, err := id.ParseHash("00112233445566778899aabbccddeeff00112233445566778899aabbccddeeff")
	s.Require().NoError(err)
	return h
}

func (s *VerificationServiceSuite) submit(user id.Identity, height uint64) {
	err := s.service.SubmitForVerification(s.ctxAs(user, height), "Ada Lovelace", s.docHash(), "passport")
	s.Require().NoError(err)
}

// TestVerifierPool verifies admin-only membership management and toggle
// idempotency.
func (s *VerificationServiceSuite) TestVerifierPool() {
	s.Run("admin adds and removes verifiers", func() {
		ctx := s.ctxAs(adminID, 10)
		s.Require().NoError(s.service.AddTrustedVerifier(ctx, verifierID))
		active, err := s.store.IsVerifier(ctx, verifierID)
		s.Require().NoError(err)
		s.True(active)

		s.Require().NoError(s.service.RemoveTrustedVerifier(ctx, verifierID))
		active, err = s.store.IsVerifier(ctx, verifierID)
		s.Require().NoError(err)
		s.False(active)
	})

	s.Run("toggles are idempotent", func() {
		ctx := s.ctxAs(adminID, 10)
		s.Require().NoError(s.service.AddTrustedVerifier(ctx, verifierID))
		s.Require().NoError(s.service.AddTrustedVerifier(ctx, verifierID))
		active, err := s.store.IsVerifier(ctx, verifierID)
		s.Require().NoError(err)
		s.True(active)

		s.Require().NoError(s.service.RemoveTrustedVerifier(ctx, verifierID))
		s.Require().NoError(s.service.RemoveTrustedVerifier(ctx, verifierID))
		active, err = s.store.IsVerifier(ctx, verifierID)
		s.Require().NoError(err)
		s.False(active)
	})

	s.Run("non-admin cannot manage the pool", func() {
		err := s.service.AddTrustedVerifier(s.ctxAs(userID, 10), verifierID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}

// TestSubmission verifies the submission path including the intentional
// unconditional reset of prior state.
func (s *VerificationServiceSuite) TestSubmission() {
	s.Run("moves unknown user to pending", func() {
		s.submit(userID, 100)

		rec, err := s.service.GetVerificationStatus(context.Background(), userID)
		s.Require().NoError(err)
		s.Equal(StatusPending, rec.Status)
		s.Equal(uint64(100), rec.Timestamp)
		s.Nil(rec.Verifier)

		info, ok, err := s.service.GetUserInfo(context.Background(), userID)
		s.Require().NoError(err)
		s.True(ok)
		s.Equal("Ada Lovelace", info.Name)
	})

	s.Run("re-submission resets a verified user to pending", func() {
		s.submit(userID, 100)
		s.Require().NoError(s.service.AddTrustedVerifier(s.ctxAs(adminID, 101), verifierID))
		s.Require().NoError(s.service.VerifyUser(s.ctxAs(verifierID, 102), userID))

		s.submit(userID, 200)

		rec, err := s.service.GetVerificationStatus(context.Background(), userID)
		s.Require().NoError(err)
		s.Equal(StatusPending, rec.Status)
		s.Equal(uint64(200), rec.Timestamp)
		s.Nil(rec.Verifier)
	})

	s.Run("re-submission resets a rejected user to pending", func() {
		s.submit(userID, 100)
		s.Require().NoError(s.service.AddTrustedVerifier(s.ctxAs(adminID, 101), verifierID))
		s.Require().NoError(s.service.RejectVerification(s.ctxAs(verifierID, 102), userID))

		s.submit(userID, 200)

		rec, err := s.service.GetVerificationStatus(context.Background(), userID)
		s.Require().NoError(err)
		s.Equal(StatusPending, rec.Status)
	})

	s.Run("rejects oversized name", func() {
		long := make([]byte, MaxNameLen+1)
		for i := range long {
			long[i] = 'x'
		}
		err := s.service.SubmitForVerification(s.ctxAs(userID, 10), string(long), s.docHash(), "")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

// TestDecision verifies verifier gating and the pending-only transition rule.
func (s *VerificationServiceSuite) TestDecision() {
	s.Run("verify requires an active verifier", func() {
		s.submit(userID, 100)

		err := s.service.VerifyUser(s.ctxAs(verifierID, 101), userID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("removed verifier loses authority", func() {
		s.submit(userID, 100)
		adminCtx := s.ctxAs(adminID, 101)
		s.Require().NoError(s.service.AddTrustedVerifier(adminCtx, verifierID))
		s.Require().NoError(s.service.RemoveTrustedVerifier(adminCtx, verifierID))

		err := s.service.VerifyUser(s.ctxAs(verifierID, 102), userID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("verify fails unless pending", func() {
		s.Require().NoError(s.service.AddTrustedVerifier(s.ctxAs(adminID, 100), verifierID))

		// No submission at all: record defaults to Unverified.
		err := s.service.VerifyUser(s.ctxAs(verifierID, 101), id.Identity("never-submitted"))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidStatus))

		// Already decided: second decision must fail.
		s.submit(userID, 102)
		s.Require().NoError(s.service.VerifyUser(s.ctxAs(verifierID, 103), userID))
		err = s.service.RejectVerification(s.ctxAs(verifierID, 104), userID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidStatus))
	})

	s.Run("verified lifecycle end to end", func() {
		s.submit(userID, 100)
		s.Require().NoError(s.service.AddTrustedVerifier(s.ctxAs(adminID, 101), verifierID))
		s.Require().NoError(s.service.VerifyUser(s.ctxAs(verifierID, 105), userID))

		rec, err := s.service.GetVerificationStatus(context.Background(), userID)
		s.Require().NoError(err)
		s.Equal(StatusVerified, rec.Status)
		s.Equal(uint64(105), rec.Timestamp)
		s.Require().NotNil(rec.Verifier)
		s.Equal(verifierID, *rec.Verifier)

		verified, err := s.service.IsVerified(context.Background(), userID)
		s.Require().NoError(err)
		s.True(verified)
	})

	s.Run("rejected user is not verified", func() {
		s.submit(userID, 100)
		s.Require().NoError(s.service.AddTrustedVerifier(s.ctxAs(adminID, 101), verifierID))
		s.Require().NoError(s.service.RejectVerification(s.ctxAs(verifierID, 105), userID))

		verified, err := s.service.IsVerified(context.Background(), userID)
		s.Require().NoError(err)
		s.False(verified)
	})
}

// TestAdminTransfer verifies the admin singleton moves only by explicit
// transfer from the current admin.
func (s *VerificationServiceSuite) TestAdminTransfer() {
	s.Run("admin can hand over", func() {
		next := id.Identity("next-admin")
		s.Require().NoError(s.service.TransferAdmin(s.ctxAs(adminID, 10), next))

		// Old admin is locked out, new admin is in charge.
		err := s.service.AddTrustedVerifier(s.ctxAs(adminID, 11), verifierID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
		s.Require().NoError(s.service.AddTrustedVerifier(s.ctxAs(next, 12), verifierID))
	})

	s.Run("non-admin cannot transfer", func() {
		err := s.service.TransferAdmin(s.ctxAs(userID, 10), userID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}

// TestQueryDefaults verifies queries signal absence through documented
// defaults, never errors.
func (s *VerificationServiceSuite) TestQueryDefaults() {
	rec, err := s.service.GetVerificationStatus(context.Background(), id.Identity("nobody"))
	s.Require().NoError(err)
	s.Equal(StatusUnverified, rec.Status)
	s.Equal(uint64(0), rec.Timestamp)
	s.Nil(rec.Verifier)

	_, ok, err := s.service.GetUserInfo(context.Background(), id.Identity("nobody"))
	s.Require().NoError(err)
	s.False(ok)

	verified, err := s.service.IsVerified(context.Background(), id.Identity("nobody"))
	s.Require().NoError(err)
	s.False(verified)
}
