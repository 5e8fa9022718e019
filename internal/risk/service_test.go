package risk

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	id "fides/pkg/domain"
	dErrors "fides/pkg/domain-errors"
	"fides/pkg/requestcontext"
)

const (
	adminID   = id.Identity("registry-admin")
	analystID = id.Identity("analyst-1")
	userID    = id.Identity("user-1")
)

type RiskServiceSuite struct {
	suite.Suite
	store   *InMemory
	service *Service
}

func (s *RiskServiceSuite) SetupTest() {
	s.store = NewInMemory(adminID)
	s.service = NewService(s.store)
}

func (s *RiskServiceSuite) SetupSubTest() {
	s.SetupTest()
}

func TestRiskServiceSuite(t *testing.T) {
	suite.Run(t, new(RiskServiceSuite))
}

func (s *RiskServiceSuite) ctxAs(caller id.Identity, height uint64) context.Context {
	ctx := requestcontext.WithCaller(context.Background(), caller)
	return requestcontext.WithHeight(ctx, height)
}

func (s *RiskServiceSuite) ipHash() id.Hash {
	h, err := id.ParseHash("aa00aa00aa00aa00aa00aa00aa00aa00aa00aa00aa00aa00aa00aa00aa00aa00")
	s.Require().NoError(err)
	return h
}

func (s *RiskServiceSuite) log(caller id.Identity, height uint64, score uint8) LogActivityResult {
	res, err := s.service.LogActivity(s.ctxAs(caller, height), userID, id.ActivityTypeLogin, score, "web login", s.ipHash())
	s.Require().NoError(err)
	return res
}

// TestAnalystPool verifies admin-only membership management.
func (s *RiskServiceSuite) TestAnalystPool() {
	s.Run("admin adds and removes analysts", func() {
		ctx := s.ctxAs(adminID, 10)
		s.Require().NoError(s.service.AddFraudAnalyst(ctx, analystID))
		active, err := s.store.IsAnalyst(ctx, analystID)
		s.Require().NoError(err)
		s.True(active)

		s.Require().NoError(s.service.RemoveFraudAnalyst(ctx, analystID))
		active, err = s.store.IsAnalyst(ctx, analystID)
		s.Require().NoError(err)
		s.False(active)
	})

	s.Run("non-admin cannot manage the pool", func() {
		err := s.service.AddFraudAnalyst(s.ctxAs(userID, 10), analystID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}

// TestThresholds verifies threshold validation and the unset fallback.
func (s *RiskServiceSuite) TestThresholds() {
	s.Run("admin sets valid thresholds", func() {
		s.Require().NoError(s.service.SetRiskThreshold(s.ctxAs(adminID, 10), id.ActivityTypeLogin, 20, 40))

		t, ok, err := s.store.Threshold(context.Background(), id.ActivityTypeLogin)
		s.Require().NoError(err)
		s.Require().True(ok)
		s.Equal(uint8(20), t.Medium)
		s.Equal(uint8(40), t.High)
	})

	s.Run("medium must be strictly below high", func() {
		err := s.service.SetRiskThreshold(s.ctxAs(adminID, 10), id.ActivityTypeLogin, 50, 50)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidRiskLevel))

		err = s.service.SetRiskThreshold(s.ctxAs(adminID, 10), id.ActivityTypeLogin, 80, 40)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidRiskLevel))
	})

	s.Run("non-admin cannot set thresholds", func() {
		err := s.service.SetRiskThreshold(s.ctxAs(analystID, 10), id.ActivityTypeLogin, 20, 40)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}

// TestLogActivity verifies gating, the rolling mean, and classification.
func (s *RiskServiceSuite) TestLogActivity() {
	s.Run("rolling mean truncates as documented", func() {
		res := s.log(userID, 100, 30)
		s.Equal(uint64(1), res.ActivityID)
		s.Equal(LevelLow, res.Level)

		score, ok, err := s.service.GetUserRiskScore(context.Background(), userID)
		s.Require().NoError(err)
		s.Require().True(ok)
		s.Equal(uint8(15), score.Score)
		s.Equal(uint64(100), score.LastUpdated)
		s.False(score.Flagged)

		res = s.log(userID, 200, 90)
		s.Equal(uint64(2), res.ActivityID)
		s.Equal(LevelMedium, res.Level)

		score, _, err = s.service.GetUserRiskScore(context.Background(), userID)
		s.Require().NoError(err)
		s.Equal(uint8(52), score.Score)
		s.Equal(uint64(200), score.LastUpdated)
	})

	s.Run("high classification flags the user", func() {
		s.log(userID, 100, 100) // score 50
		res := s.log(userID, 200, 100) // score 75

		s.Equal(LevelHigh, res.Level)
		flagged, err := s.service.IsUserFlagged(context.Background(), userID)
		s.Require().NoError(err)
		s.True(flagged)
	})

	s.Run("scoring back below high clears the flag", func() {
		s.log(userID, 100, 100)
		s.log(userID, 200, 100) // flagged at 75

		res := s.log(userID, 300, 0) // score 37
		s.Equal(LevelLow, res.Level)

		flagged, err := s.service.IsUserFlagged(context.Background(), userID)
		s.Require().NoError(err)
		s.False(flagged)
	})

	s.Run("custom thresholds drive classification", func() {
		s.Require().NoError(s.service.SetRiskThreshold(s.ctxAs(adminID, 10), id.ActivityTypeLogin, 10, 20))

		res := s.log(userID, 100, 50) // score 25, high under 10/20
		s.Equal(LevelHigh, res.Level)
	})

	s.Run("analyst and admin may log for any user", func() {
		s.Require().NoError(s.service.AddFraudAnalyst(s.ctxAs(adminID, 10), analystID))

		_, err := s.service.LogActivity(s.ctxAs(analystID, 100), userID, id.ActivityTypeTransaction, 10, "", s.ipHash())
		s.Require().NoError(err)
		_, err = s.service.LogActivity(s.ctxAs(adminID, 101), userID, id.ActivityTypeTransaction, 10, "", s.ipHash())
		s.Require().NoError(err)
	})

	s.Run("strangers cannot log for another user", func() {
		_, err := s.service.LogActivity(s.ctxAs(id.Identity("stranger"), 100), userID, id.ActivityTypeLogin, 10, "", s.ipHash())
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("entry is retrievable by dense id", func() {
		s.log(userID, 100, 30)

		entry, ok, err := s.service.GetActivityLog(context.Background(), userID, 1)
		s.Require().NoError(err)
		s.Require().True(ok)
		s.Equal(uint64(1), entry.ID)
		s.Equal(id.ActivityTypeLogin, entry.Type)
		s.Equal(uint64(100), entry.Timestamp)
		s.Equal(uint8(30), entry.RiskScore)
		s.Equal("web login", entry.Metadata)

		count, err := s.service.GetActivityCount(context.Background(), userID)
		s.Require().NoError(err)
		s.Equal(uint64(1), count)
	})

	s.Run("rejects out-of-range score", func() {
		_, err := s.service.LogActivity(s.ctxAs(userID, 100), userID, id.ActivityTypeLogin, 101, "", s.ipHash())
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

// TestManualFlag verifies flag/clear gating and that only the flag moves.
func (s *RiskServiceSuite) TestManualFlag() {
	s.Run("analyst flags and clears a scored user", func() {
		s.log(userID, 100, 30)
		s.Require().NoError(s.service.AddFraudAnalyst(s.ctxAs(adminID, 101), analystID))

		s.Require().NoError(s.service.FlagUser(s.ctxAs(analystID, 102), userID))
		flagged, err := s.service.IsUserFlagged(context.Background(), userID)
		s.Require().NoError(err)
		s.True(flagged)

		// Score and last-updated stay untouched.
		score, _, err := s.service.GetUserRiskScore(context.Background(), userID)
		s.Require().NoError(err)
		s.Equal(uint8(15), score.Score)
		s.Equal(uint64(100), score.LastUpdated)

		s.Require().NoError(s.service.ClearUserFlag(s.ctxAs(analystID, 103), userID))
		flagged, err = s.service.IsUserFlagged(context.Background(), userID)
		s.Require().NoError(err)
		s.False(flagged)
	})

	s.Run("unscored user cannot be flagged", func() {
		err := s.service.FlagUser(s.ctxAs(adminID, 100), id.Identity("never-scored"))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("users cannot flag themselves", func() {
		s.log(userID, 100, 30)

		err := s.service.FlagUser(s.ctxAs(userID, 101), userID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}

// TestAdminTransfer verifies the admin role moves only by explicit transfer.
func (s *RiskServiceSuite) TestAdminTransfer() {
	next := id.Identity("next-admin")
	s.Require().NoError(s.service.TransferAdmin(s.ctxAs(adminID, 10), next))

	err := s.service.AddFraudAnalyst(s.ctxAs(adminID, 11), analystID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))

	s.Require().NoError(s.service.AddFraudAnalyst(s.ctxAs(next, 12), analystID))
}

// TestQueryDefaults verifies queries report absence via defaults.
func (s *RiskServiceSuite) TestQueryDefaults() {
	_, ok, err := s.service.GetUserRiskScore(context.Background(), id.Identity("nobody"))
	s.Require().NoError(err)
	s.False(ok)

	_, ok, err = s.service.GetActivityLog(context.Background(), id.Identity("nobody"), 1)
	s.Require().NoError(err)
	s.False(ok)

	count, err := s.service.GetActivityCount(context.Background(), id.Identity("nobody"))
	s.Require().NoError(err)
	s.Equal(uint64(0), count)

	flagged, err := s.service.IsUserFlagged(context.Background(), id.Identity("nobody"))
	s.Require().NoError(err)
	s.False(flagged)
}
