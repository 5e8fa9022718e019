package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "fides/pkg/domain-errors"
)

// TestParseCategories_ConsistentBehavior ensures the three category parsers
// enforce their closed sets identically.
func TestParseCategories_ConsistentBehavior(t *testing.T) {
	t.Run("accept known codes", func(t *testing.T) {
		ct, err := ParseConsentType(uint8(ConsentTypeAccountData))
		require.NoError(t, err)
		assert.Equal(t, ConsentTypeAccountData, ct)

		cr, err := ParseCredentialType(uint8(CredentialTypeKYC))
		require.NoError(t, err)
		assert.Equal(t, CredentialTypeKYC, cr)

		at, err := ParseActivityType(uint8(ActivityTypeTransaction))
		require.NoError(t, err)
		assert.Equal(t, ActivityTypeTransaction, at)
	})

	t.Run("reject zero and out-of-range codes", func(t *testing.T) {
		for _, v := range []uint8{0, 99, 255} {
			_, err := ParseConsentType(v)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))

			_, err = ParseCredentialType(v)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))

			_, err = ParseActivityType(v)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
		}
	})
}

func TestParseHash(t *testing.T) {
	t.Run("round-trips a valid digest", func(t *testing.T) {
		in := "a3f5c1d2e4b6a8c0a3f5c1d2e4b6a8c0a3f5c1d2e4b6a8c0a3f5c1d2e4b6a8c0"
		h, err := ParseHash(in)
		require.NoError(t, err)
		assert.Equal(t, in, h.String())
		assert.False(t, h.IsZero())
	})

	t.Run("rejects wrong length", func(t *testing.T) {
		_, err := ParseHash("abcd")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects non-hex", func(t *testing.T) {
		_, err := ParseHash("zz" + "00000000000000000000000000000000000000000000000000000000000000")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}
