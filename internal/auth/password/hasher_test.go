package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EgorLis/my-books/internal/domain"
)

func TestHasher_RoundTrip(t *testing.T) {
	for _, algo := range []string{AlgoBcrypt, AlgoArgon2id} {
		t.Run(algo, func(t *testing.T) {
			h, err := New(algo, 4)
			require.NoError(t, err)

			enc, err := h.Hash("s3cret")
			require.NoError(t, err)
			assert.NotEqual(t, "s3cret", enc)

			ok, err := h.Verify("s3cret", enc)
			require.NoError(t, err)
			assert.True(t, ok)

			ok, err = h.Verify("wrong", enc)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestHasher_VerifiesOtherAlgorithm(t *testing.T) {
	argon, err := New(AlgoArgon2id, 0)
	require.NoError(t, err)
	enc, err := argon.Hash("pw")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(enc, argon2Prefix))

	bc, err := New(AlgoBcrypt, 4)
	require.NoError(t, err)
	ok, err := bc.Verify("pw", enc)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestHasher_UnknownAlgo(t *testing.T) {
	_, err := New("md5", 0)
	assert.Error(t, err)
}

func TestNewBcrypt_CostFallback(t *testing.T) {
	assert.Equal(t, DefaultBcryptCost, NewBcrypt(0).cost)
	assert.Equal(t, 12, NewBcrypt(12).cost)
}

func TestBcrypt_TooLongIsBadParams(t *testing.T) {
	_, err := NewBcrypt(4).Hash(strings.Repeat("x", 73))
	assert.ErrorIs(t, err, domain.ErrBadParams)
}
