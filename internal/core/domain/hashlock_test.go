package domain_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/swaplock/swapd/internal/core/domain"
)

func TestHashlock(t *testing.T) {
	secret := []byte("order matching is non custodial")
	digest := domain.HashSecret(secret)

	t.Run("valid secret", func(t *testing.T) {
		hashlock, err := domain.NewHashlock(digest)
		require.NoError(t, err)
		require.NoError(t, hashlock.Verify(secret))
	})

	t.Run("wrong secret", func(t *testing.T) {
		hashlock, err := domain.NewHashlock(digest)
		require.NoError(t, err)

		err = hashlock.Verify([]byte("not the committed secret"))
		require.ErrorIs(t, err, domain.ErrInvalidSecret)
	})

	t.Run("empty secret", func(t *testing.T) {
		hashlock, err := domain.NewHashlock(digest)
		require.NoError(t, err)

		err = hashlock.Verify(nil)
		require.ErrorIs(t, err, domain.ErrInvalidSecret)
	})

	t.Run("invalid digest size", func(t *testing.T) {
		_, err := domain.NewHashlock([]byte{0x01, 0x02})
		require.ErrorIs(t, err, domain.ErrInvalidHash)

		_, err = domain.NewHashlock(append(digest, 0x00))
		require.ErrorIs(t, err, domain.ErrInvalidHash)
	})

	t.Run("deterministic", func(t *testing.T) {
		require.Equal(t, domain.HashSecret(secret), domain.HashSecret(secret))
		require.Len(t, domain.HashSecret(secret), domain.SecretHashSize)
	})
}
