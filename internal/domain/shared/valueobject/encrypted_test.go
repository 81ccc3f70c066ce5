package valueobject

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptedString(t *testing.T) {
	const key = "test-encryption-key"

	t.Run("round trip", func(t *testing.T) {
		enc, err := EncryptString("001234567890", key)
		require.NoError(t, err)
		assert.False(t, enc.IsEmpty())

		plain, err := enc.Reveal(key)
		require.NoError(t, err)
		assert.Equal(t, "001234567890", plain)
	})

	t.Run("wrong key fails closed", func(t *testing.T) {
		enc, err := EncryptString("001234567890", key)
		require.NoError(t, err)

		_, err = enc.Reveal("not-the-key")
		assert.Error(t, err)
	})

	t.Run("masked shows only last four", func(t *testing.T) {
		enc, err := EncryptString("001234567890", key)
		require.NoError(t, err)
		assert.Equal(t, "****7890", enc.Masked())
		assert.NotContains(t, enc.Ciphertext(), "00123456")
	})

	t.Run("empty value", func(t *testing.T) {
		enc, err := EncryptString("", key)
		require.NoError(t, err)
		assert.True(t, enc.IsEmpty())
		assert.Equal(t, "", enc.Masked())

		plain, err := enc.Reveal(key)
		require.NoError(t, err)
		assert.Equal(t, "", plain)
	})

	t.Run("reconstructed from stored columns", func(t *testing.T) {
		enc, err := EncryptString("998877665544", key)
		require.NoError(t, err)

		stored := EncryptedStringFromStored(enc.Ciphertext(), enc.LastFour())
		plain, err := stored.Reveal(key)
		require.NoError(t, err)
		assert.Equal(t, "998877665544", plain)
		assert.Equal(t, "****5544", stored.Masked())
	})
}
