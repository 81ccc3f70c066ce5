package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedisIdempotencyStore_Prefixed(t *testing.T) {
	t.Run("applies the default namespace", func(t *testing.T) {
		store := NewRedisIdempotencyStoreWithClient(nil, "")
		assert.Equal(t, "payroll:idempotency:settlement:abc", store.prefixed("settlement:abc"))
	})

	t.Run("keeps a custom prefix", func(t *testing.T) {
		store := NewRedisIdempotencyStoreWithClient(nil, "staging:")
		assert.Equal(t, "staging:settlement:abc", store.prefixed("settlement:abc"))
	})
}
