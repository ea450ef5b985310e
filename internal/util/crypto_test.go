package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	t.Run("generates 64 character hex string", func(t *testing.T) {
		token, err := GenerateToken()
		require.NoError(t, err)
		assert.Len(t, token, 64)
	})

	t.Run("generates unique tokens", func(t *testing.T) {
		token1, _ := GenerateToken()
		token2, _ := GenerateToken()
		assert.NotEqual(t, token1, token2)
	})

	t.Run("generates valid hex", func(t *testing.T) {
		token, _ := GenerateToken()
		for _, c := range token {
			assert.True(t, (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f'))
		}
	})
}

func TestConstantTimeEqual(t *testing.T) {
	t.Run("equal strings match", func(t *testing.T) {
		assert.True(t, ConstantTimeEqual("secret-token", "secret-token"))
	})

	t.Run("different strings do not match", func(t *testing.T) {
		assert.False(t, ConstantTimeEqual("secret-token", "other-token"))
	})

	t.Run("differing lengths do not match", func(t *testing.T) {
		assert.False(t, ConstantTimeEqual("short", "short-but-longer"))
	})
}

func TestMaskToken(t *testing.T) {
	t.Run("keeps only a short prefix", func(t *testing.T) {
		assert.Equal(t, "abcd-****", MaskToken("abcdef0123456789"))
	})

	t.Run("masks short tokens entirely", func(t *testing.T) {
		assert.Equal(t, "****", MaskToken("ab"))
	})
}
