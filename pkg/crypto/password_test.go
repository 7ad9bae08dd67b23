package crypto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("hunter2!")
	require.NoError(t, err)
	require.NotEqual(t, "hunter2!", hash)

	require.True(t, VerifyPassword(hash, "hunter2!"))
	require.False(t, VerifyPassword(hash, "hunter3!"))
}

func TestVerifyPasswordRejectsGarbageHash(t *testing.T) {
	require.False(t, VerifyPassword("not-a-hash", "hunter2!"))
}
