package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("admin")
	require.NoError(t, err)

	assert.True(t, IsBcryptHash(hash))
	assert.NoError(t, CheckPasswordHash("admin", hash))
	assert.Error(t, CheckPasswordHash("wrong", hash))
}

func TestHashPassword_Empty(t *testing.T) {
	_, err := HashPassword("")
	assert.Error(t, err)
}

func TestIsBcryptHash(t *testing.T) {
	assert.False(t, IsBcryptHash("admin"))
	assert.False(t, IsBcryptHash(""))
}
