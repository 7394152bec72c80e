package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCompare(t *testing.T) {
	hasher := NewBcryptHasher(4) // minimum cost keeps the test fast

	hash, err := hasher.Hash("s3cret-pass")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$2a$"))
	assert.NotContains(t, hash, "s3cret-pass")

	assert.NoError(t, hasher.Compare(hash, "s3cret-pass"))
	assert.Error(t, hasher.Compare(hash, "wrong-pass"))
}

func TestHashRejectsShortPassword(t *testing.T) {
	hasher := NewBcryptHasher(4)

	_, err := hasher.Hash("short")
	assert.Error(t, err)
}

func TestHashesAreSalted(t *testing.T) {
	hasher := NewBcryptHasher(4)

	h1, err := hasher.Hash("s3cret-pass")
	require.NoError(t, err)
	h2, err := hasher.Hash("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}
