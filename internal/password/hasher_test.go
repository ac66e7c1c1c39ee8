package password_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"auth-service/internal/password"
)

func TestHashAndVerify(t *testing.T) {
	h := password.NewBcryptHasher(bcrypt.MinCost)

	digest, err := h.Hash("correct horse battery staple")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery staple", digest)

	assert.True(t, h.Verify("correct horse battery staple", digest))
	assert.False(t, h.Verify("wrong password", digest))
}

func TestHashIsSalted(t *testing.T) {
	h := password.NewBcryptHasher(bcrypt.MinCost)

	first, err := h.Hash("same input")
	require.NoError(t, err)
	second, err := h.Hash("same input")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, h.Verify("same input", first))
	assert.True(t, h.Verify("same input", second))
}

func TestVerifyMalformedDigest(t *testing.T) {
	h := password.NewBcryptHasher(bcrypt.MinCost)

	assert.False(t, h.Verify("anything", "not-a-bcrypt-digest"))
	assert.False(t, h.Verify("anything", ""))
}

func TestCostOutOfRangeFallsBack(t *testing.T) {
	h := password.NewBcryptHasher(99)

	digest, err := h.Hash("some password")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(digest))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}
