package token_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auth-service/internal/domain"
	"auth-service/internal/token"
)

func testUser() *domain.User {
	now := time.Now().UTC()
	return domain.Reconstitute(
		"user-123",
		"alice",
		"alice@example.com",
		"$2a$04$ignored",
		domain.RoleUser,
		now, now,
	)
}

func newService(t *testing.T, cfg token.Config) *token.Service {
	t.Helper()
	if cfg.Secret == "" {
		cfg.Secret = "test-secret"
	}
	svc, err := token.NewService(cfg)
	require.NoError(t, err)
	return svc
}

func TestNewServiceRequiresSecret(t *testing.T) {
	_, err := token.NewService(token.Config{})
	assert.Error(t, err)
}

func TestIssuePairAndVerify(t *testing.T) {
	svc := newService(t, token.Config{})
	user := testUser()

	pair, err := svc.IssuePair(user)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	for _, tok := range []string{pair.AccessToken, pair.RefreshToken} {
		claims, err := svc.Verify(tok)
		require.NoError(t, err)
		assert.Equal(t, "user-123", claims.Subject)
		assert.Equal(t, "alice", claims.Username)
		assert.Equal(t, "alice@example.com", claims.Email)
		assert.Equal(t, "USER", claims.Role)
		require.NotNil(t, claims.ExpiresAt)
		require.NotNil(t, claims.IssuedAt)
	}
}

func TestRefreshTokenOutlivesAccessToken(t *testing.T) {
	svc := newService(t, token.Config{})
	pair, err := svc.IssuePair(testUser())
	require.NoError(t, err)

	access, err := svc.Verify(pair.AccessToken)
	require.NoError(t, err)
	refresh, err := svc.Verify(pair.RefreshToken)
	require.NoError(t, err)

	assert.True(t, refresh.ExpiresAt.After(access.ExpiresAt.Time))
}

func TestVerifyExpiredToken(t *testing.T) {
	svc := newService(t, token.Config{AccessTTL: -time.Minute})
	pair, err := svc.IssuePair(testUser())
	require.NoError(t, err)

	_, err = svc.Verify(pair.AccessToken)
	assert.ErrorIs(t, err, token.ErrInvalidToken)
}

func TestVerifyTamperedSignature(t *testing.T) {
	svc := newService(t, token.Config{})
	pair, err := svc.IssuePair(testUser())
	require.NoError(t, err)

	_, err = svc.Verify(tamperSignature(t, pair.AccessToken))
	assert.ErrorIs(t, err, token.ErrInvalidToken)
}

func TestVerifyMalformedToken(t *testing.T) {
	svc := newService(t, token.Config{})

	for _, bad := range []string{"", "garbage", "a.b", "a.b.c.d"} {
		_, err := svc.Verify(bad)
		assert.ErrorIs(t, err, token.ErrInvalidToken)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	issuer := newService(t, token.Config{Secret: "one-secret"})
	verifier := newService(t, token.Config{Secret: "another-secret"})

	pair, err := issuer.IssuePair(testUser())
	require.NoError(t, err)

	_, err = verifier.Verify(pair.AccessToken)
	assert.ErrorIs(t, err, token.ErrInvalidToken)
}

func TestRefreshAccess(t *testing.T) {
	svc := newService(t, token.Config{})
	pair, err := svc.IssuePair(testUser())
	require.NoError(t, err)

	access, err := svc.RefreshAccess(pair.RefreshToken)
	require.NoError(t, err)

	claims, err := svc.Verify(access)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.Subject)
	assert.Equal(t, "alice", claims.Username)
}

func TestRefreshAccessExpiredRefreshToken(t *testing.T) {
	svc := newService(t, token.Config{RefreshTTL: -time.Hour})
	pair, err := svc.IssuePair(testUser())
	require.NoError(t, err)

	_, err = svc.RefreshAccess(pair.RefreshToken)
	assert.ErrorIs(t, err, token.ErrInvalidToken)
}

func TestRefreshAccessTamperedRefreshToken(t *testing.T) {
	svc := newService(t, token.Config{})
	pair, err := svc.IssuePair(testUser())
	require.NoError(t, err)

	_, err = svc.RefreshAccess(tamperSignature(t, pair.RefreshToken))
	assert.ErrorIs(t, err, token.ErrInvalidToken)
}

// tamperSignature flips one character in the signature segment.
func tamperSignature(t *testing.T, tok string) string {
	t.Helper()
	parts := strings.Split(tok, ".")
	require.Len(t, parts, 3)

	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	parts[2] = string(sig)
	return strings.Join(parts, ".")
}
