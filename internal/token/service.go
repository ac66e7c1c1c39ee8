package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"auth-service/internal/domain"
)

// ErrInvalidToken covers every verification failure: bad signature, expired,
// structurally malformed. Callers get no finer detail on purpose, so a probe
// cannot tell a tampered token from an expired one.
var ErrInvalidToken = errors.New("invalid token")

// Config configures the token service. The secret is shared by every
// instance that must validate the same tokens.
type Config struct {
	Secret string
	// AccessTTL is the access token lifetime (default: 15m).
	AccessTTL time.Duration
	// RefreshTTL is the refresh token lifetime (default: 7d).
	RefreshTTL time.Duration
}

func (c *Config) applyDefaults() {
	if c.AccessTTL == 0 {
		c.AccessTTL = 15 * time.Minute
	}
	if c.RefreshTTL == 0 {
		c.RefreshTTL = 7 * 24 * time.Hour
	}
}

// Service signs and verifies identity claims as HS256 JWTs. Verification is
// purely cryptographic: no repository lookup, no revocation list, so any
// instance holding the secret can validate a token on its own.
type Service struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewService creates a token service from config. The secret is required.
func NewService(cfg Config) (*Service, error) {
	if cfg.Secret == "" {
		return nil, errors.New("token: secret is required")
	}
	cfg.applyDefaults()
	return &Service{
		secret:     []byte(cfg.Secret),
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
	}, nil
}

// IssuePair mints an access and a refresh token for the user. Both embed the
// same identity fields; only the expiry differs.
func (s *Service) IssuePair(u *domain.User) (Pair, error) {
	access, err := s.sign(u.ID, u.Username, u.Email, string(u.Role), s.accessTTL)
	if err != nil {
		return Pair{}, err
	}
	refresh, err := s.sign(u.ID, u.Username, u.Email, string(u.Role), s.refreshTTL)
	if err != nil {
		return Pair{}, err
	}
	return Pair{AccessToken: access, RefreshToken: refresh}, nil
}

// Verify checks signature and expiry and returns the embedded claims. Any
// failure surfaces as ErrInvalidToken.
func (s *Service) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, s.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// RefreshAccess verifies the refresh token and mints a new access token from
// the claims already embedded in it. The user record is not re-read, so
// profile or role changes made after the refresh token was issued show up
// only once that token itself is reissued.
func (s *Service) RefreshAccess(refreshToken string) (string, error) {
	claims, err := s.Verify(refreshToken)
	if err != nil {
		return "", err
	}
	return s.sign(claims.Subject, claims.Username, claims.Email, claims.Role, s.accessTTL)
}

func (s *Service) sign(subject, username, email, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Username: username,
		Email:    email,
		Role:     role,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// keyFunc pins the signing algorithm before handing back the secret.
func (s *Service) keyFunc(t *jwt.Token) (interface{}, error) {
	if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
		return nil, ErrInvalidToken
	}
	return s.secret, nil
}
