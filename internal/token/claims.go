package token

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the identity payload embedded in every issued token. Subject
// carries the user id; issued-at and expires-at live in RegisteredClaims.
// This shape is the contract other services read after verification.
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// Pair bundles the two tokens minted at login/registration. Both carry the
// same identity fields and differ only in lifetime.
type Pair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
