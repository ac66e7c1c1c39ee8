package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"auth-service/internal/password"
)

// Role is the authorization level of a user account.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// ParseRole maps a wire-level role string onto a known Role.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleUser, RoleAdmin:
		return Role(s), true
	default:
		return "", false
	}
}

// User is the identity aggregate. PasswordHash never leaves the process;
// Profile is the only externally visible projection.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// New allocates a fresh user, hashing the plaintext password immediately.
// It performs no uniqueness checks; those belong to the registration use case.
// An empty role defaults to RoleUser.
func New(h password.Hasher, username, email, plaintext string, role Role) (*User, error) {
	if role == "" {
		role = RoleUser
	}
	hash, err := h.Hash(plaintext)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	now := time.Now().UTC()
	return &User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Reconstitute rebuilds a user from trusted stored state. The password hash
// is taken as-is and never re-hashed.
func Reconstitute(id, username, email, passwordHash string, role Role, createdAt, updatedAt time.Time) *User {
	return &User{
		ID:           id,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}
}

// ValidatePassword reports whether candidate matches the stored hash.
func (u *User) ValidatePassword(h password.Hasher, candidate string) bool {
	return h.Verify(candidate, u.PasswordHash)
}

// UpdatePassword replaces the stored hash with one derived from plaintext.
// Already-issued tokens stay valid until they expire on their own.
func (u *User) UpdatePassword(h password.Hasher, plaintext string) error {
	hash, err := h.Hash(plaintext)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	u.PasswordHash = hash
	u.UpdatedAt = time.Now().UTC()
	return nil
}

// UpdateProfile sets whichever of username and email are non-empty. The
// updatedAt stamp advances even when both are empty; callers rely on the
// touch to mark the aggregate as revisited.
func (u *User) UpdateProfile(username, email string) {
	if username != "" {
		u.Username = username
	}
	if email != "" {
		u.Email = email
	}
	u.UpdatedAt = time.Now().UTC()
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Profile is the external projection of a user. It deliberately has no
// password field.
type Profile struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Profile returns the projection allowed to cross the process boundary.
func (u *User) Profile() Profile {
	return Profile{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
