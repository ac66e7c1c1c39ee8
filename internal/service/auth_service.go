package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"auth-service/internal/domain"
	"auth-service/internal/password"
	"auth-service/internal/repository"
)

var (
	// ErrInvalidCredentials covers both an unknown username and a wrong
	// password. The two cases stay indistinguishable so login attempts
	// cannot probe which usernames exist.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserExists is returned when registration collides with a taken
	// username or email.
	ErrUserExists = errors.New("user already exists")
	// ErrUserNotFound is returned for lookups with no matching user.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidInput marks rejected request fields; the transport maps it
	// to a client error.
	ErrInvalidInput = errors.New("invalid input")
)

// AuthService owns the user-facing account use cases.
type AuthService interface {
	Register(ctx context.Context, username, email, plaintext string, role domain.Role) (*domain.User, error)
	Authenticate(ctx context.Context, username, plaintext string) (*domain.User, error)
	GetProfile(ctx context.Context, id string) (*domain.User, error)
	UpdateProfile(ctx context.Context, id, username, email string) (*domain.User, error)
	ChangePassword(ctx context.Context, id, current, next string) error
	ListUsers(ctx context.Context) ([]*domain.User, error)
	DeleteUser(ctx context.Context, id string) error
}

type authService struct {
	users  repository.UserRepository
	hasher password.Hasher
}

func NewAuthService(users repository.UserRepository, hasher password.Hasher) AuthService {
	return &authService{users: users, hasher: hasher}
}

// Register creates a new account. The username is checked first and a taken
// username short-circuits before the email is ever looked at.
func (s *authService) Register(ctx context.Context, username, email, plaintext string, role domain.Role) (*domain.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrInvalidInput)
	}
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	if len(plaintext) < 6 {
		return nil, fmt.Errorf("%w: password must be at least 6 characters", ErrInvalidInput)
	}

	taken, err := s.users.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if taken {
		return nil, ErrUserExists
	}

	taken, err = s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if taken {
		return nil, ErrUserExists
	}

	user, err := domain.New(s.hasher, username, email, plaintext, role)
	if err != nil {
		return nil, err
	}

	if err := s.users.Save(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserExists
		}
		return nil, err
	}
	return user, nil
}

// Authenticate validates username/password credentials.
func (s *authService) Authenticate(ctx context.Context, username, plaintext string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || plaintext == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.ValidatePassword(s.hasher, plaintext) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *authService) GetProfile(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfile applies whichever of username/email are non-empty. The
// aggregate bumps its updatedAt stamp even when both are empty.
func (s *authService) UpdateProfile(ctx context.Context, id, username, email string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	user, err := s.GetProfile(ctx, id)
	if err != nil {
		return nil, err
	}

	if username != "" && username != user.Username {
		taken, err := s.users.ExistsByUsername(ctx, username)
		if err != nil {
			return nil, fmt.Errorf("check username: %w", err)
		}
		if taken {
			return nil, ErrUserExists
		}
	}
	if email != "" && email != user.Email {
		taken, err := s.users.ExistsByEmail(ctx, email)
		if err != nil {
			return nil, fmt.Errorf("check email: %w", err)
		}
		if taken {
			return nil, ErrUserExists
		}
	}

	user.UpdateProfile(username, email)

	if err := s.users.Update(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, ErrUserExists
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// ChangePassword re-hashes the password after checking the current one.
// Tokens issued before the change remain valid until they expire.
func (s *authService) ChangePassword(ctx context.Context, id, current, next string) error {
	user, err := s.GetProfile(ctx, id)
	if err != nil {
		return err
	}

	if !user.ValidatePassword(s.hasher, current) {
		return ErrInvalidCredentials
	}
	if len(next) < 6 {
		return fmt.Errorf("%w: password must be at least 6 characters", ErrInvalidInput)
	}

	if err := user.UpdatePassword(s.hasher, next); err != nil {
		return err
	}

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

func (s *authService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.users.FindAll(ctx)
}

func (s *authService) DeleteUser(ctx context.Context, id string) error {
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}
