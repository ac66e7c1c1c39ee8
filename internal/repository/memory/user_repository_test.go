package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"auth-service/internal/domain"
	"auth-service/internal/password"
	"auth-service/internal/repository"
	"auth-service/internal/repository/memory"
)

func newUser(t *testing.T, username, email string) *domain.User {
	t.Helper()
	user, err := domain.New(password.NewBcryptHasher(bcrypt.MinCost), username, email, "secret123", domain.RoleUser)
	require.NoError(t, err)
	return user
}

func TestSaveAndFind(t *testing.T) {
	repo := memory.NewUserRepository()
	ctx := context.Background()
	user := newUser(t, "alice", "alice@example.com")

	require.NoError(t, repo.Save(ctx, user))

	byID, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Username, byID.Username)

	byUsername, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byUsername.ID)

	byEmail, err := repo.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)
}

func TestFindMissing(t *testing.T) {
	repo := memory.NewUserRepository()
	ctx := context.Background()

	_, err := repo.FindByID(ctx, "nope")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = repo.FindByUsername(ctx, "nope")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = repo.FindByEmail(ctx, "nope@example.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSaveDuplicate(t *testing.T) {
	repo := memory.NewUserRepository()
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, newUser(t, "alice", "alice@example.com")))

	err := repo.Save(ctx, newUser(t, "alice", "other@example.com"))
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	err = repo.Save(ctx, newUser(t, "other", "alice@example.com"))
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestUpdate(t *testing.T) {
	repo := memory.NewUserRepository()
	ctx := context.Background()
	user := newUser(t, "bob", "bob@example.com")
	require.NoError(t, repo.Save(ctx, user))

	user.UpdateProfile("bobby", "")
	require.NoError(t, repo.Update(ctx, user))

	stored, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "bobby", stored.Username)

	missing := newUser(t, "ghost", "ghost@example.com")
	assert.ErrorIs(t, repo.Update(ctx, missing), repository.ErrNotFound)
}

func TestUpdateDuplicate(t *testing.T) {
	repo := memory.NewUserRepository()
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, newUser(t, "carol", "carol@example.com")))
	user := newUser(t, "dave", "dave@example.com")
	require.NoError(t, repo.Save(ctx, user))

	user.UpdateProfile("carol", "")
	assert.ErrorIs(t, repo.Update(ctx, user), repository.ErrDuplicate)
}

func TestStoredUserIsIsolated(t *testing.T) {
	repo := memory.NewUserRepository()
	ctx := context.Background()
	user := newUser(t, "erin", "erin@example.com")
	require.NoError(t, repo.Save(ctx, user))

	// mutating the aggregate after Save must not leak into the store
	user.Username = "changed"

	stored, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "erin", stored.Username)
}

func TestDeleteAndFindAll(t *testing.T) {
	repo := memory.NewUserRepository()
	ctx := context.Background()

	first := newUser(t, "frank", "frank@example.com")
	second := newUser(t, "grace", "grace@example.com")
	require.NoError(t, repo.Save(ctx, first))
	require.NoError(t, repo.Save(ctx, second))

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, repo.Delete(ctx, first.ID))
	assert.ErrorIs(t, repo.Delete(ctx, first.ID), repository.ErrNotFound)

	all, err = repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestExists(t *testing.T) {
	repo := memory.NewUserRepository()
	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, newUser(t, "henry", "henry@example.com")))

	ok, err := repo.ExistsByUsername(ctx, "henry")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.ExistsByUsername(ctx, "nobody")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.ExistsByEmail(ctx, "henry@example.com")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.ExistsByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.False(t, ok)
}
