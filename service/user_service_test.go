package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"carrental_service/domain"
)

func newUserFixture() (*UserService, *inMemoryUserStore) {
	users := newInMemoryUserStore()
	return NewUserService(users, testLogger(), testTracer()), users
}

func TestGetUserStripsPassword(t *testing.T) {
	service, users := newUserFixture()

	stored := &domain.User{
		ID:       primitive.NewObjectID(),
		Name:     "Jamie Doe",
		Email:    "jamie@example.com",
		Password: "bcrypt-hash",
		Role:     domain.RoleUser,
	}
	users.Register(context.Background(), stored)

	user, err := service.Get(context.Background(), stored.ID)
	require.NoError(t, err)
	assert.Empty(t, user.Password)
	assert.Equal(t, "jamie@example.com", user.Email)

	kept, err := users.Get(context.Background(), stored.ID)
	require.NoError(t, err)
	assert.Equal(t, "bcrypt-hash", kept.Password)
}

func TestGetUnknownUser(t *testing.T) {
	service, _ := newUserFixture()

	_, err := service.Get(context.Background(), primitive.NewObjectID())
	var notFoundErr *domain.NotFoundError
	require.ErrorAs(t, err, &notFoundErr)
}

func TestBecomeOwner(t *testing.T) {
	service, users := newUserFixture()

	stored := &domain.User{
		ID:       primitive.NewObjectID(),
		Name:     "Jamie Doe",
		Email:    "jamie@example.com",
		Password: "bcrypt-hash",
		Role:     domain.RoleUser,
	}
	users.Register(context.Background(), stored)

	require.NoError(t, service.BecomeOwner(context.Background(), stored.ID))

	promoted, err := users.Get(context.Background(), stored.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleOwner, promoted.Role)
}

func TestBecomeOwnerUnknownUser(t *testing.T) {
	service, _ := newUserFixture()

	err := service.BecomeOwner(context.Background(), primitive.NewObjectID())
	var notFoundErr *domain.NotFoundError
	require.ErrorAs(t, err, &notFoundErr)
}

func TestUpdateImage(t *testing.T) {
	service, users := newUserFixture()

	stored := &domain.User{
		ID:       primitive.NewObjectID(),
		Name:     "Jamie Doe",
		Email:    "jamie@example.com",
		Password: "bcrypt-hash",
		Role:     domain.RoleUser,
	}
	users.Register(context.Background(), stored)

	require.NoError(t, service.UpdateImage(context.Background(), stored.ID, "https://cdn.example.com/users/avatar.png"))

	updated, err := users.Get(context.Background(), stored.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/users/avatar.png", updated.Image)
}
