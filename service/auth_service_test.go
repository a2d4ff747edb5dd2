package application

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/cristalhq/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"carrental_service/domain"
)

type authFixture struct {
	service *AuthService
	users   *inMemoryUserStore
	cache   *inMemoryTokenCache
}

func newAuthFixture() *authFixture {
	users := newInMemoryUserStore()
	cache := newInMemoryTokenCache()
	service := NewAuthService(users, cache, testLogger(), testTracer())
	return &authFixture{service: service, users: users, cache: cache}
}

func registration() *domain.User {
	return &domain.User{
		Name:     "Jamie Doe",
		Email:    "jamie@example.com",
		Password: "correct horse battery staple",
	}
}

func TestRegisterHashesPasswordAndDefaultsRole(t *testing.T) {
	f := newAuthFixture()

	created, err := f.service.Register(context.Background(), registration())
	require.NoError(t, err)

	assert.Equal(t, domain.RoleUser, created.Role)
	assert.Empty(t, created.Password)

	stored, err := f.users.GetByEmail(context.Background(), "jamie@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery staple", stored.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("correct horse battery staple")))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newAuthFixture()

	_, err := f.service.Register(context.Background(), registration())
	require.NoError(t, err)

	_, err = f.service.Register(context.Background(), registration())
	var conflictErr *domain.ConflictError
	require.ErrorAs(t, err, &conflictErr)
	assert.Equal(t, "Email already exists", conflictErr.Message)
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	f := newAuthFixture()

	user := registration()
	user.Password = "short"

	_, err := f.service.Register(context.Background(), user)
	var validationErr *domain.ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestRegisterCachesVerificationToken(t *testing.T) {
	f := newAuthFixture()

	created, err := f.service.Register(context.Background(), registration())
	require.NoError(t, err)

	token, err := f.cache.GetCachedValue(context.Background(), created.ID.Hex())
	require.NoError(t, err)
	assert.NotEmpty(t, token)
}

func TestLoginIssuesToken(t *testing.T) {
	t.Setenv("SECRET_KEY", "test-signing-secret")
	f := newAuthFixture()

	created, err := f.service.Register(context.Background(), registration())
	require.NoError(t, err)

	signed, err := f.service.Login(context.Background(), &domain.Credentials{
		Email:    "jamie@example.com",
		Password: "correct horse battery staple",
	})
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	token, err := jwt.ParseNoVerify([]byte(signed))
	require.NoError(t, err)

	var claims domain.Claims
	require.NoError(t, json.Unmarshal(token.Claims(), &claims))
	assert.Equal(t, created.ID.Hex(), claims.UserID)
	assert.Equal(t, "jamie@example.com", claims.Email)
	assert.Equal(t, domain.RoleUser, claims.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	f := newAuthFixture()

	_, err := f.service.Register(context.Background(), registration())
	require.NoError(t, err)

	_, err = f.service.Login(context.Background(), &domain.Credentials{
		Email:    "jamie@example.com",
		Password: "not the password",
	})
	var unauthorizedErr *domain.UnauthorizedError
	require.ErrorAs(t, err, &unauthorizedErr)
	assert.Equal(t, "Invalid credentials", unauthorizedErr.Message)
}

func TestLoginUnknownEmail(t *testing.T) {
	f := newAuthFixture()

	_, err := f.service.Login(context.Background(), &domain.Credentials{
		Email:    "nobody@example.com",
		Password: "whatever-password",
	})
	var unauthorizedErr *domain.UnauthorizedError
	require.ErrorAs(t, err, &unauthorizedErr)
}

func TestAccountConfirmation(t *testing.T) {
	f := newAuthFixture()

	created, err := f.service.Register(context.Background(), registration())
	require.NoError(t, err)

	token, err := f.cache.GetCachedValue(context.Background(), created.ID.Hex())
	require.NoError(t, err)

	err = f.service.AccountConfirmation(context.Background(), &domain.AccountVerification{
		UserToken: created.ID.Hex(),
		MailToken: token,
	})
	require.NoError(t, err)

	// The token is single-use.
	_, err = f.cache.GetCachedValue(context.Background(), created.ID.Hex())
	assert.Error(t, err)
}

func TestAccountConfirmationWrongToken(t *testing.T) {
	f := newAuthFixture()

	created, err := f.service.Register(context.Background(), registration())
	require.NoError(t, err)

	err = f.service.AccountConfirmation(context.Background(), &domain.AccountVerification{
		UserToken: created.ID.Hex(),
		MailToken: "not-the-mailed-token",
	})
	var validationErr *domain.ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestAccountConfirmationExpiredToken(t *testing.T) {
	f := newAuthFixture()

	err := f.service.AccountConfirmation(context.Background(), &domain.AccountVerification{
		UserToken: "ffffffffffffffffffffffff",
		MailToken: "anything",
	})
	var validationErr *domain.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "Verification token has expired", validationErr.Message)
}
