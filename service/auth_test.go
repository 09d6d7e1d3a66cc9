package service

import (
	"context"
	"testing"
	"time"

	"github.com/Suryansh0910/ImageProcessor/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestAuth(t *testing.T) *AuthService {
	t.Helper()

	return NewAuthService(&config.AuthConfig{
		JWTSecret:  "test-secret",
		TokenTTL:   time.Hour,
		BcryptCost: bcrypt.MinCost,
	}, NewMemoryUserRepository())
}

func TestAuthService_SignupAndLogin(t *testing.T) {
	t.Parallel()

	auth := newTestAuth(t)
	ctx := context.Background()

	token, user, err := auth.Signup(ctx, "  Alice ", " Alice@Example.COM ", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "Alice", user.Name)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.NotEqual(t, "password123", user.Password)

	userID, err := auth.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.Hex(), userID)

	token, logged, err := auth.Login(ctx, "ALICE@example.com", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, user.ID, logged.ID)

	verified, err := auth.Verify(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", verified.Email)
}

func TestAuthService_SignupValidation(t *testing.T) {
	t.Parallel()

	auth := newTestAuth(t)
	ctx := context.Background()

	_, _, err := auth.Signup(ctx, "Bob", "bob@example.com", "password123")
	require.NoError(t, err)

	tests := []struct {
		name, uname, email, password string
		wantErr                      error
	}{
		{name: "missing name", email: "a@b.c", password: "password123", wantErr: ErrMissingFields},
		{name: "missing email", uname: "Al", password: "password123", wantErr: ErrMissingFields},
		{name: "missing password", uname: "Al", email: "a@b.c", wantErr: ErrMissingFields},
		{name: "short password", uname: "Al", email: "a@b.c", password: "short", wantErr: ErrWeakPassword},
		{name: "short name", uname: "A", email: "a@b.c", password: "password123", wantErr: ErrInvalidName},
		{name: "duplicate email", uname: "Bobby", email: "BOB@example.com", password: "password123", wantErr: ErrEmailTaken},
	}

	for _, tt := range tests {
		_, _, err := auth.Signup(ctx, tt.uname, tt.email, tt.password)
		assert.ErrorIs(t, err, tt.wantErr, tt.name)
	}
}

func TestAuthService_LoginFailures(t *testing.T) {
	t.Parallel()

	auth := newTestAuth(t)
	ctx := context.Background()
	_, _, err := auth.Signup(ctx, "Carol", "carol@example.com", "password123")
	require.NoError(t, err)

	_, _, err = auth.Login(ctx, "carol@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = auth.Login(ctx, "nobody@example.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = auth.Login(ctx, "", "")
	assert.ErrorIs(t, err, ErrMissingFields)
}

func TestAuthService_ParseTokenRejects(t *testing.T) {
	t.Parallel()

	auth := newTestAuth(t)
	ctx := context.Background()
	token, _, err := auth.Signup(ctx, "Dave", "dave@example.com", "password123")
	require.NoError(t, err)

	_, err = auth.ParseToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	// 其他密钥签发
	other := NewAuthService(&config.AuthConfig{JWTSecret: "other", TokenTTL: time.Hour}, NewMemoryUserRepository())
	_, err = other.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// 过期
	auth.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = auth.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// 非 HS256
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "x"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = newTestAuth(t).ParseToken(none)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthService_VerifyUnknownUser(t *testing.T) {
	t.Parallel()

	auth := newTestAuth(t)
	_, user, err := auth.Signup(context.Background(), "Erin", "erin@example.com", "password123")
	require.NoError(t, err)

	fresh := NewAuthService(&config.AuthConfig{JWTSecret: "test-secret", TokenTTL: time.Hour}, NewMemoryUserRepository())
	token, err := fresh.issue(user)
	require.NoError(t, err)

	_, err = fresh.Verify(context.Background(), token)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
