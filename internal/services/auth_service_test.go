package services

import (
	"context"
	"strings"
	"testing"

	"github.com/ahmetcoskunkizilkaya/filevault/internal/dto"
	"github.com/ahmetcoskunkizilkaya/filevault/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAuthService(t *testing.T) (*AuthService, *TokenService) {
	t.Helper()
	tokens := newTokenService(testDB(t), newTestClock())
	return NewAuthService(tokens.db, tokens, bcrypt.MinCost), tokens
}

func TestAuthService_SignupThenSignin(t *testing.T) {
	ctx := context.Background()
	svc, tokens := newAuthService(t)

	for _, id := range []string{"a@b.com", "+15551234567"} {
		creds := &dto.CredentialsRequest{ID: id, Password: "secret1"}

		pair, err := svc.Signup(ctx, creds)
		require.NoError(t, err, id)
		require.NoError(t, tokens.ConfirmSession(ctx, id, pair.RefreshToken))

		pair, err = svc.Signin(ctx, creds)
		require.NoError(t, err, id)
		userID, err := tokens.VerifyAccess(pair.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, id, userID)

		_, err = svc.Signin(ctx, &dto.CredentialsRequest{ID: id, Password: "secret2"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}
}

func TestAuthService_SignupValidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthService(t)

	_, err := svc.Signup(ctx, &dto.CredentialsRequest{ID: "not an id", Password: "secret1"})
	assert.ErrorIs(t, err, validation.ErrInvalidIdentifier)

	_, err = svc.Signup(ctx, &dto.CredentialsRequest{ID: "a@b.com", Password: "12345"})
	assert.ErrorIs(t, err, validation.ErrPasswordTooShort)

	_, err = svc.Signup(ctx, &dto.CredentialsRequest{ID: "a@b.com", Password: strings.Repeat("x", 73)})
	assert.ErrorIs(t, err, validation.ErrPasswordTooLong)

	_, err = svc.Signup(ctx, &dto.CredentialsRequest{ID: "a@b.com", Password: "secret1"})
	require.NoError(t, err)
	_, err = svc.Signup(ctx, &dto.CredentialsRequest{ID: "a@b.com", Password: "secret2"})
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestAuthService_SigninUnknownUser(t *testing.T) {
	svc, _ := newAuthService(t)

	_, err := svc.Signin(context.Background(), &dto.CredentialsRequest{ID: "ghost@b.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Signin(context.Background(), &dto.CredentialsRequest{})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_RefreshAndLogout(t *testing.T) {
	ctx := context.Background()
	svc, tokens := newAuthService(t)

	pair, err := svc.Signup(ctx, &dto.CredentialsRequest{ID: "a@b.com", Password: "secret1"})
	require.NoError(t, err)

	rotated, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	require.NoError(t, svc.Logout(ctx, rotated.RefreshToken))
	assert.ErrorIs(t, tokens.ConfirmSession(ctx, "a@b.com", rotated.RefreshToken), ErrSessionRevoked)
}
