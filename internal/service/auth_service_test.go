package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"ims/internal/config"
	"ims/internal/domain"
	"ims/internal/service"
	"ims/mocks"
)

func setupAuth() (*mocks.MockUserRepo, service.AuthService) {
	userRepo := new(mocks.MockUserRepo)
	cfg := config.JWTConfig{
		Secret:             "test-secret",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 7 * 24 * time.Hour,
		Issuer:             "ims",
	}
	return userRepo, service.NewAuthService(userRepo, cfg)
}

func testUser(password string) *domain.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	return &domain.User{
		ID:           uuid.New(),
		Email:        "accounts@example.com",
		PasswordHash: string(hash),
		Role:         domain.RoleAccounts,
		IsActive:     true,
	}
}

func TestLogin_Success(t *testing.T) {
	userRepo, svc := setupAuth()
	user := testUser("correct-password")

	userRepo.On("GetByEmail", mock.Anything, "accounts@example.com").Return(user, nil)

	pair, err := svc.Login(context.Background(), service.LoginInput{
		Email:    "accounts@example.com",
		Password: "correct-password",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	claims, err := svc.ValidateToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, domain.RoleAccounts, claims.Role)
}

func TestLogin_WrongPassword(t *testing.T) {
	userRepo, svc := setupAuth()
	userRepo.On("GetByEmail", mock.Anything, "accounts@example.com").Return(testUser("correct-password"), nil)

	_, err := svc.Login(context.Background(), service.LoginInput{
		Email:    "accounts@example.com",
		Password: "wrong-password",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestLogin_UnknownEmail(t *testing.T) {
	userRepo, svc := setupAuth()
	userRepo.On("GetByEmail", mock.Anything, "nobody@example.com").Return(nil, domain.ErrNotFound)

	_, err := svc.Login(context.Background(), service.LoginInput{
		Email:    "nobody@example.com",
		Password: "whatever-password",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestLogin_InactiveUser(t *testing.T) {
	userRepo, svc := setupAuth()
	user := testUser("correct-password")
	user.IsActive = false
	userRepo.On("GetByEmail", mock.Anything, "accounts@example.com").Return(user, nil)

	_, err := svc.Login(context.Background(), service.LoginInput{
		Email:    "accounts@example.com",
		Password: "correct-password",
	})
	assert.ErrorIs(t, err, domain.ErrUserInactive)
}

func TestRefreshToken_RoundTrip(t *testing.T) {
	userRepo, svc := setupAuth()
	user := testUser("correct-password")

	userRepo.On("GetByEmail", mock.Anything, "accounts@example.com").Return(user, nil)
	userRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil)

	pair, err := svc.Login(context.Background(), service.LoginInput{
		Email:    "accounts@example.com",
		Password: "correct-password",
	})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
}

func TestRefreshToken_AccessTokenRejected(t *testing.T) {
	userRepo, svc := setupAuth()
	user := testUser("correct-password")
	userRepo.On("GetByEmail", mock.Anything, "accounts@example.com").Return(user, nil)

	pair, err := svc.Login(context.Background(), service.LoginInput{
		Email:    "accounts@example.com",
		Password: "correct-password",
	})
	require.NoError(t, err)

	// An access token must not pass as a refresh token.
	_, err = svc.RefreshToken(context.Background(), pair.AccessToken)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestValidateToken_Garbage(t *testing.T) {
	_, svc := setupAuth()
	_, err := svc.ValidateToken("not-a-token")
	assert.Error(t, err)
}
