package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"github.com/fonyuygita/protrack-backend/internal/auth"
	"github.com/fonyuygita/protrack-backend/internal/domain"
	customError "github.com/fonyuygita/protrack-backend/pkg/errors"
	"github.com/fonyuygita/protrack-backend/tests/mocks"
)

func newAuthFixture() (*AuthService, *mocks.MockUserRepository) {
	userRepo := &mocks.MockUserRepository{}
	tokens := auth.NewTokenManager("test-secret", 15*time.Minute, 7*24*time.Hour)
	return NewAuthService(userRepo, tokens), userRepo
}

func hashFor(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	assert.NoError(t, err)
	return string(hash)
}

func TestRegister_CreatesUnapprovedStaff(t *testing.T) {
	svc, userRepo := newAuthFixture()

	userRepo.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.Role == domain.RoleStaff && !u.Approved && u.PasswordHash != "secret123!"
	})).Return(nil)

	user, err := svc.Register(context.Background(), &domain.RegisterRequest{
		Email:    "new@example.com",
		Username: "newuser",
		Password: "secret123!",
	})

	assert.NoError(t, err)
	assert.False(t, user.Approved)
	userRepo.AssertExpectations(t)
}

func TestLogin(t *testing.T) {
	password := "correct-horse"

	tests := []struct {
		name        string
		user        *domain.User
		userErr     error
		password    string
		expectedErr error
	}{
		{
			name:     "approved user with good password gets tokens",
			user:     &domain.User{Email: "a@example.com", Role: domain.RoleStaff, Approved: true},
			password: password,
		},
		{
			name:        "wrong password",
			user:        &domain.User{Email: "a@example.com", Role: domain.RoleStaff, Approved: true},
			password:    "wrong",
			expectedErr: customError.ErrInvalidCredentials,
		},
		{
			name:        "unknown email reads as bad credentials",
			userErr:     customError.ErrUserNotFound,
			password:    password,
			expectedErr: customError.ErrInvalidCredentials,
		},
		{
			name:        "unapproved account is a distinct failure",
			user:        &domain.User{Email: "a@example.com", Role: domain.RoleStaff, Approved: false},
			password:    password,
			expectedErr: customError.ErrUserNotApproved,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, userRepo := newAuthFixture()

			if tt.user != nil {
				tt.user.PasswordHash = hashFor(t, password)
				userRepo.On("GetByEmail", mock.Anything, tt.user.Email).Return(tt.user, nil)
			} else {
				userRepo.On("GetByEmail", mock.Anything, mock.Anything).Return(nil, tt.userErr)
			}

			result, err := svc.Login(context.Background(), &domain.LoginRequest{
				Email:    "a@example.com",
				Password: tt.password,
			})

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Nil(t, result)
				return
			}

			assert.NoError(t, err)
			assert.NotEmpty(t, result.Tokens.AccessToken)
			assert.NotEmpty(t, result.Tokens.RefreshToken)
		})
	}
}

func TestTokenManager_VerifyRejectsWrongType(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", 15*time.Minute, time.Hour)
	user := &domain.User{ID: uuid.New(), Role: domain.RoleStaff}

	refresh, err := tokens.GenerateRefreshToken(user.ID, user.Role)
	assert.NoError(t, err)

	_, err = tokens.Verify(refresh, auth.TokenTypeAccess)
	assert.ErrorIs(t, err, customError.ErrInvalidToken)

	claims, err := tokens.Verify(refresh, auth.TokenTypeRefresh)
	assert.NoError(t, err)
	assert.Equal(t, domain.RoleStaff, claims.Role)
}
