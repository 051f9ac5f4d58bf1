package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/fonyuygita/protrack-backend/internal/auth"
	"github.com/fonyuygita/protrack-backend/internal/domain"
	"github.com/fonyuygita/protrack-backend/internal/repository"
	customError "github.com/fonyuygita/protrack-backend/pkg/errors"
)

// AuthService handles account registration, login and the admin-approval
// gate. New accounts are staff and unapproved until an admin approves them.
type AuthService struct {
	userRepo repository.UserRepository
	tokens   *auth.TokenManager
}

func NewAuthService(userRepo repository.UserRepository, tokens *auth.TokenManager) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
	}
}

// Register creates an unapproved staff account.
func (s *AuthService) Register(ctx context.Context, request *domain.RegisterRequest) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(request.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, customError.WrapDependencyFailure("hash password", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.New(),
		Email:        request.Email,
		Username:     request.Username,
		PasswordHash: string(hash),
		Role:         domain.RoleStaff,
		Approved:     false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Login verifies credentials and issues a token pair. Unapproved accounts
// cannot log in; that failure is distinct from bad credentials.
func (s *AuthService) Login(ctx context.Context, request *domain.LoginRequest) (*domain.LoginResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, request.Email)
	if err != nil {
		// don't leak whether the email exists
		return nil, customError.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(request.Password)); err != nil {
		return nil, customError.ErrInvalidCredentials
	}

	if !user.Approved {
		return nil, customError.ErrUserNotApproved
	}

	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, err
	}

	return &domain.LoginResponse{User: user, Tokens: *tokens}, nil
}

// Refresh exchanges a valid refresh token for a new pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	claims, err := s.tokens.Verify(refreshToken, auth.TokenTypeRefresh)
	if err != nil {
		return nil, err
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, customError.ErrInvalidToken
	}

	// re-read the account so revoked approval or role changes take effect
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, customError.ErrInvalidToken
	}
	if !user.Approved {
		return nil, customError.ErrUserNotApproved
	}

	return s.issueTokens(user)
}

// ApproveUser flips the admin-approval flag on an account.
func (s *AuthService) ApproveUser(ctx context.Context, userID uuid.UUID, approved bool) error {
	return s.userRepo.SetApproved(ctx, userID, approved)
}

func (s *AuthService) issueTokens(user *domain.User) (*domain.TokenPair, error) {
	access, err := s.tokens.GenerateAccessToken(user.ID, user.Role)
	if err != nil {
		return nil, customError.WrapDependencyFailure("sign access token", err)
	}

	refresh, err := s.tokens.GenerateRefreshToken(user.ID, user.Role)
	if err != nil {
		return nil, customError.WrapDependencyFailure("sign refresh token", err)
	}

	return &domain.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
