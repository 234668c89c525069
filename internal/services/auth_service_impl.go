package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dealscope/comps-api/internal/auth"
	apperrors "github.com/dealscope/comps-api/internal/errors"
	"github.com/dealscope/comps-api/internal/models"
	"github.com/dealscope/comps-api/internal/repository"
	"github.com/dealscope/comps-api/pkg/config"
)

const bcryptCost = 12

// authServiceImpl implements AuthService
type authServiceImpl struct {
	repos      *repository.Repositories
	jwtService *auth.JWTService
}

func newAuthService(repos *repository.Repositories, cfg *config.Config) AuthService {
	return &authServiceImpl{
		repos:      repos,
		jwtService: auth.NewJWTService(cfg.JWTSecret),
	}
}

// Login authenticates a user and returns access and refresh tokens
func (s *authServiceImpl) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	user, err := s.repos.User.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid credentials", nil)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperrors.Unauthorized("invalid credentials", nil)
	}

	return s.issueTokens(user)
}

// Register creates a new user account
func (s *authServiceImpl) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	if existing, err := s.repos.User.GetByEmail(ctx, req.Email); err == nil && existing != nil {
		return nil, apperrors.Conflict(fmt.Sprintf("user with email %s already exists", req.Email), nil)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, apperrors.InternalError("failed to hash password", err)
	}

	role := req.Role
	if role == "" {
		role = string(models.RoleUser)
	}
	if role != string(models.RoleUser) && role != string(models.RoleAdmin) {
		return nil, apperrors.ValidationError(fmt.Sprintf("invalid role: %s", role), nil)
	}

	user := &models.User{
		ID:           uuid.New(),
		Email:        req.Email,
		PasswordHash: string(hashed),
		Role:         role,
	}
	if err := s.repos.User.Create(ctx, user); err != nil {
		return nil, err
	}

	user.PasswordHash = ""
	return user, nil
}

// RefreshToken exchanges a valid refresh token for a fresh token pair
func (s *authServiceImpl) RefreshToken(ctx context.Context, token string) (*models.LoginResponse, error) {
	claims, err := s.jwtService.ValidateToken(token)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid refresh token", err)
	}

	user, err := s.repos.User.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid refresh token", nil)
	}

	return s.issueTokens(user)
}

func (s *authServiceImpl) issueTokens(user *models.User) (*models.LoginResponse, error) {
	claims := auth.Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	}

	token, expiresAt, err := s.jwtService.GenerateToken(claims)
	if err != nil {
		return nil, apperrors.InternalError("failed to generate token", err)
	}
	refreshToken, _, err := s.jwtService.GenerateRefreshToken(claims)
	if err != nil {
		return nil, apperrors.InternalError("failed to generate refresh token", err)
	}

	return &models.LoginResponse{
		Token:        token,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
		User: models.User{
			ID:        user.ID,
			Email:     user.Email,
			Role:      user.Role,
			CreatedAt: user.CreatedAt,
			UpdatedAt: user.UpdatedAt,
		},
	}, nil
}
