package service

import (
	"context"
	"fmt"

	"decantifume-api/internal/apperr"
	"decantifume-api/internal/auth"
	"decantifume-api/internal/dto"
	"decantifume-api/internal/model"
	"decantifume-api/internal/repository"
)

type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*model.User, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
	ChangePassword(ctx context.Context, userID string, req *dto.ChangePasswordRequest) error
	RefreshToken(ctx context.Context, refreshToken string) (*dto.RefreshTokenResponse, error)
}

type authServiceImpl struct {
	userRepo   repository.UserRepository
	tokens     *auth.TokenIssuer
	bcryptCost int
}

func NewAuthService(userRepo repository.UserRepository, tokens *auth.TokenIssuer, bcryptCost int) AuthService {
	return &authServiceImpl{
		userRepo:   userRepo,
		tokens:     tokens,
		bcryptCost: bcryptCost,
	}
}

func (s *authServiceImpl) Register(ctx context.Context, req *dto.RegisterRequest) (*model.User, error) {
	exists, err := s.userRepo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, apperr.Conflict("User already exists with this email")
	}

	hash, err := auth.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: hash,
		Role:     model.RoleUser,
		Status:   model.UserStatusActive,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

func (s *authServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if isNotFound(err) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	if !auth.ComparePassword(user.Password, req.Password) {
		return nil, apperr.Unauthorized("Invalid credentials")
	}

	pair, err := s.tokens.IssuePair(user.ID, user.Role)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User: dto.UserSummary{
			ID:    user.ID,
			Name:  user.Name,
			Email: user.Email,
			Role:  string(user.Role),
		},
	}, nil
}

func (s *authServiceImpl) ChangePassword(ctx context.Context, userID string, req *dto.ChangePasswordRequest) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if isNotFound(err) {
		return apperr.NotFound("User not found")
	}
	if err != nil {
		return fmt.Errorf("find user: %w", err)
	}

	if !auth.ComparePassword(user.Password, req.OldPassword) {
		return apperr.Unauthorized("Old password is incorrect")
	}

	hash, err := auth.HashPassword(req.NewPassword, s.bcryptCost)
	if err != nil {
		return err
	}

	if err := s.userRepo.UpdatePassword(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

func (s *authServiceImpl) RefreshToken(ctx context.Context, refreshToken string) (*dto.RefreshTokenResponse, error) {
	claims, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid refresh token")
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if isNotFound(err) {
		return nil, apperr.Unauthorized("The user no longer exists")
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	// role comes from the stored user, not the refresh token
	access, err := s.tokens.IssueAccess(user.ID, user.Role)
	if err != nil {
		return nil, err
	}

	return &dto.RefreshTokenResponse{AccessToken: access}, nil
}
