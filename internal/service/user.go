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

type UserService interface {
	Create(ctx context.Context, req *dto.CreateUserRequest) (*model.User, error)
	List(ctx context.Context, q *dto.UserQuery) (*dto.Page[model.User], error)
	Get(ctx context.Context, id string, caller Caller) (*model.User, error)
	Update(ctx context.Context, id string, caller Caller, req *dto.UpdateUserRequest) (*model.User, error)
	UpdateRole(ctx context.Context, id string, role model.Role) (*model.User, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (*dto.UserStats, error)
}

type userServiceImpl struct {
	userRepo   repository.UserRepository
	bcryptCost int
}

func NewUserService(userRepo repository.UserRepository, bcryptCost int) UserService {
	return &userServiceImpl{
		userRepo:   userRepo,
		bcryptCost: bcryptCost,
	}
}

func (s *userServiceImpl) Create(ctx context.Context, req *dto.CreateUserRequest) (*model.User, error) {
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
		Name:       req.Name,
		Email:      req.Email,
		Password:   hash,
		Role:       req.Role,
		Status:     req.Status,
		ProfileImg: req.ProfileImg,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (s *userServiceImpl) List(ctx context.Context, q *dto.UserQuery) (*dto.Page[model.User], error) {
	filter := repository.UserFilter{
		Role:       optional[model.Role](q.Role),
		Status:     optional[model.UserStatus](q.Status),
		Pagination: pagination(q.PageQuery),
		Sort:       sortFor(q.SortBy, q.SortOrder),
	}
	if q.SearchTerm != "" {
		filter.SearchTerm = &q.SearchTerm
	}

	users, total, err := s.userRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return newPage(users, filter.Pagination, total), nil
}

func (s *userServiceImpl) Get(ctx context.Context, id string, caller Caller) (*model.User, error) {
	if err := parseID(id); err != nil {
		return nil, err
	}
	if !caller.CanAccess(id) {
		return nil, apperr.Forbidden("You are not authorized to access this user")
	}

	return s.find(ctx, id)
}

func (s *userServiceImpl) Update(ctx context.Context, id string, caller Caller, req *dto.UpdateUserRequest) (*model.User, error) {
	if err := parseID(id); err != nil {
		return nil, err
	}
	if !caller.CanAccess(id) {
		return nil, apperr.Forbidden("You are not authorized to update this user")
	}
	if !caller.IsAdmin() && (req.Role != nil || req.Status != nil) {
		return nil, apperr.Forbidden("Only admins can change role or status")
	}

	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Email != nil && model.NormalizeEmail(*req.Email) != user.Email {
		exists, err := s.userRepo.ExistsByEmail(ctx, *req.Email)
		if err != nil {
			return nil, fmt.Errorf("check email: %w", err)
		}
		if exists {
			return nil, apperr.Conflict("User already exists with this email")
		}
		user.Email = *req.Email
	}
	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Role != nil {
		user.Role = *req.Role
	}
	if req.Status != nil {
		user.Status = *req.Status
	}
	if req.ProfileImg != nil {
		user.ProfileImg = *req.ProfileImg
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.DateOfBirth != nil {
		user.DateOfBirth = *req.DateOfBirth
	}
	if req.Address != nil {
		user.Address = *req.Address
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}
	return user, nil
}

func (s *userServiceImpl) UpdateRole(ctx context.Context, id string, role model.Role) (*model.User, error) {
	if err := parseID(id); err != nil {
		return nil, err
	}

	err := s.userRepo.UpdateRole(ctx, id, role)
	if isNotFound(err) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, fmt.Errorf("update role: %w", err)
	}

	return s.find(ctx, id)
}

func (s *userServiceImpl) Delete(ctx context.Context, id string) error {
	if err := parseID(id); err != nil {
		return err
	}

	err := s.userRepo.SoftDelete(ctx, id)
	if isNotFound(err) {
		return apperr.NotFound("User not found")
	}
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

func (s *userServiceImpl) Stats(ctx context.Context) (*dto.UserStats, error) {
	stats, err := s.userRepo.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("user stats: %w", err)
	}
	return stats, nil
}

func (s *userServiceImpl) find(ctx context.Context, id string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if isNotFound(err) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}
