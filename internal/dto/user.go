package dto

import "decantifume-api/internal/model"

type CreateUserRequest struct {
	Name       string           `json:"name" validate:"required,min=1,max=50"`
	Email      string           `json:"email" validate:"required,email"`
	Password   string           `json:"password" validate:"required,min=6,max=20"`
	Role       model.Role       `json:"role" validate:"omitempty,oneof=user admin"`
	Status     model.UserStatus `json:"status" validate:"omitempty,oneof=active blocked"`
	ProfileImg string           `json:"profileImg" validate:"omitempty,url"`
}

type UpdateUserRequest struct {
	Name        *string           `json:"name" validate:"omitempty,min=1,max=50"`
	Email       *string           `json:"email" validate:"omitempty,email"`
	Role        *model.Role       `json:"role" validate:"omitempty,oneof=user admin"`
	Status      *model.UserStatus `json:"status" validate:"omitempty,oneof=active blocked"`
	ProfileImg  *string           `json:"profileImg" validate:"omitempty,url"`
	Phone       *string           `json:"phone" validate:"omitempty,max=32"`
	DateOfBirth *string           `json:"dateOfBirth" validate:"omitempty,max=32"`
	Address     *model.Address    `json:"address"`
}

type UpdateRoleRequest struct {
	Role model.Role `json:"role" validate:"required,oneof=user admin"`
}

type UserQuery struct {
	PageQuery
	SearchTerm string `query:"searchTerm" validate:"omitempty,max=100"`
	Role       string `query:"role" validate:"omitempty,oneof=user admin"`
	Status     string `query:"status" validate:"omitempty,oneof=active blocked"`
	SortBy     string `query:"sortBy" validate:"omitempty,oneof=name email createdAt"`
}

type UserStats struct {
	TotalUsers    int64 `json:"totalUsers"`
	ActiveUsers   int64 `json:"activeUsers"`
	InactiveUsers int64 `json:"inactiveUsers"`
	AdminUsers    int64 `json:"adminUsers"`
	RegularUsers  int64 `json:"regularUsers"`
}
