package repository

import (
	"context"

	"decantifume-api/internal/dto"
	"decantifume-api/internal/model"

	"gorm.io/gorm"
)

type UserFilter struct {
	SearchTerm *string
	Role       *model.Role
	Status     *model.UserStatus
	Pagination Pagination
	Sort       Sort
}

var userSortColumns = map[string]string{
	"name":      "name",
	"email":     "email",
	"createdAt": "created_at",
}

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindAnyByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	List(ctx context.Context, filter UserFilter) ([]model.User, int64, error)
	Save(ctx context.Context, user *model.User) error
	UpdatePassword(ctx context.Context, id, hash string) error
	UpdateRole(ctx context.Context, id string, role model.Role) error
	SoftDelete(ctx context.Context, id string) error
	Stats(ctx context.Context) (*dto.UserStats, error)
}

type userRepoImpl struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepoImpl{
		db: db,
	}
}

func (r *userRepoImpl) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepoImpl) FindByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Scopes(notDeleted).
		Where("id = ?", id).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindAnyByID includes soft-deleted users so callers can tell the two
// failure cases apart.
func (r *userRepoImpl) FindAnyByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepoImpl) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Scopes(notDeleted).
		Where("email = ?", model.NormalizeEmail(email)).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ExistsByEmail checks every row, deleted or not, since the unique index does.
func (r *userRepoImpl) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.User{}).
		Where("email = ?", model.NormalizeEmail(email)).
		Count(&count).Error
	return count > 0, err
}

func (r *userRepoImpl) List(ctx context.Context, filter UserFilter) ([]model.User, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.User{}).Scopes(notDeleted)

	if filter.SearchTerm != nil && *filter.SearchTerm != "" {
		term := likePattern(*filter.SearchTerm)
		q = q.Where("(LOWER(name) LIKE ? OR LOWER(email) LIKE ?)", term, term)
	}
	if filter.Role != nil {
		q = q.Where("role = ?", *filter.Role)
	}
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}

	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []model.User
	err := q.Order(orderBy(filter.Sort, userSortColumns, "created_at")).
		Scopes(paginate(filter.Pagination.Normalize())).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

func (r *userRepoImpl) Save(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *userRepoImpl) UpdatePassword(ctx context.Context, id, hash string) error {
	return r.updateColumn(ctx, id, "password", hash)
}

func (r *userRepoImpl) UpdateRole(ctx context.Context, id string, role model.Role) error {
	return r.updateColumn(ctx, id, "role", role)
}

func (r *userRepoImpl) SoftDelete(ctx context.Context, id string) error {
	return r.updateColumn(ctx, id, "is_deleted", true)
}

func (r *userRepoImpl) updateColumn(ctx context.Context, id, column string, value any) error {
	result := r.db.WithContext(ctx).Model(&model.User{}).
		Scopes(notDeleted).
		Where("id = ?", id).
		Update(column, value)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *userRepoImpl) Stats(ctx context.Context) (*dto.UserStats, error) {
	var stats dto.UserStats
	err := r.db.WithContext(ctx).Model(&model.User{}).
		Scopes(notDeleted).
		Select(`COUNT(*) AS total_users,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS active_users,
			COALESCE(SUM(CASE WHEN status <> ? THEN 1 ELSE 0 END), 0) AS inactive_users,
			COALESCE(SUM(CASE WHEN role = ? THEN 1 ELSE 0 END), 0) AS admin_users,
			COALESCE(SUM(CASE WHEN role = ? THEN 1 ELSE 0 END), 0) AS regular_users`,
			model.UserStatusActive, model.UserStatusActive, model.RoleAdmin, model.RoleUser).
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
