package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/So-lol/ace-website-sub001/internal/apperr"
	"github.com/So-lol/ace-website-sub001/internal/constants"
	gormModels "github.com/So-lol/ace-website-sub001/internal/models/gorm"

	"gorm.io/gorm"
)

type UserRepositoryGORM struct {
	db *gorm.DB
}

// NewUserRepositoryGORM creates a new GORM-based user repository
func NewUserRepositoryGORM(db *gorm.DB) *UserRepositoryGORM {
	return &UserRepositoryGORM{db: db}
}

func (r *UserRepositoryGORM) first(ctx context.Context, query string, arg any) (*gormModels.User, error) {
	var user gormModels.User

	err := r.db.WithContext(ctx).
		Where(query, arg).
		First(&user).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("user")
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}

	return &user, nil
}

func (r *UserRepositoryGORM) GetByID(ctx context.Context, id string) (*gormModels.User, error) {
	return r.first(ctx, "id = ?", id)
}

// GetByExternalUID retrieves a user by the identity provider subject
func (r *UserRepositoryGORM) GetByExternalUID(ctx context.Context, uid string) (*gormModels.User, error) {
	return r.first(ctx, "external_uid = ?", uid)
}

// GetByEmail matches case-insensitively; emails are stored lower-cased.
func (r *UserRepositoryGORM) GetByEmail(ctx context.Context, email string) (*gormModels.User, error) {
	return r.first(ctx, "email = ?", strings.ToLower(strings.TrimSpace(email)))
}

func (r *UserRepositoryGORM) Create(ctx context.Context, user *gormModels.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// Update writes the given columns; keys are column names.
func (r *UserRepositoryGORM) Update(ctx context.Context, id string, fields map[string]any) error {
	res := r.db.WithContext(ctx).
		Model(&gormModels.User{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("failed to update user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("user")
	}
	return nil
}

func (r *UserRepositoryGORM) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&gormModels.User{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("user")
	}
	return nil
}

// List returns users ordered by name, optionally restricted to one role.
func (r *UserRepositoryGORM) List(ctx context.Context, role constants.Role) ([]gormModels.User, error) {
	var users []gormModels.User
	q := r.db.WithContext(ctx).Order("name, email")
	if role != "" {
		q = q.Where("role = ?", role)
	}
	if err := q.Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// CountExisting returns how many of ids exist.
func (r *UserRepositoryGORM) CountExisting(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var n int64
	err := r.db.WithContext(ctx).Model(&gormModels.User{}).Where("id IN ?", ids).Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}
