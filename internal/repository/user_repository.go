// Package repository persists accounts. Reads return fresh records and writes
// go through explicit UserMutation commands.
package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "budgetcontrol/internal/errors"
	"budgetcontrol/internal/models"
)

// UserRepository is the account store used by the lifecycle and session layers.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindIdentity(ctx context.Context, id string) (*models.Identity, error)
	FindByOneTimeToken(ctx context.Context, code string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Apply(ctx context.Context, id string, mutation UserMutation) (*models.User, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a gorm-backed UserRepository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.first(ctx, "email = ?", NormalizeEmail(email))
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *userRepository) FindByOneTimeToken(ctx context.Context, code string) (*models.User, error) {
	if code == "" {
		return nil, apperrors.ErrUserNotFound
	}
	return r.first(ctx, "one_time_token = ?", code)
}

// FindIdentity loads only the non-sensitive columns of a user.
func (r *userRepository) FindIdentity(ctx context.Context, id string) (*models.Identity, error) {
	var identity models.Identity
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Select("id", "name", "email").
		Where("id = ?", id).
		Take(&identity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &identity, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	user.Email = NormalizeEmail(user.Email)
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.ErrDuplicateEmail
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// Apply runs a single-row update for the mutation and returns the updated record.
func (r *userRepository) Apply(ctx context.Context, id string, mutation UserMutation) (*models.User, error) {
	cols := mutation.columns()
	if len(cols) == 0 {
		return r.FindByID(ctx, id)
	}

	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(cols)
	if res.Error != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.ErrUserNotFound
	}
	return r.FindByID(ctx, id)
}

func (r *userRepository) first(ctx context.Context, query string, arg interface{}) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where(query, arg).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}
