package postgres

import (
	"context"
	"fmt"

	"shopReco/domain"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{
		DB: db,
	}
}

func (r *UserRepository) Exists(ctx context.Context, id uint) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("context error: %w", err)
	}

	var n int64
	err := r.DB.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", id).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("failed to look up user: %w", err)
	}

	return n > 0, nil
}
