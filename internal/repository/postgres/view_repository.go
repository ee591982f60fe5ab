package postgres

import (
	"context"
	"fmt"

	"shopReco/domain"

	"gorm.io/gorm"
)

type ViewRepository struct {
	DB *gorm.DB
}

func NewViewRepository(db *gorm.DB) *ViewRepository {
	return &ViewRepository{DB: db}
}

func (r *ViewRepository) Create(ctx context.Context, event *domain.ViewEvent) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("failed to save view event: %w", err)
	}

	return nil
}

// RecentViews returns at most limit views of the user, newest first.
func (r *ViewRepository) RecentViews(ctx context.Context, userID uint, limit int) ([]domain.ViewEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var views []domain.ViewEvent
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("viewed_at DESC, id DESC").
		Limit(limit).
		Find(&views).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query recent views: %w", err)
	}

	return views, nil
}

// ViewsSince returns one page of the user's views at or after filter.Since,
// newest first, with the number of views in the window.
func (r *ViewRepository) ViewsSince(ctx context.Context, userID uint, filter domain.HistoryFilter) ([]domain.ViewEvent, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, fmt.Errorf("context error: %w", err)
	}

	window := func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ? AND viewed_at >= ?", userID, filter.Since)
	}

	var total int64
	err := r.DB.WithContext(ctx).
		Model(&domain.ViewEvent{}).
		Scopes(window).
		Count(&total).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count views: %w", err)
	}
	if total == 0 {
		return []domain.ViewEvent{}, 0, nil
	}

	var views []domain.ViewEvent
	err = r.DB.WithContext(ctx).
		Scopes(window).
		Order("viewed_at DESC, id DESC").
		Limit(filter.PerPage).
		Offset((filter.Page - 1) * filter.PerPage).
		Find(&views).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query views: %w", err)
	}

	return views, total, nil
}

func (r *ViewRepository) AllViews(ctx context.Context, userID uint) ([]domain.ViewEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var views []domain.ViewEvent
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("viewed_at ASC, id ASC").
		Find(&views).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query views: %w", err)
	}

	return views, nil
}

// KnownUsers lists every user with at least one view. Users who never viewed
// anything cannot be collaborative neighbors.
func (r *ViewRepository) KnownUsers(ctx context.Context) ([]uint, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var ids []uint
	err := r.DB.WithContext(ctx).
		Model(&domain.ViewEvent{}).
		Distinct("user_id").
		Order("user_id ASC").
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list known users: %w", err)
	}

	return ids, nil
}
