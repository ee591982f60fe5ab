package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"shopReco/domain"

	"gorm.io/gorm"
)

type ProductRepository struct {
	DB *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{
		DB: db,
	}
}

func activeProducts(category string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Where("is_active = ?", true)
		if category != "" {
			db = db.Where("category = ?", category)
		}
		return db
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// listing applies the browse filters on top of the active catalog.
func listing(f domain.ProductFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = activeProducts(f.Category)(db)
		if f.Search != "" {
			like := "%" + likeEscaper.Replace(f.Search) + "%"
			db = db.Where("(name ILIKE ? OR description ILIKE ? OR tags::text ILIKE ?)", like, like, like)
		}
		if f.MinPrice > 0 {
			db = db.Where("price >= ?", f.MinPrice)
		}
		if f.MaxPrice > 0 {
			db = db.Where("price <= ?", f.MaxPrice)
		}
		return db
	}
}

// listingOrder only ever emits whitelisted columns. Ties go to id in the same
// direction so pages are stable.
func listingOrder(f domain.ProductFilter) string {
	column := domain.SortByCreatedAt
	switch f.SortBy {
	case domain.SortByPrice, domain.SortByRating:
		column = f.SortBy
	}
	dir := "DESC"
	if f.SortOrder == domain.SortAsc {
		dir = "ASC"
	}
	return column + " " + dir + ", id " + dir
}

// ActiveProducts returns the whole active catalog in id order. The engine
// relies on this order to break score ties.
func (r *ProductRepository) ActiveProducts(ctx context.Context) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var products []domain.Product
	err := r.DB.WithContext(ctx).
		Scopes(activeProducts("")).
		Order("id ASC").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find active products: %w", err)
	}

	return products, nil
}

func (r *ProductRepository) ActiveProduct(ctx context.Context, id uint64) (domain.Product, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.Product{}, false, fmt.Errorf("context error: %w", err)
	}

	var product domain.Product
	err := r.DB.WithContext(ctx).
		Scopes(activeProducts("")).
		Where("id = ?", id).
		Take(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Product{}, false, nil
		}
		return domain.Product{}, false, fmt.Errorf("failed to find product: %w", err)
	}

	return product, true, nil
}

// ProductsByIDs resolves ids to active products; unknown and inactive ids are dropped.
func (r *ProductRepository) ProductsByIDs(ctx context.Context, ids []uint64) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	if len(ids) == 0 {
		return []domain.Product{}, nil
	}

	var products []domain.Product
	err := r.DB.WithContext(ctx).
		Scopes(activeProducts("")).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find products by ids: %w", err)
	}

	return products, nil
}

// FindByIDs resolves ids regardless of the active flag.
func (r *ProductRepository) FindByIDs(ctx context.Context, ids []uint64) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	if len(ids) == 0 {
		return []domain.Product{}, nil
	}

	var products []domain.Product
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to find products by ids: %w", err)
	}

	return products, nil
}

// List returns one page of active products matching the filter, in the
// requested order (newest first by default), and the total match count.
func (r *ProductRepository) List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, fmt.Errorf("context error: %w", err)
	}

	var total int64
	err := r.DB.WithContext(ctx).
		Model(&domain.Product{}).
		Scopes(listing(filter)).
		Count(&total).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}
	if total == 0 {
		return []domain.Product{}, 0, nil
	}

	var products []domain.Product
	err = r.DB.WithContext(ctx).
		Scopes(listing(filter)).
		Order(listingOrder(filter)).
		Limit(filter.PerPage).
		Offset((filter.Page - 1) * filter.PerPage).
		Find(&products).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}

	return products, total, nil
}

func (r *ProductRepository) Categories(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var categories []string
	err := r.DB.WithContext(ctx).
		Model(&domain.Product{}).
		Scopes(activeProducts("")).
		Distinct("category").
		Order("category ASC").
		Pluck("category", &categories).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	return categories, nil
}
