package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"shopReco/domain"
	"shopReco/pkg/logger"
)

const (
	defaultPerPage = 10
	maxPerPage     = 100
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidFilter   = errors.New("invalid product filter")
)

// ProductRepository contract interface
type ProductRepository interface {
	List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, int64, error)
	ActiveProduct(ctx context.Context, id uint64) (domain.Product, bool, error)
	Categories(ctx context.Context) ([]string, error)
}

type productService struct {
	productRepo ProductRepository
}

func NewProductService(productRepo ProductRepository) *productService {
	return &productService{
		productRepo: productRepo,
	}
}

// ListProducts returns one page of active products. Without sort options the
// newest come first.
func (s *productService) ListProducts(ctx context.Context, filter domain.ProductFilter) (domain.ProductPage, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when list products")
		return domain.ProductPage{}, fmt.Errorf("context error: %w", err)
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PerPage < 1 {
		filter.PerPage = defaultPerPage
	}
	if filter.PerPage > maxPerPage {
		filter.PerPage = maxPerPage
	}
	if err := normalizeFilter(&filter); err != nil {
		return domain.ProductPage{}, err
	}

	products, total, err := s.productRepo.List(ctx, filter)
	if err != nil {
		logger.Error("failed to list products", "category", filter.Category, "error", err)
		return domain.ProductPage{}, fmt.Errorf("failed to list products: %w", err)
	}
	if products == nil {
		products = []domain.Product{}
	}

	return domain.ProductPage{
		Products:   products,
		Pagination: domain.NewPagination(filter.Page, filter.PerPage, total),
	}, nil
}

func normalizeFilter(f *domain.ProductFilter) error {
	f.Search = strings.TrimSpace(f.Search)

	switch f.SortBy {
	case "":
		f.SortBy = domain.SortByCreatedAt
	case domain.SortByCreatedAt, domain.SortByPrice, domain.SortByRating:
	default:
		return fmt.Errorf("%w: sort_by %q", ErrInvalidFilter, f.SortBy)
	}

	switch f.SortOrder {
	case "":
		f.SortOrder = domain.SortDesc
	case domain.SortAsc, domain.SortDesc:
	default:
		return fmt.Errorf("%w: sort_order %q", ErrInvalidFilter, f.SortOrder)
	}

	if f.MinPrice < 0 || f.MaxPrice < 0 {
		return fmt.Errorf("%w: negative price", ErrInvalidFilter)
	}
	if f.MinPrice > 0 && f.MaxPrice > 0 && f.MinPrice > f.MaxPrice {
		return fmt.Errorf("%w: min_price above max_price", ErrInvalidFilter)
	}

	return nil
}

func (s *productService) GetProductByID(ctx context.Context, id uint64) (domain.Product, error) {
	if id == 0 {
		return domain.Product{}, ErrProductNotFound
	}

	if err := ctx.Err(); err != nil {
		logger.Error("context error when get product")
		return domain.Product{}, fmt.Errorf("context error: %w", err)
	}

	product, ok, err := s.productRepo.ActiveProduct(ctx, id)
	if err != nil {
		logger.Error("failed to find product by id", "product_id", id, "error", err)
		return domain.Product{}, err
	}
	if !ok {
		return domain.Product{}, fmt.Errorf("product %d: %w", id, ErrProductNotFound)
	}

	return product, nil
}

func (s *productService) GetCategories(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	categories, err := s.productRepo.Categories(ctx)
	if err != nil {
		logger.Error("failed to list categories", "error", err)
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	if categories == nil {
		categories = []string{}
	}

	return categories, nil
}
