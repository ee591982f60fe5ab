package tracking

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"shopReco/domain"
	"shopReco/pkg/logger"
	"shopReco/pkg/utils"
)

const (
	defaultRecentLimit = 10
	mostViewedLimit    = 5

	defaultHistoryPerPage = 20
	maxHistoryPerPage     = 100
	defaultHistoryDays    = 30
)

var ErrProductNotFound = errors.New("product not found")

type ViewRepository interface {
	Create(ctx context.Context, event *domain.ViewEvent) error
	RecentViews(ctx context.Context, userID uint, limit int) ([]domain.ViewEvent, error)
	AllViews(ctx context.Context, userID uint) ([]domain.ViewEvent, error)
	ViewsSince(ctx context.Context, userID uint, filter domain.HistoryFilter) ([]domain.ViewEvent, int64, error)
}

type ProductRepository interface {
	ActiveProduct(ctx context.Context, id uint64) (domain.Product, bool, error)
	ProductsByIDs(ctx context.Context, ids []uint64) ([]domain.Product, error)
	// FindByIDs also returns inactive products.
	FindByIDs(ctx context.Context, ids []uint64) ([]domain.Product, error)
}

type TrackingService struct {
	viewRepo    ViewRepository
	productRepo ProductRepository
	now         func() time.Time
}

func NewTrackingService(viewRepo ViewRepository, productRepo ProductRepository) *TrackingService {
	return &TrackingService{
		viewRepo:    viewRepo,
		productRepo: productRepo,
		now:         time.Now,
	}
}

// TrackView appends a view of an active product to the user's history.
func (s *TrackingService) TrackView(ctx context.Context, userID uint, productID uint64, duration int) (domain.ViewEvent, error) {
	if err := ctx.Err(); err != nil {
		return domain.ViewEvent{}, fmt.Errorf("context error: %w", err)
	}
	if duration < 0 {
		duration = 0
	}

	_, ok, err := s.productRepo.ActiveProduct(ctx, productID)
	if err != nil {
		return domain.ViewEvent{}, fmt.Errorf("failed to load product: %w", err)
	}
	if !ok {
		return domain.ViewEvent{}, fmt.Errorf("product %d: %w", productID, ErrProductNotFound)
	}

	event := domain.ViewEvent{
		UserID:    userID,
		ProductID: productID,
		ViewedAt:  s.now().UTC(),
		Duration:  duration,
	}
	if err := s.viewRepo.Create(ctx, &event); err != nil {
		logger.Error("failed to track view",
			"trace_id", utils.TraceIDFromContext(ctx),
			"user_id", userID,
			"product_id", productID,
			"error", err,
		)
		return domain.ViewEvent{}, fmt.Errorf("failed to track view: %w", err)
	}

	logger.Debug("view_tracked", "user_id", userID, "product_id", productID, "duration", duration)

	return event, nil
}

// RecentHistory returns the latest views joined with their products. Views of
// products that are no longer active are skipped.
func (s *TrackingService) RecentHistory(ctx context.Context, userID uint, limit int) ([]domain.ViewHistoryItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	if limit <= 0 {
		limit = defaultRecentLimit
	}

	views, err := s.viewRepo.RecentViews(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent views: %w", err)
	}

	products, err := s.productRepo.ProductsByIDs(ctx, productIDs(views))
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	byID := indexProducts(products)

	items := make([]domain.ViewHistoryItem, 0, len(views))
	for _, v := range views {
		p, ok := byID[v.ProductID]
		if !ok {
			continue
		}
		items = append(items, domain.ViewHistoryItem{ViewEvent: v, Product: p})
	}

	return items, nil
}

// History returns one page of the user's views from the last days days, newest
// first. Views of products that are gone from the catalog are skipped; inactive
// products are still shown.
func (s *TrackingService) History(ctx context.Context, userID uint, page, perPage, days int) (domain.ViewHistoryPage, error) {
	if err := ctx.Err(); err != nil {
		return domain.ViewHistoryPage{}, fmt.Errorf("context error: %w", err)
	}
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = defaultHistoryPerPage
	}
	if perPage > maxHistoryPerPage {
		perPage = maxHistoryPerPage
	}
	if days < 1 {
		days = defaultHistoryDays
	}

	filter := domain.HistoryFilter{
		Since:   s.now().UTC().AddDate(0, 0, -days),
		Page:    page,
		PerPage: perPage,
	}
	views, total, err := s.viewRepo.ViewsSince(ctx, userID, filter)
	if err != nil {
		return domain.ViewHistoryPage{}, fmt.Errorf("failed to load history: %w", err)
	}

	products, err := s.productRepo.FindByIDs(ctx, productIDs(views))
	if err != nil {
		return domain.ViewHistoryPage{}, fmt.Errorf("failed to load products: %w", err)
	}
	byID := indexProducts(products)

	items := make([]domain.ViewHistoryItem, 0, len(views))
	for _, v := range views {
		p, ok := byID[v.ProductID]
		if !ok {
			continue
		}
		items = append(items, domain.ViewHistoryItem{ViewEvent: v, Product: p})
	}

	return domain.ViewHistoryPage{
		History:    items,
		Pagination: domain.NewPagination(page, perPage, total),
	}, nil
}

// HistoryStats summarizes the user's whole history: total views, views per
// category and the most viewed products.
func (s *TrackingService) HistoryStats(ctx context.Context, userID uint) (domain.ViewStats, error) {
	if err := ctx.Err(); err != nil {
		return domain.ViewStats{}, fmt.Errorf("context error: %w", err)
	}

	views, err := s.viewRepo.AllViews(ctx, userID)
	if err != nil {
		return domain.ViewStats{}, fmt.Errorf("failed to load views: %w", err)
	}

	products, err := s.productRepo.FindByIDs(ctx, productIDs(views))
	if err != nil {
		return domain.ViewStats{}, fmt.Errorf("failed to load products: %w", err)
	}
	byID := indexProducts(products)

	categories := make(map[string]int)
	counts := make(map[uint64]*domain.ProductViewCount)
	for _, v := range views {
		if p, ok := byID[v.ProductID]; ok {
			categories[p.Category]++
		}

		c, ok := counts[v.ProductID]
		if !ok {
			c = &domain.ProductViewCount{ProductID: v.ProductID}
			counts[v.ProductID] = c
		}
		c.ViewCount++
		c.TotalDuration += v.Duration
	}

	mostViewed := make([]domain.ProductViewCount, 0, len(counts))
	for _, c := range counts {
		mostViewed = append(mostViewed, *c)
	}
	sort.Slice(mostViewed, func(i, j int) bool {
		if mostViewed[i].ViewCount != mostViewed[j].ViewCount {
			return mostViewed[i].ViewCount > mostViewed[j].ViewCount
		}
		return mostViewed[i].ProductID < mostViewed[j].ProductID
	})
	if len(mostViewed) > mostViewedLimit {
		mostViewed = mostViewed[:mostViewedLimit]
	}

	return domain.ViewStats{
		TotalViews:    len(views),
		CategoryStats: categories,
		MostViewed:    mostViewed,
	}, nil
}

func productIDs(views []domain.ViewEvent) []uint64 {
	seen := make(map[uint64]struct{}, len(views))
	ids := make([]uint64, 0, len(views))
	for _, v := range views {
		if _, ok := seen[v.ProductID]; ok {
			continue
		}
		seen[v.ProductID] = struct{}{}
		ids = append(ids, v.ProductID)
	}
	return ids
}

func indexProducts(products []domain.Product) map[uint64]domain.Product {
	out := make(map[uint64]domain.Product, len(products))
	for _, p := range products {
		out[p.ID] = p
	}
	return out
}
