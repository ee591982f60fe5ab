package recommendation

import (
	"context"
	"fmt"
	"sort"

	"shopReco/domain"
	"shopReco/pkg/logger"
	"shopReco/pkg/utils"
)

// PopularityRanker ranks the active catalog by rating and review count,
// independent of any user.
type PopularityRanker struct {
	catalog   Catalog
	minRating float64
}

func NewPopularityRanker(catalog Catalog, minRating float64) *PopularityRanker {
	return &PopularityRanker{
		catalog:   catalog,
		minRating: minRating,
	}
}

// Popular returns up to limit products rated at least minRating, ordered by
// rating, then review count, then product id. Score is the product rating.
func (r *PopularityRanker) Popular(ctx context.Context, limit int) ([]domain.Recommendation, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	products, err := r.catalog.ActiveProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("load active products: %w", err)
	}

	eligible := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if p.Rating >= r.minRating {
			eligible = append(eligible, p)
		}
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		a, b := eligible[i], eligible[j]
		if a.Rating != b.Rating {
			return a.Rating > b.Rating
		}
		if a.ReviewCount != b.ReviewCount {
			return a.ReviewCount > b.ReviewCount
		}
		return a.ID < b.ID
	})
	eligible = truncate(eligible, limit)

	recs := make([]domain.Recommendation, 0, len(eligible))
	for _, p := range eligible {
		recs = append(recs, domain.Recommendation{
			ProductID: p.ID,
			Product:   p,
			Score:     p.Rating,
			Algorithm: domain.AlgorithmPopular,
		})
	}

	return recs, nil
}

// fallback is Popular for callers that must not fail: errors are logged and
// yield an empty list.
func (r *PopularityRanker) fallback(ctx context.Context, limit int) []domain.Recommendation {
	recs, err := r.Popular(ctx, limit)
	if err != nil {
		logger.Error("popular_fallback_failed",
			"trace_id", utils.TraceIDFromContext(ctx),
			"limit", limit,
			"error", err,
		)
		return []domain.Recommendation{}
	}
	return recs
}

func truncate[T any](items []T, limit int) []T {
	if limit < 0 {
		limit = 0
	}
	if len(items) > limit {
		return items[:limit]
	}
	return items
}
