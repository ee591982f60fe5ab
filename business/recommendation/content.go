package recommendation

import (
	"context"
	"fmt"
	"sort"

	"shopReco/domain"
)

// ContentRecommender scores unseen catalog products by their best content
// similarity to any of the user's recent views.
type ContentRecommender struct {
	catalog    Catalog
	history    ViewHistory
	candidates ProductCandidates
	popular    *PopularityRanker
	guard      *guard
	cfg        Config
}

func NewContentRecommender(
	catalog Catalog,
	history ViewHistory,
	candidates ProductCandidates,
	popular *PopularityRanker,
	cfg Config,
) *ContentRecommender {
	cfg = cfg.withDefaults()
	if candidates == nil {
		candidates = CatalogScan{}
	}
	return &ContentRecommender{
		catalog:    catalog,
		history:    history,
		candidates: candidates,
		popular:    popular,
		guard:      newGuard(StrategyContent, popular),
		cfg:        cfg,
	}
}

// Recommend never fails: any error or panic degrades to popular products.
func (r *ContentRecommender) Recommend(ctx context.Context, userID uint, limit int) []domain.Recommendation {
	return r.guard.run(ctx, userID, limit, func() ([]domain.Recommendation, error) {
		return r.recommend(ctx, userID, limit)
	})
}

func (r *ContentRecommender) recommend(ctx context.Context, userID uint, limit int) ([]domain.Recommendation, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	views, err := r.history.RecentViews(ctx, userID, r.cfg.RecentViews)
	if err != nil {
		return nil, fmt.Errorf("load recent views: %w", err)
	}
	if len(views) == 0 {
		countFallback(StrategyContent, reasonNoHistory)
		return r.popular.Popular(ctx, limit)
	}

	viewed := make(map[uint64]struct{}, len(views))
	ids := make([]uint64, 0, len(views))
	for _, v := range views {
		if _, dup := viewed[v.ProductID]; dup {
			continue
		}
		viewed[v.ProductID] = struct{}{}
		ids = append(ids, v.ProductID)
	}

	seeds, err := r.catalog.ProductsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve viewed products: %w", err)
	}
	if len(seeds) == 0 {
		countFallback(StrategyContent, reasonNoHistory)
		return r.popular.Popular(ctx, limit)
	}

	catalog, err := r.catalog.ActiveProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("load active products: %w", err)
	}

	seedProfiles := newProfiles(seeds)
	recs := make([]domain.Recommendation, 0)
	for i, p := range r.candidates.Candidates(seeds, catalog) {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("context error: %w", err)
			}
		}
		if _, seen := viewed[p.ID]; seen {
			continue
		}

		candidate := newProfile(p)
		best := 0.0
		for _, seed := range seedProfiles {
			if s := profileSimilarity(candidate, seed); s > best {
				best = s
			}
		}
		if best <= 0 {
			continue
		}

		recs = append(recs, domain.Recommendation{
			ProductID: p.ID,
			Product:   p,
			Score:     best,
			Algorithm: domain.AlgorithmContentBased,
		})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Score > recs[j].Score
	})

	return truncate(recs, limit), nil
}
