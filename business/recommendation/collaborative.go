package recommendation

import (
	"context"
	"fmt"
	"sort"

	"shopReco/domain"
)

// CollaborativeRecommender scores products seen by similar users. A product's
// score is the sum of the similarities of the neighbors who viewed it.
type CollaborativeRecommender struct {
	catalog   Catalog
	history   ViewHistory
	neighbors NeighborSource
	popular   *PopularityRanker
	guard     *guard
	cfg       Config
}

func NewCollaborativeRecommender(
	catalog Catalog,
	history ViewHistory,
	neighbors NeighborSource,
	popular *PopularityRanker,
	cfg Config,
) *CollaborativeRecommender {
	cfg = cfg.withDefaults()
	if neighbors == nil {
		neighbors = NewHistoryScan(history)
	}
	return &CollaborativeRecommender{
		catalog:   catalog,
		history:   history,
		neighbors: neighbors,
		popular:   popular,
		guard:     newGuard(StrategyCollaborative, popular),
		cfg:       cfg,
	}
}

// Recommend never fails: any error or panic degrades to popular products.
func (r *CollaborativeRecommender) Recommend(ctx context.Context, userID uint, limit int) []domain.Recommendation {
	return r.guard.run(ctx, userID, limit, func() ([]domain.Recommendation, error) {
		return r.recommend(ctx, userID, limit)
	})
}

func (r *CollaborativeRecommender) recommend(ctx context.Context, userID uint, limit int) ([]domain.Recommendation, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	views, err := r.history.AllViews(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load view history: %w", err)
	}
	viewed := viewedSet(views)
	if len(viewed) == 0 {
		countFallback(StrategyCollaborative, reasonNoHistory)
		return r.popular.Popular(ctx, limit)
	}

	all, err := r.neighbors.Neighbors(ctx, userID, viewed)
	if err != nil {
		return nil, fmt.Errorf("find neighbors: %w", err)
	}

	neighbors := make([]domain.UserSimilarity, 0, len(all))
	for _, n := range all {
		if n.UserID != userID && n.Similarity > r.cfg.NeighborThreshold {
			neighbors = append(neighbors, n)
		}
	}
	if len(neighbors) == 0 {
		countFallback(StrategyCollaborative, reasonNoNeighbors)
		return r.popular.Popular(ctx, limit)
	}

	sort.SliceStable(neighbors, func(i, j int) bool {
		if neighbors[i].Similarity != neighbors[j].Similarity {
			return neighbors[i].Similarity > neighbors[j].Similarity
		}
		return neighbors[i].UserID < neighbors[j].UserID
	})
	neighbors = truncate(neighbors, r.cfg.MaxNeighbors)

	scores := make(map[uint64]float64)
	for _, n := range neighbors {
		for id := range n.ViewedProductIDs {
			if _, seen := viewed[id]; seen {
				continue
			}
			scores[id] += n.Similarity
		}
	}
	if len(scores) == 0 {
		return []domain.Recommendation{}, nil
	}

	ids := make([]uint64, 0, len(scores))
	for id := range scores {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	products, err := r.catalog.ProductsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve candidate products: %w", err)
	}

	recs := make([]domain.Recommendation, 0, len(products))
	for _, p := range products {
		score, ok := scores[p.ID]
		if !ok {
			continue
		}
		recs = append(recs, domain.Recommendation{
			ProductID: p.ID,
			Product:   p,
			Score:     score,
			Algorithm: domain.AlgorithmCollaborative,
		})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].Score != recs[j].Score {
			return recs[i].Score > recs[j].Score
		}
		return recs[i].ProductID < recs[j].ProductID
	})

	return truncate(recs, limit), nil
}
