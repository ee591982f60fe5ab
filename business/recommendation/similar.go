package recommendation

import (
	"context"
	"fmt"
	"sort"

	"shopReco/domain"
)

// SimilarityQuery answers "products like this one" from content similarity alone.
type SimilarityQuery struct {
	catalog    Catalog
	candidates ProductCandidates
	cfg        Config
}

func NewSimilarityQuery(catalog Catalog, candidates ProductCandidates, cfg Config) *SimilarityQuery {
	if candidates == nil {
		candidates = CatalogScan{}
	}
	return &SimilarityQuery{
		catalog:    catalog,
		candidates: candidates,
		cfg:        cfg.withDefaults(),
	}
}

// Similar returns the reference product and up to limit other active products
// whose similarity is above the configured threshold, best first.
func (q *SimilarityQuery) Similar(ctx context.Context, productID uint64, limit int) (domain.Product, []domain.SimilarProduct, error) {
	if err := ctx.Err(); err != nil {
		return domain.Product{}, nil, fmt.Errorf("context error: %w", err)
	}
	if limit <= 0 {
		limit = q.cfg.DefaultSimilarLimit
	}

	ref, ok, err := q.catalog.ActiveProduct(ctx, productID)
	if err != nil {
		return domain.Product{}, nil, fmt.Errorf("load product %d: %w", productID, err)
	}
	if !ok {
		return domain.Product{}, nil, fmt.Errorf("product %d: %w", productID, ErrProductNotFound)
	}

	catalog, err := q.catalog.ActiveProducts(ctx)
	if err != nil {
		return domain.Product{}, nil, fmt.Errorf("load active products: %w", err)
	}

	refProfile := newProfile(ref)
	out := make([]domain.SimilarProduct, 0)
	for _, p := range q.candidates.Candidates([]domain.Product{ref}, catalog) {
		if p.ID == ref.ID {
			continue
		}
		s := profileSimilarity(refProfile, newProfile(p))
		if s <= q.cfg.SimilarThreshold {
			continue
		}
		out = append(out, domain.SimilarProduct{
			ProductID:  p.ID,
			Product:    p,
			Similarity: s,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Similarity > out[j].Similarity
	})

	return ref, truncate(out, limit), nil
}
