package recommendation

import (
	"context"
	"fmt"
	"sort"

	"shopReco/domain"
)

// ProductCandidates narrows the active catalog to the products that may score
// above zero against the given seed products. Implementations must preserve
// catalog order so that score ties keep breaking the same way.
type ProductCandidates interface {
	Candidates(seeds, catalog []domain.Product) []domain.Product
}

// NeighborSource yields every other known user with a non-empty history and
// their Jaccard similarity to the target's viewed set.
type NeighborSource interface {
	Neighbors(ctx context.Context, userID uint, viewed map[uint64]struct{}) ([]domain.UserSimilarity, error)
}

// CatalogScan considers the whole catalog.
type CatalogScan struct{}

func (CatalogScan) Candidates(_, catalog []domain.Product) []domain.Product {
	return catalog
}

// TagIndex builds an inverted index from category, tag and feature labels to
// catalog positions and returns only products sharing at least one label with a
// seed. Products without a shared label have similarity 0, so results match
// CatalogScan exactly.
type TagIndex struct{}

type indexKey struct {
	kind  byte
	label string
}

const (
	kindCategory byte = 'c'
	kindTag      byte = 't'
	kindFeature  byte = 'f'
)

func (TagIndex) Candidates(seeds, catalog []domain.Product) []domain.Product {
	if len(seeds) == 0 {
		return nil
	}

	index := make(map[indexKey][]int)
	for i, p := range catalog {
		for _, k := range profileKeys(newProfile(p)) {
			index[k] = append(index[k], i)
		}
	}

	hit := make(map[int]struct{})
	for _, seed := range seeds {
		for _, k := range profileKeys(newProfile(seed)) {
			for _, pos := range index[k] {
				hit[pos] = struct{}{}
			}
		}
	}

	positions := make([]int, 0, len(hit))
	for pos := range hit {
		positions = append(positions, pos)
	}
	sort.Ints(positions)

	out := make([]domain.Product, 0, len(positions))
	for _, pos := range positions {
		out = append(out, catalog[pos])
	}
	return out
}

func profileKeys(p productProfile) []indexKey {
	keys := make([]indexKey, 0, 1+p.tags.Len()+p.features.Len())
	keys = append(keys, indexKey{kind: kindCategory, label: p.product.Category})
	for t := range p.tags {
		keys = append(keys, indexKey{kind: kindTag, label: t})
	}
	for f := range p.features {
		keys = append(keys, indexKey{kind: kindFeature, label: f})
	}
	return keys
}

// NewProductCandidates maps a configured source name to an implementation.
func NewProductCandidates(name string) (ProductCandidates, error) {
	switch name {
	case "", "scan":
		return CatalogScan{}, nil
	case "index":
		return TagIndex{}, nil
	default:
		return nil, fmt.Errorf("unknown candidate source: %s", name)
	}
}

// HistoryScan enumerates every known user and loads their full view history.
type HistoryScan struct {
	history ViewHistory
}

func NewHistoryScan(history ViewHistory) *HistoryScan {
	return &HistoryScan{history: history}
}

func (s *HistoryScan) Neighbors(ctx context.Context, userID uint, viewed map[uint64]struct{}) ([]domain.UserSimilarity, error) {
	users, err := s.history.KnownUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list known users: %w", err)
	}

	out := make([]domain.UserSimilarity, 0, len(users))
	for _, other := range users {
		if other == userID {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("context error: %w", err)
		}

		views, err := s.history.AllViews(ctx, other)
		if err != nil {
			return nil, fmt.Errorf("load views of user %d: %w", other, err)
		}

		set := viewedSet(views)
		if len(set) == 0 {
			continue
		}

		out = append(out, domain.UserSimilarity{
			UserID:           other,
			Similarity:       Jaccard(viewed, set),
			ViewedProductIDs: set,
		})
	}

	return out, nil
}
