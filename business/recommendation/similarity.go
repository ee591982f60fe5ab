package recommendation

import "shopReco/domain"

const (
	categoryWeight = 0.4
	tagWeight      = 0.3
	featureWeight  = 0.3
)

// productProfile caches the normalized attribute sets of a product so that
// repeated comparisons within one request do not rebuild them.
type productProfile struct {
	product  domain.Product
	tags     domain.StringSet
	features domain.StringSet
}

func newProfile(p domain.Product) productProfile {
	return productProfile{
		product:  p,
		tags:     p.TagSet(),
		features: p.FeatureSet(),
	}
}

func newProfiles(products []domain.Product) []productProfile {
	out := make([]productProfile, 0, len(products))
	for _, p := range products {
		out = append(out, newProfile(p))
	}
	return out
}

// ContentSimilarity scores two products in [0, 1]:
//
//	0.4 * same category
//	+ 0.3 * |tags A ∩ tags B| / max(|tags A|, |tags B|)
//	+ 0.3 * |features A ∩ features B| / max(|features A|, |features B|)
//
// A set term contributes only when both sets are non-empty.
func ContentSimilarity(a, b domain.Product) float64 {
	return profileSimilarity(newProfile(a), newProfile(b))
}

func profileSimilarity(a, b productProfile) float64 {
	score := 0.0
	if a.product.Category == b.product.Category {
		score += categoryWeight
	}
	score += tagWeight * overlap(a.tags, b.tags)
	score += featureWeight * overlap(a.features, b.features)
	return score
}

func overlap(a, b domain.StringSet) float64 {
	if a.Len() == 0 || b.Len() == 0 {
		return 0
	}
	return float64(a.IntersectionSize(b)) / float64(max(a.Len(), b.Len()))
}

// Jaccard returns |A ∩ B| / |A ∪ B|, or 0 when both sets are empty.
func Jaccard(a, b map[uint64]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}

	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}

	inter := 0
	for id := range small {
		if _, ok := large[id]; ok {
			inter++
		}
	}

	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

func viewedSet(views []domain.ViewEvent) map[uint64]struct{} {
	set := make(map[uint64]struct{}, len(views))
	for _, v := range views {
		set[v.ProductID] = struct{}{}
	}
	return set
}
