package domain

// Algorithm tags the source of a recommendation.
type Algorithm string

const (
	AlgorithmContentBased  Algorithm = "content_based"
	AlgorithmCollaborative Algorithm = "collaborative"
	AlgorithmPopular       Algorithm = "popular"
)

type Recommendation struct {
	ProductID uint64    `json:"product_id"`
	Product   Product   `json:"product"`
	Score     float64   `json:"score"`
	Algorithm Algorithm `json:"algorithm"`
}

// UserSimilarity is a neighbor of the target user, computed per request.
type UserSimilarity struct {
	UserID           uint                `json:"user_id"`
	Similarity       float64             `json:"similarity"`
	ViewedProductIDs map[uint64]struct{} `json:"-"`
}

type SimilarProduct struct {
	ProductID  uint64  `json:"product_id"`
	Product    Product `json:"product"`
	Similarity float64 `json:"similarity"`
}
