package recommendation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"shopReco/domain"
	"shopReco/pkg/logger"
	"shopReco/pkg/utils"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrProductNotFound  = errors.New("product not found")
	ErrInvalidAlgorithm = errors.New("invalid algorithm")
)

// ---- Repository interfaces ----

type Catalog interface {
	ActiveProducts(ctx context.Context) ([]domain.Product, error)
	ActiveProduct(ctx context.Context, id uint64) (domain.Product, bool, error)
	// ProductsByIDs silently drops ids that are unknown or inactive.
	ProductsByIDs(ctx context.Context, ids []uint64) ([]domain.Product, error)
}

type ViewHistory interface {
	RecentViews(ctx context.Context, userID uint, limit int) ([]domain.ViewEvent, error)
	AllViews(ctx context.Context, userID uint) ([]domain.ViewEvent, error)
	KnownUsers(ctx context.Context) ([]uint, error)
}

type UserDirectory interface {
	Exists(ctx context.Context, userID uint) (bool, error)
}

type Strategy string

const (
	StrategyContent       Strategy = "content"
	StrategyCollaborative Strategy = "collaborative"
	StrategyHybrid        Strategy = "hybrid"
)

func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case "":
		return StrategyHybrid, nil
	case StrategyContent, StrategyCollaborative, StrategyHybrid:
		return Strategy(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidAlgorithm, s)
	}
}

// ---- Usecase / Service ----

type Service struct {
	catalog       *BreakerCatalog
	users         UserDirectory
	popular       *PopularityRanker
	featured      *PopularityRanker
	content       *ContentRecommender
	collaborative *CollaborativeRecommender
	similar       *SimilarityQuery
	cfg           Config
}

func NewService(
	catalog Catalog,
	history ViewHistory,
	users UserDirectory,
	candidates ProductCandidates,
	cfg Config,
) *Service {
	cfg = cfg.withDefaults()
	guarded := NewBreakerCatalog(catalog, cfg)
	popular := NewPopularityRanker(guarded, cfg.PopularMinRating)

	return &Service{
		catalog:       guarded,
		users:         users,
		popular:       popular,
		featured:      NewPopularityRanker(guarded, cfg.FeaturedMinRating),
		content:       NewContentRecommender(guarded, history, candidates, popular, cfg),
		collaborative: NewCollaborativeRecommender(guarded, history, NewHistoryScan(history), popular, cfg),
		similar:       NewSimilarityQuery(guarded, candidates, cfg),
		cfg:           cfg,
	}
}

// Recommend ranks products for userID. Computation failures never surface:
// they degrade to the popularity ranking. Only an unknown user and a cancelled
// caller produce errors.
func (s *Service) Recommend(ctx context.Context, userID uint, limit int, strategy Strategy) ([]domain.Recommendation, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	if limit <= 0 {
		limit = s.cfg.DefaultLimit
	}
	if strategy == "" {
		strategy = StrategyHybrid
	}

	traceID := utils.TraceIDFromContext(ctx)

	exists, err := s.users.Exists(ctx, userID)
	switch {
	case err != nil:
		// history may still be usable without the user row
		logger.Warn("recommendation_user_lookup_failed",
			"trace_id", traceID,
			"user_id", userID,
			"error", err,
		)
	case !exists:
		return nil, fmt.Errorf("user %d: %w", userID, ErrUserNotFound)
	}

	start := time.Now()
	RequestsTotal.WithLabelValues(string(strategy)).Inc()
	defer func() {
		Latency.WithLabelValues(string(strategy)).Observe(time.Since(start).Seconds())
	}()

	cctx, cancel := s.computeContext(ctx)
	defer cancel()

	var recs []domain.Recommendation
	switch strategy {
	case StrategyContent:
		recs = s.content.Recommend(cctx, userID, limit)
	case StrategyCollaborative:
		recs = s.collaborative.Recommend(cctx, userID, limit)
	case StrategyHybrid:
		recs = s.hybrid(cctx, userID, limit)
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidAlgorithm, strategy)
	}

	if cctx.Err() != nil {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("context error: %w", err)
		}
		logger.Warn("recommendation_fallback",
			"trace_id", traceID,
			"user_id", userID,
			"algorithm", string(strategy),
			"reason", reasonTimeout,
			"timeout", s.cfg.ComputeTimeout.String(),
		)
		countFallback(strategy, reasonTimeout)
		recs = s.popular.fallback(ctx, limit)
	}

	if recs == nil {
		recs = []domain.Recommendation{}
	}

	logger.Debug("recommendation_served",
		"trace_id", traceID,
		"user_id", userID,
		"algorithm", string(strategy),
		"count", len(recs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	return recs, nil
}

func (s *Service) computeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.ComputeTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.cfg.ComputeTimeout)
}

// hybrid computes both personalized lists concurrently, each with the full
// limit, then merges content first.
func (s *Service) hybrid(ctx context.Context, userID uint, limit int) []domain.Recommendation {
	var content, collaborative []domain.Recommendation

	var g errgroup.Group
	g.Go(func() error {
		content = s.content.Recommend(ctx, userID, limit)
		return nil
	})
	g.Go(func() error {
		collaborative = s.collaborative.Recommend(ctx, userID, limit)
		return nil
	})
	_ = g.Wait()

	return Merge(limit, content, collaborative)
}

// Merge concatenates lists in order, keeps the first occurrence of each
// product and truncates to limit.
func Merge(limit int, lists ...[]domain.Recommendation) []domain.Recommendation {
	seen := make(map[uint64]struct{})
	out := make([]domain.Recommendation, 0, limit)
	for _, list := range lists {
		for _, r := range list {
			if len(out) >= limit {
				return out
			}
			if _, dup := seen[r.ProductID]; dup {
				continue
			}
			seen[r.ProductID] = struct{}{}
			out = append(out, r)
		}
	}
	return out
}

// Similar returns products similar to productID. Unknown or inactive products
// yield ErrProductNotFound.
func (s *Service) Similar(ctx context.Context, productID uint64, limit int) (domain.Product, []domain.SimilarProduct, error) {
	return s.similar.Similar(ctx, productID, limit)
}

// Popular exposes the fallback ranking directly.
func (s *Service) Popular(ctx context.Context, limit int) ([]domain.Recommendation, error) {
	if limit <= 0 {
		limit = s.cfg.DefaultLimit
	}
	return s.popular.Popular(ctx, limit)
}

// Featured returns the best rated active products, at least FeaturedMinRating,
// ordered like the popularity ranking.
func (s *Service) Featured(ctx context.Context, limit int) ([]domain.Product, error) {
	if limit <= 0 {
		limit = s.cfg.DefaultFeaturedLimit
	}

	recs, err := s.featured.Popular(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to rank featured products: %w", err)
	}

	products := make([]domain.Product, 0, len(recs))
	for _, r := range recs {
		products = append(products, r.Product)
	}
	return products, nil
}
