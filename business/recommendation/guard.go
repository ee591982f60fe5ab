package recommendation

import (
	"context"
	"errors"
	"fmt"

	"github.com/sony/gobreaker/v2"

	"shopReco/domain"
	"shopReco/pkg/logger"
	"shopReco/pkg/utils"
)

var errComputationPanic = errors.New("recommendation computation panicked")

// guard turns every failure of one request's computation into the popularity
// fallback. It keeps no state between requests. Callers never see the error.
type guard struct {
	strategy Strategy
	popular  *PopularityRanker
}

func newGuard(strategy Strategy, popular *PopularityRanker) *guard {
	return &guard{
		strategy: strategy,
		popular:  popular,
	}
}

// run returns nil when ctx is done so that the caller can apply its own
// deadline policy.
func (g *guard) run(
	ctx context.Context,
	userID uint,
	limit int,
	compute func() ([]domain.Recommendation, error),
) []domain.Recommendation {
	recs, err := g.safely(compute)
	if err == nil {
		return recs
	}
	if ctx.Err() != nil {
		return nil
	}

	reason := reasonError
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		reason = reasonBreakerOpen
	}

	logger.Warn("recommendation_fallback",
		"trace_id", utils.TraceIDFromContext(ctx),
		"user_id", userID,
		"algorithm", string(g.strategy),
		"reason", reason,
		"error", err,
	)
	countFallback(g.strategy, reason)

	return g.popular.fallback(ctx, limit)
}

func (g *guard) safely(compute func() ([]domain.Recommendation, error)) (out []domain.Recommendation, err error) {
	defer func() {
		if p := recover(); p != nil {
			out, err = nil, fmt.Errorf("%w: %v", errComputationPanic, p)
		}
	}()
	return compute()
}
