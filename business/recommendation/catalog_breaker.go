package recommendation

import (
	"context"
	"errors"

	"github.com/sony/gobreaker/v2"

	"shopReco/domain"
	"shopReco/pkg/logger"
)

// BreakerCatalog guards the shared product store with a circuit breaker.
// Only store errors count as failures: the catalog is the same for every user,
// so an open breaker changes nothing that a healthy computation could have
// produced. Per-user history faults and panics never reach it.
type BreakerCatalog struct {
	catalog Catalog
	cb      *gobreaker.CircuitBreaker[[]domain.Product]
}

func NewBreakerCatalog(catalog Catalog, cfg Config) *BreakerCatalog {
	cfg = cfg.withDefaults()
	failures := cfg.BreakerFailures
	cb := gobreaker.NewCircuitBreaker[[]domain.Product](gobreaker.Settings{
		Name:        "recommendation_catalog",
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		// a caller giving up says nothing about the store
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("recommendation_breaker_state",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})

	return &BreakerCatalog{catalog: catalog, cb: cb}
}

func (c *BreakerCatalog) ActiveProducts(ctx context.Context) ([]domain.Product, error) {
	return c.cb.Execute(func() ([]domain.Product, error) {
		return c.catalog.ActiveProducts(ctx)
	})
}

func (c *BreakerCatalog) ActiveProduct(ctx context.Context, id uint64) (domain.Product, bool, error) {
	found, err := c.cb.Execute(func() ([]domain.Product, error) {
		p, ok, err := c.catalog.ActiveProduct(ctx, id)
		if err != nil || !ok {
			return nil, err
		}
		return []domain.Product{p}, nil
	})
	if err != nil || len(found) == 0 {
		return domain.Product{}, false, err
	}
	return found[0], true, nil
}

func (c *BreakerCatalog) ProductsByIDs(ctx context.Context, ids []uint64) ([]domain.Product, error) {
	return c.cb.Execute(func() ([]domain.Product, error) {
		return c.catalog.ProductsByIDs(ctx, ids)
	})
}

func (c *BreakerCatalog) State() gobreaker.State {
	return c.cb.State()
}
