package recommendation

import "time"

// Config tunes the engine. Start from DefaultConfig: withDefaults only fills
// counts, limits and the breaker, since a zero threshold or minimum rating is a
// meaningful setting (keep every candidate above zero).
type Config struct {
	// how many of the latest views seed content-based scoring
	RecentViews int

	// neighbors must be strictly above this Jaccard similarity
	NeighborThreshold float64
	MaxNeighbors      int

	// similar products must be strictly above this content similarity
	SimilarThreshold float64

	PopularMinRating float64

	// featured products are the popular ranking with a higher bar
	FeaturedMinRating float64

	DefaultLimit         int
	DefaultSimilarLimit  int
	DefaultFeaturedLimit int

	// zero disables the request-level deadline
	ComputeTimeout time.Duration

	BreakerFailures uint32
	BreakerTimeout  time.Duration
}

const (
	defaultRecentViews       = 20
	defaultNeighborThreshold = 0.1
	defaultMaxNeighbors      = 10
	defaultSimilarThreshold  = 0.1
	defaultPopularMinRating  = 3.0
	defaultFeaturedMinRating = 4.0
	defaultLimit             = 10
	defaultSimilarLimit      = 8
	defaultFeaturedLimit     = 8
	defaultComputeTimeout    = 5 * time.Second
	defaultBreakerFailures   = 5
	defaultBreakerTimeout    = 30 * time.Second
)

func DefaultConfig() Config {
	return Config{
		RecentViews:          defaultRecentViews,
		NeighborThreshold:    defaultNeighborThreshold,
		MaxNeighbors:         defaultMaxNeighbors,
		SimilarThreshold:     defaultSimilarThreshold,
		PopularMinRating:     defaultPopularMinRating,
		FeaturedMinRating:    defaultFeaturedMinRating,
		DefaultLimit:         defaultLimit,
		DefaultSimilarLimit:  defaultSimilarLimit,
		DefaultFeaturedLimit: defaultFeaturedLimit,
		ComputeTimeout:       defaultComputeTimeout,
		BreakerFailures:      defaultBreakerFailures,
		BreakerTimeout:       defaultBreakerTimeout,
	}
}

// withDefaults fills zero-valued counts and limits. Thresholds and minimum
// ratings are kept as given.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.RecentViews <= 0 {
		c.RecentViews = d.RecentViews
	}
	if c.MaxNeighbors <= 0 {
		c.MaxNeighbors = d.MaxNeighbors
	}
	if c.DefaultLimit <= 0 {
		c.DefaultLimit = d.DefaultLimit
	}
	if c.DefaultSimilarLimit <= 0 {
		c.DefaultSimilarLimit = d.DefaultSimilarLimit
	}
	if c.DefaultFeaturedLimit <= 0 {
		c.DefaultFeaturedLimit = d.DefaultFeaturedLimit
	}
	if c.BreakerFailures == 0 {
		c.BreakerFailures = d.BreakerFailures
	}
	if c.BreakerTimeout <= 0 {
		c.BreakerTimeout = d.BreakerTimeout
	}
	return c
}
