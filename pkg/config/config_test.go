//go:build !integration

package config

import (
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_PASSWORD", "password")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	reco := cfg.Recommendation
	if reco.RecentViews != 20 || reco.MaxNeighbors != 10 {
		t.Fatalf("unexpected limits %+v", reco)
	}
	if reco.NeighborThreshold != 0.1 || reco.SimilarThreshold != 0.1 || reco.PopularMinRating != 3.0 {
		t.Fatalf("unexpected thresholds %+v", reco)
	}
	if reco.ComputeTimeout != 5*time.Second {
		t.Fatalf("unexpected compute timeout %v", reco.ComputeTimeout)
	}
	if reco.CandidateSource != "scan" {
		t.Fatalf("unexpected candidate source %q", reco.CandidateSource)
	}
	if cfg.Redis.Enabled() {
		t.Fatal("redis should be disabled without REDIS_HOST")
	}
	if cfg.Server.RateLimit != 20 || cfg.Server.RateBurst != 40 {
		t.Fatalf("unexpected rate limit %v/%d", cfg.Server.RateLimit, cfg.Server.RateBurst)
	}
	if cfg.Redis.Timeout != 3*time.Second || cfg.Redis.PoolSize != 10 {
		t.Fatalf("unexpected redis settings %v/%d", cfg.Redis.Timeout, cfg.Redis.PoolSize)
	}
	if cfg.Recommendation.FeaturedMinRating != 4.0 {
		t.Fatalf("unexpected featured min rating %v", cfg.Recommendation.FeaturedMinRating)
	}
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("RECO_RECENT_VIEWS", "5")
	t.Setenv("RECO_NEIGHBOR_THRESHOLD", "0.25")
	t.Setenv("RECO_CANDIDATE_SOURCE", "index")
	t.Setenv("RECO_COMPUTE_TIMEOUT", "750ms")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_TIMEOUT", "250ms")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Recommendation.RecentViews != 5 {
		t.Fatalf("expected 5 recent views, got %d", cfg.Recommendation.RecentViews)
	}
	if cfg.Recommendation.NeighborThreshold != 0.25 {
		t.Fatalf("expected threshold 0.25, got %v", cfg.Recommendation.NeighborThreshold)
	}
	if cfg.Recommendation.CandidateSource != "index" {
		t.Fatalf("expected index source, got %q", cfg.Recommendation.CandidateSource)
	}
	if cfg.Recommendation.ComputeTimeout != 750*time.Millisecond {
		t.Fatalf("unexpected timeout %v", cfg.Recommendation.ComputeTimeout)
	}
	if !cfg.Redis.Enabled() {
		t.Fatal("redis should be enabled")
	}
	if cfg.Redis.Timeout != 250*time.Millisecond {
		t.Fatalf("unexpected redis timeout %v", cfg.Redis.Timeout)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"bad int", "RECO_RECENT_VIEWS", "many"},
		{"bad float", "RECO_SIMILAR_THRESHOLD", "high"},
		{"bad duration", "RECO_COMPUTE_TIMEOUT", "soon"},
		{"bad source", "RECO_CANDIDATE_SOURCE", "magic"},
		{"zero neighbors", "RECO_MAX_NEIGHBORS", "0"},
		{"bad rate", "RATE_LIMIT_RPS", "fast"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tt.key, tt.val)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%s", tt.key, tt.val)
			}
		})
	}
}

func TestLoadRequiresSecrets(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DB_PASSWORD", "password")
	if _, err := Load(); err == nil {
		t.Fatal("expected missing jwt secret error")
	}
}
