//go:build !integration

package recommendation

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sony/gobreaker/v2"

	"shopReco/domain"
)

func newTestService(c Catalog, h ViewHistory, cfg Config) *Service {
	return NewService(c, h, fakeUsers{}, CatalogScan{}, cfg)
}

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		in      string
		want    Strategy
		wantErr bool
	}{
		{"", StrategyHybrid, false},
		{"content", StrategyContent, false},
		{"collaborative", StrategyCollaborative, false},
		{"hybrid", StrategyHybrid, false},
		{"popular", "", true},
	}

	for _, tt := range tests {
		got, err := ParseStrategy(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidAlgorithm) {
				t.Fatalf("ParseStrategy(%q) err = %v, want ErrInvalidAlgorithm", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Fatalf("ParseStrategy(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestMerge(t *testing.T) {
	rec := func(id uint64, alg domain.Algorithm) domain.Recommendation {
		return domain.Recommendation{ProductID: id, Algorithm: alg}
	}
	content := []domain.Recommendation{rec(1, domain.AlgorithmContentBased), rec(2, domain.AlgorithmContentBased)}
	collab := []domain.Recommendation{rec(2, domain.AlgorithmCollaborative), rec(3, domain.AlgorithmCollaborative), rec(4, domain.AlgorithmCollaborative)}

	got := Merge(3, content, collab)
	if want := []uint64{1, 2, 3}; !reflect.DeepEqual(ids(got), want) {
		t.Fatalf("ids = %v, want %v", ids(got), want)
	}
	if got[1].Algorithm != domain.AlgorithmContentBased {
		t.Fatalf("duplicate kept %q, want the content entry", got[1].Algorithm)
	}

	if got := Merge(10, nil, nil); got == nil || len(got) != 0 {
		t.Fatalf("Merge of nothing = %v", got)
	}
}

func TestService_HybridDedup(t *testing.T) {
	c := scenarioCatalog()
	c.products = append(c.products,
		product(4, "audio", []string{"wireless"}, nil),
		product(5, "kitchen", []string{"steel"}, nil),
	)
	h := newFakeHistory().
		view(1, 1).
		view(2, 1, 2, 4).
		view(3, 3, 5)

	s := newTestService(c, h, testConfig())
	for _, limit := range []int{1, 2, 3, 10} {
		got, err := s.Recommend(context.Background(), 1, limit, StrategyHybrid)
		if err != nil {
			t.Fatalf("Recommend: %v", err)
		}
		if len(got) > limit {
			t.Fatalf("limit %d: got %d results", limit, len(got))
		}
		seen := map[uint64]bool{}
		for _, r := range got {
			if seen[r.ProductID] {
				t.Fatalf("limit %d: duplicate product %d in %v", limit, r.ProductID, ids(got))
			}
			if r.ProductID == 1 {
				t.Fatalf("limit %d: viewed product recommended", limit)
			}
			seen[r.ProductID] = true
		}
	}

	got, _ := s.Recommend(context.Background(), 1, 10, StrategyHybrid)
	if len(got) == 0 || got[0].Algorithm != domain.AlgorithmContentBased {
		t.Fatalf("hybrid should lead with content results, got %+v", got)
	}
}

func TestService_DefaultLimitAndStrategy(t *testing.T) {
	c := &fakeCatalog{}
	for id := uint64(1); id <= 15; id++ {
		c.products = append(c.products, product(id, "x", nil, nil))
	}
	s := newTestService(c, newFakeHistory(), testConfig())

	got, err := s.Recommend(context.Background(), 1, 0, "")
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(got) != 10 {
		t.Fatalf("len = %d, want default 10", len(got))
	}
}

func TestService_UserLookup(t *testing.T) {
	c := scenarioCatalog()

	s := NewService(c, newFakeHistory(), fakeUsers{missing: map[uint]bool{7: true}}, nil, testConfig())
	if _, err := s.Recommend(context.Background(), 7, 5, StrategyContent); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("err = %v, want ErrUserNotFound", err)
	}

	s = NewService(c, newFakeHistory(), fakeUsers{err: errors.New("users table gone")}, nil, testConfig())
	got, err := s.Recommend(context.Background(), 7, 5, StrategyContent)
	if err != nil {
		t.Fatalf("lookup failure should not fail the request: %v", err)
	}
	if len(got) == 0 {
		t.Fatal("expected popular results")
	}
}

func TestService_ComputationFailureFallsBack(t *testing.T) {
	c := scenarioCatalog()
	h := newFakeHistory().view(1, 1)
	h.err = errors.New("connection reset")

	s := newTestService(c, h, testConfig())
	before := testutil.ToFloat64(FallbacksTotal.WithLabelValues(string(StrategyCollaborative), reasonError))

	got, err := s.Recommend(context.Background(), 1, 5, StrategyCollaborative)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	want, _ := s.Popular(context.Background(), 5)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want popular %v", ids(got), ids(want))
	}

	after := testutil.ToFloat64(FallbacksTotal.WithLabelValues(string(StrategyCollaborative), reasonError))
	if after-before != 1 {
		t.Fatalf("error fallbacks delta = %v, want 1", after-before)
	}
}

func TestService_PanicRecovered(t *testing.T) {
	c := scenarioCatalog()
	h := newFakeHistory().view(1, 1)
	h.onRecent = func(context.Context, uint) error { panic("nil map") }

	s := newTestService(c, h, testConfig())
	got, err := s.Recommend(context.Background(), 1, 5, StrategyContent)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	for _, r := range got {
		if r.Algorithm != domain.AlgorithmPopular {
			t.Fatalf("algorithm = %q, want popular", r.Algorithm)
		}
	}
}

func TestService_FailingUserDoesNotAffectOthers(t *testing.T) {
	c := scenarioCatalog()
	h := newFakeHistory().view(1, 1).view(9, 3)
	h.onRecent = func(_ context.Context, userID uint) error {
		if userID == 9 {
			return errors.New("corrupt history row")
		}
		return nil
	}

	cfg := testConfig()
	cfg.BreakerFailures = 3
	cfg.BreakerTimeout = time.Hour
	s := newTestService(c, h, cfg)

	for i := 0; i < 10; i++ {
		got, err := s.Recommend(context.Background(), 9, 5, StrategyContent)
		if err != nil {
			t.Fatalf("Recommend: %v", err)
		}
		if len(got) == 0 || got[0].Algorithm != domain.AlgorithmPopular {
			t.Fatalf("failing user should get popular, got %+v", got)
		}
	}

	got, err := s.Recommend(context.Background(), 1, 5, StrategyContent)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if want := []uint64{2}; !reflect.DeepEqual(ids(got), want) {
		t.Fatalf("ids = %v, want %v", ids(got), want)
	}
	if got[0].Algorithm != domain.AlgorithmContentBased {
		t.Fatalf("algorithm = %q, want content_based", got[0].Algorithm)
	}
	if st := s.catalog.State(); st != gobreaker.StateClosed {
		t.Fatalf("breaker state = %v, want closed", st)
	}
}

func TestService_PanicsDoNotTripBreaker(t *testing.T) {
	c := scenarioCatalog()
	h := newFakeHistory().view(1, 1)
	h.onRecent = func(context.Context, uint) error { panic("nil map") }

	cfg := testConfig()
	cfg.BreakerFailures = 2
	s := newTestService(c, h, cfg)

	for i := 0; i < 5; i++ {
		if _, err := s.Recommend(context.Background(), 1, 5, StrategyContent); err != nil {
			t.Fatalf("Recommend: %v", err)
		}
	}
	if st := s.catalog.State(); st != gobreaker.StateClosed {
		t.Fatalf("breaker state = %v, want closed", st)
	}
}

func TestService_CatalogBreakerOpens(t *testing.T) {
	c := scenarioCatalog()
	c.err = errors.New("too many connections")
	h := newFakeHistory().view(1, 1)

	cfg := testConfig()
	cfg.BreakerFailures = 3
	cfg.BreakerTimeout = time.Hour
	s := newTestService(c, h, cfg)

	for i := 0; i < 3 && s.catalog.State() != gobreaker.StateOpen; i++ {
		if _, err := s.Recommend(context.Background(), 1, 5, StrategyContent); err != nil {
			t.Fatalf("Recommend: %v", err)
		}
	}
	if st := s.catalog.State(); st != gobreaker.StateOpen {
		t.Fatalf("breaker state = %v, want open", st)
	}

	calls := c.callCount()
	before := testutil.ToFloat64(FallbacksTotal.WithLabelValues(string(StrategyContent), reasonBreakerOpen))

	got, err := s.Recommend(context.Background(), 1, 5, StrategyContent)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("unreachable catalog should yield nothing, got %+v", got)
	}
	if c.callCount() != calls {
		t.Fatal("open breaker should short-circuit catalog reads")
	}
	if after := testutil.ToFloat64(FallbacksTotal.WithLabelValues(string(StrategyContent), reasonBreakerOpen)); after-before != 1 {
		t.Fatalf("breaker_open delta = %v, want 1", after-before)
	}
}

func TestService_TimeoutFallsBackToPopular(t *testing.T) {
	c := scenarioCatalog()
	h := newFakeHistory().view(1, 1)
	h.onRecent = func(ctx context.Context, _ uint) error {
		<-ctx.Done()
		return ctx.Err()
	}

	cfg := testConfig()
	cfg.ComputeTimeout = 20 * time.Millisecond
	s := newTestService(c, h, cfg)

	before := testutil.ToFloat64(FallbacksTotal.WithLabelValues(string(StrategyContent), reasonTimeout))

	got, err := s.Recommend(context.Background(), 1, 5, StrategyContent)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	want, _ := s.Popular(context.Background(), 5)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want popular %v", ids(got), ids(want))
	}

	if after := testutil.ToFloat64(FallbacksTotal.WithLabelValues(string(StrategyContent), reasonTimeout)); after-before != 1 {
		t.Fatalf("timeout delta = %v, want 1", after-before)
	}
	if st := s.catalog.State(); st != gobreaker.StateClosed {
		t.Fatalf("timeouts must not trip the breaker, state = %v", st)
	}
}

func TestService_CallerCancelled(t *testing.T) {
	s := newTestService(scenarioCatalog(), newFakeHistory(), testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.Recommend(ctx, 1, 5, StrategyHybrid); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestService_RequestMetrics(t *testing.T) {
	s := newTestService(scenarioCatalog(), newFakeHistory(), testConfig())

	before := testutil.ToFloat64(RequestsTotal.WithLabelValues(string(StrategyHybrid)))
	if _, err := s.Recommend(context.Background(), 1, 5, StrategyHybrid); err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if after := testutil.ToFloat64(RequestsTotal.WithLabelValues(string(StrategyHybrid))); after-before != 1 {
		t.Fatalf("requests delta = %v, want 1", after-before)
	}
}

func TestService_Featured(t *testing.T) {
	c := &fakeCatalog{products: []domain.Product{
		rated(product(1, "audio", nil, nil), 3.9, 500),
		rated(product(2, "audio", nil, nil), 4.0, 10),
		rated(product(3, "audio", nil, nil), 4.8, 3),
		rated(product(4, "audio", nil, nil), 4.0, 90),
	}}
	for i := uint64(5); i <= 14; i++ {
		c.products = append(c.products, rated(product(i, "kitchen", nil, nil), 4.5, 1))
	}
	inactive := rated(product(15, "audio", nil, nil), 5.0, 1000)
	inactive.IsActive = false
	c.products = append(c.products, inactive)

	s := newTestService(c, newFakeHistory(), testConfig())

	got, err := s.Featured(context.Background(), 0)
	if err != nil {
		t.Fatalf("Featured: %v", err)
	}
	if len(got) != 8 {
		t.Fatalf("len = %d, want default 8", len(got))
	}
	if got[0].ID != 3 {
		t.Fatalf("first = %d, want the 4.8 product", got[0].ID)
	}

	all, _ := s.Featured(context.Background(), 100)
	var order []uint64
	for _, p := range all {
		if p.Rating < 4.0 || !p.IsActive {
			t.Fatalf("product %d should not be featured", p.ID)
		}
		order = append(order, p.ID)
	}
	if n := len(order); n != 13 || order[n-2] != 4 || order[n-1] != 2 {
		t.Fatalf("order = %v, want 4 then 2 last (review count)", order)
	}
}
