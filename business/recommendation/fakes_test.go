//go:build !integration

package recommendation

import (
	"context"
	"sort"
	"sync"
	"time"

	"shopReco/domain"
)

type fakeCatalog struct {
	mu       sync.Mutex
	products []domain.Product
	err      error
	calls    int
}

func (c *fakeCatalog) called() {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
}

func (c *fakeCatalog) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func (c *fakeCatalog) ActiveProducts(ctx context.Context) ([]domain.Product, error) {
	c.called()
	if c.err != nil {
		return nil, c.err
	}
	out := make([]domain.Product, 0, len(c.products))
	for _, p := range c.products {
		if p.IsActive {
			out = append(out, p)
		}
	}
	return out, nil
}

func (c *fakeCatalog) ActiveProduct(ctx context.Context, id uint64) (domain.Product, bool, error) {
	c.called()
	if c.err != nil {
		return domain.Product{}, false, c.err
	}
	for _, p := range c.products {
		if p.ID == id && p.IsActive {
			return p, true, nil
		}
	}
	return domain.Product{}, false, nil
}

func (c *fakeCatalog) ProductsByIDs(ctx context.Context, ids []uint64) ([]domain.Product, error) {
	c.called()
	if c.err != nil {
		return nil, c.err
	}
	want := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	out := make([]domain.Product, 0, len(ids))
	for _, p := range c.products {
		if _, ok := want[p.ID]; ok && p.IsActive {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeHistory struct {
	mu    sync.Mutex
	views map[uint][]domain.ViewEvent
	users []uint
	err   error
	calls int

	// hooks for failure injection
	onRecent func(ctx context.Context, userID uint) error
}

func newFakeHistory() *fakeHistory {
	return &fakeHistory{views: make(map[uint][]domain.ViewEvent)}
}

// view records product views for a user, each one second after the previous.
func (h *fakeHistory) view(userID uint, productIDs ...uint64) *fakeHistory {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if _, known := h.views[userID]; !known {
		h.users = append(h.users, userID)
	}
	for _, id := range productIDs {
		n := len(h.views[userID])
		h.views[userID] = append(h.views[userID], domain.ViewEvent{
			UserID:    userID,
			ProductID: id,
			ViewedAt:  base.Add(time.Duration(n) * time.Second),
		})
	}
	return h
}

func (h *fakeHistory) RecentViews(ctx context.Context, userID uint, limit int) ([]domain.ViewEvent, error) {
	h.mu.Lock()
	h.calls++
	hook := h.onRecent
	h.mu.Unlock()

	if hook != nil {
		if err := hook(ctx, userID); err != nil {
			return nil, err
		}
	}
	if h.err != nil {
		return nil, h.err
	}

	views := append([]domain.ViewEvent(nil), h.views[userID]...)
	sort.SliceStable(views, func(i, j int) bool {
		return views[i].ViewedAt.After(views[j].ViewedAt)
	})
	if len(views) > limit {
		views = views[:limit]
	}
	return views, nil
}

func (h *fakeHistory) AllViews(ctx context.Context, userID uint) ([]domain.ViewEvent, error) {
	if h.err != nil {
		return nil, h.err
	}
	return h.views[userID], nil
}

func (h *fakeHistory) KnownUsers(ctx context.Context) ([]uint, error) {
	if h.err != nil {
		return nil, h.err
	}
	return h.users, nil
}

func (h *fakeHistory) recentCalls() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.calls
}

type fakeUsers struct {
	missing map[uint]bool
	err     error
}

func (u fakeUsers) Exists(ctx context.Context, userID uint) (bool, error) {
	if u.err != nil {
		return false, u.err
	}
	return !u.missing[userID], nil
}

func product(id uint64, category string, tags, features []string) domain.Product {
	return domain.Product{
		ID:          id,
		Name:        category,
		Category:    category,
		Tags:        tags,
		Features:    features,
		Rating:      4.0,
		ReviewCount: 10,
		IsActive:    true,
	}
}

func rated(p domain.Product, rating float64, reviews int) domain.Product {
	p.Rating = rating
	p.ReviewCount = reviews
	return p
}

// scenarioCatalog is the audio/kitchen catalog used across engine tests.
func scenarioCatalog() *fakeCatalog {
	return &fakeCatalog{products: []domain.Product{
		product(1, "audio", []string{"wireless", "bluetooth"}, nil),
		product(2, "audio", []string{"wireless", "noise-cancelling"}, nil),
		product(3, "kitchen", []string{"steel"}, nil),
	}}
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.ComputeTimeout = time.Second
	return cfg
}

func ids(recs []domain.Recommendation) []uint64 {
	out := make([]uint64, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.ProductID)
	}
	return out
}
