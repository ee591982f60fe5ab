package domain

import "time"

// CREATE TABLE public.viewed_products (
//     id              BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
//     user_id         BIGINT NOT NULL,
//     product_id      BIGINT NOT NULL,
//     viewed_at       TIMESTAMPTZ DEFAULT NOW(),
//     view_duration   INTEGER DEFAULT 0
// );
// CREATE INDEX idx_viewed_products_user_viewed_at ON viewed_products (user_id, viewed_at DESC);

type ViewEvent struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint      `gorm:"column:user_id;not null" json:"user_id"`
	ProductID uint64    `gorm:"column:product_id;not null" json:"product_id"`
	ViewedAt  time.Time `gorm:"column:viewed_at" json:"viewed_at"`
	Duration  int       `gorm:"column:view_duration;default:0" json:"view_duration"` // seconds
}

func (ViewEvent) TableName() string {
	return "viewed_products"
}

// ViewHistoryItem is a view event joined with the viewed product.
type ViewHistoryItem struct {
	ViewEvent
	Product Product `json:"product"`
}

// ViewHistoryPage is one page of a user's views inside a time window.
type ViewHistoryPage struct {
	History    []ViewHistoryItem `json:"history"`
	Pagination Pagination        `json:"pagination"`
}

type HistoryFilter struct {
	Since   time.Time
	Page    int
	PerPage int
}

type ProductViewCount struct {
	ProductID     uint64 `json:"product_id"`
	ViewCount     int    `json:"view_count"`
	TotalDuration int    `json:"total_duration"`
}

type ViewStats struct {
	TotalViews    int                `json:"total_views"`
	CategoryStats map[string]int     `json:"category_stats"`
	MostViewed    []ProductViewCount `json:"most_viewed"`
}
