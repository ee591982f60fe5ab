package domain

import (
	"time"

	"gorm.io/datatypes"
)

// CREATE TABLE public.products (
//     id              BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
//     name            TEXT NOT NULL,
//     description     TEXT,
//     price           NUMERIC,
//     category        TEXT NOT NULL,
//     tags            JSONB DEFAULT '[]',
//     features        JSONB DEFAULT '[]',
//     image_url       TEXT,
//     stock_quantity  INTEGER DEFAULT 0,
//     rating          NUMERIC DEFAULT 0,
//     review_count    INTEGER DEFAULT 0,
//     is_active       BOOLEAN DEFAULT TRUE,
//     created_at      TIMESTAMPTZ DEFAULT NOW(),
//     updated_at      TIMESTAMPTZ DEFAULT NOW()
// );

type Product struct {
	ID            uint64                      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name          string                      `gorm:"column:name;type:text;not null" json:"name"`
	Description   string                      `gorm:"column:description;type:text" json:"description"`
	Price         float64                     `gorm:"column:price;type:numeric" json:"price"`
	Category      string                      `gorm:"column:category;type:text;not null" json:"category"`
	Tags          datatypes.JSONSlice[string] `gorm:"column:tags;type:jsonb" json:"tags"`
	Features      datatypes.JSONSlice[string] `gorm:"column:features;type:jsonb" json:"features"`
	ImageURL      string                      `gorm:"column:image_url;type:text" json:"image_url"`
	StockQuantity int                         `gorm:"column:stock_quantity;default:0" json:"stock_quantity"`
	Rating        float64                     `gorm:"column:rating;type:numeric;default:0" json:"rating"`
	ReviewCount   int                         `gorm:"column:review_count;default:0" json:"review_count"`
	IsActive      bool                        `gorm:"column:is_active;default:true" json:"is_active"`
	CreatedAt     time.Time                   `gorm:"column:created_at" json:"created_at"`
	UpdatedAt     time.Time                   `gorm:"column:updated_at" json:"updated_at"`
}

func (Product) TableName() string {
	return "products"
}

// TagSet returns the normalized tag set of the product.
func (p Product) TagSet() StringSet {
	return NewStringSet(p.Tags...)
}

// FeatureSet returns the normalized feature set of the product.
func (p Product) FeatureSet() StringSet {
	return NewStringSet(p.Features...)
}

// ProductPage is one page of the active catalog listing.
type ProductPage struct {
	Products   []Product  `json:"products"`
	Pagination Pagination `json:"pagination"`
}

type Pagination struct {
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
	Total   int64 `json:"total"`
	Pages   int   `json:"pages"`
	HasNext bool  `json:"has_next"`
	HasPrev bool  `json:"has_prev"`
}

// NewPagination describes page of perPage items out of total. perPage must be positive.
func NewPagination(page, perPage int, total int64) Pagination {
	pages := int((total + int64(perPage) - 1) / int64(perPage))
	return Pagination{
		Page:    page,
		PerPage: perPage,
		Total:   total,
		Pages:   pages,
		HasNext: page < pages,
		HasPrev: page > 1,
	}
}

const (
	SortByCreatedAt = "created_at"
	SortByPrice     = "price"
	SortByRating    = "rating"

	SortAsc  = "asc"
	SortDesc = "desc"
)

// ProductFilter narrows the catalog listing. Zero prices mean no bound.
type ProductFilter struct {
	Category  string
	Search    string
	MinPrice  float64
	MaxPrice  float64
	SortBy    string
	SortOrder string
	Page      int
	PerPage   int
}
