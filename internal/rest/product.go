package rest

import (
	"context"
	"errors"
	"net/http"
	"time"

	"shopReco/business/product"
	"shopReco/domain"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type ProductService interface {
	ListProducts(ctx context.Context, filter domain.ProductFilter) (domain.ProductPage, error)
	GetProductByID(ctx context.Context, id uint64) (domain.Product, error)
	GetCategories(ctx context.Context) ([]string, error)
}

type ProductHandler struct {
	productService ProductService
	validator      *validator.Validate
	timeout        time.Duration
}

func NewProductHandler(productService ProductService, timeout time.Duration) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		validator:      validator.New(),
		timeout:        timeout,
	}
}

type ListProductsQuery struct {
	Page      int     `query:"page" validate:"omitempty,min=1"`
	PerPage   int     `query:"per_page" validate:"omitempty,min=1,max=100"`
	Category  string  `query:"category" validate:"omitempty,max=100"`
	Search    string  `query:"search" validate:"omitempty,max=100"`
	MinPrice  float64 `query:"min_price" validate:"omitempty,gte=0"`
	MaxPrice  float64 `query:"max_price" validate:"omitempty,gte=0"`
	SortBy    string  `query:"sort_by" validate:"omitempty,oneof=created_at price rating"`
	SortOrder string  `query:"sort_order" validate:"omitempty,oneof=asc desc"`
}

func (h *ProductHandler) ListProducts(c echo.Context) error {
	var q ListProductsQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return badRequest(c, err)
	}
	if err := h.validator.Struct(&q); err != nil {
		return badRequest(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	page, err := h.productService.ListProducts(ctx, domain.ProductFilter{
		Category:  q.Category,
		Search:    q.Search,
		MinPrice:  q.MinPrice,
		MaxPrice:  q.MaxPrice,
		SortBy:    q.SortBy,
		SortOrder: q.SortOrder,
		Page:      q.Page,
		PerPage:   q.PerPage,
	})
	if err != nil {
		if errors.Is(err, product.ErrInvalidFilter) {
			return badRequest(c, err)
		}
		return internalError(ctx, c, "failed to list products", err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(page))
}

func (h *ProductHandler) GetProductByID(c echo.Context) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid product id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	p, err := h.productService.GetProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, product.ErrProductNotFound) {
			return notFound(c, "product not found")
		}
		return internalError(ctx, c, "failed to find product by id", err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(p))
}

func (h *ProductHandler) GetCategories(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	categories, err := h.productService.GetCategories(ctx)
	if err != nil {
		return internalError(ctx, c, "failed to list categories", err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(categories))
}
