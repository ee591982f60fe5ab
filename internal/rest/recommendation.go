package rest

import (
	"context"
	"errors"
	"net/http"
	"time"

	"shopReco/business/recommendation"
	"shopReco/domain"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type (
	RecommendationHandler struct {
		validate *validator.Validate
		service  RecommendationService
		timeout  time.Duration
	}

	RecommendationService interface {
		Recommend(ctx context.Context, userID uint, limit int, strategy recommendation.Strategy) ([]domain.Recommendation, error)
		Similar(ctx context.Context, productID uint64, limit int) (domain.Product, []domain.SimilarProduct, error)
		Featured(ctx context.Context, limit int) ([]domain.Product, error)
	}

	// a missing or zero limit means the service default
	RecommendQuery struct {
		Limit     int    `query:"limit" validate:"gte=0"`
		Algorithm string `query:"algorithm" validate:"omitempty,oneof=content collaborative hybrid"`
	}

	LimitQuery struct {
		Limit int `query:"limit" validate:"gte=0"`
	}

	RecommendationsResponse struct {
		Recommendations []domain.Recommendation `json:"recommendations"`
		Algorithm       string                  `json:"algorithm"`
		Count           int                     `json:"count"`
	}

	SimilarProductsResponse struct {
		ReferenceProduct domain.Product          `json:"reference_product"`
		SimilarProducts  []domain.SimilarProduct `json:"similar_products"`
		Count            int                     `json:"count"`
	}
)

func NewRecommendationHandler(svc RecommendationService, timeout time.Duration) *RecommendationHandler {
	return &RecommendationHandler{
		validate: validator.New(),
		service:  svc,
		timeout:  timeout,
	}
}

// Recommend serves GET /recommendations/:user_id.
func (h *RecommendationHandler) Recommend(c echo.Context) error {
	userID, err := parseUintParam(c, "user_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid user id"})
	}

	var q RecommendQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return badRequest(c, err)
	}
	if err := h.validate.Struct(&q); err != nil {
		return badRequest(c, err)
	}

	strategy, err := recommendation.ParseStrategy(q.Algorithm)
	if err != nil {
		return badRequest(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	recs, err := h.service.Recommend(ctx, uint(userID), q.Limit, strategy)
	if err != nil {
		switch {
		case errors.Is(err, recommendation.ErrUserNotFound):
			return notFound(c, "user not found")
		case errors.Is(err, recommendation.ErrInvalidAlgorithm):
			return badRequest(c, err)
		default:
			return internalError(ctx, c, "failed to get recommendations", err)
		}
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(RecommendationsResponse{
		Recommendations: recs,
		Algorithm:       string(strategy),
		Count:           len(recs),
	}))
}

// Similar serves GET /products/:id/similar.
func (h *RecommendationHandler) Similar(c echo.Context) error {
	productID, err := parseUintParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid product id"})
	}

	var q LimitQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return badRequest(c, err)
	}
	if err := h.validate.Struct(&q); err != nil {
		return badRequest(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	ref, similar, err := h.service.Similar(ctx, productID, q.Limit)
	if err != nil {
		if errors.Is(err, recommendation.ErrProductNotFound) {
			return notFound(c, "product not found")
		}
		return internalError(ctx, c, "failed to get similar products", err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(SimilarProductsResponse{
		ReferenceProduct: ref,
		SimilarProducts:  similar,
		Count:            len(similar),
	}))
}

// Featured serves GET /products/featured.
func (h *RecommendationHandler) Featured(c echo.Context) error {
	var q LimitQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return badRequest(c, err)
	}
	if err := h.validate.Struct(&q); err != nil {
		return badRequest(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	products, err := h.service.Featured(ctx, q.Limit)
	if err != nil {
		return internalError(ctx, c, "failed to get featured products", err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(products))
}
