package rest

import (
	"context"
	"errors"
	"net/http"
	"time"

	"shopReco/business/tracking"
	"shopReco/domain"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type (
	TrackingHandler struct {
		validate *validator.Validate
		service  TrackingService
		timeout  time.Duration
	}

	TrackingService interface {
		TrackView(ctx context.Context, userID uint, productID uint64, duration int) (domain.ViewEvent, error)
		RecentHistory(ctx context.Context, userID uint, limit int) ([]domain.ViewHistoryItem, error)
		HistoryStats(ctx context.Context, userID uint) (domain.ViewStats, error)
		History(ctx context.Context, userID uint, page, perPage, days int) (domain.ViewHistoryPage, error)
	}

	TrackViewRequest struct {
		ProductID    uint64 `json:"product_id" validate:"required"`
		ViewDuration int    `json:"view_duration" validate:"gte=0,lte=86400"`
	}

	RecentHistoryQuery struct {
		Limit int `query:"limit" validate:"omitempty,min=1,max=100"`
	}

	HistoryQuery struct {
		Page    int `query:"page" validate:"omitempty,min=1"`
		PerPage int `query:"per_page" validate:"omitempty,min=1,max=100"`
		Days    int `query:"days" validate:"omitempty,min=1,max=3650"`
	}
)

func NewTrackingHandler(svc TrackingService, timeout time.Duration) *TrackingHandler {
	return &TrackingHandler{
		validate: validator.New(),
		service:  svc,
		timeout:  timeout,
	}
}

// TrackView records a product view for the authenticated user.
func (h *TrackingHandler) TrackView(c echo.Context) error {
	userID, ok := c.Get("user_id").(uint)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	var req TrackViewRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}
	if err := h.validate.Struct(&req); err != nil {
		return badRequest(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	event, err := h.service.TrackView(ctx, userID, req.ProductID, req.ViewDuration)
	if err != nil {
		if errors.Is(err, tracking.ErrProductNotFound) {
			return notFound(c, "product not found")
		}
		return internalError(ctx, c, "failed to track product view", err)
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(event))
}

func (h *TrackingHandler) RecentHistory(c echo.Context) error {
	userID, err := parseUintParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid user id"})
	}

	var q RecentHistoryQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return badRequest(c, err)
	}
	if err := h.validate.Struct(&q); err != nil {
		return badRequest(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	items, err := h.service.RecentHistory(ctx, uint(userID), q.Limit)
	if err != nil {
		return internalError(ctx, c, "failed to get recent history", err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(items))
}

// History serves GET /users/:id/history, paginated over a window of days.
func (h *TrackingHandler) History(c echo.Context) error {
	userID, err := parseUintParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid user id"})
	}

	var q HistoryQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return badRequest(c, err)
	}
	if err := h.validate.Struct(&q); err != nil {
		return badRequest(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	page, err := h.service.History(ctx, uint(userID), q.Page, q.PerPage, q.Days)
	if err != nil {
		return internalError(ctx, c, "failed to get user history", err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(page))
}

func (h *TrackingHandler) HistoryStats(c echo.Context) error {
	userID, err := parseUintParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid user id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	stats, err := h.service.HistoryStats(ctx, uint(userID))
	if err != nil {
		return internalError(ctx, c, "failed to get history stats", err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(stats))
}
