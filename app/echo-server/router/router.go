package router

import (
	"net/http"

	"shopReco/internal/middleware"
	"shopReco/internal/rest"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupProductRoutes(api *echo.Group, handler *rest.ProductHandler, reco *rest.RecommendationHandler) {
	products := api.Group("/products")

	products.GET("", handler.ListProducts)
	products.GET("/categories", handler.GetCategories)
	products.GET("/featured", reco.Featured)
	products.GET("/:id", handler.GetProductByID)
	products.GET("/:id/similar", reco.Similar)
}

func SetRecommendationRoutes(api *echo.Group, handler *rest.RecommendationHandler, authRequired echo.MiddlewareFunc) {
	reco := api.Group("/recommendations", authRequired)
	reco.GET("/:user_id", handler.Recommend, middleware.SelfOrAdminParam("user_id"))
}

func SetTrackingRoutes(api *echo.Group, handler *rest.TrackingHandler, authRequired echo.MiddlewareFunc) {
	api.POST("/track/view", handler.TrackView, authRequired)

	history := api.Group("/users/:id/history", authRequired, middleware.SelfOrAdmin())
	history.GET("", handler.History)
	history.GET("/recent", handler.RecentHistory)
	history.GET("/stats", handler.HistoryStats)
}

func SetOpsRoutes(e *echo.Echo) {
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
}
