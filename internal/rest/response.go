package rest

import (
	"context"
	"net/http"
	"strconv"

	"shopReco/pkg/logger"
	"shopReco/pkg/utils"

	"github.com/labstack/echo/v4"
)

type ResponseError struct {
	Message string `json:"message"`
}

func badRequest(c echo.Context, err error) error {
	return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
}

func notFound(c echo.Context, message string) error {
	return c.JSON(http.StatusNotFound, ResponseError{Message: message})
}

// internalError logs the cause and hides it from the client.
func internalError(ctx context.Context, c echo.Context, msg string, err error) error {
	logger.Error(msg, "trace_id", utils.TraceIDFromContext(ctx), "error", err)
	return c.JSON(http.StatusInternalServerError, ResponseError{Message: "internal server error"})
}

func parseUintParam(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}
