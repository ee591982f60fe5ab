package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"shopReco/pkg/logger"
	"shopReco/pkg/utils"

	jsonres "shopReco/pkg/response"

	"github.com/labstack/echo/v4"
)

const tokenLookupTimeout = 5 * time.Second

// TokenValidator resolves a bearer token to the user id it was issued to.
type TokenValidator interface {
	ValidateTokenFromRedis(ctx context.Context, token string) (string, error)
}

// rejection is an auth failure rendered as a response envelope.
type rejection struct {
	status  int
	code    string
	message string
}

func (r *rejection) send(c echo.Context) error {
	return c.JSON(r.status, jsonres.Error(r.code, r.message, nil))
}

func unauthorized(message string) *rejection {
	return &rejection{status: http.StatusUnauthorized, code: "UNAUTHORIZED", message: message}
}

func forbidden(message string) *rejection {
	return &rejection{status: http.StatusForbidden, code: "FORBIDDEN", message: message}
}

func bearerToken(c echo.Context) (string, *rejection) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return "", unauthorized("Missing authorization header")
	}

	tokenParts := strings.Split(authHeader, " ")
	if len(tokenParts) != 2 || tokenParts[0] != "Bearer" || tokenParts[1] == "" {
		return "", unauthorized("Invalid authorization format")
	}

	return tokenParts[1], nil
}

func parseClaims(ctx context.Context, tokenString string) (*utils.JWTClaims, uint, *rejection) {
	claims, err := utils.ParseJWT(tokenString)
	if err != nil {
		logger.Debug("jwt_rejected", "trace_id", utils.TraceIDFromContext(ctx), "error", err)
		return nil, 0, unauthorized("Invalid token")
	}

	expAt, err := claims.GetExpirationTime()
	if err != nil || expAt == nil || time.Now().After(expAt.Time) {
		return nil, 0, forbidden("Token expired")
	}

	userID, err := strconv.ParseUint(claims.UserID, 10, 64)
	if err != nil {
		logger.Error("Invalid user ID in token", err)
		return nil, 0, forbidden("Invalid user ID in token")
	}

	return claims, uint(userID), nil
}

func setIdentity(c echo.Context, userID uint, claims *utils.JWTClaims, tokenString string) {
	c.Set("user_id", userID)
	c.Set("role", claims.Role)
	c.Set("token", tokenString)
}

// AuthMiddleware authenticates a bearer JWT without a token store.
func AuthMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString, rej := bearerToken(c)
			if rej != nil {
				return rej.send(c)
			}

			claims, userID, rej := parseClaims(c.Request().Context(), tokenString)
			if rej != nil {
				return rej.send(c)
			}

			setIdentity(c, userID, claims, tokenString)

			return next(c)
		}
	}
}

// AuthMiddlewareWithRedis additionally requires the token to be live in the
// token store and to belong to the user named in its claims.
func AuthMiddlewareWithRedis(tokenValidator TokenValidator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString, rej := bearerToken(c)
			if rej != nil {
				return rej.send(c)
			}

			claims, userID, rej := parseClaims(c.Request().Context(), tokenString)
			if rej != nil {
				return rej.send(c)
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), tokenLookupTimeout)
			defer cancel()

			storedUserID, err := tokenValidator.ValidateTokenFromRedis(ctx, tokenString)
			if err != nil {
				logger.Warn("token_lookup_failed", "trace_id", utils.TraceIDFromContext(ctx), "error", err)
				return unauthorized("Token expired or invalid").send(c)
			}

			if storedUserID != claims.UserID {
				logger.Warn("token_user_mismatch", "trace_id", utils.TraceIDFromContext(ctx))
				return unauthorized("Invalid token").send(c)
			}

			setIdentity(c, userID, claims, tokenString)

			return next(c)
		}
	}
}

func isAdmin(c echo.Context) bool {
	role, ok := c.Get("role").(string)
	return ok && strings.ToUpper(role) == "ADMIN"
}

func AdminOnly() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !isAdmin(c) {
				return c.JSON(http.StatusForbidden, jsonres.Error(
					"FORBIDDEN", "Admin access required", nil,
				))
			}

			return next(c)
		}
	}
}

// SelfOrAdmin allows admins, or the user whose id is the ":id" path parameter.
func SelfOrAdmin() echo.MiddlewareFunc {
	return SelfOrAdminParam("id")
}

// SelfOrAdminParam is SelfOrAdmin for routes naming the user id differently.
func SelfOrAdminParam(param string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			loggedInUserID, ok := c.Get("user_id").(uint)
			if !ok {
				return c.JSON(http.StatusUnauthorized, jsonres.Error(
					"UNAUTHORIZED", "User not authenticated", nil,
				))
			}

			if _, ok := c.Get("role").(string); !ok {
				return c.JSON(http.StatusForbidden, jsonres.Error(
					"FORBIDDEN", "Invalid role", nil,
				))
			}

			if isAdmin(c) {
				return next(c)
			}

			requestedID, err := strconv.ParseUint(c.Param(param), 10, 64)
			if err != nil {
				return c.JSON(http.StatusBadRequest, jsonres.Error(
					"BAD_REQUEST", "Invalid user ID", nil,
				))
			}

			if uint(requestedID) != loggedInUserID {
				return c.JSON(http.StatusForbidden, jsonres.Error(
					"FORBIDDEN", "You can only access your own data", nil,
				))
			}

			return next(c)
		}
	}
}
