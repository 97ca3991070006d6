// Package middleware provides HTTP middleware for the ProjectHub API.
package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/welldanyogia/projecthub-backend/internal/auth"
	"github.com/welldanyogia/projecthub-backend/internal/logger"
)

// Context keys set by JWTAuth
const (
	ContextUserID = "user_id"
	ContextRole   = "role"
)

// JWTAuth validates the bearer token and stores the caller's identity in the
// request context. The token itself is never logged.
func JWTAuth(secret string, security *logger.SecurityLogger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := auth.BearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				logAuthFailure(security, c, "missing bearer token")
				return echo.NewHTTPError(http.StatusUnauthorized, map[string]string{
					"error": "missing authorization header",
					"code":  "UNAUTHORIZED",
				})
			}

			claims, err := auth.ParseToken(secret, token)
			if err != nil {
				logAuthFailure(security, c, "invalid token")
				return echo.NewHTTPError(http.StatusUnauthorized, map[string]string{
					"error": "invalid or expired token",
					"code":  "UNAUTHORIZED",
				})
			}

			c.Set(ContextUserID, claims.UserID)
			c.Set(ContextRole, claims.Role)
			return next(c)
		}
	}
}

// RoleChecker looks a user's role up in the user directory
type RoleChecker interface {
	UserHasRole(ctx context.Context, userID uint, roleName string) (bool, error)
}

// RequireRole rejects callers that do not hold role in the user directory.
// The token's role claim is not trusted here. It must run after JWTAuth.
func RequireRole(roles RoleChecker, security *logger.SecurityLogger, role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ok, err := roles.UserHasRole(c.Request().Context(), UserID(c), role)
			if err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, map[string]string{
					"error": "internal server error",
					"code":  "INTERNAL_ERROR",
				})
			}
			if !ok {
				if security != nil {
					security.Forbidden(c.RealIP(), c.Path(), Role(c))
				}
				return echo.NewHTTPError(http.StatusForbidden, map[string]string{
					"error": "insufficient permissions",
					"code":  "FORBIDDEN",
				})
			}
			return next(c)
		}
	}
}

// UserID returns the authenticated user id, or 0 outside JWTAuth
func UserID(c echo.Context) uint {
	id, _ := c.Get(ContextUserID).(uint)
	return id
}

// Role returns the authenticated user's role claim
func Role(c echo.Context) string {
	role, _ := c.Get(ContextRole).(string)
	return role
}

func logAuthFailure(security *logger.SecurityLogger, c echo.Context, reason string) {
	if security != nil {
		security.AuthFailure(c.RealIP(), c.Path(), reason)
	}
}
