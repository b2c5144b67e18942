package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Roles known to the system.
const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

// RequireAuth rejects anonymous requests.
func RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if Role(c) == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			return next(c)
		}
	}
}

// RequireRole rejects requests whose session role is not one of the allowed
// roles. Anonymous requests get 401, authenticated but unauthorized get 403.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role := Role(c)
			if role == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			if !allowed[role] {
				return echo.NewHTTPError(http.StatusForbidden, "insufficient permissions")
			}
			return next(c)
		}
	}
}
