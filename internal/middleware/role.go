package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/Neruaka/jana-distribution/internal/apperror"
	"github.com/Neruaka/jana-distribution/internal/model"
)

// RequireRole gates a route group on the JWT's role claim.  It assumes
// JWTAuth already ran and stored the role in the context.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !allowed[Role(c)] {
				return apperror.Forbidden("Accès réservé")
			}
			return next(c)
		}
	}
}

// IsAdmin reports whether the authenticated caller holds the ADMIN role.
func IsAdmin(c echo.Context) bool {
	return Role(c) == model.RoleAdmin
}
