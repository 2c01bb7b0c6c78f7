// Package middleware provides shared request processing: JWT
// authentication, role gating, the centralized error handler, the Redis
// response cache and the token-bucket rate limiter.
package middleware

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/Neruaka/jana-distribution/internal/apperror"
)

// Context keys set by JWTAuth and read by handlers.
const (
	CtxUserID     = "user_id"
	CtxEmail      = "email"
	CtxRole       = "role"
	CtxClientType = "client_type"
)

// JWTAuth validates a Bearer access token signed with the given secret
// and injects the identity claims into the echo context.  Handlers read
// them through UserID, Role and IsAdmin.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return apperror.Unauthorized("Authentification requise")
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.ErrUnauthorized
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				return apperror.Unauthorized("Token invalide ou expiré")
			}
			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return apperror.Unauthorized("Token invalide ou expiré")
			}
			id, ok := claims["id"].(float64)
			if !ok || id < 1 {
				return apperror.Unauthorized("Token invalide ou expiré")
			}

			c.Set(CtxUserID, uint64(id))
			if v, ok := claims["email"].(string); ok {
				c.Set(CtxEmail, v)
			}
			if v, ok := claims["role"].(string); ok {
				c.Set(CtxRole, v)
			}
			if v, ok := claims["typeClient"].(string); ok {
				c.Set(CtxClientType, v)
			}
			return next(c)
		}
	}
}

// UserID returns the authenticated user's id, or 0 when the request is
// anonymous.
func UserID(c echo.Context) uint64 {
	if v, ok := c.Get(CtxUserID).(uint64); ok {
		return v
	}
	return 0
}

// Role returns the authenticated user's role, or "".
func Role(c echo.Context) string {
	if v, ok := c.Get(CtxRole).(string); ok {
		return v
	}
	return ""
}
