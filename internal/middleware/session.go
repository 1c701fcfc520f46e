package middleware // middleware provides shared request processing for handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/campusnav/campus-navigator/internal/repository"
	"github.com/campusnav/campus-navigator/internal/utils"
)

// Session returns middleware that resolves the caller's session token to a
// user record. The token is read from the auth cookie, with a Bearer header
// fallback for non-browser clients. Verification fails closed: a missing,
// malformed or expired token, or a user that no longer exists, leaves the
// request anonymous instead of erroring. On success the user's id, role,
// name and email are stored in the request context for handlers and the
// role middleware.
func Session(secret string, users *repository.UserRepo) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := tokenFromRequest(c)
			if raw == "" {
				return next(c)
			}
			claims, err := utils.ParseSessionToken(secret, raw)
			if err != nil {
				return next(c)
			}
			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()
			// The token only proves identity at issue time; the role and
			// existence check always go back to the users table.
			u, err := users.GetByID(ctx, claims.UserID)
			if err != nil {
				return next(c)
			}
			c.Set("user_id", u.ID)
			c.Set("user_name", u.Name)
			c.Set("email", u.Email)
			c.Set("role", u.Role)
			return next(c)
		}
	}
}

// RequireAuth aborts with 401 when Session left the request anonymous.
func RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := c.Get("user_id").(string); !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
			}
			return next(c)
		}
	}
}

// RequireRole returns a middleware function that enforces that the
// authenticated user has one of the specified roles. If the user's role is
// not in the allowed set, the request is aborted with a 403 Forbidden
// response. It assumes Session already ran and stored the role in the
// context under the key "role".
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get("role").(string)
			if !ok || !allowed[role] {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}

// tokenFromRequest extracts the raw session token from the auth cookie or,
// failing that, from an Authorization: Bearer header.
func tokenFromRequest(c echo.Context) string {
	if cookie, err := c.Cookie(utils.AuthCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	auth := c.Request().Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}
