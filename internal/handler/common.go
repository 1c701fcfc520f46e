package handler // handler defines http handlers

import (
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/campusnav/campus-navigator/internal/repository"
)

// currentUserID extracts the authenticated user's id from the echo context.
// The session middleware stores it as a string; anything else means the
// request is anonymous.
func currentUserID(c echo.Context) (string, error) {
	if s, ok := c.Get("user_id").(string); ok && s != "" {
		return s, nil
	}
	return "", errors.New("no user in context")
}

// isAdmin reports whether the session middleware resolved the caller to an
// ADMIN user. Used by handlers whose response shape depends on the role
// rather than being gated outright by RequireRole.
func isAdmin(c echo.Context) bool {
	role, ok := c.Get("role").(string)
	return ok && role == repository.RoleAdmin
}
