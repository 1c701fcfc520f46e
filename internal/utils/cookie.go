package utils

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// AuthCookieName is the cookie that carries the signed session token.
const AuthCookieName = "auth_token"

// SetAuthCookie writes the session token into an httpOnly cookie.  The
// cookie lifetime matches the token TTL so the browser drops it together
// with the token's expiry.
func SetAuthCookie(c echo.Context, token string, ttlDays int, secure bool) {
	c.SetCookie(&http.Cookie{
		Name:     AuthCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   ttlDays * 24 * 60 * 60,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearAuthCookie expires the session cookie immediately.
func ClearAuthCookie(c echo.Context, secure bool) {
	c.SetCookie(&http.Cookie{
		Name:     AuthCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
