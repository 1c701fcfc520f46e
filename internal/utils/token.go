package utils // package utils provides helper functions for token creation and hashing

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating and parsing signed tokens
)

// SessionToken represents a signed JWT session token along with its expiry.
// The Token field contains the JWT string.  Exp stores the expiration
// timestamp as a time.Time.  Session tokens are carried in an httpOnly
// cookie and identify the caller on every authenticated request.
type SessionToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// SessionClaims is the decoded identity a verified session token carries.
// UserID is the subject claim and refers to the users table; Role is either
// USER or ADMIN.
type SessionClaims struct {
	UserID string
	Email  string
	Role   string
}

// ErrInvalidToken is returned by ParseSessionToken for any token that is
// missing, malformed, expired or signed with the wrong key or algorithm.
// Callers must treat it as "no user" and never distinguish the cause.
var ErrInvalidToken = errors.New("invalid session token")

// NewSessionToken builds and signs an HS256 JWT for a user.  It takes the
// signing secret, the user's id, email and role, and a TTL in days.  The JWT
// includes standard claims: subject (sub), email, role, expiration (exp) and
// issued at (iat).
func NewSessionToken(secret, userID, email, role string, ttlDays int) (SessionToken, error) {
	exp := time.Now().UTC().Add(time.Duration(ttlDays) * 24 * time.Hour)
	claims := jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"role":  role,
		"exp":   exp.Unix(),
		"iat":   time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return SessionToken{}, err
	}
	return SessionToken{Token: signed, Exp: exp}, nil
}

// ParseSessionToken verifies a raw JWT and extracts the session claims.
// Only HMAC-signed tokens are accepted; anything else fails closed with
// ErrInvalidToken.
func ParseSessionToken(secret, raw string) (SessionClaims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return SessionClaims{}, ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return SessionClaims{}, ErrInvalidToken
	}
	sc := SessionClaims{}
	if v, ok := claims["sub"].(string); ok {
		sc.UserID = v
	}
	if v, ok := claims["email"].(string); ok {
		sc.Email = v
	}
	if v, ok := claims["role"].(string); ok {
		sc.Role = v
	}
	if sc.UserID == "" || sc.Role == "" {
		return SessionClaims{}, ErrInvalidToken
	}
	return sc, nil
}
