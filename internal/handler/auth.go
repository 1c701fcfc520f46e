package handler

import (
	"context"  // provides context with cancellation for DB calls
	"errors"   // sentinel comparisons with errors.Is
	"net/http" // HTTP status codes and primitives
	"strings"  // string manipulation utilities
	"time"     // timeouts for DB calls

	"github.com/labstack/echo/v4" // Echo framework for HTTP routing

	"github.com/campusnav/campus-navigator/internal/config"     // app configuration
	"github.com/campusnav/campus-navigator/internal/repository" // DB repositories
	"github.com/campusnav/campus-navigator/internal/utils"      // helpers (hashing, tokens, cookies)
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u}
}

// ----- DTOs -----

type registerReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type userPart struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Register: create a USER account, set the session cookie and return the
// user summary. Every registration violation is reported at once.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if errs := utils.ValidateRegistration(utils.RegistrationInput{
		Name: req.Name, Email: req.Email, Password: req.Password,
	}); len(errs) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "details": errs})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.Create(ctx, req.Name, req.Email, req.Password, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}

	tok, err := utils.NewSessionToken(h.Cfg.JWTSecret, u.ID, u.Email, u.Role, h.Cfg.TokenTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue token failed"})
	}
	utils.SetAuthCookie(c, tok.Token, h.Cfg.TokenTTLDays, h.Cfg.SecureCookie)

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "registration successful",
		"user":    userPart{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role},
	})
}

// Login: verify the credential and set a fresh session cookie. Unknown
// email and wrong password produce the same response so the endpoint does
// not leak which accounts exist.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if !utils.IsValidEmail(req.Email) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid email address"})
	}
	if req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid email or password"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid email or password"})
	}

	tok, err := utils.NewSessionToken(h.Cfg.JWTSecret, u.ID, u.Email, u.Role, h.Cfg.TokenTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue token failed"})
	}
	utils.SetAuthCookie(c, tok.Token, h.Cfg.TokenTTLDays, h.Cfg.SecureCookie)

	return c.JSON(http.StatusOK, echo.Map{
		"message": "login successful",
		"user":    userPart{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role},
	})
}

// Logout clears the session cookie. The signed token itself stays valid
// until expiry; sessions are stateless on the server side.
func (h *AuthHandler) Logout(c echo.Context) error {
	utils.ClearAuthCookie(c, h.Cfg.SecureCookie)
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

// Me returns the authenticated caller's identity as resolved by the
// session middleware.
func (h *AuthHandler) Me(c echo.Context) error {
	id, err := currentUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authenticated"})
	}
	name, _ := c.Get("user_name").(string)
	email, _ := c.Get("email").(string)
	role, _ := c.Get("role").(string)
	return c.JSON(http.StatusOK, echo.Map{
		"user": userPart{ID: id, Name: name, Email: email, Role: role},
	})
}
