package handler

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/campusnav/campus-navigator/internal/config"
	"github.com/campusnav/campus-navigator/internal/repository"
	"github.com/campusnav/campus-navigator/internal/utils"
)

func authTestConfig() config.Config {
	return config.Config{
		JWTSecret:    "test-secret",
		TokenTTLDays: 7,
		BcryptCost:   4,
	}
}

func authTestContext(t *testing.T, body string) (*AuthHandler, sqlmock.Sqlmock, echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	h := NewAuthHandler(authTestConfig(), repository.NewUserRepo(db))

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return h, mock, c, rec
}

func TestAuthHandler_Register(t *testing.T) {
	h, mock, c, rec := authTestContext(t,
		`{"name":"Asha Verma","email":"Asha@CU.edu.in","password":"secret123"}`)

	mock.ExpectExec("INSERT INTO users").
		WithArgs(sqlmock.AnyArg(), "Asha Verma", "asha@cu.edu.in", sqlmock.AnyArg(), repository.RoleUser).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, h.Register(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	// The session rides an httpOnly cookie, not the response body.
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, utils.AuthCookieName, cookies[0].Name)
	require.True(t, cookies[0].HttpOnly)
	require.NotEmpty(t, cookies[0].Value)

	var body struct {
		User struct {
			Email string `json:"email"`
			Role  string `json:"role"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "asha@cu.edu.in", body.User.Email)
	require.Equal(t, repository.RoleUser, body.User.Role)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthHandler_Register_AllViolationsReported(t *testing.T) {
	h, mock, c, rec := authTestContext(t, `{"name":"1","email":"bad","password":"123"}`)

	require.NoError(t, h.Register(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body struct {
		Details []string `json:"details"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Details, 3)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthHandler_Register_DuplicateEmail(t *testing.T) {
	h, mock, c, rec := authTestContext(t,
		`{"name":"Asha Verma","email":"asha@cu.edu.in","password":"secret123"}`)

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry"))

	require.NoError(t, h.Register(c))
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Empty(t, rec.Result().Cookies())
	require.NoError(t, mock.ExpectationsWereMet())
}

func loginUserRows(t *testing.T, password string) *sqlmock.Rows {
	t.Helper()
	hash, err := utils.HashPassword(password, 4)
	require.NoError(t, err)
	now := time.Now()
	return sqlmock.NewRows(
		[]string{"id", "name", "email", "password_hash", "role", "created_at", "updated_at"}).
		AddRow("u-1", "Asha Verma", "asha@cu.edu.in", hash, repository.RoleUser, now, now)
}

func TestAuthHandler_Login(t *testing.T) {
	h, mock, c, rec := authTestContext(t,
		`{"email":"asha@cu.edu.in","password":"secret123"}`)

	mock.ExpectQuery("FROM users WHERE email").
		WithArgs("asha@cu.edu.in").
		WillReturnRows(loginUserRows(t, "secret123"))

	require.NoError(t, h.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, rec.Result().Cookies(), 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

// Wrong password and unknown email must be indistinguishable.
func TestAuthHandler_Login_UniformFailure(t *testing.T) {
	h, mock, c, rec := authTestContext(t,
		`{"email":"asha@cu.edu.in","password":"wrongpass"}`)
	mock.ExpectQuery("FROM users WHERE email").
		WithArgs("asha@cu.edu.in").
		WillReturnRows(loginUserRows(t, "secret123"))

	require.NoError(t, h.Login(c))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	wrongPassBody := rec.Body.String()

	h2, mock2, c2, rec2 := authTestContext(t,
		`{"email":"nobody@cu.edu.in","password":"whatever"}`)
	mock2.ExpectQuery("FROM users WHERE email").
		WithArgs("nobody@cu.edu.in").
		WillReturnError(sql.ErrNoRows)

	require.NoError(t, h2.Login(c2))
	require.Equal(t, http.StatusUnauthorized, rec2.Code)
	require.JSONEq(t, wrongPassBody, rec2.Body.String())
}

func TestAuthHandler_Logout_ClearsCookie(t *testing.T) {
	h, _, c, rec := authTestContext(t, "")

	require.NoError(t, h.Logout(c))
	require.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, utils.AuthCookieName, cookies[0].Name)
	require.Empty(t, cookies[0].Value)
	require.Negative(t, cookies[0].MaxAge)
}

func TestAuthHandler_Me(t *testing.T) {
	h, _, c, rec := authTestContext(t, "")
	c.Set("user_id", "u-1")
	c.Set("user_name", "Asha Verma")
	c.Set("email", "asha@cu.edu.in")
	c.Set("role", repository.RoleUser)

	require.NoError(t, h.Me(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		User struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "u-1", body.User.ID)
	require.Equal(t, "Asha Verma", body.User.Name)
}
