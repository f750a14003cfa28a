package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"billcraft/internal/common"
	"billcraft/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTMiddleware_ValidTokenPopulatesContext(t *testing.T) {
	authSvc := services.NewAuthService("test-secret", time.Hour)
	userID := uuid.New()

	token, err := authSvc.GenerateToken(context.Background(), userID, "user")
	require.NoError(t, err)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var gotUserID uuid.UUID
	var gotRole string
	next := func(c echo.Context) error {
		gotUserID, _ = common.GetUserIDFromContext(c.Request().Context())
		gotRole, _ = common.GetRoleFromContext(c.Request().Context())
		return c.NoContent(http.StatusOK)
	}

	err = JWTMiddleware(authSvc)(next)(c)
	require.NoError(t, err)
	assert.Equal(t, userID, gotUserID)
	assert.Equal(t, "user", gotRole)
}

func TestJWTMiddleware_MissingHeader(t *testing.T) {
	authSvc := services.NewAuthService("test-secret", time.Hour)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := JWTMiddleware(authSvc)(func(c echo.Context) error { return nil })(c)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestJWTMiddleware_MalformedHeader(t *testing.T) {
	authSvc := services.NewAuthService("test-secret", time.Hour)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := JWTMiddleware(authSvc)(func(c echo.Context) error { return nil })(c)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestJWTMiddleware_TokenSignedWithOtherSecret(t *testing.T) {
	issuer := services.NewAuthService("other-secret", time.Hour)
	verifier := services.NewAuthService("test-secret", time.Hour)

	token, err := issuer.GenerateToken(context.Background(), uuid.New(), "user")
	require.NoError(t, err)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err = JWTMiddleware(verifier)(func(c echo.Context) error { return nil })(c)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}
