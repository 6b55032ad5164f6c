package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	echo "github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const jwtTestSecret = "unit-test-secret"

func signToken(t *testing.T, secret, sub string, method jwt.SigningMethod) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": sub,
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func runAuth(t *testing.T, authHeader string) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/membership", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	reachedNext := false
	handler := JWTMiddleware(jwtTestSecret)(func(c echo.Context) error {
		reachedNext = true
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, handler(c))
	return rec, reachedNext
}

func TestJWTMiddlewareAcceptsValidToken(t *testing.T) {
	token := signToken(t, jwtTestSecret, "user_42", jwt.SigningMethodHS256)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/membership", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := JWTMiddleware(jwtTestSecret)(func(c echo.Context) error {
		id, ok := UserIDFromCtx(c)
		assert.True(t, ok)
		assert.Equal(t, "user_42", id)
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, handler(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestJWTMiddlewareRejectsMissingHeader(t *testing.T) {
	rec, reachedNext := runAuth(t, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, reachedNext)
}

func TestJWTMiddlewareRejectsNonBearerHeader(t *testing.T) {
	rec, reachedNext := runAuth(t, "Basic dXNlcjpwYXNz")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, reachedNext)
}

func TestJWTMiddlewareRejectsWrongSecret(t *testing.T) {
	token := signToken(t, "some-other-secret", "user_42", jwt.SigningMethodHS256)
	rec, reachedNext := runAuth(t, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, reachedNext)
}

func TestJWTMiddlewareRejectsExpiredToken(t *testing.T) {
	claims := jwt.MapClaims{
		"sub": "user_42",
		"exp": time.Now().Add(-time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(jwtTestSecret))
	require.NoError(t, err)

	rec, reachedNext := runAuth(t, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, reachedNext)
}

func TestJWTMiddlewareRejectsMissingSubject(t *testing.T) {
	claims := jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(jwtTestSecret))
	require.NoError(t, err)

	rec, reachedNext := runAuth(t, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, reachedNext)
}
