package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mentorship-service/internal/model"
	"mentorship-service/pkg/jwtutil"
	"mentorship-service/pkg/tokenstore"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// knownUsers treats every id as existing unless it was marked deleted
type knownUsers struct {
	deleted map[uint]bool
	err     error
}

func (k *knownUsers) Exists(_ context.Context, id uint) (bool, error) {
	if k.err != nil {
		return false, k.err
	}
	return !k.deleted[id], nil
}

func newProtected(t *testing.T, store tokenstore.Store, mw ...echo.MiddlewareFunc) (*echo.Echo, *jwtutil.JWTUtil) {
	t.Helper()
	return newProtectedWithUsers(t, store, &knownUsers{}, mw...)
}

func newProtectedWithUsers(t *testing.T, store tokenstore.Store, users UserChecker, mw ...echo.MiddlewareFunc) (*echo.Echo, *jwtutil.JWTUtil) {
	t.Helper()
	jwt := jwtutil.NewJWTUtil(&jwtutil.JWTConfig{SigningKey: "test-secret", ExpirationHours: 1})

	e := echo.New()
	chain := append([]echo.MiddlewareFunc{AuthMiddleware(jwt, store, users)}, mw...)
	e.GET("/me", func(c echo.Context) error {
		id, role, ok := UserFromContext(c)
		require.True(t, ok)
		claims, ok := ClaimsFromContext(c)
		require.True(t, ok)
		return c.JSON(http.StatusOK, echo.Map{"id": id, "role": role, "jti": claims.ID})
	}, chain...)
	return e, jwt
}

func serve(e *echo.Echo, header, value string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if header != "" {
		req.Header.Set(header, value)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAuthMiddlewareMissingToken(t *testing.T) {
	e, _ := newProtected(t, tokenstore.NewMemoryStore())

	rec := serve(e, "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"no token, authorization denied"}`, rec.Body.String())
}

func TestAuthMiddlewareAcceptsBothHeaders(t *testing.T) {
	e, jwt := newProtected(t, tokenstore.NewMemoryStore())
	token, _, err := jwt.GenerateToken(7, string(model.RoleMentor))
	require.NoError(t, err)

	rec := serve(e, TokenHeader, token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":7`)

	rec = serve(e, "Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"role":"mentor"`)
}

func TestAuthMiddlewareRejectsInvalidToken(t *testing.T) {
	e, _ := newProtected(t, tokenstore.NewMemoryStore())

	rec := serve(e, TokenHeader, "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"token is not valid"}`, rec.Body.String())

	other := jwtutil.NewJWTUtil(&jwtutil.JWTConfig{SigningKey: "other-secret"})
	token, _, err := other.GenerateToken(1, string(model.RoleMentee))
	require.NoError(t, err)
	rec = serve(e, "Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareRejectsRevokedToken(t *testing.T) {
	store := tokenstore.NewMemoryStore()
	e, jwt := newProtected(t, store)
	token, claims, err := jwt.GenerateToken(3, string(model.RoleMentee))
	require.NoError(t, err)

	require.Equal(t, http.StatusOK, serve(e, TokenHeader, token).Code)

	require.NoError(t, store.Revoke(context.Background(), claims.ID, time.Hour))
	rec := serve(e, TokenHeader, token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"token is not valid"}`, rec.Body.String())
}

func TestAuthMiddlewareRejectsDeletedUser(t *testing.T) {
	users := &knownUsers{deleted: map[uint]bool{}}
	e, jwt := newProtectedWithUsers(t, tokenstore.NewMemoryStore(), users)
	token, _, err := jwt.GenerateToken(4, string(model.RoleMentee))
	require.NoError(t, err)

	require.Equal(t, http.StatusOK, serve(e, TokenHeader, token).Code)

	users.deleted[4] = true
	rec := serve(e, TokenHeader, token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"token is not valid"}`, rec.Body.String())
}

func TestAuthMiddlewareUserLookupFailure(t *testing.T) {
	e, jwt := newProtectedWithUsers(t, tokenstore.NewMemoryStore(), &knownUsers{err: errors.New("db down")})
	token, _, err := jwt.GenerateToken(5, string(model.RoleMentor))
	require.NoError(t, err)

	rec := serve(e, TokenHeader, token)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRequireRole(t *testing.T) {
	e, jwt := newProtected(t, tokenstore.NewMemoryStore(), RequireRole(model.RoleAdmin))

	mentee, _, err := jwt.GenerateToken(1, string(model.RoleMentee))
	require.NoError(t, err)
	rec := serve(e, TokenHeader, mentee)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	admin, _, err := jwt.GenerateToken(2, string(model.RoleAdmin))
	require.NoError(t, err)
	rec = serve(e, TokenHeader, admin)
	assert.Equal(t, http.StatusOK, rec.Code)
}
