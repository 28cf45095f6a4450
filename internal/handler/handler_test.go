package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"mentorship-service/internal/apperr"
	"mentorship-service/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func newContext(target string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	rec := httptest.NewRecorder()
	return e.NewContext(httptest.NewRequest(http.MethodGet, target, nil), rec), rec
}

func TestRespondErrorUsesAppErrorStatus(t *testing.T) {
	c, rec := newContext("/")

	assert.NoError(t, respondError(c, apperr.Conflict("already registered")))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"error":"already registered"}`, rec.Body.String())
}

func TestRespondErrorDetailsFollowSetting(t *testing.T) {
	prev := exposeErrorDetails.Load()
	t.Cleanup(func() { ExposeErrorDetails(prev) })

	ExposeErrorDetails(false)
	c, rec := newContext("/")
	assert.NoError(t, respondError(c, errors.New("pq: connection refused")))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())

	ExposeErrorDetails(true)
	c, rec = newContext("/")
	assert.NoError(t, respondError(c, errors.New("pq: connection refused")))
	assert.JSONEq(t, `{"error":"internal server error","details":"pq: connection refused"}`, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "\n  ", "responses are not indented")
}

func TestHTTPErrorHandlerRendersEchoErrors(t *testing.T) {
	c, rec := newContext("/")
	HTTPErrorHandler(echo.ErrMethodNotAllowed, c)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.JSONEq(t, `{"error":"Method Not Allowed"}`, rec.Body.String())
}

func TestParamID(t *testing.T) {
	c, _ := newContext("/")
	c.SetParamNames("id")

	c.SetParamValues("42")
	id, err := paramID(c, "id")
	assert.NoError(t, err)
	assert.Equal(t, uint(42), id)

	for _, bad := range []string{"0", "-1", "abc", ""} {
		c.SetParamValues(bad)
		_, err := paramID(c, "id")
		assert.Equal(t, http.StatusBadRequest, apperr.StatusOf(err), bad)
	}
}

func TestQueryPage(t *testing.T) {
	c, _ := newContext("/?page=3&limit=500")
	assert.Equal(t, service.Page{Page: 3, Limit: service.MaxPageLimit}, queryPage(c))

	c, _ = newContext("/?page=x")
	assert.Equal(t, service.Page{Page: 1, Limit: service.DefaultPageLimit}, queryPage(c))
}

func TestCurrentActorRequiresAuth(t *testing.T) {
	c, _ := newContext("/")
	_, err := currentActor(c)
	assert.Equal(t, http.StatusUnauthorized, apperr.StatusOf(err))
}
