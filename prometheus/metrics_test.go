package prometheus

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsMiddlewareCountsRequests(t *testing.T) {
	e := echo.New()
	e.Use(MetricsMiddleware())
	e.GET("/items/:id", func(c echo.Context) error {
		return c.NoContent(http.StatusAccepted)
	})

	before := testutil.ToFloat64(HTTPRequestCounter.WithLabelValues("/items/:id", http.MethodGet, "202"))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items/7", nil))
	require.Equal(t, http.StatusAccepted, rec.Code)

	after := testutil.ToFloat64(HTTPRequestCounter.WithLabelValues("/items/:id", http.MethodGet, "202"))
	assert.Equal(t, before+1, after)
}

func TestRecordHelpers(t *testing.T) {
	before := testutil.ToFloat64(MentorshipTransitionCounter.WithLabelValues("pending", "accepted"))
	RecordMentorshipTransition("pending", "accepted")
	assert.Equal(t, before+1, testutil.ToFloat64(MentorshipTransitionCounter.WithLabelValues("pending", "accepted")))

	before = testutil.ToFloat64(AuthErrorCounter.WithLabelValues("invalid_token"))
	RecordAuthError("invalid_token")
	assert.Equal(t, before+1, testutil.ToFloat64(AuthErrorCounter.WithLabelValues("invalid_token")))

	TrackDBOperation("query")(time.Now())
	assert.Equal(t, 1, testutil.CollectAndCount(DBOperationDuration))
}

func TestMetricsMiddlewareUsesErrorStatus(t *testing.T) {
	e := echo.New()
	e.Use(MetricsMiddleware())
	e.GET("/missing", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "gone")
	})

	before := testutil.ToFloat64(StatusCategoryCounter.WithLabelValues("4xx", http.MethodGet, "/missing"))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	assert.Equal(t, before+1, testutil.ToFloat64(StatusCategoryCounter.WithLabelValues("4xx", http.MethodGet, "/missing")))
	assert.Equal(t, 1.0, testutil.ToFloat64(HTTPRequestCounter.WithLabelValues("/missing", http.MethodGet, "404")))
}

func TestStatusCategory(t *testing.T) {
	assert.Equal(t, "2xx", statusCategory(http.StatusCreated))
	assert.Equal(t, "4xx", statusCategory(http.StatusConflict))
	assert.Equal(t, "5xx", statusCategory(http.StatusServiceUnavailable))
	assert.Equal(t, "", statusCategory(http.StatusFound))
}
