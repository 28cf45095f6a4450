package prometheus

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Counter metrics
var (
	// Login counters
	LoginCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mentorship_login_total",
			Help: "Total number of successful logins",
		},
	)

	// Registration counters
	RegisterCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mentorship_register_total",
			Help: "Total number of user registrations",
		},
	)

	// HTTP request counter by endpoint and status
	HTTPRequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mentorship_http_requests_total",
			Help: "Total number of HTTP requests by endpoint and status",
		},
		[]string{"endpoint", "method", "status"},
	)

	// Responses by status category (2xx, 4xx, 5xx)
	StatusCategoryCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mentorship_http_status_category_total",
			Help: "Total number of responses by status category",
		},
		[]string{"category", "method", "endpoint"},
	)

	// Error counters
	AuthErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mentorship_auth_errors_total",
			Help: "Total number of authentication errors",
		},
		[]string{"type"}, // "missing_token", "invalid_token", "revoked_token", "login_failure", ...
	)

	MentorshipTransitionCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mentorship_status_transitions_total",
			Help: "Total number of mentorship status transitions",
		},
		[]string{"from", "to"},
	)

	MentorshipRequestCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mentorship_requests_total",
			Help: "Total number of mentorship requests created",
		},
	)

	MessagesSentCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mentorship_messages_sent_total",
			Help: "Total number of messages sent",
		},
	)

	ConversationsCreatedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mentorship_conversations_created_total",
			Help: "Total number of conversations created",
		},
	)

	SessionsScheduledCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mentorship_sessions_scheduled_total",
			Help: "Total number of sessions scheduled",
		},
	)

	SessionConflictCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mentorship_session_conflicts_total",
			Help: "Total number of session requests rejected for overlapping an existing session",
		},
	)

	EventRegistrationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mentorship_event_registrations_total",
			Help: "Total number of event registration operations",
		},
		[]string{"operation"}, // "register", "cancel", "attended"
	)

	UploadCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mentorship_uploads_total",
			Help: "Total number of stored uploads",
		},
		[]string{"kind"}, // "profile_image", "resource"
	)
)

// Histogram metrics
var (
	// Request duration
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mentorship_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	// Database operation duration
	DBOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mentorship_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)

// Gauge metrics
var (
	InfoGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "mentorship_info",
			Help: "Information about the mentorship service",
		},
		[]string{"version"},
	)
)

func init() {
	prometheus.MustRegister(LoginCounter)
	prometheus.MustRegister(RegisterCounter)
	prometheus.MustRegister(HTTPRequestCounter)
	prometheus.MustRegister(StatusCategoryCounter)
	prometheus.MustRegister(AuthErrorCounter)
	prometheus.MustRegister(MentorshipTransitionCounter)
	prometheus.MustRegister(MentorshipRequestCounter)
	prometheus.MustRegister(MessagesSentCounter)
	prometheus.MustRegister(ConversationsCreatedCounter)
	prometheus.MustRegister(SessionsScheduledCounter)
	prometheus.MustRegister(SessionConflictCounter)
	prometheus.MustRegister(EventRegistrationCounter)
	prometheus.MustRegister(UploadCounter)

	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(DBOperationDuration)

	prometheus.MustRegister(InfoGauge)

	InfoGauge.With(prometheus.Labels{"version": "1.0.0"}).Set(1)
}

// GetPrometheusHandler returns an HTTP handler for the Prometheus metrics
func GetPrometheusHandler() http.Handler {
	return promhttp.Handler()
}

// TrackDBOperation measures database operation durations
func TrackDBOperation(operation string) func(time.Time) {
	startTime := time.Now()
	return func(endTime time.Time) {
		duration := time.Since(startTime).Seconds()
		DBOperationDuration.With(prometheus.Labels{
			"operation": operation,
		}).Observe(duration)
	}
}

// MetricsMiddleware creates a middleware function that captures metrics for each request
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			duration := time.Since(start).Seconds()
			code := responseStatus(c, err)
			status := strconv.Itoa(code)
			endpoint := c.Path()
			method := c.Request().Method

			RequestDuration.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Observe(duration)

			HTTPRequestCounter.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Inc()

			if category := statusCategory(code); category != "" {
				StatusCategoryCounter.With(prometheus.Labels{
					"category": category,
					"method":   method,
					"endpoint": endpoint,
				}).Inc()
			}

			return err
		}
	}
}

// responseStatus returns the status the error handler will write when err has not been rendered yet
func responseStatus(c echo.Context, err error) int {
	if err == nil || c.Response().Committed {
		return c.Response().Status
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	return http.StatusInternalServerError
}

func statusCategory(status int) string {
	switch {
	case status >= 200 && status < 300:
		return "2xx"
	case status >= 400 && status < 500:
		return "4xx"
	case status >= 500 && status < 600:
		return "5xx"
	}
	return ""
}

// RecordAuthError records an authentication error by type
func RecordAuthError(errorType string) {
	AuthErrorCounter.With(prometheus.Labels{"type": errorType}).Inc()
}

// RecordMentorshipTransition records a status change
func RecordMentorshipTransition(from, to string) {
	MentorshipTransitionCounter.With(prometheus.Labels{"from": from, "to": to}).Inc()
}

// RecordEventRegistration records a registration operation
func RecordEventRegistration(operation string) {
	EventRegistrationCounter.With(prometheus.Labels{"operation": operation}).Inc()
}

// RecordUpload records a stored upload by kind
func RecordUpload(kind string) {
	UploadCounter.With(prometheus.Labels{"kind": kind}).Inc()
}
