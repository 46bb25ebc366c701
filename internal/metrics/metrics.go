package metrics

import (
	"regexp"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Login outcomes. Responses never distinguish unknown_user from bad_password; the metric does.
const (
	LoginSuccess     = "success"
	LoginUnknownUser = "unknown_user"
	LoginBadPassword = "bad_password"
	LoginError       = "error"
)

// Reminder creation sources.
const (
	SourceAPI = "api"
	SourceWeb = "web"
)

var (
	// RequestDuration tracks HTTP request duration in seconds by method, path, status.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// RequestTotal counts HTTP requests by method, path, status.
	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// LoginAttempts counts login attempts by outcome.
	LoginAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "login_attempts_total",
			Help: "Total number of login attempts by outcome",
		},
		[]string{"outcome"},
	)

	// RemindersCreated counts created reminders by source (api, web).
	RemindersCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reminders_created_total",
			Help: "Total number of reminders created by source",
		},
		[]string{"source"},
	)

	SessionsPruned = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sessions_pruned_total",
			Help: "Total number of expired sessions deleted",
		},
	)
)

var (
	numericPathSegment = regexp.MustCompile(`/[0-9]+(/|$)`)
	initOnce           sync.Once
)

func init() {
	initOnce.Do(func() {
		prometheus.MustRegister(RequestDuration, RequestTotal, LoginAttempts, RemindersCreated, SessionsPruned)
	})
}

// NormalizePath reduces cardinality by replacing numeric path segments with {id}.
// E.g. /api/reminders/123 -> /api/reminders/{id}, /reminder/45 -> /reminder/{id}.
func NormalizePath(path string) string {
	return numericPathSegment.ReplaceAllString(path, "/{id}$1")
}

// RecordRequest records duration and count for an HTTP request. Call from middleware with method, path, statusCode, duration.
func RecordRequest(method, path string, statusCode int, durationSeconds float64) {
	path = NormalizePath(path)
	status := strconv.Itoa(statusCode)
	RequestDuration.WithLabelValues(method, path, status).Observe(durationSeconds)
	RequestTotal.WithLabelValues(method, path, status).Inc()
}

func IncLoginAttempt(outcome string) {
	LoginAttempts.WithLabelValues(outcome).Inc()
}

func IncRemindersCreated(source string) {
	RemindersCreated.WithLabelValues(source).Inc()
}

func AddSessionsPruned(n int64) {
	SessionsPruned.Add(float64(n))
}
