package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Surfaces label which front door a login came through.
const (
	SurfaceAPI = "api"
	SurfaceWeb = "web"
)

// Metrics holds all Prometheus metrics. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Auth metrics
	LoginAttemptsTotal  *prometheus.CounterVec
	LockoutsTotal       *prometheus.CounterVec
	TokensIssuedTotal   *prometheus.CounterVec
	TokensRevokedTotal  *prometheus.CounterVec
	PasswordResetsTotal *prometheus.CounterVec
}

// New creates and registers all metrics on registry.
func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: registry,

		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "blog_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "blog_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		LoginAttemptsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "blog_login_attempts_total",
				Help: "Login attempts by surface and result",
			},
			[]string{"surface", "result"},
		),
		LockoutsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "blog_login_lockouts_total",
				Help: "Login attempts rejected by the failed-attempt limiter",
			},
			[]string{"surface"},
		),
		TokensIssuedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "blog_access_tokens_issued_total",
				Help: "Personal access tokens issued",
			},
			[]string{"reason"},
		),
		TokensRevokedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "blog_access_tokens_revoked_total",
				Help: "Personal access tokens deleted",
			},
			[]string{"reason"},
		),
		PasswordResetsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "blog_password_resets_total",
				Help: "Password reset requests and completions",
			},
			[]string{"stage", "result"},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.LoginAttemptsTotal,
		m.LockoutsTotal,
		m.TokensIssuedTotal,
		m.TokensRevokedTotal,
		m.PasswordResetsTotal,
	)

	return m
}

func (m *Metrics) LoginAttempt(surface, result string) {
	if m == nil {
		return
	}
	m.LoginAttemptsTotal.WithLabelValues(surface, result).Inc()
}

func (m *Metrics) Lockout(surface string) {
	if m == nil {
		return
	}
	m.LockoutsTotal.WithLabelValues(surface).Inc()
}

func (m *Metrics) TokenIssued(reason string) {
	if m == nil {
		return
	}
	m.TokensIssuedTotal.WithLabelValues(reason).Inc()
}

func (m *Metrics) TokensRevoked(reason string, n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.TokensRevokedTotal.WithLabelValues(reason).Add(float64(n))
}

func (m *Metrics) PasswordReset(stage, result string) {
	if m == nil {
		return
	}
	m.PasswordResetsTotal.WithLabelValues(stage, result).Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request count and latency per route template.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method

		m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}
