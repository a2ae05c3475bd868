package http

import (
	"crypto/subtle"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"urlshort/pkg/response"
)

const bearerPrefix = "Bearer "

// bearerAuth guards sensitive endpoints with a single static bearer token.
// The token comparison is constant-time to avoid timing side-channels.
func bearerAuth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, bearerPrefix) {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.MissingAuthHeaderResponse)
				return
			}

			got := strings.TrimPrefix(header, bearerPrefix)
			if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.InvalidTokenResponse)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// requestMetrics records a request counter and latency histogram per route
// pattern, labeled by method and status.
func requestMetrics(registry *prometheus.Registry) func(http.Handler) http.Handler {
	factory := promauto.With(registry)

	requestCount := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "urlshort",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Number of HTTP requests received.",
	}, []string{"method", "path", "status"})

	requestLatency := factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "urlshort",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Duration of HTTP requests in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			path := chi.RouteContext(r.Context()).RoutePattern()
			if path == "" {
				path = r.URL.Path
			}

			labels := prometheus.Labels{
				"method": r.Method,
				"path":   path,
				"status": strconv.Itoa(ww.Status()),
			}
			requestCount.With(labels).Inc()
			requestLatency.With(labels).Observe(time.Since(start).Seconds())
		})
	}
}
