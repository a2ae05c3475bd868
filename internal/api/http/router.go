package http

import (
	"context"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"urlshort/internal/models"
)

// URLService defines the interface for the core URL shortening business logic.
type URLService interface {
	// ShortenURL creates a shortened version of the provided original URL.
	// It returns the stored mapping, or an error if the operation fails.
	ShortenURL(ctx context.Context, originalURL string) (*models.URL, error)

	// ResolveShortCode resolves a short code into a redirect target with a
	// URL scheme. It returns database.ErrURLNotFound if the code is unknown.
	ResolveShortCode(ctx context.Context, shortCode, clientIP, userAgent string) (string, error)
}

// AccessLogReader exposes the raw access-log dump used by the logs endpoint.
type AccessLogReader interface {
	Recent(ctx context.Context, limit int64) ([]models.AccessLog, error)
}

// getValidate initializes a new validator instance for validating incoming request payloads.
// It customizes tag name extraction from struct fields to match JSON tags.
func getValidate() *validator.Validate {
	validate := validator.New()

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return validate
}

// NewRouter initializes and returns a new HTTP router with all routes and middleware configured.
// The metrics and logs endpoints are gated behind the bearer token; creation
// and redirect are unauthenticated.
func NewRouter(logger *httplog.Logger, urlSvc URLService, accessLogs AccessLogReader, apiToken string) http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*"},
		AllowedMethods:   []string{"POST", "GET", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Accept", "Authorization"},
		AllowCredentials: false,
		MaxAge:           84600,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httplog.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	registry := prometheus.NewRegistry()
	r.Use(requestMetrics(registry))

	validate := getValidate()

	r.Post("/", handleShortenURL(urlSvc, validate))

	r.Group(func(r chi.Router) {
		r.Use(bearerAuth(apiToken))

		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		r.Get("/logs", handleGetLogs(accessLogs))
	})

	r.Get("/{shortCode}", handleRedirect(urlSvc))

	return r
}
