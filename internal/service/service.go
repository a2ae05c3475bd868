package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"urlshort/internal/database"
	"urlshort/internal/models"
)

// ErrMaxRetriesExceeded is returned when the maximum number of retries for generating a short code is exceeded.
var ErrMaxRetriesExceeded = errors.New("maximum retries exceeded for generating short code")

// shortCodeAlphabet is the 36-symbol alphabet short codes are drawn from.
const shortCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// sideOpTimeout bounds cache and access-log operations so a hung dependency
// never consumes the whole request budget. The persistent store inherits the
// request context, which the router bounds separately.
const sideOpTimeout = 2 * time.Second

// URLRepository defines the interface for working with URL mappings at the business logic layer.
type URLRepository interface {
	// Create inserts a new shortened URL into the repository.
	// Returns the created URL model or an error if the operation fails.
	Create(ctx context.Context, shortCode, originalURL string) (*models.URL, error)

	// GetByShortCode retrieves a URL by its short code.
	// Returns the URL model if found or an error if not found.
	GetByShortCode(ctx context.Context, shortCode string) (*models.URL, error)
}

// URLCache defines the time-bounded short code to original URL cache.
// Implementations must treat an absent key as a normal outcome, not an error.
type URLCache interface {
	Get(ctx context.Context, shortCode string) (string, bool, error)
	Set(ctx context.Context, shortCode, originalURL string, ttl time.Duration) error
}

// AccessLogAppender records access events for resolved short codes.
type AccessLogAppender interface {
	Append(ctx context.Context, event models.AccessLog) error
}

// URLService provides methods to manage URL shortening operations.
// Reads follow the cache-aside pattern: the cache is checked first, the
// persistent store is the fallback, and the cache is populated on the way out.
type URLService struct {
	repo            URLRepository
	cache           URLCache
	accessLogs      AccessLogAppender
	logger          *slog.Logger
	shortCodeLength int
	cacheTTL        time.Duration
}

// NewURLService creates a new instance of URLService with the provided dependencies.
func NewURLService(
	repo URLRepository,
	cache URLCache,
	accessLogs AccessLogAppender,
	logger *slog.Logger,
	shortCodeLength int,
	cacheTTL time.Duration,
) *URLService {
	return &URLService{
		repo:            repo,
		cache:           cache,
		accessLogs:      accessLogs,
		logger:          logger,
		shortCodeLength: shortCodeLength,
		cacheTTL:        cacheTTL,
	}
}

// GenerateShortCode produces a short code of the given length drawn uniformly
// at random from the A-Z0-9 alphabet. The generator makes no uniqueness
// guarantee; the store's unique constraint enforces that.
func GenerateShortCode(length int) (string, error) {
	return gonanoid.Generate(shortCodeAlphabet, length)
}

// ShortenURL generates a short code for the provided original URL and stores the mapping.
// It attempts to generate a unique short code up to a maximum number of retries.
// If successful, it returns the created URL model; otherwise, it returns an error.
func (s *URLService) ShortenURL(ctx context.Context, originalURL string) (*models.URL, error) {
	const op = "service.URLService.ShortenURL"
	const maxRetries = 5

	for i := 0; i < maxRetries; i++ {
		shortCode, err := GenerateShortCode(s.shortCodeLength)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to generate short code: %w", op, err)
		}

		mapping, err := s.repo.Create(ctx, shortCode, originalURL)
		if err != nil {
			if errors.Is(err, database.ErrShortCodeExists) {
				continue
			}

			return nil, fmt.Errorf("%s: failed to shorten url: %w", op, err)
		}

		return mapping, nil
	}

	return nil, fmt.Errorf("%s: %w", op, ErrMaxRetriesExceeded)
}

// ResolveShortCode resolves a short code into a redirect target.
//
// The cache is consulted first; a hit returns immediately without touching
// the store or the access log, so only cold lookups are recorded. On a miss
// the store is read, an access event is appended best-effort, and the cache
// is populated with an absolute TTL. The returned target always carries a
// URL scheme, defaulting to http.
func (s *URLService) ResolveShortCode(ctx context.Context, shortCode, clientIP, userAgent string) (string, error) {
	const op = "service.URLService.ResolveShortCode"

	cached, ok, err := s.cacheGet(ctx, shortCode)
	if err != nil {
		// A broken cache only costs latency; fall through to the store.
		s.logger.Warn("cache read failed", slog.String("op", op), slog.Any("err", err))
	}
	if ok {
		return ensureScheme(cached), nil
	}

	mapping, err := s.repo.GetByShortCode(ctx, shortCode)
	if err != nil {
		return "", fmt.Errorf("%s: failed to resolve short code: %w", op, err)
	}

	if mapping.OriginalURL == "" {
		return "", fmt.Errorf("%s: %w", op, database.ErrInvalidRecord)
	}

	event := models.AccessLog{
		ShortCode: shortCode,
		IP:        clientIP,
		Timestamp: time.Now().UTC(),
		UserAgent: userAgent,
	}
	if err := s.appendAccessLog(ctx, event); err != nil {
		// A log-store outage must never break redirects.
		s.logger.Error("failed to record access event", slog.String("op", op), slog.Any("err", err))
	}

	if err := s.cacheSet(ctx, shortCode, mapping.OriginalURL); err != nil {
		s.logger.Warn("cache write failed", slog.String("op", op), slog.Any("err", err))
	}

	return ensureScheme(mapping.OriginalURL), nil
}

func (s *URLService) cacheGet(ctx context.Context, shortCode string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, sideOpTimeout)
	defer cancel()

	return s.cache.Get(ctx, shortCode)
}

func (s *URLService) cacheSet(ctx context.Context, shortCode, originalURL string) error {
	ctx, cancel := context.WithTimeout(ctx, sideOpTimeout)
	defer cancel()

	return s.cache.Set(ctx, shortCode, originalURL, s.cacheTTL)
}

func (s *URLService) appendAccessLog(ctx context.Context, event models.AccessLog) error {
	ctx, cancel := context.WithTimeout(ctx, sideOpTimeout)
	defer cancel()

	return s.accessLogs.Append(ctx, event)
}

// ensureScheme prefixes schemeless targets with http:// so the Location
// header is always an absolute URL.
func ensureScheme(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Scheme == "" {
		return "http://" + raw
	}

	return raw
}
