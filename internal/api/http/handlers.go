package http

import (
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"urlshort/internal/database"
	"urlshort/internal/models"
	"urlshort/pkg/response"
)

// urlRequest represents the request payload for creating a shortened URL.
// A client-supplied id or short_url is ignored.
type urlRequest struct {
	OriginalURL string `json:"original_url" validate:"required"`
}

// urlResponse represents the stored mapping returned after creation.
type urlResponse struct {
	ID          int64  `json:"id"`
	ShortURL    string `json:"short_url"`
	OriginalURL string `json:"original_url"`
}

func toURLResponse(url *models.URL) urlResponse {
	return urlResponse{
		ID:          url.ID,
		ShortURL:    url.ShortCode,
		OriginalURL: url.OriginalURL,
	}
}

// logResponse mirrors the raw access-log document shape with the store
// identity string-ified.
type logResponse struct {
	ID        string    `json:"_id"`
	ShortCode string    `json:"short_code"`
	IP        string    `json:"ip"`
	Timestamp time.Time `json:"timestamp"`
	UserAgent string    `json:"user_agent,omitempty"`
}

// handleShortenURL handles POST requests to shorten a URL.
//
// The request must contain a non-empty original URL. The handler validates
// the input, calls the URL shortening service, and returns the stored
// mapping including its assigned identity.
func handleShortenURL(svc URLService, validate *validator.Validate) http.HandlerFunc {
	const op = "api.http.handleShortenURL"

	return func(w http.ResponseWriter, r *http.Request) {
		var req urlRequest

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			if errors.Is(err, io.EOF) {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.EmptyRequestBodyResponse)
				return
			}

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.BadRequestResponse)
			return
		}

		if err := validate.Struct(req); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.ValidationErrorResponse(err))
			return
		}

		url, err := svc.ShortenURL(r.Context(), req.OriginalURL)
		if err != nil {
			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, toURLResponse(url))
	}
}

// handleRedirect handles GET requests to resolve a short code and redirect.
//
// The handler resolves the short code through the cache-aside service and
// issues a 303 redirect to the normalized target, a 404 if the code is
// unknown, or a 500 if the stored record is malformed.
func handleRedirect(svc URLService) http.HandlerFunc {
	const op = "api.http.handleRedirect"

	return func(w http.ResponseWriter, r *http.Request) {
		shortCode := chi.URLParam(r, "shortCode")

		target, err := svc.ResolveShortCode(r.Context(), shortCode, clientIP(r), r.UserAgent())
		if err != nil {
			if errors.Is(err, database.ErrURLNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.URLNotFoundResponse)
				return
			}

			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			if errors.Is(err, database.ErrInvalidRecord) {
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.InvalidRecordResponse)
				return
			}

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		http.Redirect(w, r, target, http.StatusSeeOther)
	}
}

// handleGetLogs handles GET requests to dump the most recent access events.
func handleGetLogs(accessLogs AccessLogReader) http.HandlerFunc {
	const op = "api.http.handleGetLogs"
	const logsLimit = 100

	return func(w http.ResponseWriter, r *http.Request) {
		logs, err := accessLogs.Recent(r.Context(), logsLimit)
		if err != nil {
			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		data := make([]logResponse, 0, len(logs))
		for _, log := range logs {
			data = append(data, logResponse{
				ID:        log.ID,
				ShortCode: log.ShortCode,
				IP:        log.IP,
				Timestamp: log.Timestamp,
				UserAgent: log.UserAgent,
			})
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, data)
	}
}

// clientIP returns the caller's address without the port. The RealIP
// middleware has already substituted forwarded addresses.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}

	return r.RemoteAddr
}
