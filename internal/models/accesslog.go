package models

import "time"

// AccessLog represents a single access event recorded when a short code
// is resolved against the persistent store. Events are append-only and
// are never read back by the resolution path.
type AccessLog struct {
	// ID is the identity assigned by the log store, string-ified for transport.
	ID string
	// ShortCode is the short code that was resolved.
	ShortCode string
	// IP is the client address the request originated from.
	IP string
	// Timestamp is the UTC time the access occurred.
	Timestamp time.Time
	// UserAgent is the caller's user agent, if any.
	UserAgent string
}
