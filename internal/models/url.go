package models

import "time"

// URL represents a mapping from a short code to its original URL.
// Records are immutable once created: a short code handed to a client
// resolves to the same original URL for the lifetime of the record.
type URL struct {
	// ID is the unique identifier for the mapping record.
	ID int64
	// ShortCode is the generated short code associated with the original URL.
	ShortCode string
	// OriginalURL is the original, full-length URL that the short code points to.
	OriginalURL string
	// CreatedAt is the timestamp indicating when the mapping was created.
	CreatedAt time.Time
}
