package database

import "errors"

var (
	// ErrShortCodeExists is returned when an attempt is made to create
	// a new shortened URL with a short code that already exists.
	ErrShortCodeExists = errors.New("short code exists")
	// ErrURLNotFound is returned when an attempt is made to retrieve
	// a URL using a short code that doesn't exist.
	ErrURLNotFound = errors.New("url not found")
	// ErrInvalidRecord is returned when the store hands back a record
	// that violates the mapping invariants, e.g. an empty original URL.
	ErrInvalidRecord = errors.New("invalid url record")
)
