// Package database defines the sentinel errors shared between the persistent
// store adapters and the layers above them.
package database

import "errors"

var (
	// ErrShortCodeExists is returned when an attempt is made to create
	// a new shortened URL with a short code that already exists.
	ErrShortCodeExists = errors.New("short code exists")
	// ErrURLNotFound is returned when there is no active URL behind the
	// given short code. Absence is a normal outcome, not a failure.
	ErrURLNotFound = errors.New("url not found")
)
