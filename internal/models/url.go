package models

import "time"

// URL represents a shortened URL and its associated metadata.
type URL struct {
	// ID is the unique identifier for the shortened URL record.
	ID int64
	// ShortCode is the short code or key associated with the original URL.
	ShortCode string
	// OriginalURL is the original, full-length URL that the short code points to.
	OriginalURL string
	// TotalClicks tracks the number of times the shortened URL has been resolved.
	TotalClicks int64
	// ExpiresAt is an optional timestamp after which the URL stops resolving.
	ExpiresAt *time.Time
	// IsActive indicates whether the URL is active. Deactivated URLs never resolve.
	IsActive bool
	// CreatedAt is the timestamp indicating when the shortened URL was created.
	CreatedAt time.Time
	// UpdatedAt is the timestamp indicating when the shortened URL was last updated.
	UpdatedAt time.Time
}

// Resolvable reports whether the URL may be resolved at the given moment.
// A URL resolves only while it is active and unexpired.
func (u *URL) Resolvable(now time.Time) bool {
	if !u.IsActive {
		return false
	}
	if u.ExpiresAt != nil && !u.ExpiresAt.After(now) {
		return false
	}
	return true
}
