// Package service implements the core URL shortening logic: deterministic
// short code generation, cache-aside resolution and best-effort click
// accounting. It depends on narrow repository, cache and counter interfaces
// so the adapters can be swapped for in-memory fakes in tests.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/vadimbarashkov/link-shortener/internal/database"
	"github.com/vadimbarashkov/link-shortener/internal/models"
)

var (
	// ErrAliasTaken is returned when the requested custom alias already
	// belongs to an active URL.
	ErrAliasTaken = errors.New("custom alias is already taken")
	// ErrMaxRetriesExceeded is returned when repeated short code collisions
	// exhaust the retry budget.
	ErrMaxRetriesExceeded = errors.New("maximum retries exceeded for generating short code")
)

// URLRepository defines the persistent store operations the service relies on.
type URLRepository interface {
	// Save inserts a new URL record. The store assigns id and created_at.
	Save(ctx context.Context, shortCode, originalURL string, expiresAt *time.Time) (*models.URL, error)

	// GetByShortCode retrieves an active URL record by its short code.
	GetByShortCode(ctx context.Context, shortCode string) (*models.URL, error)

	// GetByOriginalURL retrieves an active URL record by its original URL.
	GetByOriginalURL(ctx context.Context, originalURL string) (*models.URL, error)

	// IncrementClicks bumps the click counter, reporting affected rows.
	IncrementClicks(ctx context.Context, shortCode string) (int64, error)

	// Deactivate soft-deletes the URL record.
	Deactivate(ctx context.Context, shortCode string) error
}

// Cache defines the key/value operations used to accelerate resolution.
// Absence of a key is a normal condition, never an error.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Counter yields atomic, strictly increasing values shared across all
// instances of the service.
type Counter interface {
	Next(ctx context.Context) (int64, error)
}

// URLService orchestrates code generation, persistence and cache population
// for writes, and cache-then-store lookups for reads.
type URLService struct {
	repo     URLRepository
	cache    Cache
	counter  Counter
	cacheTTL time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// NewURLService creates a new URLService. cacheTTL is the default lifetime of
// cache entries for URLs without an expiry of their own.
func NewURLService(repo URLRepository, cache Cache, counter Counter, cacheTTL time.Duration, logger *slog.Logger) *URLService {
	return &URLService{
		repo:     repo,
		cache:    cache,
		counter:  counter,
		cacheTTL: cacheTTL,
		logger:   logger,
		now:      time.Now,
	}
}

// ShortenURL creates a shortened URL for originalURL. If an active record for
// the same original URL already exists it is returned unchanged, with its
// cache entry's TTL refreshed. A non-empty customAlias is used verbatim as
// the short code and fails with ErrAliasTaken if already in use; otherwise
// the code is derived from a fresh counter value and the URL itself.
func (s *URLService) ShortenURL(ctx context.Context, originalURL, customAlias string, expiresAt *time.Time) (*models.URL, error) {
	const op = "service.URLService.ShortenURL"
	const maxRetries = 5

	existing, err := s.repo.GetByOriginalURL(ctx, originalURL)
	if err == nil {
		s.populateCache(ctx, existing)
		return existing, nil
	}
	if !errors.Is(err, database.ErrURLNotFound) {
		return nil, fmt.Errorf("%s: failed to check for existing url: %w", op, err)
	}

	if customAlias != "" {
		url, err := s.repo.Save(ctx, customAlias, originalURL, expiresAt)
		if err != nil {
			if errors.Is(err, database.ErrShortCodeExists) {
				return nil, fmt.Errorf("%s: %w", op, ErrAliasTaken)
			}

			return nil, fmt.Errorf("%s: failed to shorten url: %w", op, err)
		}

		s.populateCache(ctx, url)
		return url, nil
	}

	for i := 0; i < maxRetries; i++ {
		counter, err := s.counter.Next(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to obtain counter value: %w", op, err)
		}

		url, err := s.repo.Save(ctx, GenerateShortCode(originalURL, counter), originalURL, expiresAt)
		if err != nil {
			if errors.Is(err, database.ErrShortCodeExists) {
				continue
			}

			return nil, fmt.Errorf("%s: failed to shorten url: %w", op, err)
		}

		s.populateCache(ctx, url)
		return url, nil
	}

	return nil, fmt.Errorf("%s: %w", op, ErrMaxRetriesExceeded)
}

// Resolve returns the original URL for shortCode. A cache hit is returned
// as-is; the entry's own TTL is the only expiry enforcement on that path. On
// a miss the store is consulted, the record validated against its active flag
// and expiry, and the cache repopulated. Cache failures degrade to the store
// path and are never surfaced.
func (s *URLService) Resolve(ctx context.Context, shortCode string) (string, error) {
	const op = "service.URLService.Resolve"

	cached, ok, err := s.cache.Get(ctx, shortCode)
	if err != nil {
		s.logger.Warn("cache read failed, falling through to store",
			slog.String("op", op), slog.Any("err", err))
	}
	if ok {
		return cached, nil
	}

	url, err := s.repo.GetByShortCode(ctx, shortCode)
	if err != nil {
		if errors.Is(err, database.ErrURLNotFound) {
			return "", fmt.Errorf("%s: %w", op, database.ErrURLNotFound)
		}

		return "", fmt.Errorf("%s: failed to resolve short code: %w", op, err)
	}

	if !url.Resolvable(s.now()) {
		return "", fmt.Errorf("%s: %w", op, database.ErrURLNotFound)
	}

	s.populateCache(ctx, url)

	return url.OriginalURL, nil
}

// RecordClick increments the click counter for shortCode. The counter is
// analytics-grade: failures are logged and swallowed, and increments may be
// lost under transient store failure.
func (s *URLService) RecordClick(ctx context.Context, shortCode string) {
	const op = "service.URLService.RecordClick"

	affected, err := s.repo.IncrementClicks(ctx, shortCode)
	if err != nil {
		s.logger.Warn("failed to record click",
			slog.String("op", op), slog.String("short_code", shortCode), slog.Any("err", err))
		return
	}

	if affected == 0 {
		s.logger.Debug("click recorded for unknown short code",
			slog.String("op", op), slog.String("short_code", shortCode))
	}
}

// GetURLStats retrieves the URL record behind shortCode, including its click
// counter.
func (s *URLService) GetURLStats(ctx context.Context, shortCode string) (*models.URL, error) {
	const op = "service.URLService.GetURLStats"

	url, err := s.repo.GetByShortCode(ctx, shortCode)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get url stats: %w", op, err)
	}

	return url, nil
}

// DeactivateURL soft-deletes the URL and evicts its cache entry. A stale
// cache entry would otherwise keep resolving until its TTL ran out.
func (s *URLService) DeactivateURL(ctx context.Context, shortCode string) error {
	const op = "service.URLService.DeactivateURL"

	if err := s.repo.Deactivate(ctx, shortCode); err != nil {
		return fmt.Errorf("%s: failed to deactivate url: %w", op, err)
	}

	if err := s.cache.Delete(ctx, shortCode); err != nil {
		s.logger.Warn("failed to evict cache entry",
			slog.String("op", op), slog.String("short_code", shortCode), slog.Any("err", err))
	}

	return nil
}

// populateCache writes the shortCode -> originalURL mapping with a TTL bound
// to the record's expiry, or the default TTL when the record never expires.
// Records already past their expiry are not cached at all. Cache write
// failures are logged and swallowed; the store remains the source of truth.
func (s *URLService) populateCache(ctx context.Context, url *models.URL) {
	const op = "service.URLService.populateCache"

	ttl, ok := s.entryTTL(url.ExpiresAt)
	if !ok {
		return
	}

	if err := s.cache.Set(ctx, url.ShortCode, url.OriginalURL, ttl); err != nil {
		s.logger.Warn("failed to populate cache",
			slog.String("op", op), slog.String("short_code", url.ShortCode), slog.Any("err", err))
	}
}

// entryTTL computes the cache TTL for a record. It reports false when the
// record is already expired, in which case nothing must be cached.
func (s *URLService) entryTTL(expiresAt *time.Time) (time.Duration, bool) {
	if expiresAt == nil {
		return s.cacheTTL, true
	}

	remaining := expiresAt.Sub(s.now())
	if remaining <= 0 {
		return 0, false
	}

	return remaining, true
}
