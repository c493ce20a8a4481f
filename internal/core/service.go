package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JonMunkholm/countrymap/internal/config"
	"github.com/JonMunkholm/countrymap/internal/database"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DefaultMergeTimeout bounds a merge when the configured timeout is not positive.
const DefaultMergeTimeout = 30 * time.Second

// store is the query surface Service reads through outside transactions.
type store interface {
	registryQueries
	CountCountryCodes(ctx context.Context) (int64, error)
	CountCountryNames(ctx context.Context) (int64, error)
}

// Service implements the country registry operations over a Postgres pool.
// It is safe for concurrent use.
type Service struct {
	pool    *pgxpool.Pool
	queries store

	names  *Cache[storedNames]
	writes *WriteLimiter

	mergeTimeout  time.Duration
	sweepInterval time.Duration
}

// NewService creates a Service using pool for storage.
func NewService(pool *pgxpool.Pool, cfg *config.Config) (*Service, error) {
	if pool == nil {
		return nil, errors.New("nil connection pool")
	}
	if cfg == nil {
		return nil, errors.New("nil config")
	}

	mergeTimeout := cfg.Merge.Timeout
	if mergeTimeout <= 0 {
		mergeTimeout = DefaultMergeTimeout
	}

	return &Service{
		pool:          pool,
		queries:       database.New(pool),
		names:         NewCache[storedNames](cfg.Cache.TTL),
		writes:        NewWriteLimiter(cfg.Merge.MaxConcurrent, cfg.Merge.MaxWaitTime),
		mergeTimeout:  mergeTimeout,
		sweepInterval: cfg.Cache.SweepInterval,
	}, nil
}

// Ping checks database connectivity.
func (s *Service) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	return nil
}

// Stats returns the number of registered codes and names.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	codes, err := s.queries.CountCountryCodes(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("count country codes: %w", err)
	}
	names, err := s.queries.CountCountryNames(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("count country names: %w", err)
	}
	return Stats{Codes: codes, Names: names}, nil
}

// PurgeCache drops every cached name lookup.
func (s *Service) PurgeCache() {
	s.names.Purge()
}

// WriteLimiterStatus reports merge slot usage.
func (s *Service) WriteLimiterStatus() WriteLimiterStatus {
	return s.writes.Status()
}

// WaitForMerges blocks until in-flight merges finish or ctx ends.
func (s *Service) WaitForMerges(ctx context.Context) error {
	return s.writes.WaitForDrain(ctx)
}
