package core

// scheduler.go runs background maintenance for the service.
//
// The only job today sweeps expired entries out of the name lookup cache so
// codes that stop being queried do not hold memory until the next purge.

import (
	"context"
	"log/slog"
	"time"
)

// StartCacheJanitor sweeps the name cache every sweep interval until ctx is
// cancelled. It returns immediately when caching is disabled.
func (s *Service) StartCacheJanitor(ctx context.Context) {
	if !s.names.Enabled() || s.sweepInterval <= 0 {
		slog.Debug("cache janitor disabled")
		return
	}

	slog.Info("cache janitor started", "interval", s.sweepInterval)

	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("cache janitor stopped")
			return
		case <-ticker.C:
			if removed := s.names.Sweep(); removed > 0 {
				slog.Debug("cache sweep", "removed", removed, "remaining", s.names.Len())
			}
		}
	}
}
