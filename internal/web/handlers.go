package web

import (
	"context"
	"net/http"
	"time"

	"github.com/JonMunkholm/countrymap/internal/core"
	"github.com/JonMunkholm/countrymap/internal/logging"
)

const healthCheckTimeout = 2 * time.Second

// handleHealth reports whether the database is reachable.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	if err := s.service.Ping(ctx); err != nil {
		logging.FromContext(r.Context()).Warn("health check failed", "error", err)
		writeJSONStatus(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

// handleMergeCountries merges a batch of codes and names.
// It answers 201 with the created rows, or 204 when nothing was new.
func (s *Server) handleMergeCountries(w http.ResponseWriter, r *http.Request) {
	var entries []core.CountryEntry
	if err := decodeJSON(r, &entries); err != nil {
		respondError(w, r, err)
		return
	}

	result, err := s.service.MergeCountries(r.Context(), entries)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if result == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeJSONStatus(w, http.StatusCreated, result)
}

// handleMatchCountry reports which candidate names belong to a code.
func (s *Server) handleMatchCountry(w http.ResponseWriter, r *http.Request) {
	var req core.MatchRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	result, err := s.service.MatchCountryNames(r.Context(), req)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, result)
}

// handleStats returns registry counts and merge slot usage.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.service.Stats(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, map[string]any{
		"codes":  stats.Codes,
		"names":  stats.Names,
		"merges": s.service.WriteLimiterStatus(),
	})
}
