package core

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
)

// lookupTimeout bounds a shared name load. The load outlives the request
// that started it, so it cannot rely on that request's deadline.
const lookupTimeout = 10 * time.Second

// storedNames is the cached view of one registered code.
type storedNames struct {
	codeID int64
	names  map[string]struct{}
}

// MatchCountryNames reports which candidates are registered names of req.ISO.
//
// An unregistered code fails with ErrCodeNotFound; a registered code with no
// matching candidate returns a result with MatchCount 0. Matches are sorted.
func (s *Service) MatchCountryNames(ctx context.Context, req MatchRequest) (*MatchResult, error) {
	if err := ValidateMatch(req); err != nil {
		return nil, err
	}

	stored, err := s.names.GetOrCompute(ctx, namesCacheKey(req.ISO), func(ctx context.Context) (storedNames, error) {
		ctx, cancel := context.WithTimeout(ctx, lookupTimeout)
		defer cancel()
		return loadStoredNames(ctx, s.queries, req.ISO)
	})
	if err != nil {
		return nil, err
	}

	matches := intersect(stored.names, req.Countries)
	return &MatchResult{
		ISO:        req.ISO,
		MatchCount: len(matches),
		Matches:    matches,
	}, nil
}

func namesCacheKey(iso string) string {
	return "names:" + iso
}

// loadStoredNames reads the code and every name registered under it.
func loadStoredNames(ctx context.Context, q registryQueries, iso string) (storedNames, error) {
	code, err := q.GetCountryCodeByCode(ctx, iso)
	if errors.Is(err, pgx.ErrNoRows) {
		return storedNames{}, fmt.Errorf("%w: %s", ErrCodeNotFound, iso)
	}
	if err != nil {
		return storedNames{}, fmt.Errorf("get country code: %w", err)
	}

	names, err := q.ListNamesByCodeID(ctx, code.ID)
	if err != nil {
		return storedNames{}, fmt.Errorf("list country names: %w", err)
	}

	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return storedNames{codeID: code.ID, names: set}, nil
}

// intersect returns the distinct candidates present in stored, sorted.
// Comparison is exact: no case folding or normalization.
func intersect(stored map[string]struct{}, candidates []string) []string {
	matches := []string{}
	for _, c := range uniqueStrings(candidates) {
		if _, ok := stored[c]; ok {
			matches = append(matches, c)
		}
	}
	sort.Strings(matches)
	return matches
}
