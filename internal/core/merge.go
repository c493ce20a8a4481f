package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/JonMunkholm/countrymap/internal/database"
	"github.com/JonMunkholm/countrymap/internal/logging"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// registryQueries is the storage surface merge and match run against.
// *database.Queries satisfies it, bound to either the pool or a transaction.
type registryQueries interface {
	InsertCountryCode(ctx context.Context, code string) (database.CountryCode, error)
	GetCountryCodeByCode(ctx context.Context, code string) (database.CountryCode, error)
	InsertCountryNames(ctx context.Context, arg database.InsertCountryNamesParams) ([]database.CountryName, error)
	ListNamesByCodeID(ctx context.Context, countryCodeID int64) ([]string, error)
}

// MergeCountries upserts every entry of the batch and returns the rows it
// created.
//
// The whole batch runs in one transaction: a storage failure in any entry
// leaves the registry as it was before the call. Existing codes are reused,
// and a name already registered under any code is skipped, never reassigned.
//
// When nothing new was created the result is nil with a nil error. Callers
// use that to tell "nothing to do" apart from a successful merge.
func (s *Service) MergeCountries(ctx context.Context, entries []CountryEntry) (*MergeResult, error) {
	if err := ValidateEntries(entries); err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.mergeTimeout)
	defer cancel()

	if err := s.writes.Acquire(ctx); err != nil {
		return nil, fmt.Errorf("acquire merge slot: %w", err)
	}
	defer s.writes.Release()

	logger := logging.WithFields(ctx, "batch_id", uuid.New().String(), "entries", len(entries))
	logger.Debug("merge started")

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin merge transaction: %w", err)
	}
	defer tx.Rollback(ctx) // no-op after commit

	result, err := mergeEntries(ctx, database.New(tx), entries)
	if err != nil {
		logStorageError(logger, "merge failed", err)
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		logStorageError(logger, "merge commit failed", err)
		return nil, fmt.Errorf("commit merge transaction: %w", err)
	}

	if result.Empty() {
		logger.Info("merge added nothing")
		return nil, nil
	}

	s.names.Purge()
	logger.Info("merge committed",
		"codes_added", len(result.Codes),
		"names_added", len(result.Names),
	)
	return result, nil
}

// mergeEntries applies entries in order through q and collects created rows.
func mergeEntries(ctx context.Context, q registryQueries, entries []CountryEntry) (*MergeResult, error) {
	result := newMergeResult()

	for i, entry := range entries {
		code, created, err := upsertCode(ctx, q, entry.ISO)
		if err != nil {
			return nil, fmt.Errorf("entry %d (%s): %w", i, entry.ISO, err)
		}
		if created {
			result.Codes = append(result.Codes, codeFromRow(code))
		}

		names := uniqueStrings(entry.Names)
		if len(names) == 0 {
			continue
		}
		// Sorted inserts take unique-index locks in one order across merges.
		sort.Strings(names)

		rows, err := q.InsertCountryNames(ctx, database.InsertCountryNamesParams{
			Names:         names,
			CountryCodeID: code.ID,
		})
		if err != nil {
			return nil, fmt.Errorf("entry %d (%s): insert country names: %w", i, entry.ISO, err)
		}
		for _, row := range rows {
			result.Names = append(result.Names, nameFromRow(row))
		}
	}

	return result, nil
}

// upsertCode inserts iso, or fetches the existing row when the insert hit
// the unique constraint. created reports which of the two happened.
func upsertCode(ctx context.Context, q registryQueries, iso string) (code database.CountryCode, created bool, err error) {
	code, err = q.InsertCountryCode(ctx, iso)
	if err == nil {
		return code, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return code, false, fmt.Errorf("insert country code: %w", err)
	}

	code, err = q.GetCountryCodeByCode(ctx, iso)
	if err != nil {
		return code, false, fmt.Errorf("get country code: %w", err)
	}
	return code, false, nil
}

// logStorageError logs err, adding Postgres diagnostics when available.
func logStorageError(logger *slog.Logger, msg string, err error) {
	args := []any{"error", err}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		args = append(args,
			"pg_code", pgErr.Code,
			"constraint", pgErr.ConstraintName,
			"table", pgErr.TableName,
		)
	}
	logger.Error(msg, args...)
}
