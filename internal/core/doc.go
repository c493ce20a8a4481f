// Package core implements the country name registry.
//
// The registry maps ISO 3166-1 alpha-3 codes to the names a country is known
// by. It supports two operations:
//
//   - [Service.MergeCountries] upserts a batch of (code, names) entries and
//     returns only the rows it created. Names are unique across the whole
//     registry: the first code to claim a name keeps it.
//   - [Service.MatchCountryNames] intersects a candidate list with the names
//     stored for a code.
//
// # Storage
//
// Uniqueness of codes and names is enforced by Postgres constraints and every
// insert is a single INSERT ... ON CONFLICT DO NOTHING statement, so
// concurrent merges racing on the same name cannot create duplicates. A merge
// call runs in one transaction.
//
// # Caching
//
// Match lookups read the stored names for a code through a TTL [Cache]. Any
// merge that creates rows purges it.
//
// # Error Handling
//
// Input problems surface as [*ValidationError] (errors.Is [ErrValidation]),
// unknown codes as [ErrCodeNotFound], and saturation as [ErrTooManyWrites].
// [MapError] turns any error into a coded [UserMessage] for clients.
package core
