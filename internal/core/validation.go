package core

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	// ISOCodeLength is the length of an ISO 3166-1 alpha-3 code.
	ISOCodeLength = 3

	// MaxNameLength is the longest name the registry stores, in characters.
	MaxNameLength = 100
)

// ValidateEntries checks a merge batch. Lengths are counted in characters,
// not bytes, to agree with the VARCHAR limits of the schema.
func ValidateEntries(entries []CountryEntry) error {
	verr := &ValidationError{}
	for i, entry := range entries {
		prefix := fmt.Sprintf("entries[%d]", i)
		checkISO(verr, prefix+".iso", entry.ISO)
		for j, name := range entry.Names {
			field := fmt.Sprintf("%s.names[%d]", prefix, j)
			if n := utf8.RuneCountInString(name); n > MaxNameLength {
				verr.add(field, "name too long: %d characters, at most %d allowed", n, MaxNameLength)
			}
			if strings.ContainsRune(name, 0) {
				verr.add(field, "invalid name: contains a NUL character")
			}
		}
	}
	return verr.errOrNil()
}

// ValidateMatch checks a match request. Candidates are free text and only
// the code is constrained.
func ValidateMatch(req MatchRequest) error {
	verr := &ValidationError{}
	checkISO(verr, "iso", req.ISO)
	return verr.errOrNil()
}

// checkISO also rejects NUL, which Postgres text columns cannot store.
func checkISO(verr *ValidationError, field, iso string) {
	if n := utf8.RuneCountInString(iso); n != ISOCodeLength {
		verr.add(field, "invalid iso code %q: must be exactly %d characters, got %d", iso, ISOCodeLength, n)
	} else if strings.ContainsRune(iso, 0) {
		verr.add(field, "invalid iso code %q: contains a NUL character", iso)
	}
}

// uniqueStrings returns values without duplicates, keeping first-seen order.
func uniqueStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
