package core

import "github.com/JonMunkholm/countrymap/internal/database"

// CountryEntry is one element of a merge batch: an ISO 3166-1 alpha-3 code
// and the names it is known by. Names have set semantics.
type CountryEntry struct {
	ISO   string   `json:"iso" yaml:"iso"`
	Names []string `json:"names" yaml:"names"`
}

// CountryCode is a registered ISO code.
type CountryCode struct {
	ID   int64  `json:"id"`
	Code string `json:"code"`
}

// CountryName is a registered name and the code it belongs to.
type CountryName struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	CountryCodeID int64  `json:"country_code_id"`
}

// MergeResult lists the rows a merge created. Rows that already existed are
// never reported.
type MergeResult struct {
	Codes []CountryCode `json:"codes"`
	Names []CountryName `json:"names"`
}

func newMergeResult() *MergeResult {
	return &MergeResult{
		Codes: []CountryCode{},
		Names: []CountryName{},
	}
}

// Empty reports whether the merge created nothing.
func (r *MergeResult) Empty() bool {
	return r == nil || (len(r.Codes) == 0 && len(r.Names) == 0)
}

// MatchRequest asks which candidate names are registered for ISO.
type MatchRequest struct {
	ISO       string   `json:"iso"`
	Countries []string `json:"countries"`
}

// MatchResult is the intersection of the candidates and the stored names.
type MatchResult struct {
	ISO        string   `json:"iso"`
	MatchCount int      `json:"match_count"`
	Matches    []string `json:"matches"`
}

// Stats reports registry row counts.
type Stats struct {
	Codes int64 `json:"codes"`
	Names int64 `json:"names"`
}

func codeFromRow(row database.CountryCode) CountryCode {
	return CountryCode{ID: row.ID, Code: row.Code}
}

func nameFromRow(row database.CountryName) CountryName {
	return CountryName{ID: row.ID, Name: row.Name, CountryCodeID: row.CountryCodeID}
}
