package core

import (
	"context"
	"encoding/json"
	"os"
	"sort"
	"sync"
	"testing"

	"github.com/JonMunkholm/countrymap/internal/database"
	"github.com/jackc/pgx/v5"
)

// fakeRegistry mimics the Postgres tables: inserts that hit a unique
// constraint do nothing and return no rows.
type fakeRegistry struct {
	mu    sync.Mutex
	codes []database.CountryCode
	names []database.CountryName

	failNamesFor int64 // InsertCountryNames fails for this code id
	failErr      error

	codeLookups int
	nameBatches [][]string // Names argument of every InsertCountryNames call
}

func (f *fakeRegistry) InsertCountryCode(ctx context.Context, code string) (database.CountryCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, c := range f.codes {
		if c.Code == code {
			return database.CountryCode{}, pgx.ErrNoRows
		}
	}
	row := database.CountryCode{ID: int64(len(f.codes) + 1), Code: code}
	f.codes = append(f.codes, row)
	return row, nil
}

func (f *fakeRegistry) GetCountryCodeByCode(ctx context.Context, code string) (database.CountryCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.codeLookups++
	for _, c := range f.codes {
		if c.Code == code {
			return c, nil
		}
	}
	return database.CountryCode{}, pgx.ErrNoRows
}

func (f *fakeRegistry) InsertCountryNames(ctx context.Context, arg database.InsertCountryNamesParams) ([]database.CountryName, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nameBatches = append(f.nameBatches, append([]string(nil), arg.Names...))
	if f.failErr != nil && arg.CountryCodeID == f.failNamesFor {
		return nil, f.failErr
	}

	var created []database.CountryName
	for _, name := range arg.Names {
		if f.hasName(name) {
			continue
		}
		row := database.CountryName{ID: int64(len(f.names) + 1), Name: name, CountryCodeID: arg.CountryCodeID}
		f.names = append(f.names, row)
		created = append(created, row)
	}
	return created, nil
}

func (f *fakeRegistry) hasName(name string) bool {
	for _, n := range f.names {
		if n.Name == name {
			return true
		}
	}
	return false
}

func (f *fakeRegistry) ListNamesByCodeID(ctx context.Context, countryCodeID int64) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []string
	for _, n := range f.names {
		if n.CountryCodeID == countryCodeID {
			out = append(out, n.Name)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (f *fakeRegistry) CountCountryCodes(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.codes)), nil
}

func (f *fakeRegistry) CountCountryNames(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.names)), nil
}

// namesOf returns the names owned by iso.
func (f *fakeRegistry) namesOf(t *testing.T, iso string) []string {
	t.Helper()
	code, err := f.GetCountryCodeByCode(context.Background(), iso)
	if err != nil {
		t.Fatalf("code %s not registered: %v", iso, err)
	}
	names, _ := f.ListNamesByCodeID(context.Background(), code.ID)
	return names
}

// loadFixture reads testdata/countries.json: five codes with five names each,
// where CAN repeats two of its names.
func loadFixture(t *testing.T) []CountryEntry {
	t.Helper()
	data, err := os.ReadFile("testdata/countries.json")
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	var entries []CountryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		t.Fatalf("decode fixture: %v", err)
	}
	return entries
}
