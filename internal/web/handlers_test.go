package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/countrymap/internal/config"
	"github.com/JonMunkholm/countrymap/internal/core"
)

// fakeService returns canned results and records what it was called with.
type fakeService struct {
	mergeResult *core.MergeResult
	mergeErr    error
	matchResult *core.MatchResult
	matchErr    error
	pingErr     error

	gotEntries []core.CountryEntry
	gotMatch   core.MatchRequest
}

func (f *fakeService) MergeCountries(ctx context.Context, entries []core.CountryEntry) (*core.MergeResult, error) {
	f.gotEntries = entries
	if err := core.ValidateEntries(entries); err != nil {
		return nil, err
	}
	return f.mergeResult, f.mergeErr
}

func (f *fakeService) MatchCountryNames(ctx context.Context, req core.MatchRequest) (*core.MatchResult, error) {
	f.gotMatch = req
	if err := core.ValidateMatch(req); err != nil {
		return nil, err
	}
	return f.matchResult, f.matchErr
}

func (f *fakeService) Stats(ctx context.Context) (core.Stats, error) {
	return core.Stats{Codes: 5, Names: 23}, nil
}

func (f *fakeService) WriteLimiterStatus() core.WriteLimiterStatus {
	return core.WriteLimiterStatus{Active: 0, Available: 4, MaxConcurrent: 4}
}

func (f *fakeService) Ping(ctx context.Context) error {
	return f.pingErr
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{RequestTimeout: 5 * time.Second, MaxBodyBytes: 1 << 20},
	}
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error body: %v (body %q)", err, rec.Body.String())
	}
	return resp
}

func TestHandleMergeCountries_Created(t *testing.T) {
	svc := &fakeService{mergeResult: &core.MergeResult{
		Codes: []core.CountryCode{{ID: 1, Code: "CAN"}},
		Names: []core.CountryName{{ID: 1, Name: "Canada", CountryCodeID: 1}},
	}}
	s := NewServer(svc, testConfig())

	rec := do(t, s, http.MethodPost, "/api/countries", `[{"iso":"CAN","names":["Canada"]}]`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (body %s)", rec.Code, rec.Body.String())
	}
	want := `{"codes":[{"id":1,"code":"CAN"}],"names":[{"id":1,"name":"Canada","country_code_id":1}]}`
	if got := strings.TrimSpace(rec.Body.String()); got != want {
		t.Errorf("body = %s, want %s", got, want)
	}
	if len(svc.gotEntries) != 1 || svc.gotEntries[0].ISO != "CAN" || svc.gotEntries[0].Names[0] != "Canada" {
		t.Errorf("service got %+v", svc.gotEntries)
	}
}

func TestHandleMergeCountries_NothingNew(t *testing.T) {
	s := NewServer(&fakeService{}, testConfig())

	rec := do(t, s, http.MethodPost, "/api/countries", `[{"iso":"CAN","names":["Canada"]}]`)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("204 response has body %q", rec.Body.String())
	}
}

func TestHandleMergeCountries_Errors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		mergeErr error
		want     int
		wantCode string
	}{
		{"malformed json", `[{"iso":`, nil, http.StatusBadRequest, "REQ001"},
		{"object instead of list", `{"iso":"CAN"}`, nil, http.StatusBadRequest, "REQ001"},
		{"invalid iso", `[{"iso":"CA","names":[]}]`, nil, http.StatusUnprocessableEntity, "VAL001"},
		{"busy", `[{"iso":"CAN"}]`, fmt.Errorf("acquire merge slot: %w", core.ErrTooManyWrites), http.StatusServiceUnavailable, "MRG001"},
		{"storage failure", `[{"iso":"CAN"}]`, errors.New("dial tcp 10.0.0.5:5432: connection refused"), http.StatusInternalServerError, "DB004"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewServer(&fakeService{mergeErr: tt.mergeErr}, testConfig())

			rec := do(t, s, http.MethodPost, "/api/countries", tt.body)

			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.want, rec.Body.String())
			}
			if resp := decodeError(t, rec); resp.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", resp.Code, tt.wantCode)
			}
		})
	}
}

func TestHandleMergeCountries_ValidationFields(t *testing.T) {
	s := NewServer(&fakeService{}, testConfig())
	long := strings.Repeat("x", core.MaxNameLength+1)

	rec := do(t, s, http.MethodPost, "/api/countries", `[{"iso":"CANADA","names":["`+long+`"]}]`)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	resp := decodeError(t, rec)
	if len(resp.Fields) != 2 {
		t.Fatalf("fields = %+v, want iso and name", resp.Fields)
	}
	if resp.Fields[0].Field != "entries[0].iso" || resp.Fields[1].Field != "entries[0].names[0]" {
		t.Errorf("fields = %+v", resp.Fields)
	}
}

func TestHandleMergeCountries_BodyTooLarge(t *testing.T) {
	cfg := testConfig()
	cfg.Server.MaxBodyBytes = 16
	s := NewServer(&fakeService{}, cfg)

	rec := do(t, s, http.MethodPost, "/api/countries", `[{"iso":"CAN","names":["Canada","Kanada"]}]`)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Code != "REQ002" {
		t.Errorf("code = %q, want REQ002", resp.Code)
	}
}

func TestHandleMatchCountry(t *testing.T) {
	svc := &fakeService{matchResult: &core.MatchResult{ISO: "CAN", MatchCount: 2, Matches: []string{"Canada", "Kanada"}}}
	s := NewServer(svc, testConfig())

	rec := do(t, s, http.MethodPost, "/api/match_country", `{"iso":"CAN","countries":["Canada","Kanada","Mexico"]}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	want := `{"iso":"CAN","match_count":2,"matches":["Canada","Kanada"]}`
	if got := strings.TrimSpace(rec.Body.String()); got != want {
		t.Errorf("body = %s, want %s", got, want)
	}
	if len(svc.gotMatch.Countries) != 3 {
		t.Errorf("service got %+v", svc.gotMatch)
	}
}

func TestHandleMatchCountry_Errors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		matchErr error
		want     int
		wantCode string
	}{
		{"malformed json", `{`, nil, http.StatusBadRequest, "REQ001"},
		{"invalid iso", `{"iso":"CANADA","countries":[]}`, nil, http.StatusUnprocessableEntity, "VAL001"},
		{"missing iso", `{"countries":["Canada"]}`, nil, http.StatusUnprocessableEntity, "VAL001"},
		{"unknown code", `{"iso":"XYZ","countries":["Nowhere"]}`, fmt.Errorf("%w: XYZ", core.ErrCodeNotFound), http.StatusNotFound, "NF001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewServer(&fakeService{matchErr: tt.matchErr}, testConfig())

			rec := do(t, s, http.MethodPost, "/api/match_country", tt.body)

			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.want, rec.Body.String())
			}
			if resp := decodeError(t, rec); resp.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", resp.Code, tt.wantCode)
			}
		})
	}
}

func TestHandleHealth(t *testing.T) {
	s := NewServer(&fakeService{}, testConfig())
	if rec := do(t, s, http.MethodGet, "/healthz", ""); rec.Code != http.StatusOK {
		t.Errorf("healthy status = %d, want 200", rec.Code)
	}

	s = NewServer(&fakeService{pingErr: errors.New("connection refused")}, testConfig())
	if rec := do(t, s, http.MethodGet, "/healthz", ""); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("unhealthy status = %d, want 503", rec.Code)
	}
}

func TestHandleStats(t *testing.T) {
	s := NewServer(&fakeService{}, testConfig())

	rec := do(t, s, http.MethodGet, "/api/stats", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		Codes  int64                   `json:"codes"`
		Names  int64                   `json:"names"`
		Merges core.WriteLimiterStatus `json:"merges"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Codes != 5 || body.Names != 23 || body.Merges.MaxConcurrent != 4 {
		t.Errorf("stats = %+v", body)
	}
}

func TestSecurityHeaders(t *testing.T) {
	s := NewServer(&fakeService{}, testConfig())
	rec := do(t, s, http.MethodGet, "/healthz", "")

	for _, h := range []string{"X-Content-Type-Options", "X-Frame-Options", "Content-Security-Policy"} {
		if rec.Header().Get(h) == "" {
			t.Errorf("missing header %s", h)
		}
	}
}

func TestCORS(t *testing.T) {
	cfg := testConfig()
	cfg.Security.CORSOrigins = []string{"https://example.com"}
	s := NewServer(&fakeService{}, cfg)

	req := httptest.NewRequest(http.MethodOptions, "/api/match_country", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://example.com" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}
