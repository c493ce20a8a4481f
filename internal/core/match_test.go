package core

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/JonMunkholm/countrymap/internal/database"
)

func newTestService(reg *fakeRegistry, ttl time.Duration) *Service {
	return &Service{
		queries: reg,
		names:   NewCache[storedNames](ttl),
		writes:  NewWriteLimiter(1, time.Second),
	}
}

func TestIntersect(t *testing.T) {
	stored := map[string]struct{}{"Canada": {}, "Kanada": {}, "Canadá": {}}

	tests := []struct {
		name       string
		candidates []string
		want       []string
	}{
		{"partial overlap", []string{"Canada", "Kanada", "Mexico"}, []string{"Canada", "Kanada"}},
		{"no overlap", []string{"Mexico", "Brazil"}, []string{}},
		{"empty candidates", nil, []string{}},
		{"duplicates collapse", []string{"Kanada", "Kanada", "Canada"}, []string{"Canada", "Kanada"}},
		{"exact match only", []string{"canada", "CANADA", "Canada "}, []string{}},
		{"accents matter", []string{"Canadá"}, []string{"Canadá"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := intersect(stored, tt.candidates)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("intersect() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMatchCountryNames(t *testing.T) {
	ctx := context.Background()
	reg := &fakeRegistry{}
	if _, err := mergeEntries(ctx, reg, loadFixture(t)); err != nil {
		t.Fatalf("seed: %v", err)
	}
	svc := newTestService(reg, time.Minute)

	got, err := svc.MatchCountryNames(ctx, MatchRequest{
		ISO:       "CAN",
		Countries: []string{"Canada", "Kanada", "Mexico", "Brazil", "qweqerg", "Estados Unidos"},
	})
	if err != nil {
		t.Fatalf("MatchCountryNames: %v", err)
	}

	want := &MatchResult{ISO: "CAN", MatchCount: 2, Matches: []string{"Canada", "Kanada"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("MatchCountryNames() = %+v, want %+v", got, want)
	}
}

func TestMatchCountryNames_ZeroMatches(t *testing.T) {
	ctx := context.Background()
	reg := &fakeRegistry{}
	if _, err := mergeEntries(ctx, reg, []CountryEntry{{ISO: "CAN", Names: []string{"Canada"}}}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	got, err := newTestService(reg, 0).MatchCountryNames(ctx, MatchRequest{ISO: "CAN", Countries: []string{"Mexico"}})
	if err != nil {
		t.Fatalf("MatchCountryNames: %v", err)
	}
	if got.MatchCount != 0 || len(got.Matches) != 0 {
		t.Errorf("got %+v, want zero matches", got)
	}
}

func TestMatchCountryNames_UnknownCode(t *testing.T) {
	svc := newTestService(&fakeRegistry{}, time.Minute)

	_, err := svc.MatchCountryNames(context.Background(), MatchRequest{ISO: "XYZ", Countries: []string{"Nowhere"}})
	if !errors.Is(err, ErrCodeNotFound) {
		t.Fatalf("error = %v, want ErrCodeNotFound", err)
	}
	if svc.names.Len() != 0 {
		t.Error("not-found lookups must not be cached")
	}
}

func TestMatchCountryNames_InvalidCode(t *testing.T) {
	svc := newTestService(&fakeRegistry{}, time.Minute)

	_, err := svc.MatchCountryNames(context.Background(), MatchRequest{ISO: "CA"})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}
}

func TestMatchCountryNames_UsesCache(t *testing.T) {
	ctx := context.Background()
	reg := &fakeRegistry{}
	if _, err := mergeEntries(ctx, reg, []CountryEntry{{ISO: "CAN", Names: []string{"Canada"}}}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	svc := newTestService(reg, time.Minute)
	req := MatchRequest{ISO: "CAN", Countries: []string{"Canada"}}

	before := reg.codeLookups
	for i := 0; i < 3; i++ {
		if _, err := svc.MatchCountryNames(ctx, req); err != nil {
			t.Fatalf("match %d: %v", i, err)
		}
	}
	if got := reg.codeLookups - before; got != 1 {
		t.Errorf("storage lookups = %d, want 1", got)
	}

	svc.PurgeCache()
	if _, err := svc.MatchCountryNames(ctx, req); err != nil {
		t.Fatalf("match after purge: %v", err)
	}
	if got := reg.codeLookups - before; got != 2 {
		t.Errorf("storage lookups after purge = %d, want 2", got)
	}
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	reg := &fakeRegistry{}
	if _, err := mergeEntries(ctx, reg, loadFixture(t)); err != nil {
		t.Fatalf("seed: %v", err)
	}

	stats, err := newTestService(reg, 0).Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats != (Stats{Codes: 5, Names: 23}) {
		t.Errorf("Stats() = %+v, want 5 codes and 23 names", stats)
	}
}

// blockingRegistry holds code lookups until release is closed, failing early
// only when the lookup's own context ends.
type blockingRegistry struct {
	*fakeRegistry
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (b *blockingRegistry) GetCountryCodeByCode(ctx context.Context, code string) (database.CountryCode, error) {
	b.once.Do(func() { close(b.entered) })
	select {
	case <-b.release:
		return b.fakeRegistry.GetCountryCodeByCode(ctx, code)
	case <-ctx.Done():
		return database.CountryCode{}, ctx.Err()
	}
}

func TestMatchCountryNames_CancelledCallerDoesNotFailOthers(t *testing.T) {
	reg := &fakeRegistry{}
	if _, err := mergeEntries(context.Background(), reg, []CountryEntry{{ISO: "CAN", Names: []string{"Canada"}}}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	blocking := &blockingRegistry{fakeRegistry: reg, entered: make(chan struct{}), release: make(chan struct{})}
	svc := &Service{queries: blocking, names: NewCache[storedNames](time.Minute)}
	req := MatchRequest{ISO: "CAN", Countries: []string{"Canada"}}

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := svc.MatchCountryNames(ctxA, req)
		errA <- err
	}()
	<-blocking.entered

	type result struct {
		res *MatchResult
		err error
	}
	resB := make(chan result, 1)
	go func() {
		res, err := svc.MatchCountryNames(context.Background(), req)
		resB <- result{res, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancelA()
	if err := <-errA; !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled caller error = %v, want context.Canceled", err)
	}

	close(blocking.release)
	b := <-resB
	if b.err != nil {
		t.Fatalf("other caller failed: %v", b.err)
	}
	if b.res.MatchCount != 1 {
		t.Errorf("other caller got %+v, want 1 match", b.res)
	}
}

func TestMatchCountryNames_SeesMergeAfterPurge(t *testing.T) {
	ctx := context.Background()
	reg := &fakeRegistry{}
	svc := newTestService(reg, time.Minute)
	req := MatchRequest{ISO: "CAN", Countries: []string{"Canada"}}

	if _, err := svc.MatchCountryNames(ctx, req); !errors.Is(err, ErrCodeNotFound) {
		t.Fatalf("before merge error = %v, want ErrCodeNotFound", err)
	}

	if _, err := mergeEntries(ctx, reg, []CountryEntry{{ISO: "CAN", Names: []string{"Canada"}}}); err != nil {
		t.Fatalf("merge: %v", err)
	}
	svc.PurgeCache()

	got, err := svc.MatchCountryNames(ctx, req)
	if err != nil {
		t.Fatalf("after merge: %v", err)
	}
	if got.MatchCount != 1 {
		t.Errorf("after merge = %+v, want 1 match", got)
	}
}
