package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"stay_spotter/internal/app"
	"stay_spotter/internal/domain"
)

// ---- fakes ----

type fakeProvider struct {
	name  string
	stays []domain.Stay
	err   error
	calls int
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Search(ctx context.Context, q domain.SearchQuery) ([]domain.Stay, error) {
	f.calls++
	return f.stays, f.err
}

func (f *fakeProvider) Owns(stayURL string) bool { return false }

func (f *fakeProvider) CheckAvailability(ctx context.Context, stayURL string) (bool, string, error) {
	return false, "", nil
}

type fakeCache struct {
	store map[string][]domain.Stay
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	v, ok := c.store[key]
	if !ok {
		return false, nil
	}
	*dst.(*[]domain.Stay) = v
	return true, nil
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string][]domain.Stay{}
	}
	c.store[key] = v.([]domain.Stay)
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error { return nil }

// ---- tests ----

func parisQuery() domain.SearchQuery {
	return domain.SearchQuery{City: "Paris", Adults: 2, Rooms: 1, CheckIn: "2024-06-01", CheckOut: "2024-06-05"}
}

func TestSearch_MergesBothProviders(t *testing.T) {
	a := &fakeProvider{name: "booking", stays: []domain.Stay{
		stay("booking", "Hotel Esperanza", "€ 90"),
		stay("booking", "Grand Palace Suites", "€ 150"),
		stay("booking", "Riverside Inn", "€ 60"),
	}}
	b := &fakeProvider{name: "airbnb", stays: []domain.Stay{
		stay("airbnb", "Cozy Loft Downtown", "€ 75"),
		stay("airbnb", "Sunny Studio Montmartre", "€ 55"),
	}}

	s := app.NewSearchService([]domain.Provider{a, b}, &fakeCache{}, 0.7, time.Minute)
	out, err := s.Search(context.Background(), parisQuery())
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(out) != 5 {
		t.Fatalf("expected 5 merged stays, got %d", len(out))
	}
}

func TestSearch_OneProviderFailsGracefully(t *testing.T) {
	a := &fakeProvider{name: "booking", err: &domain.FetchError{URL: "x", Err: errors.New("connection refused")}}
	b := &fakeProvider{name: "airbnb", stays: []domain.Stay{
		stay("airbnb", "Cozy Loft Downtown", "€ 75"),
		stay("airbnb", "Sunny Studio Montmartre", "€ 55"),
	}}

	s := app.NewSearchService([]domain.Provider{a, b}, &fakeCache{}, 0.7, time.Minute)
	out, err := s.Search(context.Background(), parisQuery())
	if err != nil {
		t.Fatalf("single-provider failure must not escape: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected the surviving provider's 2 stays, got %d", len(out))
	}
	for _, st := range out {
		if st.Provider != "airbnb" {
			t.Fatalf("unexpected provider in results: %+v", st)
		}
	}
}

func TestSearch_AllProvidersFailYieldsEmpty(t *testing.T) {
	a := &fakeProvider{name: "booking", err: errors.New("down")}
	b := &fakeProvider{name: "airbnb", err: errors.New("down")}

	s := app.NewSearchService([]domain.Provider{a, b}, &fakeCache{}, 0.7, time.Minute)
	out, err := s.Search(context.Background(), parisQuery())
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected empty result, got %v", out)
	}
}

func TestSearch_CacheHitSkipsProviders(t *testing.T) {
	a := &fakeProvider{name: "booking", stays: []domain.Stay{stay("booking", "Hotel Esperanza", "€ 90")}}
	cache := &fakeCache{}

	s := app.NewSearchService([]domain.Provider{a}, cache, 0.7, time.Minute)
	if _, err := s.Search(context.Background(), parisQuery()); err != nil {
		t.Fatalf("err: %v", err)
	}
	if _, err := s.Search(context.Background(), parisQuery()); err != nil {
		t.Fatalf("err: %v", err)
	}
	if a.calls != 1 {
		t.Fatalf("expected second search served from cache, provider called %d times", a.calls)
	}
}

func TestSearch_CrossProviderDuplicateResolved(t *testing.T) {
	a := &fakeProvider{name: "booking", stays: []domain.Stay{stay("booking", "Hotel Le Grand Paris", "€ 100")}}
	b := &fakeProvider{name: "airbnb", stays: []domain.Stay{stay("airbnb", "Le Grand Paris Hotel", "€ 80")}}

	s := app.NewSearchService([]domain.Provider{a, b}, &fakeCache{}, 0.7, time.Minute)
	out, err := s.Search(context.Background(), parisQuery())
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(out) != 1 || out[0].Provider != "airbnb" {
		t.Fatalf("expected the cheaper duplicate to win, got %v", out)
	}
}
