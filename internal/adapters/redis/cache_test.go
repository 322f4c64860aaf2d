package redisad_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"

	redisad "stay_spotter/internal/adapters/redis"
	"stay_spotter/internal/domain"
)

func newTestCache(t *testing.T) *redisad.Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	return redisad.New(mr.Addr(), "", 0)
}

func TestCache_RoundTrip(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	in := []domain.Stay{
		{Name: "Hotel Esperanza", Link: "https://www.booking.com/hotel/es.html", Price: "€ 90", Lat: 48.85, Lon: 2.35},
	}
	if err := c.Set(ctx, "stays:Paris", in, 60); err != nil {
		t.Fatalf("set: %v", err)
	}

	var out []domain.Stay
	ok, err := c.Get(ctx, "stays:Paris", &out)
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if len(out) != 1 || out[0] != in[0] {
		t.Fatalf("round trip mismatch: %+v", out)
	}
}

func TestCache_MissAndDel(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	var out []domain.Stay
	if ok, err := c.Get(ctx, "absent", &out); ok || err != nil {
		t.Fatalf("expected clean miss, ok=%v err=%v", ok, err)
	}

	if err := c.Set(ctx, "k", []domain.Stay{{Name: "X"}}, 60); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := c.Del(ctx, "k"); err != nil {
		t.Fatalf("del: %v", err)
	}
	if ok, _ := c.Get(ctx, "k", &out); ok {
		t.Fatalf("expected miss after delete")
	}
}
