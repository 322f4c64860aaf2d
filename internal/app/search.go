package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"stay_spotter/internal/domain"
)

// SearchService aggregates listings across providers. Provider pipelines
// run concurrently (their latencies are uncorrelated; one drives a
// browser), the service barrier-joins on all of them, then resolves
// cross-provider duplicates. A provider that fails outright contributes
// an empty set instead of failing the search: graceful degradation is an
// explicit policy here, not a side effect.
type SearchService struct {
	providers []domain.Provider
	cache     domain.Cache
	cacheTTL  time.Duration
	threshold float64
}

func NewSearchService(ps []domain.Provider, cache domain.Cache, threshold float64, ttl time.Duration) *SearchService {
	if threshold <= 0 {
		threshold = DefaultMatchThreshold
	}
	return &SearchService{providers: ps, cache: cache, cacheTTL: ttl, threshold: threshold}
}

// Search runs every provider pipeline for q and returns the merged,
// deduplicated listing set. All entities are fresh per call; the only
// thing that outlives the request is the TTL-bounded response cache.
func (s *SearchService) Search(ctx context.Context, q domain.SearchQuery) ([]domain.Stay, error) {
	key := searchKey(q)
	var cached []domain.Stay
	if s.cache != nil {
		if ok, _ := s.cache.Get(ctx, key, &cached); ok {
			return cached, nil
		}
	}

	if len(s.providers) == 0 {
		return []domain.Stay{}, nil
	}

	start := time.Now()
	results := make([][]domain.Stay, len(s.providers))

	var wg sync.WaitGroup
	for i, p := range s.providers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			stays, err := p.Search(ctx, q)
			if err != nil {
				log.Warn().Str("provider", p.Name()).Err(err).
					Msg("provider search failed, continuing without it")
				return
			}
			results[i] = stays
		}()
	}
	wg.Wait()

	merged := results[0]
	for _, set := range results[1:] {
		merged = Dedupe(merged, set, s.threshold)
	}
	if merged == nil {
		merged = []domain.Stay{}
	}

	log.Info().Str("city", q.City).Int("stays", len(merged)).
		Dur("took", time.Since(start)).Msg("search complete")

	if s.cache != nil {
		_ = s.cache.Set(ctx, key, merged, int(s.cacheTTL.Seconds()))
	}
	return merged, nil
}

func searchKey(q domain.SearchQuery) string {
	min, max := -1, -1
	if q.PriceMin != nil {
		min = *q.PriceMin
	}
	if q.PriceMax != nil {
		max = *q.PriceMax
	}
	return fmt.Sprintf("stays:%s:%d:%d:%s:%s:%d:%d",
		q.City, q.Adults, q.Rooms, q.CheckIn, q.CheckOut, min, max)
}
