package domain

import "context"

// Provider is one external listing source. Search runs the full
// query-build -> fetch -> extract -> enrich pipeline for this source and
// returns its enriched result set.
type Provider interface {
	Name() string

	// Search returns this provider's enriched listings for the query.
	Search(ctx context.Context, q SearchQuery) ([]Stay, error)

	// Owns reports whether the given listing URL belongs to this provider.
	Owns(stayURL string) bool

	// CheckAvailability re-fetches one listing and reports whether it is
	// still bookable and its current price in provider formatting.
	CheckAvailability(ctx context.Context, stayURL string) (available bool, price string, err error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
