package app

import (
	"context"

	"github.com/rs/zerolog/log"

	"stay_spotter/internal/domain"
)

// AvailabilityService rechecks one previously seen listing: is it still
// bookable, and has its price drifted from the one the caller recorded.
type AvailabilityService struct {
	providers []domain.Provider
}

func NewAvailabilityService(ps []domain.Provider) *AvailabilityService {
	return &AvailabilityService{providers: ps}
}

// Check dispatches on which provider owns the URL and reads that
// provider's availability and price markers. An unavailable listing
// short-circuits with PriceChanged=false; comparing prices for a listing
// nobody can book is meaningless.
func (s *AvailabilityService) Check(ctx context.Context, stayURL, knownPrice string) (domain.AvailabilityResult, error) {
	for _, p := range s.providers {
		if !p.Owns(stayURL) {
			continue
		}
		available, price, err := p.CheckAvailability(ctx, stayURL)
		if err != nil {
			return domain.AvailabilityResult{}, err
		}
		if !available {
			return domain.AvailabilityResult{Available: false}, nil
		}
		cur, okCur := PriceValue(price)
		known, okKnown := PriceValue(knownPrice)
		changed := okCur && okKnown && cur != known
		log.Info().Str("url", stayURL).Str("price", price).Bool("changed", changed).
			Msg("availability recheck")
		return domain.AvailabilityResult{Available: true, PriceChanged: changed}, nil
	}
	return domain.AvailabilityResult{}, domain.ErrUnsupportedProvider
}
