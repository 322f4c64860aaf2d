package domain

// SearchQuery is one validated lodging search. Immutable once built;
// each provider encodes it into its own URL scheme. A price filter is
// applied only when both bounds are present; a partial range is ignored
// silently, on the theory that unfiltered results beat an invalid filter.
type SearchQuery struct {
	City     string
	Adults   int    // 0 = unspecified
	Rooms    int    // 0 = unspecified
	CheckIn  string // YYYY-MM-DD, paired with CheckOut or empty
	CheckOut string
	PriceMin *int
	PriceMax *int
}

// HasPriceRange reports whether both price bounds are set.
func (q SearchQuery) HasPriceRange() bool { return q.PriceMin != nil && q.PriceMax != nil }

// Stay is one lodging search result. Name doubles as the per-provider
// key while a result set is being assembled: a later extraction hit for
// the same name overwrites the earlier one.
type Stay struct {
	Name     string  `json:"name"`
	Link     string  `json:"link"`
	PhotoURL string  `json:"photoUrl"`
	Price    string  `json:"price"` // provider-native formatting, not normalized
	Lat      float64 `json:"x"`
	Lon      float64 `json:"y"`
	Provider string  `json:"-"`
}

// HasCoords reports whether the detail page carried map data.
// (0,0) is the documented "no map widget" sentinel, not an error state.
func (s Stay) HasCoords() bool { return s.Lat != 0 || s.Lon != 0 }

// AvailabilityResult reports a recheck of one previously seen listing.
// PriceChanged is meaningful only when Available is true; an unavailable
// listing always reports PriceChanged=false.
type AvailabilityResult struct {
	Available    bool `json:"available"`
	PriceChanged bool `json:"priceChanged"`
}
