// Package providers holds one profile per external listing source. A
// profile is the provider-coupled part of the pipeline: how a search
// query is encoded into a URL and which markup contracts map page
// content to listing fields. The contracts are brittle by nature; when a
// provider changes its pages, the fix is the profile's selector table
// and nothing else.
package providers

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"stay_spotter/internal/adapters/fetch"
	"stay_spotter/internal/adapters/observability"
	"stay_spotter/internal/domain"
)

// enrichWorkers bounds the detail-page fan-out so a large result page
// does not open one connection per listing all at once.
const enrichWorkers = 8

// detail carries the fields only a listing's own page can supply.
type detail struct {
	Lat, Lon float64
	PhotoURL string
}

// profile is the fixed extraction contract each provider variant
// implements. Adding a provider means adding one variant.
type profile interface {
	Name() string
	// Host is matched as a substring against listing URLs for ownership
	// dispatch.
	Host() string
	SearchURL(q domain.SearchQuery) string
	// ResultsMarker is the element the browser strategy waits on before a
	// results page counts as rendered. Static providers ignore it.
	ResultsMarker() string
	ParseResults(doc *goquery.Document) ([]domain.Stay, error)
	// ParseDetail never fails: a detail page without a map widget yields
	// the (0,0) coordinate sentinel and an empty photo reference.
	ParseDetail(doc *goquery.Document) detail
	SoldOut(doc *goquery.Document) bool
	CurrentPrice(doc *goquery.Document) (string, error)
}

// Source wires a profile to a fetch strategy and implements
// domain.Provider. All cross-provider behavior (within-provider name
// overwrite, concurrent enrichment, drop-on-failure) lives here so the
// profiles stay pure extraction code.
type Source struct {
	p profile
	f fetch.Fetcher
}

func NewSource(p profile, f fetch.Fetcher) *Source {
	return &Source{p: p, f: f}
}

func (s *Source) Name() string { return s.p.Name() }

func (s *Source) Owns(stayURL string) bool {
	return strings.Contains(stayURL, s.p.Host())
}

// Search runs query build -> fetch -> extract -> enrich for this source.
func (s *Source) Search(ctx context.Context, q domain.SearchQuery) ([]domain.Stay, error) {
	target := s.p.SearchURL(q)
	log.Info().Str("provider", s.p.Name()).Str("url", target).Msg("searching")

	doc, err := s.fetchDoc(ctx, target, s.p.ResultsMarker())
	if err != nil {
		return nil, err
	}
	stays, err := s.p.ParseResults(doc)
	if err != nil {
		return nil, err
	}
	stays = collapseByName(stays)
	observability.ObserveListings(s.p.Name(), "extracted", len(stays))

	return s.enrich(ctx, stays), nil
}

// enrich fetches every listing's detail page concurrently, one task per
// listing. Each task owns its own slot in the slice, so the writes are
// key-disjoint and need no lock. A failed detail fetch drops that one
// listing and keeps the rest; a missing map widget is not a failure.
func (s *Source) enrich(ctx context.Context, stays []domain.Stay) []domain.Stay {
	dropped := make([]bool, len(stays))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(enrichWorkers)
	for i := range stays {
		g.Go(func() error {
			doc, err := s.fetchDoc(gctx, stays[i].Link, "")
			if err != nil {
				log.Warn().Str("provider", s.p.Name()).Str("stay", stays[i].Name).
					Err(err).Msg("detail fetch failed, dropping listing")
				dropped[i] = true
				return nil // partial results beat a failed batch
			}
			d := s.p.ParseDetail(doc)
			stays[i].Lat, stays[i].Lon = d.Lat, d.Lon
			stays[i].PhotoURL = d.PhotoURL
			return nil
		})
	}
	_ = g.Wait() // tasks only ever return nil

	out := stays[:0]
	drops := 0
	for i := range stays {
		if dropped[i] {
			drops++
			continue
		}
		out = append(out, stays[i])
	}
	observability.ObserveListings(s.p.Name(), "enriched", len(out))
	if drops > 0 {
		observability.ObserveListings(s.p.Name(), "dropped", drops)
	}
	return out
}

// CheckAvailability re-fetches one listing page and reads the provider's
// sold-out and current-price markers.
func (s *Source) CheckAvailability(ctx context.Context, stayURL string) (bool, string, error) {
	doc, err := s.fetchDoc(ctx, stayURL, "")
	if err != nil {
		return false, "", err
	}
	if s.p.SoldOut(doc) {
		return false, "", nil
	}
	price, err := s.p.CurrentPrice(doc)
	if err != nil {
		return false, "", err
	}
	return true, price, nil
}

func (s *Source) fetchDoc(ctx context.Context, url, waitFor string) (*goquery.Document, error) {
	raw, err := s.f.Fetch(ctx, url, fetch.Options{WaitFor: waitFor})
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw.HTML))
	if err != nil {
		return nil, &domain.ExtractionError{Provider: s.p.Name(), Reason: err.Error()}
	}
	return doc, nil
}

// collapseByName applies the within-provider overwrite rule: a later
// extraction hit for an already seen name replaces the earlier one, at
// the earlier one's position.
func collapseByName(stays []domain.Stay) []domain.Stay {
	pos := make(map[string]int, len(stays))
	out := stays[:0]
	for _, st := range stays {
		if i, ok := pos[st.Name]; ok {
			out[i] = st
			continue
		}
		pos[st.Name] = len(out)
		out = append(out, st)
	}
	return out
}
