package providers

import (
	"context"
	"errors"
	"testing"

	"stay_spotter/internal/adapters/fetch"
	"stay_spotter/internal/domain"
)

// fakeFetcher serves canned HTML per URL and records what was asked for.
type fakeFetcher struct {
	pages map[string]string
	fail  map[string]bool
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string, _ fetch.Options) (fetch.Document, error) {
	if f.fail[url] {
		return fetch.Document{}, &domain.FetchError{URL: url, Err: errors.New("connection reset")}
	}
	html, ok := f.pages[url]
	if !ok {
		return fetch.Document{}, &domain.FetchError{URL: url, Status: 404, Err: errors.New("not found")}
	}
	return fetch.Document{URL: url, HTML: html}, nil
}

func (f *fakeFetcher) Close() error { return nil }

func bookingFixture() (*fakeFetcher, string) {
	q := domain.SearchQuery{City: "Paris", Adults: 2, Rooms: 1, CheckIn: "2024-06-01", CheckOut: "2024-06-05"}
	searchURL := Booking{}.SearchURL(q)

	list := `<div data-testid="searchresults">` +
		bookingCard("Hotel Esperanza", "/hotel/es.html", "€ 90") +
		bookingCard("Riverside Inn", "/hotel/ri.html", "€ 60") +
		`</div>`
	detailES := `<head><meta property="og:image" content="https://cf.bstatic.com/es.jpg"></head>` +
		`<a id="hotel_sidebar_static_map" data-atlas-latlng="48.85,2.35"></a>`
	detailRI := `<div>no map widget on this one</div>`

	return &fakeFetcher{pages: map[string]string{
		searchURL: list,
		"https://www.booking.com/hotel/es.html": detailES,
		"https://www.booking.com/hotel/ri.html": detailRI,
	}}, searchURL
}

func parisQuery() domain.SearchQuery {
	return domain.SearchQuery{City: "Paris", Adults: 2, Rooms: 1, CheckIn: "2024-06-01", CheckOut: "2024-06-05"}
}

func TestSourceSearch_EnrichesListings(t *testing.T) {
	f, _ := bookingFixture()
	src := NewBookingSource(f)

	stays, err := src.Search(context.Background(), parisQuery())
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(stays) != 2 {
		t.Fatalf("expected 2 stays, got %d", len(stays))
	}

	byName := map[string]domain.Stay{}
	for _, s := range stays {
		byName[s.Name] = s
	}
	es := byName["Hotel Esperanza"]
	if es.Lat != 48.85 || es.Lon != 2.35 || es.PhotoURL != "https://cf.bstatic.com/es.jpg" {
		t.Fatalf("enrichment missing: %+v", es)
	}
	ri := byName["Riverside Inn"]
	if ri.HasCoords() {
		t.Fatalf("mapless detail page must keep the (0,0) sentinel: %+v", ri)
	}
}

func TestSourceSearch_DropsListingOnDetailFailure(t *testing.T) {
	f, _ := bookingFixture()
	f.fail = map[string]bool{"https://www.booking.com/hotel/ri.html": true}
	src := NewBookingSource(f)

	stays, err := src.Search(context.Background(), parisQuery())
	if err != nil {
		t.Fatalf("one broken detail page must not fail the batch: %v", err)
	}
	if len(stays) != 1 || stays[0].Name != "Hotel Esperanza" {
		t.Fatalf("expected only the healthy listing, got %v", stays)
	}
}

func TestSourceSearch_SearchPageFetchFails(t *testing.T) {
	src := NewBookingSource(&fakeFetcher{fail: map[string]bool{Booking{}.SearchURL(parisQuery()): true},
		pages: map[string]string{}})

	_, err := src.Search(context.Background(), parisQuery())
	var fe *domain.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FetchError, got %v", err)
	}
}

func TestCollapseByName(t *testing.T) {
	in := []domain.Stay{
		{Name: "A", Price: "1"},
		{Name: "B", Price: "2"},
		{Name: "A", Price: "3"},
	}
	out := collapseByName(in)
	if len(out) != 2 {
		t.Fatalf("expected 2 distinct names, got %d", len(out))
	}
	// Later hit overwrites the earlier one at its original position.
	if out[0].Name != "A" || out[0].Price != "3" || out[1].Name != "B" {
		t.Fatalf("overwrite rule broken: %v", out)
	}
}

func TestSourceCheckAvailability(t *testing.T) {
	soldOutURL := "https://www.booking.com/hotel/full.html"
	openURL := "https://www.booking.com/hotel/open.html"
	f := &fakeFetcher{pages: map[string]string{
		soldOutURL: `<div id="no_availability_message">Sold out</div>`,
		openURL:    `<span data-testid="price-and-discounted-price">€ 150</span>`,
	}}
	src := NewBookingSource(f)

	available, _, err := src.CheckAvailability(context.Background(), soldOutURL)
	if err != nil || available {
		t.Fatalf("expected sold out, got available=%v err=%v", available, err)
	}

	available, price, err := src.CheckAvailability(context.Background(), openURL)
	if err != nil || !available || price != "€ 150" {
		t.Fatalf("expected available at € 150, got %v %q %v", available, price, err)
	}
}

func TestSourceOwns(t *testing.T) {
	src := NewBookingSource(&fakeFetcher{})
	if !src.Owns("https://www.booking.com/hotel/x.html") {
		t.Fatalf("booking URL not owned")
	}
	if src.Owns("https://www.airbnb.com/rooms/1") {
		t.Fatalf("airbnb URL wrongly owned")
	}
}
