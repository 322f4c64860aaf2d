package providers

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"stay_spotter/internal/adapters/fetch"
	"stay_spotter/internal/domain"
)

// bookingSelectors is the current Booking.com markup contract. Kept in
// one place so markup drift is a one-struct edit.
var bookingSelectors = struct {
	resultsList string
	title       string
	titleLink   string
	price       string
	mapAnchor   string
	coordAttr   string
	soldOut     string
	detailPrice string
	photo       string
}{
	resultsList: `div[data-testid="searchresults"]`,
	title:       `div[data-testid="title"]`,
	titleLink:   `a[data-testid="title-link"]`,
	price:       `span[data-testid="price-and-discounted-price"]`,
	mapAnchor:   `a#hotel_sidebar_static_map`,
	coordAttr:   "data-atlas-latlng",
	soldOut:     `#no_availability_message`,
	detailPrice: `span[data-testid="price-and-discounted-price"]`,
	photo:       `meta[property="og:image"]`,
}

// Booking serves fully server-rendered result pages, so it pairs with
// the static fetch strategy.
type Booking struct{}

// NewBookingSource returns the Booking.com provider backed by f.
func NewBookingSource(f fetch.Fetcher) *Source {
	return NewSource(Booking{}, f)
}

func (Booking) Name() string { return "booking" }
func (Booking) Host() string { return "booking.com" }

func (Booking) SearchURL(q domain.SearchQuery) string {
	var b strings.Builder
	b.WriteString("https://www.booking.com/searchresults.html?ss=")
	b.WriteString(url.QueryEscape(q.City))
	if q.CheckIn != "" {
		b.WriteString("&checkin=" + q.CheckIn)
	}
	if q.CheckOut != "" {
		b.WriteString("&checkout=" + q.CheckOut)
	}
	if q.Adults > 0 {
		b.WriteString("&group_adults=" + strconv.Itoa(q.Adults))
	}
	if q.Rooms > 0 {
		b.WriteString("&no_rooms=" + strconv.Itoa(q.Rooms))
	}
	b.WriteString("&group_children=0")
	if q.HasPriceRange() {
		b.WriteString(fmt.Sprintf("&nflt=price%%3DEUR-%d-%d-1", *q.PriceMin, *q.PriceMax))
	}
	return b.String()
}

func (Booking) ResultsMarker() string { return bookingSelectors.title }

// ParseResults reads the three parallel field lists off a results page.
// Booking emits them as independent node sets, so they are zip-aligned:
// unequal lengths truncate to the shortest, a known upstream
// inconsistency rather than a bug here.
func (bk Booking) ParseResults(doc *goquery.Document) ([]domain.Stay, error) {
	names := textsOf(doc, bookingSelectors.title)
	links := attrsOf(doc, bookingSelectors.titleLink, "href")
	prices := textsOf(doc, bookingSelectors.price)

	if len(names) == 0 {
		// Distinguish an empty result set from markup drift: the results
		// container must still be present on a legitimate zero-hit page.
		if doc.Find(bookingSelectors.resultsList).Length() == 0 {
			return nil, &domain.ExtractionError{Provider: bk.Name(), Reason: "results container missing"}
		}
		return nil, nil
	}

	n := min(len(names), min(len(links), len(prices)))
	stays := make([]domain.Stay, 0, n)
	for i := 0; i < n; i++ {
		name := strings.TrimSpace(names[i])
		if name == "" {
			continue
		}
		stays = append(stays, domain.Stay{
			Name:     name,
			Link:     absoluteURL("https://www.booking.com", links[i]),
			Price:    strings.TrimSpace(prices[i]),
			Provider: bk.Name(),
		})
	}
	return stays, nil
}

func (Booking) ParseDetail(doc *goquery.Document) detail {
	var d detail
	if raw, ok := doc.Find(bookingSelectors.mapAnchor).First().Attr(bookingSelectors.coordAttr); ok {
		d.Lat, d.Lon = parseLatLng(raw)
	}
	if src, ok := doc.Find(bookingSelectors.photo).First().Attr("content"); ok {
		d.PhotoURL = src
	}
	return d
}

func (Booking) SoldOut(doc *goquery.Document) bool {
	return doc.Find(bookingSelectors.soldOut).Length() > 0
}

func (bk Booking) CurrentPrice(doc *goquery.Document) (string, error) {
	sel := doc.Find(bookingSelectors.detailPrice).First()
	if sel.Length() == 0 {
		return "", &domain.ExtractionError{Provider: bk.Name(), Reason: "price marker missing"}
	}
	return strings.TrimSpace(sel.Text()), nil
}

func textsOf(doc *goquery.Document, sel string) []string {
	var out []string
	doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
		out = append(out, s.Text())
	})
	return out
}

func attrsOf(doc *goquery.Document, sel, attr string) []string {
	var out []string
	doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
		v, _ := s.Attr(attr)
		out = append(out, v)
	})
	return out
}

func absoluteURL(base, href string) string {
	if href == "" || strings.HasPrefix(href, "http") {
		return href
	}
	return base + href
}

// parseLatLng reads the "lat,lng" attribute format shared by map
// widgets. Anything malformed falls back to the (0,0) sentinel.
func parseLatLng(raw string) (float64, float64) {
	parts := strings.SplitN(raw, ",", 2)
	if len(parts) != 2 {
		return 0, 0
	}
	lat, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lon, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err1 != nil || err2 != nil {
		return 0, 0
	}
	return lat, lon
}
