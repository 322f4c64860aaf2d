package providers

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"stay_spotter/internal/adapters/fetch"
	"stay_spotter/internal/domain"
)

// airbnbSelectors is the current Airbnb markup contract.
var airbnbSelectors = struct {
	card      string
	title     string
	link      string
	price     string
	mapLink   string
	soldOut   string
	bookPrice string
	photo     string
}{
	card:      `div[itemprop="itemListElement"]`,
	title:     `[data-testid="listing-card-title"]`,
	link:      `a[href*="/rooms/"]`,
	price:     `[data-testid="price-availability-row"] span`,
	mapLink:   `a[href*="maps.google.com"]`,
	soldOut:   `[data-section-id="UNAVAILABLE_DEFAULT"]`,
	bookPrice: `[data-testid="book-it-default"] span._price`,
	photo:     `meta[property="og:image"]`,
}

// Airbnb populates its result grid only after script execution, so it
// pairs with the browser-driven fetch strategy.
type Airbnb struct{}

// NewAirbnbSource returns the Airbnb provider backed by f.
func NewAirbnbSource(f fetch.Fetcher) *Source {
	return NewSource(Airbnb{}, f)
}

func (Airbnb) Name() string { return "airbnb" }
func (Airbnb) Host() string { return "airbnb.com" }

// SearchURL puts the city in the path segment, which Airbnb requires to
// be percent-encoded, unlike the query-string encoding Booking uses.
func (Airbnb) SearchURL(q domain.SearchQuery) string {
	var b strings.Builder
	b.WriteString("https://www.airbnb.com/s/")
	b.WriteString(url.PathEscape(q.City))
	b.WriteString("/homes")

	params := url.Values{}
	if q.Adults > 0 {
		params.Set("adults", strconv.Itoa(q.Adults))
	}
	if q.CheckIn != "" {
		params.Set("checkin", q.CheckIn)
	}
	if q.CheckOut != "" {
		params.Set("checkout", q.CheckOut)
	}
	if q.HasPriceRange() {
		params.Set("price_min", strconv.Itoa(*q.PriceMin))
		params.Set("price_max", strconv.Itoa(*q.PriceMax))
	}
	if len(params) > 0 {
		b.WriteString("?" + params.Encode())
	}
	return b.String()
}

func (Airbnb) ResultsMarker() string { return airbnbSelectors.card }

// ParseResults walks the listing cards. Airbnb nests all fields inside
// one card element, so there is no parallel-list alignment to worry
// about; a card missing its title is dropped.
func (ab Airbnb) ParseResults(doc *goquery.Document) ([]domain.Stay, error) {
	cards := doc.Find(airbnbSelectors.card)
	if cards.Length() == 0 {
		// The rendered wait already required at least one card, so an empty
		// grid here means the page shape changed underneath us.
		return nil, &domain.ExtractionError{Provider: ab.Name(), Reason: "no listing cards in rendered page"}
	}

	var stays []domain.Stay
	cards.Each(func(_ int, card *goquery.Selection) {
		name := strings.TrimSpace(card.Find(airbnbSelectors.title).First().Text())
		if name == "" {
			return
		}
		href, _ := card.Find(airbnbSelectors.link).First().Attr("href")
		stays = append(stays, domain.Stay{
			Name:     name,
			Link:     absoluteURL("https://www.airbnb.com", href),
			Price:    strings.TrimSpace(card.Find(airbnbSelectors.price).First().Text()),
			Provider: ab.Name(),
		})
	})
	return stays, nil
}

// ParseDetail pulls coordinates out of the map widget's Google Maps
// link (ll=lat,lng). Listings without the widget keep the (0,0)
// sentinel.
func (Airbnb) ParseDetail(doc *goquery.Document) detail {
	var d detail
	if href, ok := doc.Find(airbnbSelectors.mapLink).First().Attr("href"); ok {
		if u, err := url.Parse(href); err == nil {
			d.Lat, d.Lon = parseLatLng(u.Query().Get("ll"))
		}
	}
	if src, ok := doc.Find(airbnbSelectors.photo).First().Attr("content"); ok {
		d.PhotoURL = src
	}
	return d
}

func (Airbnb) SoldOut(doc *goquery.Document) bool {
	return doc.Find(airbnbSelectors.soldOut).Length() > 0
}

func (ab Airbnb) CurrentPrice(doc *goquery.Document) (string, error) {
	sel := doc.Find(airbnbSelectors.bookPrice).First()
	if sel.Length() == 0 {
		return "", &domain.ExtractionError{Provider: ab.Name(), Reason: "price marker missing"}
	}
	return strings.TrimSpace(sel.Text()), nil
}
