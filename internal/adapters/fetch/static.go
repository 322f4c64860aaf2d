package fetch

import (
	"context"
	"errors"
	"time"

	"github.com/gocolly/colly/v2"
	"golang.org/x/time/rate"

	"stay_spotter/internal/adapters/observability"
	"stay_spotter/internal/domain"
)

var errEmptyBody = errors.New("empty response body")

// StaticFetcher retrieves server-rendered pages with a plain HTTP
// round-trip. No script execution, no session state; a fresh collector
// per request.
type StaticFetcher struct {
	userAgent string
	timeout   time.Duration
	rl        *rate.Limiter
}

func NewStaticFetcher(userAgent string, rps int, timeout time.Duration) *StaticFetcher {
	if rps <= 0 {
		rps = 4
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &StaticFetcher{
		userAgent: userAgent,
		timeout:   timeout,
		rl:        rate.NewLimiter(rate.Limit(rps), rps),
	}
}

func (f *StaticFetcher) Fetch(ctx context.Context, url string, _ Options) (Document, error) {
	// Client-side pacing so a burst of detail-page fetches does not hammer
	// the provider.
	if err := f.rl.Wait(ctx); err != nil {
		return Document{}, &domain.FetchError{URL: url, Err: err}
	}

	start := time.Now()
	c := colly.NewCollector(
		colly.UserAgent(f.userAgent),
		colly.StdlibContext(ctx),
	)
	c.SetRequestTimeout(f.timeout)

	var (
		body   []byte
		status int
		ferr   error
	)
	c.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		body = r.Body
	})
	c.OnError(func(r *colly.Response, err error) {
		if r != nil {
			status = r.StatusCode
		}
		ferr = err
	})

	if err := c.Visit(url); err != nil && ferr == nil {
		ferr = err
	}
	observability.ObserveFetch("static", status, time.Since(start))

	if ferr != nil {
		return Document{}, &domain.FetchError{URL: url, Status: status, Err: ferr}
	}
	if len(body) == 0 {
		return Document{}, &domain.FetchError{URL: url, Status: status, Err: errEmptyBody}
	}
	return Document{URL: url, HTML: string(body)}, nil
}

func (f *StaticFetcher) Close() error { return nil }
