package fetch

import (
	"context"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"

	"stay_spotter/internal/adapters/observability"
	"stay_spotter/internal/domain"
)

// BrowserFetcher drives a headless browser for pages whose listings are
// populated only after script execution. One allocator is shared; every
// Fetch gets its own tab context and cancels it on all exit paths,
// including the marker-wait timeout.
type BrowserFetcher struct {
	userAgent string
	wait      time.Duration

	allocCtx    context.Context
	cancelAlloc context.CancelFunc
	closeOnce   sync.Once
}

// NewBrowserFetcher configures the browser allocator. wait bounds the
// marker-visibility wait per page; a page that renders nothing within it
// fails with a FetchError.
func NewBrowserFetcher(userAgent string, wait time.Duration) *BrowserFetcher {
	if wait <= 0 {
		wait = 5 * time.Second
	}
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.UserAgent(userAgent),
		chromedp.WindowSize(1920, 1080),
	)
	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)
	return &BrowserFetcher{
		userAgent:   userAgent,
		wait:        wait,
		allocCtx:    allocCtx,
		cancelAlloc: cancel,
	}
}

func (f *BrowserFetcher) Fetch(ctx context.Context, url string, opts Options) (Document, error) {
	start := time.Now()

	tabCtx, cancelTab := chromedp.NewContext(f.allocCtx, chromedp.WithLogf(func(string, ...any) {}))
	defer cancelTab()

	// Tie the tab to the caller's context so a request-level deadline
	// aborts the in-flight navigation instead of leaking it.
	go func() {
		select {
		case <-ctx.Done():
			cancelTab()
		case <-tabCtx.Done():
		}
	}()

	waitCtx, cancelWait := context.WithTimeout(tabCtx, f.wait+15*time.Second)
	defer cancelWait()

	actions := []chromedp.Action{chromedp.Navigate(url)}
	if opts.WaitFor != "" {
		actions = append(actions, waitVisibleBounded(opts.WaitFor, f.wait))
	} else {
		actions = append(actions, chromedp.WaitVisible("body", chromedp.ByQuery))
	}
	var html string
	actions = append(actions, chromedp.OuterHTML("html", &html, chromedp.ByQuery))

	err := chromedp.Run(waitCtx, actions...)
	observability.ObserveFetch("browser", 0, time.Since(start))
	if err != nil {
		log.Debug().Str("url", url).Err(err).Msg("browser fetch failed")
		return Document{}, &domain.FetchError{URL: url, Err: err}
	}
	if html == "" {
		return Document{}, &domain.FetchError{URL: url, Err: errEmptyBody}
	}
	return Document{URL: url, HTML: html}, nil
}

// waitVisibleBounded waits for sel under its own short deadline so a page
// that never renders the marker fails fast instead of consuming the whole
// navigation budget.
func waitVisibleBounded(sel string, d time.Duration) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		waitCtx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		return chromedp.WaitVisible(sel, chromedp.ByQuery).Do(waitCtx)
	})
}

// Close shuts the browser down. The allocator cancel tears down any tab
// contexts still alive.
func (f *BrowserFetcher) Close() error {
	f.closeOnce.Do(f.cancelAlloc)
	return nil
}
