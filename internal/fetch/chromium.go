// Package fetch retrieves the raw markup of the agenda page, either by
// rendering it in headless Chromium or by a plain cached HTTP GET.
package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

// DefaultTimeout bounds one fetch attempt when the caller passes none.
// The agenda host is slow to settle, hence the generous value.
const DefaultTimeout = 90 * time.Second

// PageFetcher retrieves the raw markup of one page. Failures are fatal to
// the run: the caller must not write any output on error.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Renderer fetches a page through headless Chromium so that script-built
// markup is present in the returned HTML. The agenda page assembles its
// listing client-side, so a plain GET can come back empty.
type Renderer struct {
	timeout time.Duration
}

// NewRenderer creates a Chromium-backed fetcher.
func NewRenderer(timeout time.Duration) *Renderer {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Renderer{timeout: timeout}
}

// Fetch navigates to url, waits for the document body and returns the
// rendered outer HTML.
func (r *Renderer) Fetch(parentCtx context.Context, url string) (string, error) {
	if url == "" {
		return "", fmt.Errorf("fetch: URL is required")
	}

	ctx, cancel := chromedp.NewContext(parentCtx)
	defer cancel()

	ctx, timeoutCancel := context.WithTimeout(ctx, r.timeout)
	defer timeoutCancel()

	var html string
	tasks := chromedp.Tasks{
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		// Small extra delay so late script inserts land in the capture.
		chromedp.Sleep(500 * time.Millisecond),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	}

	if err := chromedp.Run(ctx, tasks); err != nil {
		return "", fmt.Errorf("fetch: chromedp run failed: %w", err)
	}

	return html, nil
}
