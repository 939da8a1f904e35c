package scrape

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog"
)

// ChromeScreenshotter renders pages in headless Chrome. Each capture runs in
// a fresh browser context so a crashed or hung page never leaks into the next
// request; the contexts are cancelled on every exit path.
type ChromeScreenshotter struct {
	navTimeout time.Duration
	settle     time.Duration
	logger     zerolog.Logger
}

// NewChromeScreenshotter configures the screenshot tier. navTimeout bounds
// navigation; settle is the post-idle delay that lets dynamic galleries
// finish rendering.
func NewChromeScreenshotter(navTimeout, settle time.Duration, logger zerolog.Logger) *ChromeScreenshotter {
	if navTimeout <= 0 {
		navTimeout = 30 * time.Second
	}
	if settle < 0 {
		settle = 0
	}
	return &ChromeScreenshotter{navTimeout: navTimeout, settle: settle, logger: logger}
}

// CapturePage navigates to pageURL, waits for the page's network activity to
// go idle plus the settle delay, and returns a full-page PNG.
func (s *ChromeScreenshotter) CapturePage(ctx context.Context, pageURL string) ([]byte, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.UserAgent(browserUserAgent),
		chromedp.WindowSize(1920, 1080),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	runCtx, cancelRun := context.WithTimeout(browserCtx, s.navTimeout+s.settle)
	defer cancelRun()

	idle := make(chan struct{})
	var once sync.Once
	chromedp.ListenTarget(runCtx, func(ev any) {
		if isNetworkIdle(ev) {
			once.Do(func() { close(idle) })
		}
	})

	start := time.Now()
	err := chromedp.Run(runCtx,
		page.SetLifecycleEventsEnabled(true),
		chromedp.Navigate(pageURL),
	)
	if err != nil {
		return nil, fmt.Errorf("screenshot %s: %w", pageURL, err)
	}

	select {
	case <-idle:
	case <-runCtx.Done():
		return nil, fmt.Errorf("screenshot %s: %w", pageURL, runCtx.Err())
	}

	var shot []byte
	err = chromedp.Run(runCtx,
		chromedp.Sleep(s.settle),
		chromedp.FullScreenshot(&shot, 100),
	)
	if err != nil {
		return nil, fmt.Errorf("screenshot %s: %w", pageURL, err)
	}

	s.logger.Debug().
		Str("url", pageURL).
		Int("bytes", len(shot)).
		Dur("elapsed", time.Since(start)).
		Msg("scrape: captured page screenshot")

	return shot, nil
}

// isNetworkIdle reports whether ev is the lifecycle event Chrome emits once
// the page's in-flight requests have drained.
func isNetworkIdle(ev any) bool {
	e, ok := ev.(*page.EventLifecycleEvent)
	return ok && e.Name == "networkIdle"
}

var _ Screenshotter = (*ChromeScreenshotter)(nil)
