package pricesource

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"flighttracker-backend/internal/components/assert"
	"flighttracker-backend/internal/components/telemetry"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	report_chrome_fetch      = "chrome.fetch"
	report_chrome_screenshot = "chrome.screenshot"
)

const (
	DefaultTimeout      = time.Second * 20
	DefaultPollInterval = time.Millisecond * 500
)

// resources that never carry a price
var blockedResources = []string{
	"*.png", "*.jpg", "*.jpeg", "*.gif", "*.webp", "*.svg", "*.ico",
	"*.woff", "*.woff2", "*.ttf",
	"*.mp4", "*.webm",
}

type ChromeOptions struct {
	BaseUrl string
	// Timeout bounds how long the page gets to render a price.
	Timeout      time.Duration
	PollInterval time.Duration
	Selectors    []string
	UserAgent    string
	// DebugDir, when set, receives a full page screenshot whenever no
	// price was found.
	DebugDir string
	// ExecPath overrides the chrome binary chromedp looks for.
	ExecPath string
}

// ChromeSource renders the search page in a fresh headless chrome for
// every fetch.
type ChromeSource struct {
	opts ChromeOptions
	tel  telemetry.API
}

func NewChromeSource(opts ChromeOptions, tel telemetry.API) ChromeSource {
	assert.NotNil(tel, "tel")

	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseUrl
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if len(opts.Selectors) == 0 {
		opts.Selectors = DefaultSelectors
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}

	return ChromeSource{
		opts: opts,
		tel:  telemetry.NewScopedAPI("pricesource", tel),
	}
}

func (s ChromeSource) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("blink-settings", "imagesEnabled=false"),
		chromedp.UserAgent(s.opts.UserAgent),
		chromedp.WindowSize(1920, 1080),
	)
	if s.opts.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(s.opts.ExecPath))
	}
	return opts
}

func (s ChromeSource) FetchPrice(ctx context.Context, q Query) (Quote, error) {
	ctx, span := tracer.Start(ctx, "ChromeSource.FetchPrice")
	defer span.End()

	target := SearchURL(s.opts.BaseUrl, q)
	span.SetAttributes(attribute.String("url", target))

	fail := func(err error) (Quote, error) {
		err = &FetchError{URL: target, Err: err}
		s.tel.ReportBroken(report_chrome_fetch, err, q.String())
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Quote{}, err
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, s.allocatorOptions()...)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(
		allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			s.tel.ReportDebug(fmt.Sprintf("chromedp: "+format, args...))
		}),
	)
	defer cancelBrowser()

	// launches the browser, it is tied to browserCtx and not the wait below
	// so it is still around for a debug screenshot.
	err := chromedp.Run(
		browserCtx,
		network.Enable(),
		network.SetBlockedURLS(blockedResources),
	)
	if err != nil {
		return fail(fmt.Errorf("launch browser: %w", err))
	}

	waitCtx, cancelWait := context.WithTimeout(browserCtx, s.opts.Timeout)
	defer cancelWait()

	var match Match
	var found bool
	err = chromedp.Run(waitCtx, chromedp.Navigate(target))
	switch {
	case ctx.Err() != nil:
		return fail(ctx.Err())
	case err != nil && errors.Is(waitCtx.Err(), context.DeadlineExceeded):
		// the load event never fired in time, same as a page with no price
	case err != nil:
		return fail(fmt.Errorf("navigate: %w", err))
	default:
		match, found, err = s.poll(waitCtx)
	}
	if ctx.Err() != nil {
		return fail(ctx.Err())
	}
	if err != nil {
		return fail(err)
	}
	if found {
		span.SetAttributes(
			attribute.String("selector", match.Selector),
			attribute.String("amount", match.Amount.String()),
		)
		return Quote{
			Found:    true,
			Amount:   match.Amount,
			Selector: match.Selector,
			URL:      target,
		}, nil
	}

	s.tel.ReportDebug("no price found", q.String(), target)
	if s.opts.DebugDir != "" {
		s.screenshot(browserCtx, q)
	}
	return Quote{Found: false, URL: target}, nil
}

// poll snapshots the rendered dom until a selector matches or waitCtx is
// done. Running out of time is not an error.
func (s ChromeSource) poll(waitCtx context.Context) (Match, bool, error) {
	ticker := time.NewTicker(s.opts.PollInterval)
	defer ticker.Stop()

	for {
		var html string
		err := chromedp.Run(waitCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery))
		if err != nil {
			if errors.Is(waitCtx.Err(), context.DeadlineExceeded) {
				return Match{}, false, nil
			}
			return Match{}, false, fmt.Errorf("read page: %w", err)
		}

		doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
		if err == nil {
			match, ok := Extract(doc.Selection, s.opts.Selectors)
			if ok {
				return match, true, nil
			}
		}

		select {
		case <-waitCtx.Done():
			if errors.Is(waitCtx.Err(), context.DeadlineExceeded) {
				return Match{}, false, nil
			}
			return Match{}, false, waitCtx.Err()
		case <-ticker.C:
		}
	}
}

func (s ChromeSource) ScreenshotPath(q Query) string {
	name := fmt.Sprintf("debug_%s_%s_%s.png", q.Origin, q.Destination, q.Date.Format(time.DateOnly))
	return filepath.Join(s.opts.DebugDir, name)
}

func (s ChromeSource) screenshot(browserCtx context.Context, q Query) {
	ctx, cancel := context.WithTimeout(browserCtx, time.Second*10)
	defer cancel()

	var buf []byte
	err := chromedp.Run(ctx, chromedp.FullScreenshot(&buf, 90))
	if err != nil {
		s.tel.ReportWarning(report_chrome_screenshot, err, q.String())
		return
	}

	path := s.ScreenshotPath(q)
	err = os.MkdirAll(filepath.Dir(path), 0755)
	if err == nil {
		err = os.WriteFile(path, buf, 0644)
	}
	if err != nil {
		s.tel.ReportWarning(report_chrome_screenshot, err, path)
		return
	}
	s.tel.ReportDebug("saved debug screenshot", path)
}
