package pricesource

import (
	"bytes"
	"context"
	"fmt"
	"net/http/cookiejar"
	"time"

	"flighttracker-backend/internal/components/assert"
	"flighttracker-backend/internal/components/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"
)

const report_http_fetch = "http.fetch"

type HTTPOptions struct {
	BaseUrl   string
	Timeout   time.Duration
	Selectors []string
	UserAgent string
	// RequestsPerSecond caps outgoing requests, zero means 2.
	RequestsPerSecond float64
}

// HTTPSource fetches the search page with a plain GET, it only works
// against pages that serve prices in their initial html.
type HTTPSource struct {
	opts HTTPOptions
	http *resty.Client
	tel  telemetry.API
}

func NewHTTPSource(opts HTTPOptions, tel telemetry.API) (HTTPSource, error) {
	assert.NotNil(tel, "tel")
	tel = telemetry.NewScopedAPI("pricesource", tel)

	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseUrl
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if len(opts.Selectors) == 0 {
		opts.Selectors = DefaultSelectors
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = 2
	}

	client := resty.New()
	jar, err := cookiejar.New(nil)
	if err != nil {
		return HTTPSource{}, err
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	client.SetHeader("user-agent", opts.UserAgent)
	client.SetTimeout(opts.Timeout)

	limiter := rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 2)
	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return limiter.Wait(req.Context())
	})

	telemetry.InstrumentResty(client, tel)

	return HTTPSource{
		opts: opts,
		http: client,
		tel:  tel,
	}, nil
}

func (s HTTPSource) FetchPrice(ctx context.Context, q Query) (Quote, error) {
	ctx, span := tracer.Start(ctx, "HTTPSource.FetchPrice")
	defer span.End()

	target := SearchURL(s.opts.BaseUrl, q)
	span.SetAttributes(attribute.String("url", target))

	fail := func(err error) (Quote, error) {
		err = &FetchError{URL: target, Err: err}
		s.tel.ReportBroken(report_http_fetch, err, q.String())
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Quote{}, err
	}

	res, err := s.http.R().
		SetContext(ctx).
		Get(target)
	if err != nil {
		return fail(err)
	}
	if res.IsError() {
		return fail(fmt.Errorf("unexpected status %s", res.Status()))
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		return fail(fmt.Errorf("parse html: %w", err))
	}

	match, ok := Extract(doc.Selection, s.opts.Selectors)
	if !ok {
		s.tel.ReportDebug("no price found", q.String(), target)
		return Quote{Found: false, URL: target}, nil
	}
	return Quote{
		Found:    true,
		Amount:   match.Amount,
		Selector: match.Selector,
		URL:      target,
	}, nil
}
