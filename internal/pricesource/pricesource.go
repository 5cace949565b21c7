package pricesource

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"flighttracker-backend/internal/flights"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("flighttracker/pricesource")

const DefaultBaseUrl = "https://www.google.com/travel/flights"

const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

type Query struct {
	Origin      flights.AirportCode
	Destination flights.AirportCode
	Date        time.Time
}

func QueryForRoute(route flights.Route) Query {
	return Query{
		Origin:      route.Origin,
		Destination: route.Destination,
		Date:        route.DepartureDate,
	}
}

func (q Query) String() string {
	return fmt.Sprintf("%s-%s-%s", q.Origin, q.Destination, q.Date.Format(flights.DateLayout))
}

// Quote is what a source found on the page. Found is false when the page
// loaded but no selector produced a price, which is not an error.
type Quote struct {
	Found  bool
	Amount decimal.Decimal
	// Selector is the selector that produced the price.
	Selector string
	URL      string
}

// Source fetches the lowest visible price for a route on a date. It
// returns an error only when the page could not be fetched at all.
type Source interface {
	FetchPrice(ctx context.Context, q Query) (Quote, error)
}

// FetchError is a hard failure to load or render the search page.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// SearchURL builds the search page url for q on top of base, keeping any
// query parameters base already has.
func SearchURL(base string, q Query) string {
	if base == "" {
		base = DefaultBaseUrl
	}
	search := fmt.Sprintf(
		"flights from %s to %s on %s",
		q.Origin, q.Destination, q.Date.Format(flights.DateLayout),
	)

	parsed, err := url.Parse(base)
	if err != nil {
		sep := "?"
		if strings.Contains(base, "?") {
			sep = "&"
		}
		return base + sep + url.Values{"q": {search}}.Encode()
	}
	values := parsed.Query()
	values.Set("q", search)
	parsed.RawQuery = values.Encode()
	return parsed.String()
}
