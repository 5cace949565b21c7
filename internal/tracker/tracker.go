package tracker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"flighttracker-backend/internal/alert"
	"flighttracker-backend/internal/components/assert"
	"flighttracker-backend/internal/components/chrono"
	"flighttracker-backend/internal/components/telemetry"
	"flighttracker-backend/internal/flights"
	"flighttracker-backend/internal/pricesource"
	"flighttracker-backend/internal/store"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
)

var tracer = otel.Tracer("flighttracker/tracker")

const (
	report_tracker_check_price = "tracker.check-price"
	report_tracker_alert       = "tracker.alert"
	report_tracker_check_all   = "tracker.check-all"
)

// RouteStore is the part of the price store the pipeline needs.
type RouteStore interface {
	GetRoute(ctx context.Context, id int64) (flights.Route, error)
	ListRoutes(ctx context.Context) ([]flights.Route, error)
	AppendObservation(ctx context.Context, routeID int64, amount decimal.Decimal, at *time.Time) (store.Appended, error)
}

// Alerter is the part of the alert dispatcher the pipeline needs.
type Alerter interface {
	Send(ctx context.Context, event flights.Event) (alert.Delivery, error)
}

type Outcome int

const (
	// OutcomeNotFound means the page loaded without a price, nothing was
	// recorded.
	OutcomeNotFound Outcome = iota
	OutcomeNoEvent
	OutcomeDrop
	OutcomeTarget
	OutcomeBoth
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNotFound:
		return "not_found"
	case OutcomeNoEvent:
		return "no_event"
	case OutcomeDrop:
		return "drop"
	case OutcomeTarget:
		return "target"
	case OutcomeBoth:
		return "drop_and_target"
	}
	return "unknown"
}

// Recorded is true when the check wrote an observation.
func (o Outcome) Recorded() bool {
	return o != OutcomeNotFound
}

func outcomeOf(events []flights.Event) Outcome {
	drop := false
	target := false
	for _, e := range events {
		switch e.Kind {
		case flights.EventDrop:
			drop = true
		case flights.EventTargetReached:
			target = true
		}
	}
	switch {
	case drop && target:
		return OutcomeBoth
	case drop:
		return OutcomeDrop
	case target:
		return OutcomeTarget
	}
	return OutcomeNoEvent
}

type AlertResult struct {
	Event    flights.Event
	Delivery alert.Delivery
	// Err is the reason the alert could not be sent, it never fails the
	// check.
	Err error
}

type Result struct {
	RouteID int64
	Outcome Outcome
	Quote   pricesource.Quote
	// Observation is the observation written by this check, only set when
	// Outcome.Recorded().
	Observation flights.Observation
	Previous    *flights.Observation
	Events      []flights.Event
	Alerts      []AlertResult
}

// CheckFailedError is returned when the source could not fetch the page,
// nothing was recorded and the caller may try again later.
type CheckFailedError struct {
	RouteID int64
	Err     error
}

func (e *CheckFailedError) Error() string {
	return fmt.Sprintf("check route %d: %v", e.RouteID, e.Err)
}

func (e *CheckFailedError) Unwrap() error {
	return e.Err
}

// Tracker runs the price check pipeline: fetch a price, record it, detect
// events and send alerts for them.
type Tracker struct {
	store   RouteStore
	source  pricesource.Source
	alerter Alerter
	time    chrono.TimeAPI
	tel     telemetry.API

	checks       metric.Int64Counter
	observations metric.Int64Counter
	alerts       metric.Int64Counter
}

func NewTracker(
	store RouteStore,
	source pricesource.Source,
	alerter Alerter,
	time chrono.TimeAPI,
	tel telemetry.API,
) Tracker {
	assert.NotNil(store, "store")
	assert.NotNil(source, "source")
	assert.NotNil(alerter, "alerter")
	assert.NotNil(time, "time")
	assert.NotNil(tel, "tel")

	meter := otel.Meter("flighttracker/tracker")
	checks, _ := meter.Int64Counter("price_checks", metric.WithDescription("price checks by outcome"))
	observations, _ := meter.Int64Counter("price_observations")
	alerts, _ := meter.Int64Counter("price_alerts", metric.WithDescription("alerts by event kind and delivery"))

	return Tracker{
		store:        store,
		source:       source,
		alerter:      alerter,
		time:         time,
		tel:          telemetry.NewScopedAPI("tracker", tel),
		checks:       checks,
		observations: observations,
		alerts:       alerts,
	}
}

// CheckPrice runs one check of a route. It returns *flights.NotFoundError
// for unknown routes and *CheckFailedError when the source fails; a page
// without a price is OutcomeNotFound and not an error. Alert failures are
// only reported in Result.Alerts.
func (t Tracker) CheckPrice(ctx context.Context, routeID int64) (Result, error) {
	ctx, span := tracer.Start(ctx, "CheckPrice")
	defer span.End()
	span.SetAttributes(attribute.Int64("route_id", routeID))

	fail := func(err error) (Result, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		t.checks.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "failed")))
		return Result{RouteID: routeID}, err
	}

	route, err := t.store.GetRoute(ctx, routeID)
	if err != nil {
		return fail(err)
	}

	quote, err := t.source.FetchPrice(ctx, pricesource.QueryForRoute(route))
	if err != nil {
		err = &CheckFailedError{RouteID: routeID, Err: err}
		t.tel.ReportWarning(report_tracker_check_price, err)
		return fail(err)
	}
	if !quote.Found {
		t.tel.ReportDebug("no price found", routeID, quote.URL)
		t.checks.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", OutcomeNotFound.String())))
		return Result{RouteID: routeID, Outcome: OutcomeNotFound, Quote: quote}, nil
	}

	now := t.time.Now()
	appended, err := t.store.AppendObservation(ctx, routeID, quote.Amount, &now)
	if err != nil {
		// the route can disappear between load and insert
		var notFound *flights.NotFoundError
		if !errors.As(err, &notFound) {
			t.tel.ReportBroken(report_tracker_check_price, err, routeID)
		}
		return fail(err)
	}
	t.observations.Add(ctx, 1)

	events := flights.DetectEvents(route, appended.Previous, appended.Observation)
	result := Result{
		RouteID:     routeID,
		Outcome:     outcomeOf(events),
		Quote:       quote,
		Observation: appended.Observation,
		Previous:    appended.Previous,
		Events:      events,
	}
	for _, event := range events {
		result.Alerts = append(result.Alerts, t.dispatch(ctx, event))
	}

	span.SetAttributes(
		attribute.String("outcome", result.Outcome.String()),
		attribute.String("amount", quote.Amount.String()),
	)
	t.checks.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", result.Outcome.String())))
	return result, nil
}

func (t Tracker) dispatch(ctx context.Context, event flights.Event) AlertResult {
	delivery, err := t.alerter.Send(ctx, event)
	t.alerts.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", event.Kind.String()),
		attribute.String("delivery", delivery.String()),
	))
	if err != nil {
		t.tel.ReportWarning(report_tracker_alert, err, event.Kind.String(), event.Route.ID)
		return AlertResult{Event: event, Delivery: delivery, Err: err}
	}
	if delivery == alert.DeliverySkipped {
		t.tel.ReportDebug("alert skipped, mail is not configured", event.Kind.String(), event.Route.ID)
	}
	return AlertResult{Event: event, Delivery: delivery}
}
