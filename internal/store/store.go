package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"flighttracker-backend/internal/components/assert"
	"flighttracker-backend/internal/components/chrono"
	"flighttracker-backend/internal/components/telemetry"
	"flighttracker-backend/internal/db"
	"flighttracker-backend/internal/flights"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("flighttracker/store")

const (
	report_db_query  = "db.query"
	report_db_tx     = "db.tx"
	report_db_decode = "db.decode"
)

// DefaultLatestLimit is how many observations LatestObservations returns
// when no limit is given, enough for "current" and "previous".
const DefaultLatestLimit = 2

// Store is the durable record of routes and their observed prices.
type Store struct {
	qry    *db.Queries
	makeTx db.MakeTx
	time   chrono.TimeAPI
	tel    telemetry.API
}

func NewStore(database *sql.DB, time chrono.TimeAPI, tel telemetry.API) Store {
	assert.NotNil(database, "database")
	assert.NotNil(time, "time")
	assert.NotNil(tel, "tel")

	return Store{
		qry:    db.New(database),
		makeTx: db.NewMakeTx(database),
		time:   time,
		tel:    telemetry.NewScopedAPI("store", tel),
	}
}

func failSpan(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func (s Store) routeFromRow(row db.Route) (flights.Route, error) {
	date, err := time.Parse(flights.DateLayout, row.DepartureDate)
	if err != nil {
		return flights.Route{}, fmt.Errorf("route %d departure date: %w", row.ID, err)
	}
	route := flights.Route{
		ID:            row.ID,
		Origin:        flights.AirportCode(row.Origin),
		Destination:   flights.AirportCode(row.Destination),
		DepartureDate: date,
		Email:         row.Email,
		CreatedAt:     time.Unix(row.CreatedAt, 0).In(s.time.Location()),
	}
	if row.TargetPrice.Valid {
		target, err := decimal.NewFromString(row.TargetPrice.String)
		if err != nil {
			return flights.Route{}, fmt.Errorf("route %d target price: %w", row.ID, err)
		}
		route.TargetPrice = decimal.NewNullDecimal(target)
	}
	return route, nil
}

func (s Store) observationFromRow(row db.Observation) (flights.Observation, error) {
	amount, err := decimal.NewFromString(row.Amount)
	if err != nil {
		return flights.Observation{}, fmt.Errorf("observation %d amount: %w", row.ID, err)
	}
	return flights.Observation{
		ID:         row.ID,
		RouteID:    row.RouteID,
		Amount:     amount,
		ObservedAt: time.Unix(row.ObservedAt, 0).In(s.time.Location()),
	}, nil
}

func (s Store) observationsFromRows(rows []db.Observation) ([]flights.Observation, error) {
	out := make([]flights.Observation, 0, len(rows))
	for _, row := range rows {
		o, err := s.observationFromRow(row)
		if err != nil {
			s.tel.ReportBroken(report_db_decode, err)
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

// CreateRoute validates the input and stores it as a new route, returning
// its id.
func (s Store) CreateRoute(ctx context.Context, input flights.NewRoute) (int64, error) {
	ctx, span := tracer.Start(ctx, "CreateRoute")
	defer span.End()

	route, err := input.Validate()
	if err != nil {
		failSpan(span, err)
		return 0, err
	}

	var target sql.NullString
	if route.TargetPrice.Valid {
		target = sql.NullString{String: route.TargetPrice.Decimal.String(), Valid: true}
	}

	id, err := s.qry.CreateRoute(ctx, db.CreateRouteParams{
		Origin:        route.Origin.String(),
		Destination:   route.Destination.String(),
		DepartureDate: route.DepartureDate.Format(flights.DateLayout),
		Email:         route.Email,
		TargetPrice:   target,
		CreatedAt:     s.time.Now().Unix(),
	})
	if err != nil {
		s.tel.ReportBroken(report_db_query, fmt.Errorf("create route: %w", err))
		failSpan(span, err)
		return 0, err
	}
	span.SetAttributes(attribute.Int64("route_id", id))
	return id, nil
}

func (s Store) getRoute(ctx context.Context, qry *db.Queries, id int64) (flights.Route, error) {
	row, err := qry.GetRoute(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return flights.Route{}, &flights.NotFoundError{RouteID: id}
	}
	if err != nil {
		s.tel.ReportBroken(report_db_query, fmt.Errorf("get route: %w", err), id)
		return flights.Route{}, err
	}
	route, err := s.routeFromRow(row)
	if err != nil {
		s.tel.ReportBroken(report_db_decode, err)
		return flights.Route{}, err
	}
	return route, nil
}

// GetRoute returns *flights.NotFoundError when the id does not exist.
func (s Store) GetRoute(ctx context.Context, id int64) (flights.Route, error) {
	ctx, span := tracer.Start(ctx, "GetRoute")
	defer span.End()
	span.SetAttributes(attribute.Int64("route_id", id))

	route, err := s.getRoute(ctx, s.qry, id)
	if err != nil {
		failSpan(span, err)
		return flights.Route{}, err
	}
	return route, nil
}

// ListRoutes returns every route, most recently created first.
func (s Store) ListRoutes(ctx context.Context) ([]flights.Route, error) {
	ctx, span := tracer.Start(ctx, "ListRoutes")
	defer span.End()

	rows, err := s.qry.ListRoutes(ctx)
	if err != nil {
		s.tel.ReportBroken(report_db_query, fmt.Errorf("list routes: %w", err))
		failSpan(span, err)
		return nil, err
	}
	routes := make([]flights.Route, 0, len(rows))
	for _, row := range rows {
		route, err := s.routeFromRow(row)
		if err != nil {
			s.tel.ReportBroken(report_db_decode, err)
			failSpan(span, err)
			return nil, err
		}
		routes = append(routes, route)
	}
	return routes, nil
}

// DeleteRoute removes a route along with all of its observations. Deleting
// an id that does not exist is not an error.
func (s Store) DeleteRoute(ctx context.Context, id int64) error {
	ctx, span := tracer.Start(ctx, "DeleteRoute")
	defer span.End()
	span.SetAttributes(attribute.Int64("route_id", id))

	txqry, discard, commit, err := s.makeTx(ctx)
	if err != nil {
		s.tel.ReportBroken(report_db_tx, err)
		failSpan(span, err)
		return err
	}
	defer discard()

	err = txqry.DeleteRouteObservations(ctx, id)
	if err != nil {
		s.tel.ReportBroken(report_db_query, fmt.Errorf("delete observations: %w", err), id)
		failSpan(span, err)
		return err
	}
	err = txqry.DeleteRoute(ctx, id)
	if err != nil {
		s.tel.ReportBroken(report_db_query, fmt.Errorf("delete route: %w", err), id)
		failSpan(span, err)
		return err
	}

	err = commit()
	if err != nil {
		s.tel.ReportBroken(report_db_tx, err)
		failSpan(span, err)
		return err
	}
	return nil
}

// Appended is the result of AppendObservation.
type Appended struct {
	Observation flights.Observation
	// Previous is the observation that was the latest before this one was
	// inserted, nil if this is the first for the route.
	Previous *flights.Observation
}

func (s Store) observedAt(at *time.Time) time.Time {
	if at == nil {
		return s.time.Now()
	}
	return *at
}

func (s Store) append(ctx context.Context, routeID int64, amount decimal.Decimal, at *time.Time, readPrevious bool) (Appended, error) {
	err := flights.ValidateAmount(amount)
	if err != nil {
		return Appended{}, err
	}

	txqry, discard, commit, err := s.makeTx(ctx)
	if err != nil {
		s.tel.ReportBroken(report_db_tx, err)
		return Appended{}, err
	}
	defer discard()

	_, err = s.getRoute(ctx, txqry, routeID)
	if err != nil {
		return Appended{}, err
	}

	var previous *flights.Observation
	if readPrevious {
		rows, err := txqry.GetLatestObservations(ctx, db.GetLatestObservationsParams{
			RouteID: routeID,
			Limit:   1,
		})
		if err != nil {
			s.tel.ReportBroken(report_db_query, fmt.Errorf("get latest observation: %w", err), routeID)
			return Appended{}, err
		}
		if len(rows) > 0 {
			prev, err := s.observationFromRow(rows[0])
			if err != nil {
				s.tel.ReportBroken(report_db_decode, err)
				return Appended{}, err
			}
			previous = &prev
		}
	}

	observedAt := s.observedAt(at)
	id, err := txqry.CreateObservation(ctx, db.CreateObservationParams{
		RouteID:    routeID,
		Amount:     amount.String(),
		ObservedAt: observedAt.Unix(),
	})
	if err != nil {
		s.tel.ReportBroken(report_db_query, fmt.Errorf("create observation: %w", err), routeID)
		return Appended{}, err
	}

	err = commit()
	if err != nil {
		s.tel.ReportBroken(report_db_tx, err)
		return Appended{}, err
	}

	return Appended{
		Observation: flights.Observation{
			ID:         id,
			RouteID:    routeID,
			Amount:     amount,
			ObservedAt: time.Unix(observedAt.Unix(), 0).In(s.time.Location()),
		},
		Previous: previous,
	}, nil
}

// RecordObservation appends a price to a route's history. A nil `at` means
// now. It returns *flights.NotFoundError for unknown routes and
// *flights.ValidationError for negative amounts.
func (s Store) RecordObservation(ctx context.Context, routeID int64, amount decimal.Decimal, at *time.Time) (int64, error) {
	ctx, span := tracer.Start(ctx, "RecordObservation")
	defer span.End()
	span.SetAttributes(attribute.Int64("route_id", routeID))

	appended, err := s.append(ctx, routeID, amount, at, false)
	if err != nil {
		failSpan(span, err)
		return 0, err
	}
	return appended.Observation.ID, nil
}

// AppendObservation is RecordObservation, but it also returns the
// observation that was the latest before the insert. Both happen in the
// same transaction.
func (s Store) AppendObservation(ctx context.Context, routeID int64, amount decimal.Decimal, at *time.Time) (Appended, error) {
	ctx, span := tracer.Start(ctx, "AppendObservation")
	defer span.End()
	span.SetAttributes(attribute.Int64("route_id", routeID))

	appended, err := s.append(ctx, routeID, amount, at, true)
	if err != nil {
		failSpan(span, err)
		return Appended{}, err
	}
	return appended, nil
}

// LatestObservations returns at most `limit` observations, newest first.
// A limit <= 0 means DefaultLatestLimit.
func (s Store) LatestObservations(ctx context.Context, routeID int64, limit int) ([]flights.Observation, error) {
	ctx, span := tracer.Start(ctx, "LatestObservations")
	defer span.End()
	span.SetAttributes(attribute.Int64("route_id", routeID))

	if limit <= 0 {
		limit = DefaultLatestLimit
	}
	rows, err := s.qry.GetLatestObservations(ctx, db.GetLatestObservationsParams{
		RouteID: routeID,
		Limit:   int64(limit),
	})
	if err != nil {
		s.tel.ReportBroken(report_db_query, fmt.Errorf("get latest observations: %w", err), routeID)
		failSpan(span, err)
		return nil, err
	}
	out, err := s.observationsFromRows(rows)
	if err != nil {
		failSpan(span, err)
		return nil, err
	}
	return out, nil
}

// History returns every observation of a route, newest first. An unknown
// route has an empty history.
func (s Store) History(ctx context.Context, routeID int64) ([]flights.Observation, error) {
	ctx, span := tracer.Start(ctx, "History")
	defer span.End()
	span.SetAttributes(attribute.Int64("route_id", routeID))

	rows, err := s.qry.GetObservations(ctx, routeID)
	if err != nil {
		s.tel.ReportBroken(report_db_query, fmt.Errorf("get observations: %w", err), routeID)
		failSpan(span, err)
		return nil, err
	}
	out, err := s.observationsFromRows(rows)
	if err != nil {
		failSpan(span, err)
		return nil, err
	}
	return out, nil
}
