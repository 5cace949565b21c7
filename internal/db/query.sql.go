package db

import (
	"context"
	"database/sql"
)

const createObservation = `-- name: CreateObservation :one
insert into observations (route_id, amount, observed_at)
values (?, ?, ?)
returning id
`

type CreateObservationParams struct {
	RouteID    int64
	Amount     string
	ObservedAt int64
}

func (q *Queries) CreateObservation(ctx context.Context, arg CreateObservationParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, createObservation, arg.RouteID, arg.Amount, arg.ObservedAt)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const createRoute = `-- name: CreateRoute :one
insert into routes (origin, destination, departure_date, email, target_price, created_at)
values (?, ?, ?, ?, ?, ?)
returning id
`

type CreateRouteParams struct {
	Origin        string
	Destination   string
	DepartureDate string
	Email         string
	TargetPrice   sql.NullString
	CreatedAt     int64
}

func (q *Queries) CreateRoute(ctx context.Context, arg CreateRouteParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, createRoute,
		arg.Origin,
		arg.Destination,
		arg.DepartureDate,
		arg.Email,
		arg.TargetPrice,
		arg.CreatedAt,
	)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const deleteRoute = `-- name: DeleteRoute :exec
delete from routes where id = ?
`

func (q *Queries) DeleteRoute(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deleteRoute, id)
	return err
}

const deleteRouteObservations = `-- name: DeleteRouteObservations :exec
delete from observations where route_id = ?
`

func (q *Queries) DeleteRouteObservations(ctx context.Context, routeID int64) error {
	_, err := q.db.ExecContext(ctx, deleteRouteObservations, routeID)
	return err
}

const getLatestObservations = `-- name: GetLatestObservations :many
select id, route_id, amount, observed_at from observations
where route_id = ?
order by observed_at desc, id desc
limit ?
`

type GetLatestObservationsParams struct {
	RouteID int64
	Limit   int64
}

func (q *Queries) GetLatestObservations(ctx context.Context, arg GetLatestObservationsParams) ([]Observation, error) {
	rows, err := q.db.QueryContext(ctx, getLatestObservations, arg.RouteID, arg.Limit)
	if err != nil {
		return nil, err
	}
	return scanObservations(rows)
}

const getObservations = `-- name: GetObservations :many
select id, route_id, amount, observed_at from observations
where route_id = ?
order by observed_at desc, id desc
`

func (q *Queries) GetObservations(ctx context.Context, routeID int64) ([]Observation, error) {
	rows, err := q.db.QueryContext(ctx, getObservations, routeID)
	if err != nil {
		return nil, err
	}
	return scanObservations(rows)
}

func scanObservations(rows *sql.Rows) ([]Observation, error) {
	defer rows.Close()
	var items []Observation
	for rows.Next() {
		var i Observation
		if err := rows.Scan(
			&i.ID,
			&i.RouteID,
			&i.Amount,
			&i.ObservedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getRoute = `-- name: GetRoute :one
select id, origin, destination, departure_date, email, target_price, created_at from routes where id = ?
`

func (q *Queries) GetRoute(ctx context.Context, id int64) (Route, error) {
	row := q.db.QueryRowContext(ctx, getRoute, id)
	var i Route
	err := row.Scan(
		&i.ID,
		&i.Origin,
		&i.Destination,
		&i.DepartureDate,
		&i.Email,
		&i.TargetPrice,
		&i.CreatedAt,
	)
	return i, err
}

const listRoutes = `-- name: ListRoutes :many
select id, origin, destination, departure_date, email, target_price, created_at from routes order by created_at desc, id desc
`

func (q *Queries) ListRoutes(ctx context.Context) ([]Route, error) {
	rows, err := q.db.QueryContext(ctx, listRoutes)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Route
	for rows.Next() {
		var i Route
		if err := rows.Scan(
			&i.ID,
			&i.Origin,
			&i.Destination,
			&i.DepartureDate,
			&i.Email,
			&i.TargetPrice,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
