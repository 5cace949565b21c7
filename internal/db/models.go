package db

import (
	"database/sql"
)

type Observation struct {
	ID         int64
	RouteID    int64
	Amount     string
	ObservedAt int64
}

type Route struct {
	ID            int64
	Origin        string
	Destination   string
	DepartureDate string
	Email         string
	TargetPrice   sql.NullString
	CreatedAt     int64
}
