package utils

import (
	"fmt"
	"io"
	"strconv"

	"flighttracker-backend/internal/flights"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/shopspring/decimal"
)

func NewTable(out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(out)
	return t
}

func ParseRouteID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("route id %q is not a number", arg)
	}
	return id, nil
}

func FormatTarget(target decimal.NullDecimal) string {
	if !target.Valid {
		return "-"
	}
	return target.Decimal.String()
}

func FormatSigned(d decimal.Decimal) string {
	if d.IsPositive() {
		return "+" + d.String()
	}
	return d.String()
}

func RouteRow(r flights.Route) table.Row {
	return table.Row{
		r.ID,
		r.Origin,
		r.Destination,
		r.DepartureDate.Format(flights.DateLayout),
		r.Email,
		FormatTarget(r.TargetPrice),
		r.CreatedAt.Format("2006-01-02 15:04"),
	}
}

var RouteHeader = table.Row{"ID", "From", "To", "Date", "Email", "Target", "Created"}
