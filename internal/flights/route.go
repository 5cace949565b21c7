package flights

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is how departure dates are written everywhere, in storage,
// urls and on the command line.
const DateLayout = time.DateOnly

// AirportCode is an upper-case three letter IATA code.
type AirportCode string

// ParseAirportCode trims and upper-cases s, then checks that it is three
// ASCII letters.
func ParseAirportCode(field, s string) (AirportCode, error) {
	code := strings.ToUpper(strings.TrimSpace(s))
	err := validate.Var(code, AirportCodeRule)
	if err != nil {
		return "", fieldError(field, code, err)
	}
	return AirportCode(code), nil
}

func (c AirportCode) String() string {
	return string(c)
}

type Route struct {
	ID            int64
	Origin        AirportCode
	Destination   AirportCode
	DepartureDate time.Time
	Email         string
	TargetPrice   decimal.NullDecimal
	CreatedAt     time.Time
}

func (r Route) String() string {
	return fmt.Sprintf("%s → %s on %s", r.Origin, r.Destination, r.DepartureDate.Format(DateLayout))
}

type Observation struct {
	ID         int64
	RouteID    int64
	Amount     decimal.Decimal
	ObservedAt time.Time
}

// NewRoute is the unvalidated input for creating a route.
type NewRoute struct {
	Origin        string
	Destination   string
	DepartureDate string
	Email         string
	TargetPrice   decimal.NullDecimal
}

type routeFields struct {
	Origin        string `json:"origin" validate:"required,len=3,alpha"`
	Destination   string `json:"destination" validate:"required,len=3,alpha"`
	DepartureDate string `json:"departure_date" validate:"required,datetime=2006-01-02"`
	Email         string `json:"email" validate:"required,email"`
}

// Validate normalizes the input into a Route without an id or creation
// time, or returns the first *ValidationError found.
func (n NewRoute) Validate() (Route, error) {
	fields := routeFields{
		Origin:        strings.ToUpper(strings.TrimSpace(n.Origin)),
		Destination:   strings.ToUpper(strings.TrimSpace(n.Destination)),
		DepartureDate: strings.TrimSpace(n.DepartureDate),
		Email:         strings.TrimSpace(n.Email),
	}
	err := validate.Struct(fields)
	if err != nil {
		return Route{}, validationError(err)
	}
	date, err := time.Parse(DateLayout, fields.DepartureDate)
	if err != nil {
		return Route{}, &ValidationError{Field: "departure_date", Reason: fmt.Sprintf("%q is not a YYYY-MM-DD date", fields.DepartureDate)}
	}

	if n.TargetPrice.Valid && !n.TargetPrice.Decimal.IsPositive() {
		return Route{}, &ValidationError{Field: "target_price", Reason: "must be greater than zero"}
	}

	return Route{
		Origin:        AirportCode(fields.Origin),
		Destination:   AirportCode(fields.Destination),
		DepartureDate: date,
		Email:         fields.Email,
		TargetPrice:   n.TargetPrice,
	}, nil
}

// ValidateAmount rejects negative prices.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return &ValidationError{Field: "amount", Reason: fmt.Sprintf("%s is negative", amount)}
	}
	return nil
}
