package flights

import (
	"time"

	"github.com/shopspring/decimal"
)

type EventKind int

const (
	// EventDrop fires when a price is strictly lower than the observation
	// recorded right before it.
	EventDrop EventKind = iota
	// EventTargetReached fires when a price is at or below the route's
	// target.
	EventTargetReached
)

func (k EventKind) String() string {
	switch k {
	case EventDrop:
		return "drop"
	case EventTargetReached:
		return "target_reached"
	}
	return "unknown"
}

type Event struct {
	Kind    EventKind
	Route   Route
	Current decimal.Decimal
	// only set for EventDrop
	Previous decimal.NullDecimal
	// only set for EventTargetReached
	Target decimal.NullDecimal
	// EventDrop: previous - current
	// EventTargetReached: target - current
	Magnitude  decimal.Decimal
	ObservedAt time.Time
}

// DetectEvents compares a freshly recorded observation against the one
// before it (nil for the first observation of a route) and the route's
// target. A drop event, if any, always comes first.
func DetectEvents(route Route, previous *Observation, current Observation) []Event {
	var events []Event

	if previous != nil && current.Amount.LessThan(previous.Amount) {
		events = append(events, Event{
			Kind:       EventDrop,
			Route:      route,
			Current:    current.Amount,
			Previous:   decimal.NewNullDecimal(previous.Amount),
			Magnitude:  previous.Amount.Sub(current.Amount),
			ObservedAt: current.ObservedAt,
		})
	}

	if route.TargetPrice.Valid && current.Amount.LessThanOrEqual(route.TargetPrice.Decimal) {
		events = append(events, Event{
			Kind:       EventTargetReached,
			Route:      route,
			Current:    current.Amount,
			Target:     route.TargetPrice,
			Magnitude:  route.TargetPrice.Decimal.Sub(current.Amount),
			ObservedAt: current.ObservedAt,
		})
	}

	return events
}
