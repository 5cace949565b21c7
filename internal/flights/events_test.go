package flights

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func obs(amount int64) Observation {
	return Observation{
		Amount:     decimal.NewFromInt(amount),
		ObservedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func kinds(events []Event) []EventKind {
	out := []EventKind{}
	for _, e := range events {
		out = append(out, e.Kind)
	}
	return out
}

func TestDetectDrop(t *testing.T) {
	route := Route{ID: 1, Origin: "DEL", Destination: "BOM"}

	prev := obs(5000)
	events := DetectEvents(route, &prev, obs(4000))
	require.Equal(t, []EventKind{EventDrop}, kinds(events))
	require.True(t, events[0].Magnitude.Equal(decimal.NewFromInt(1000)))
	require.True(t, events[0].Previous.Decimal.Equal(decimal.NewFromInt(5000)))

	prev = obs(4000)
	require.Empty(t, DetectEvents(route, &prev, obs(4000)))
	require.Empty(t, DetectEvents(route, &prev, obs(4500)))
}

func TestDetectTarget(t *testing.T) {
	route := Route{
		ID:          1,
		TargetPrice: decimal.NewNullDecimal(decimal.NewFromInt(5000)),
	}

	events := DetectEvents(route, nil, obs(5000))
	require.Equal(t, []EventKind{EventTargetReached}, kinds(events))
	require.True(t, events[0].Magnitude.IsZero())

	require.Empty(t, DetectEvents(route, nil, obs(5001)))

	events = DetectEvents(route, nil, obs(4200))
	require.True(t, events[0].Magnitude.Equal(decimal.NewFromInt(800)))
}

func TestFirstObservationNeverDrops(t *testing.T) {
	withTarget := Route{TargetPrice: decimal.NewNullDecimal(decimal.NewFromInt(100))}
	withoutTarget := Route{}

	require.Empty(t, DetectEvents(withoutTarget, nil, obs(1)))
	require.Equal(t, []EventKind{EventTargetReached}, kinds(DetectEvents(withTarget, nil, obs(1))))
}

func TestDetectBoth(t *testing.T) {
	route := Route{TargetPrice: decimal.NewNullDecimal(decimal.NewFromInt(5000))}
	prev := obs(5500)

	events := DetectEvents(route, &prev, obs(4800))
	require.Equal(t, []EventKind{EventDrop, EventTargetReached}, kinds(events))
	require.True(t, events[0].Magnitude.Equal(decimal.NewFromInt(700)))
	require.True(t, events[1].Magnitude.Equal(decimal.NewFromInt(200)))
}
