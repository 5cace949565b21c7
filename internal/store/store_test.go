package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"flighttracker-backend/internal/flights"
	"flighttracker-backend/internal/testutil"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (Store, testutil.Setup) {
	res := testutil.SetupDB(t)
	return NewStore(res.DB, res.Clock, res.Tel), res
}

func delToBom() flights.NewRoute {
	return flights.NewRoute{
		Origin:        "DEL",
		Destination:   "BOM",
		DepartureDate: "2025-02-15",
		Email:         "a@b.com",
		TargetPrice:   decimal.NewNullDecimal(decimal.NewFromInt(5000)),
	}
}

func amounts(history []flights.Observation) []string {
	out := []string{}
	for _, o := range history {
		out = append(out, o.Amount.String())
	}
	return out
}

func routeIds(routes []flights.Route) []int64 {
	out := []int64{}
	for _, r := range routes {
		out = append(out, r.ID)
	}
	return out
}

func TestCreateAndList(t *testing.T) {
	store, res := setup(t)
	ctx := context.Background()

	routes, err := store.ListRoutes(ctx)
	require.NoError(t, err)
	require.Empty(t, routes)

	seen := map[int64]bool{}
	var created []int64
	for i := 0; i < 3; i++ {
		id, err := store.CreateRoute(ctx, delToBom())
		require.NoError(t, err)
		require.False(t, seen[id], "id %d reused", id)
		seen[id] = true
		created = append(created, id)

		routes, err := store.ListRoutes(ctx)
		require.NoError(t, err)
		require.Contains(t, routeIds(routes), id)

		res.Clock.Advance(time.Minute)
	}

	routes, err = store.ListRoutes(ctx)
	require.NoError(t, err)
	if diff := cmp.Diff([]int64{created[2], created[1], created[0]}, routeIds(routes)); diff != "" {
		t.Fatal(diff)
	}

	route, err := store.GetRoute(ctx, created[0])
	require.NoError(t, err)
	require.Equal(t, flights.AirportCode("DEL"), route.Origin)
	require.Equal(t, flights.AirportCode("BOM"), route.Destination)
	require.Equal(t, "2025-02-15", route.DepartureDate.Format(flights.DateLayout))
	require.Equal(t, "a@b.com", route.Email)
	require.True(t, route.TargetPrice.Valid)
	require.True(t, route.TargetPrice.Decimal.Equal(decimal.NewFromInt(5000)))
	require.True(t, route.CreatedAt.Equal(testutil.Epoch))
}

func TestIdsNotReusedAfterDelete(t *testing.T) {
	store, _ := setup(t)
	ctx := context.Background()

	first, err := store.CreateRoute(ctx, delToBom())
	require.NoError(t, err)
	require.NoError(t, store.DeleteRoute(ctx, first))

	second, err := store.CreateRoute(ctx, delToBom())
	require.NoError(t, err)
	require.Greater(t, second, first)
}

func TestCreateRouteValidation(t *testing.T) {
	store, _ := setup(t)
	ctx := context.Background()

	input := delToBom()
	input.Origin = "DELHI"
	_, err := store.CreateRoute(ctx, input)
	var verr *flights.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "origin", verr.Field)

	routes, err := store.ListRoutes(ctx)
	require.NoError(t, err)
	require.Empty(t, routes)
}

func TestGetRouteNotFound(t *testing.T) {
	store, _ := setup(t)

	_, err := store.GetRoute(context.Background(), 42)
	var nferr *flights.NotFoundError
	require.ErrorAs(t, err, &nferr)
	require.Equal(t, int64(42), nferr.RouteID)
}

func TestRecordAndLatest(t *testing.T) {
	store, res := setup(t)
	ctx := context.Background()

	id, err := store.CreateRoute(ctx, delToBom())
	require.NoError(t, err)

	obsId, err := store.RecordObservation(ctx, id, decimal.NewFromInt(5500), nil)
	require.NoError(t, err)

	latest, err := store.LatestObservations(ctx, id, 1)
	require.NoError(t, err)
	require.Len(t, latest, 1)
	require.Equal(t, obsId, latest[0].ID)
	require.Equal(t, id, latest[0].RouteID)
	require.True(t, latest[0].Amount.Equal(decimal.NewFromInt(5500)))
	require.True(t, latest[0].ObservedAt.Equal(res.Clock.Now()))

	res.Clock.Advance(time.Hour)
	at := res.Clock.Now()
	_, err = store.RecordObservation(ctx, id, decimal.RequireFromString("4999.50"), &at)
	require.NoError(t, err)
	_, err = store.RecordObservation(ctx, id, decimal.NewFromInt(6000), &at)
	require.NoError(t, err)

	// same timestamp, insertion order breaks the tie
	latest, err = store.LatestObservations(ctx, id, 0)
	require.NoError(t, err)
	if diff := cmp.Diff([]string{"6000", "4999.5"}, amounts(latest)); diff != "" {
		t.Fatal(diff)
	}

	history, err := store.History(ctx, id)
	require.NoError(t, err)
	if diff := cmp.Diff([]string{"6000", "4999.5", "5500"}, amounts(history)); diff != "" {
		t.Fatal(diff)
	}
}

func TestHistoryOrdersByObservedAt(t *testing.T) {
	store, _ := setup(t)
	ctx := context.Background()

	id, err := store.CreateRoute(ctx, delToBom())
	require.NoError(t, err)

	later := testutil.Epoch.Add(time.Hour)
	earlier := testutil.Epoch.Add(-time.Hour)
	_, err = store.RecordObservation(ctx, id, decimal.NewFromInt(100), &later)
	require.NoError(t, err)
	_, err = store.RecordObservation(ctx, id, decimal.NewFromInt(200), &earlier)
	require.NoError(t, err)

	history, err := store.History(ctx, id)
	require.NoError(t, err)
	if diff := cmp.Diff([]string{"100", "200"}, amounts(history)); diff != "" {
		t.Fatal(diff)
	}
}

func TestRecordObservationErrors(t *testing.T) {
	store, _ := setup(t)
	ctx := context.Background()

	_, err := store.RecordObservation(ctx, 7, decimal.NewFromInt(100), nil)
	var nferr *flights.NotFoundError
	require.ErrorAs(t, err, &nferr)

	id, err := store.CreateRoute(ctx, delToBom())
	require.NoError(t, err)
	_, err = store.RecordObservation(ctx, id, decimal.NewFromInt(-1), nil)
	var verr *flights.ValidationError
	require.ErrorAs(t, err, &verr)

	history, err := store.History(ctx, id)
	require.NoError(t, err)
	require.Empty(t, history)
}

func TestAppendObservation(t *testing.T) {
	store, res := setup(t)
	ctx := context.Background()

	id, err := store.CreateRoute(ctx, delToBom())
	require.NoError(t, err)

	first, err := store.AppendObservation(ctx, id, decimal.NewFromInt(5500), nil)
	require.NoError(t, err)
	require.Nil(t, first.Previous)

	res.Clock.Advance(6 * time.Hour)
	second, err := store.AppendObservation(ctx, id, decimal.NewFromInt(4800), nil)
	require.NoError(t, err)
	require.NotNil(t, second.Previous)
	require.Equal(t, first.Observation.ID, second.Previous.ID)
	require.True(t, second.Previous.Amount.Equal(decimal.NewFromInt(5500)))
	require.True(t, second.Observation.ObservedAt.Equal(res.Clock.Now()))

	_, err = store.AppendObservation(ctx, id+1, decimal.NewFromInt(1), nil)
	require.True(t, errors.As(err, new(*flights.NotFoundError)))
}

func TestDeleteRoute(t *testing.T) {
	store, _ := setup(t)
	ctx := context.Background()

	keep, err := store.CreateRoute(ctx, delToBom())
	require.NoError(t, err)
	drop, err := store.CreateRoute(ctx, delToBom())
	require.NoError(t, err)

	for _, id := range []int64{keep, drop} {
		_, err = store.RecordObservation(ctx, id, decimal.NewFromInt(5500), nil)
		require.NoError(t, err)
	}

	require.NoError(t, store.DeleteRoute(ctx, drop))

	routes, err := store.ListRoutes(ctx)
	require.NoError(t, err)
	require.Equal(t, []int64{keep}, routeIds(routes))

	history, err := store.History(ctx, drop)
	require.NoError(t, err)
	require.Empty(t, history)

	history, err = store.History(ctx, keep)
	require.NoError(t, err)
	require.Len(t, history, 1)

	// deleting something that is gone (or never existed) is a no-op
	require.NoError(t, store.DeleteRoute(ctx, drop))
	require.NoError(t, store.DeleteRoute(ctx, 9999))
}

func TestConcurrentAppendsChain(t *testing.T) {
	store, _ := setup(t)
	ctx := context.Background()
	id, err := store.CreateRoute(ctx, delToBom())
	require.NoError(t, err)

	const n = 8
	appended := make([]Appended, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			appended[i], errs[i] = store.AppendObservation(ctx, id, decimal.NewFromInt(int64(6000-i*100)), nil)
		}(i)
	}
	wg.Wait()

	history, err := store.History(ctx, id)
	require.NoError(t, err)
	require.Len(t, history, n)

	// every append saw exactly the observation inserted right before it
	position := map[int64]int{}
	for i, o := range history {
		position[o.ID] = i
	}
	firsts := 0
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		pos, ok := position[appended[i].Observation.ID]
		require.True(t, ok)
		if pos == n-1 {
			require.Nil(t, appended[i].Previous)
			firsts++
			continue
		}
		require.NotNil(t, appended[i].Previous)
		require.Equal(t, history[pos+1].ID, appended[i].Previous.ID)
		require.True(t, history[pos+1].Amount.Equal(appended[i].Previous.Amount))
	}
	require.Equal(t, 1, firsts)
}
