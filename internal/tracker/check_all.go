package tracker

import (
	"context"
	"time"

	"flighttracker-backend/internal/flights"
)

// DefaultPause is how long CheckAll waits between routes.
const DefaultPause = time.Second * 2

type RouteResult struct {
	Route  flights.Route
	Result Result
	Err    error
}

// CheckAll checks every route one after another, pausing between them. A
// failing route does not stop the others; the returned error is only set
// when the routes could not be listed or ctx was cancelled, in which case
// the results gathered so far are still returned.
func (t Tracker) CheckAll(ctx context.Context, pause time.Duration) ([]RouteResult, error) {
	ctx, span := tracer.Start(ctx, "CheckAll")
	defer span.End()

	if pause < 0 {
		pause = DefaultPause
	}

	routes, err := t.store.ListRoutes(ctx)
	if err != nil {
		t.tel.ReportBroken(report_tracker_check_all, err)
		return nil, err
	}

	results := make([]RouteResult, 0, len(routes))
	failed := 0
	for i, route := range routes {
		if i > 0 && pause > 0 {
			select {
			case <-ctx.Done():
				return results, ctx.Err()
			case <-time.After(pause):
			}
		}
		if err := ctx.Err(); err != nil {
			return results, err
		}

		result, err := t.CheckPrice(ctx, route.ID)
		if err != nil {
			failed++
		}
		results = append(results, RouteResult{Route: route, Result: result, Err: err})
	}

	t.tel.ReportCount("checked", int64(len(results)))
	t.tel.ReportCount("failed", int64(failed))
	return results, nil
}
