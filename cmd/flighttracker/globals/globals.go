package globals

import (
	"context"

	"flighttracker-backend/internal/app"
	"flighttracker-backend/internal/components/telemetry"
)

type keyType int

const key keyType = 0

type Value struct {
	App app.App
	Tel telemetry.API
}

func Set(ctx context.Context, value *Value) context.Context {
	return context.WithValue(ctx, key, value)
}

func Get(ctx context.Context) *Value {
	return ctx.Value(key).(*Value)
}
