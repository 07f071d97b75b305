package health_test

import (
	"context"
	"time"

	core "github.com/vitaliisemenov/healthd/internal/core/health"
)

// fakeExpr is a stub core.Expression returning a fixed value or failure.
type fakeExpr struct {
	value  float64
	failed bool
	source string
}

func (f fakeExpr) Eval(_ context.Context, _ map[string]float64) core.ExpressionResult {
	return core.ExpressionResult{Value: f.value, Failed: f.failed}
}

func (f fakeExpr) Source() string { return f.source }

// fakeLookup is a stub core.TimeSeriesLookup returning a fixed result.
type fakeLookup struct {
	result core.LookupResult
}

func (f fakeLookup) Query(_ context.Context, _ core.LookupParams, _ time.Time) core.LookupResult {
	return f.result
}
