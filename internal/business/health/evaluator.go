package health

import (
	"context"
	"math"
	"time"

	core "github.com/vitaliisemenov/healthd/internal/core/health"
)

// Evaluator runs the lookup and calculation phases of a single alarm's
// tick (spec §3): fetch the aggregated time-series value, then run it
// through the calculation expression, recording db-error/db-nan/calc-error
// flags along the way exactly as original_source's health_main lookup/calc
// block does.
type Evaluator struct {
	Lookup core.TimeSeriesLookup
}

// NewEvaluator returns an Evaluator backed by the given lookup collaborator.
func NewEvaluator(lookup core.TimeSeriesLookup) *Evaluator {
	return &Evaluator{Lookup: lookup}
}

// Evaluate updates a.Value (and a.OldValue) in place and returns the
// flags that should be merged into a.Flags for this tick's db/calc state.
func (e *Evaluator) Evaluate(ctx context.Context, a *core.Alarm, now time.Time) core.Flags {
	var flags core.Flags

	// rc->old_value = rc->value unconditionally, before anything below can
	// fail (spec §4.3/§7, health.c:619,636,662,684) — a stale a.Value must
	// never leak into this tick's warning/critical expressions.
	a.OldValue = a.Value

	value := 0.0
	haveValue := false

	if a.Lookup.ChartID != "" && e.Lookup != nil {
		res := e.Lookup.Query(ctx, a.Lookup, now)
		switch {
		case res.Err != nil:
			flags = flags.Set(core.FlagDBError)
			a.Value = math.NaN()
			return flags
		case !res.OK || math.IsNaN(res.Value) || math.IsInf(res.Value, 0):
			flags = flags.Set(core.FlagDBNaN)
			a.Value = math.NaN()
			return flags
		default:
			value = res.Value
			haveValue = true
		}
	}

	switch {
	case a.CalcExpr != nil:
		vars := map[string]float64{"this": value}
		result := a.CalcExpr.Eval(ctx, vars)
		if result.Failed {
			flags = flags.Set(core.FlagCalcError)
			a.Value = math.NaN()
			return flags
		}
		a.Value = result.Value
	case haveValue:
		a.Value = value
	}

	return flags
}
