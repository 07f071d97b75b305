package health_test

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	businesshealth "github.com/vitaliisemenov/healthd/internal/business/health"
	core "github.com/vitaliisemenov/healthd/internal/core/health"
)

func TestEvaluator_Evaluate_LookupAndCalc(t *testing.T) {
	t.Parallel()

	lookup := fakeLookup{result: core.LookupResult{Value: 42, OK: true}}
	e := businesshealth.NewEvaluator(lookup)

	a := &core.Alarm{
		Lookup:   core.LookupParams{ChartID: "system.cpu"},
		CalcExpr: fakeExpr{value: 84},
	}

	flags := e.Evaluate(context.Background(), a, time.Now())

	assert.Equal(t, core.Flags(0), flags)
	assert.Equal(t, 84.0, a.Value)
}

func TestEvaluator_Evaluate_LookupError(t *testing.T) {
	t.Parallel()

	lookup := fakeLookup{result: core.LookupResult{Err: assertErr}}
	e := businesshealth.NewEvaluator(lookup)

	a := &core.Alarm{Lookup: core.LookupParams{ChartID: "system.cpu"}, Value: 99}

	flags := e.Evaluate(context.Background(), a, time.Now())

	assert.True(t, flags.Has(core.FlagDBError))
	assert.True(t, math.IsNaN(a.Value))
	assert.Equal(t, 99.0, a.OldValue)
}

func TestEvaluator_Evaluate_LookupNaN(t *testing.T) {
	t.Parallel()

	lookup := fakeLookup{result: core.LookupResult{OK: false}}
	e := businesshealth.NewEvaluator(lookup)

	a := &core.Alarm{Lookup: core.LookupParams{ChartID: "system.cpu"}, Value: 99}

	flags := e.Evaluate(context.Background(), a, time.Now())

	assert.True(t, flags.Has(core.FlagDBNaN))
	assert.True(t, math.IsNaN(a.Value))
	assert.Equal(t, 99.0, a.OldValue)
}

func TestEvaluator_Evaluate_CalcFailure(t *testing.T) {
	t.Parallel()

	e := businesshealth.NewEvaluator(nil)
	a := &core.Alarm{CalcExpr: fakeExpr{failed: true}, Value: 99}

	flags := e.Evaluate(context.Background(), a, time.Now())

	assert.True(t, flags.Has(core.FlagCalcError))
	assert.True(t, math.IsNaN(a.Value))
	assert.Equal(t, 99.0, a.OldValue)
}

var assertErr = &staticErr{"lookup failed"}

type staticErr struct{ msg string }

func (e *staticErr) Error() string { return e.msg }
