package supervisor_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	businesshealth "github.com/vitaliisemenov/healthd/internal/business/health"
	core "github.com/vitaliisemenov/healthd/internal/core/health"
	infrahealth "github.com/vitaliisemenov/healthd/internal/infrastructure/health"
	"github.com/vitaliisemenov/healthd/internal/supervisor"
)

type recordingNotifier struct {
	calls int
}

func (n *recordingNotifier) Notify(_ context.Context, _ core.NotificationRequest) core.NotifierResult {
	n.calls++
	return core.NotifierResult{ExitCode: 0}
}

type fixedExpr struct {
	value  float64
	failed bool
}

func (f fixedExpr) Eval(_ context.Context, _ map[string]float64) core.ExpressionResult {
	return core.ExpressionResult{Value: f.value, Failed: f.failed}
}
func (f fixedExpr) Source() string { return "fixed" }

func newRunnableChart(now time.Time) *core.Chart {
	return &core.Chart{
		ID:                "system.cpu",
		Linked:            true,
		Enabled:           true,
		UpdateEvery:       1,
		LastCollectedTime: now,
		CounterDone:       5,
		FirstTime:         now.Add(-time.Hour),
		LastTime:          now,
	}
}

func TestMainLoop_Tick_RaisesAndDispatchesInSameTick(t *testing.T) {
	t.Parallel()

	now := time.Now()
	host := core.NewHost("h1", "host1")
	host.Charts["system.cpu"] = newRunnableChart(now)

	a := &core.Alarm{
		ID:          1,
		Name:        "cpu_usage",
		ChartID:     "system.cpu",
		Host:        "host1",
		Context:     "system.cpu",
		UpdateEvery: 1,
		WarnExpr:    fixedExpr{value: 1},
		Status:      core.StatusClear,
	}
	require.NoError(t, host.AddAlarm(a))

	log := infrahealth.NewAlarmLog(100)
	notifier := &recordingNotifier{}
	dispatcher := businesshealth.NewDispatcher(log, notifier)

	loop := supervisor.NewMainLoop(nil)
	loop.Hosts = []*core.Host{host}
	loop.Evaluator = businesshealth.NewEvaluator(nil)
	loop.Transition = businesshealth.NewTransitionEngine()
	loop.Log = log
	loop.Dispatcher = dispatcher

	loop.Tick(context.Background(), now)

	assert.Equal(t, core.StatusWarning, a.Status)
	assert.Equal(t, 1, notifier.calls)
	assert.Equal(t, 1, log.Len())
}

func TestMainLoop_Tick_SkipsHibernatingHost(t *testing.T) {
	t.Parallel()

	now := time.Now()
	host := core.NewHost("h1", "host1")
	host.Charts["system.cpu"] = newRunnableChart(now)
	host.Postpone(now, time.Hour)

	a := &core.Alarm{
		ID:          1,
		ChartID:     "system.cpu",
		UpdateEvery: 1,
		WarnExpr:    fixedExpr{value: 1},
		Status:      core.StatusClear,
	}
	require.NoError(t, host.AddAlarm(a))

	log := infrahealth.NewAlarmLog(100)
	loop := supervisor.NewMainLoop(nil)
	loop.Hosts = []*core.Host{host}
	loop.Evaluator = businesshealth.NewEvaluator(nil)
	loop.Transition = businesshealth.NewTransitionEngine()
	loop.Log = log

	loop.Tick(context.Background(), now)

	assert.Equal(t, core.StatusClear, a.Status)
	assert.Equal(t, 0, log.Len())
}

func TestMainLoop_Tick_SkipsDisabledAlarm(t *testing.T) {
	t.Parallel()

	now := time.Now()
	host := core.NewHost("h1", "host1")
	host.Charts["system.cpu"] = newRunnableChart(now)

	a := &core.Alarm{
		ID:          1,
		Name:        "cpu_usage",
		ChartID:     "system.cpu",
		UpdateEvery: 1,
		WarnExpr:    fixedExpr{value: 1},
		Status:      core.StatusClear,
	}
	require.NoError(t, host.AddAlarm(a))

	store := core.NewSilencerStore()
	store.Replace(core.SilenceDisableAlarms, true, nil)

	log := infrahealth.NewAlarmLog(100)
	loop := supervisor.NewMainLoop(nil)
	loop.Hosts = []*core.Host{host}
	loop.Evaluator = businesshealth.NewEvaluator(nil)
	loop.Transition = businesshealth.NewTransitionEngine()
	loop.Log = log
	loop.SilencerMatcher = businesshealth.NewSilencerMatcher(0, nil)
	loop.SilencerStore = store

	loop.Tick(context.Background(), now)

	assert.Equal(t, core.StatusClear, a.Status)
	assert.Equal(t, 0, log.Len())
}
