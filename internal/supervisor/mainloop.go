// Package supervisor wires the business and infrastructure layers of the
// health evaluation engine together into the per-tick orchestrator
// described in spec §1: the Main Loop.
package supervisor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	businesshealth "github.com/vitaliisemenov/healthd/internal/business/health"
	core "github.com/vitaliisemenov/healthd/internal/core/health"
	infrahealth "github.com/vitaliisemenov/healthd/internal/infrastructure/health"
	"github.com/vitaliisemenov/healthd/pkg/metrics"
)

// MainLoop is the per-tick supervisor: for every host, it runs the
// lookup/calc/decide phases over every runnable alarm, appends log
// entries for every status change, dispatches notifications for newly
// appended entries, runs the repeating-alarms phase, and sleeps until the
// next scheduled update — all grounded on original_source's health_main.
type MainLoop struct {
	Hosts []*core.Host

	Evaluator       *businesshealth.Evaluator
	Transition      *businesshealth.TransitionEngine
	SilencerMatcher *businesshealth.SilencerMatcher
	SilencerStore   *core.SilencerStore

	Log        *infrahealth.AlarmLog
	Dispatcher *businesshealth.Dispatcher

	Reload        *businesshealth.ReloadCoordinator
	SilencersPath string

	Suspension *businesshealth.SuspensionDetector

	MinRunEvery      time.Duration
	HibernationDelay time.Duration

	// Enabled gates the whole loop off (the health "enabled" setting).
	// When false, Tick logs once (not on every tick) and evaluates and
	// dispatches nothing.
	Enabled bool

	Metrics *metrics.MetricsRegistry
	Logger  *slog.Logger

	disableLogged sync.Once
	hibernating   map[string]bool

	monotonicStart time.Time
}

// NewMainLoop returns a MainLoop ready to Run. Callers populate Hosts and
// the collaborator fields before calling Run.
func NewMainLoop(logger *slog.Logger) *MainLoop {
	if logger == nil {
		logger = slog.Default()
	}
	return &MainLoop{
		Logger:         logger,
		MinRunEvery:    time.Second,
		Enabled:        true,
		hibernating:    make(map[string]bool),
		Suspension:     businesshealth.NewSuspensionDetector(),
		monotonicStart: timeNow(),
	}
}

func timeNow() time.Time { return time.Now() }

// ReloadSilencers reloads SilencersPath into SilencerStore, the entry point
// the SIGHUP handler calls.
func (m *MainLoop) ReloadSilencers() error {
	if m.Reload == nil || m.SilencerStore == nil {
		return nil
	}
	return m.Reload.ReloadSilencers(m.SilencerStore, m.SilencersPath)
}

// ReloadHosts resets every host's pending hysteresis state and flags the
// log's entries as updated so they are not notified, the per-host half of
// the SIGHUP reload.
func (m *MainLoop) ReloadHosts() {
	if m.Reload == nil {
		return
	}
	for _, h := range m.Hosts {
		m.Reload.ReloadHost(h, m.Log)
	}
}

// Run blocks, ticking until ctx is canceled.
func (m *MainLoop) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		start := time.Now()
		nextRun := m.Tick(ctx, start)
		if m.Metrics != nil {
			m.Metrics.Supervisor().TickDuration.Observe(time.Since(start).Seconds())
		}

		sleep := nextRun.Sub(time.Now())
		if sleep < 0 {
			sleep = 0
		}
		if sleep > m.MinRunEvery {
			sleep = m.MinRunEvery
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(sleep):
		}
	}
}

// Tick runs one full evaluation pass over every host and returns the
// earliest time any alarm next needs re-evaluation. Exported so tests and
// tools can step the engine deterministically instead of only through Run.
func (m *MainLoop) Tick(ctx context.Context, now time.Time) time.Time {
	if !m.Enabled {
		m.disableLogged.Do(func() {
			m.Logger.Info("health checks are disabled")
		})
		return now.Add(m.MinRunEvery)
	}

	if m.SilencerStore != nil {
		if stype, allAlarms, _ := m.SilencerStore.Snapshot(); allAlarms && stype == core.SilenceDisableAlarms {
			m.disableLogged.Do(func() {
				m.Logger.Info("skipping health checks, all alarms are disabled")
			})
		}
	}

	resumed := m.Suspension.Sample(now, time.Since(m.monotonicStart))
	if resumed {
		if m.Metrics != nil {
			m.Metrics.Supervisor().SuspendResumeTotal.Inc()
		}
		for _, h := range m.Hosts {
			h.Postpone(now, m.HibernationDelay)
			m.Logger.Info("postponing health checks after detected suspend/resume", "host", h.Name)
		}
	}

	if m.MinRunEvery < time.Second {
		m.MinRunEvery = time.Second
	}
	nextRun := now.Add(m.MinRunEvery)

	hibernatingCount := 0

	for _, host := range m.Hosts {
		if ctx.Err() != nil {
			return nextRun
		}

		if host.Hibernating(now) {
			hibernatingCount++
			m.hibernating[host.ID] = true
			continue
		}
		if m.hibernating[host.ID] {
			delete(m.hibernating, host.ID)
			m.Logger.Info("resuming health checks", "host", host.Name)
		}

		hostNext := m.tickHost(ctx, host, now)
		if hostNext.Before(nextRun) {
			nextRun = hostNext
		}
	}

	if m.Metrics != nil {
		m.Metrics.Supervisor().HibernatingHosts.Set(float64(hibernatingCount))
	}

	return nextRun
}

func (m *MainLoop) tickHost(ctx context.Context, host *core.Host, now time.Time) time.Time {
	nextRun := now.Add(m.MinRunEvery)

	host.EachAlarm(func(a *core.Alarm) {
		if m.SilencerMatcher != nil && m.SilencerStore != nil {
			if m.SilencerMatcher.Apply(m.SilencerStore, a) {
				return
			}
		}

		m.evaluateOne(ctx, host, a, now)

		if a.NextRun.After(now) && a.NextRun.Before(nextRun) {
			nextRun = a.NextRun
		}
	})

	m.dispatchPending(ctx, host, now)

	return nextRun
}

func (m *MainLoop) evaluateOne(ctx context.Context, host *core.Host, a *core.Alarm, now time.Time) {
	chart := host.Charts[a.ChartID]

	ok, next := businesshealth.Runnable(chart, a, now)
	a.NextRun = next
	if !ok {
		return
	}

	flags := m.Evaluator.Evaluate(ctx, a, now)
	a.Flags = a.Flags.Set(flags)

	prevStatus := a.Status
	prevChangeAt := a.LastStatusChange
	wasNonClear := a.LastNonClear

	result := m.Transition.Decide(ctx, a, now)
	a.Flags = a.Flags.Set(result.Flags)

	a.NextUpdate = now.Add(time.Duration(a.UpdateEvery) * time.Second)
	a.NextRun = a.NextUpdate

	if result.Changed {
		duration := now.Sub(prevChangeAt)
		nonClearDur := time.Duration(0)
		if prevStatus != core.StatusClear {
			nonClearDur = now.Sub(wasNonClear)
		}
		m.Log.Append(a, now, duration, nonClearDur, result.Delay)
		if m.Metrics != nil {
			m.Metrics.Engine().TransitionsTotal.WithLabelValues(a.Status.String()).Inc()
			m.Metrics.Engine().AlarmLogSize.Set(float64(m.Log.Len()))
		}
	}

	m.repeatIfDue(ctx, host, a, now)
}

// repeatIfDue implements the repeating-alarms phase (spec §5): an alarm
// held in a non-clear status is re-notified on its own cadence,
// independent of whether its status actually changed this tick.
func (m *MainLoop) repeatIfDue(ctx context.Context, host *core.Host, a *core.Alarm, now time.Time) {
	var interval time.Duration
	var last *time.Time

	switch a.Status {
	case core.StatusWarning:
		interval = a.Repeat.WarningInterval
		last = &a.LastRepeatWarning
	case core.StatusCritical:
		interval = a.Repeat.CriticalInterval
		last = &a.LastRepeatCritical
	default:
		return
	}

	if interval <= 0 {
		return
	}
	if now.Sub(*last) < interval {
		return
	}

	entry := m.Log.AppendEphemeral(a, now)
	entry.OldStatus = a.Status
	entry.NewStatus = a.Status
	*last = now

	if m.Dispatcher != nil {
		result := m.Dispatcher.Dispatch(ctx, host, a, entry, now)
		if !result.Dispatched() && m.Metrics != nil {
			m.Metrics.Engine().DispatchTotal.WithLabelValues("repeat_suppressed").Inc()
		}
	}
}

// dispatchPending scans the log for entries appended since the host's
// last processed unique_id and dispatches each in order, advancing the
// cursor as it goes — the cursor only ever moves forward, satisfying the
// monotonicity property expected of health_last_processed_id.
func (m *MainLoop) dispatchPending(ctx context.Context, host *core.Host, now time.Time) {
	pending := m.Log.Since(host.LastProcessedID)
	if len(pending) == 0 {
		return
	}

	alarmsByID := make(map[uint32]*core.Alarm)
	host.EachAlarm(func(a *core.Alarm) { alarmsByID[a.ID] = a })

	for _, entry := range pending {
		if entry.Flags.Has(core.FlagUpdated) {
			// Superseded by a reload: never notified.
			host.LastProcessedID = entry.UniqueID
			continue
		}
		if now.Before(entry.DelayUpToTimestamp) {
			// Not yet due (spec §4.6/§4.7): leave the cursor here so this
			// and every later entry are retried next tick, preserving
			// dispatch order.
			break
		}

		a := alarmsByID[entry.AlarmID]
		if a == nil {
			host.LastProcessedID = entry.UniqueID
			continue
		}

		if m.Dispatcher != nil {
			result := m.Dispatcher.Dispatch(ctx, host, a, entry, now)
			if m.Metrics != nil {
				m.Metrics.Engine().DispatchTotal.WithLabelValues(outcomeLabel(result.Outcome)).Inc()
				if result.Dispatched() && result.Notifier.Err != nil {
					m.Metrics.Engine().NotifierFailures.Inc()
				}
			}
		}

		host.LastProcessedID = entry.UniqueID
	}
}

func outcomeLabel(o businesshealth.DispatchOutcome) string {
	switch o {
	case businesshealth.OutcomeDispatched:
		return "dispatched"
	case businesshealth.OutcomeSuppressedInternalStatus:
		return "suppressed_internal_status"
	case businesshealth.OutcomeSuppressedNoClearNotification:
		return "suppressed_no_clear_notification"
	case businesshealth.OutcomeSuppressedSameStatus:
		return "suppressed_same_status"
	case businesshealth.OutcomeSuppressedFirstClear:
		return "suppressed_first_clear"
	case businesshealth.OutcomeSuppressedSilenced:
		return "suppressed_silenced"
	default:
		return "unknown"
	}
}
