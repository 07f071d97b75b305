package health

import (
	"context"
	"time"

	core "github.com/vitaliisemenov/healthd/internal/core/health"
)

// AlarmLogStore is the subset of the alarm log the dispatcher needs: find
// the most recent entry for which the notifier actually ran for a given
// alarm (the dispatcher's forward-walk suppression check), grounded on
// original_source's health_alarm_execute walking ae->next looking for a
// prior HEALTH_ENTRY_FLAG_EXEC_RUN entry with the same alarm_id.
type AlarmLogStore interface {
	LastExecRun(alarmID uint32) (*core.AlarmLogEntry, bool)
}

// DispatchOutcome classifies why the dispatcher did or did not invoke the
// notifier, for metrics and logging.
type DispatchOutcome int

const (
	OutcomeDispatched DispatchOutcome = iota
	OutcomeSuppressedInternalStatus
	OutcomeSuppressedNoClearNotification
	OutcomeSuppressedSameStatus
	OutcomeSuppressedFirstClear
	OutcomeSuppressedSilenced
)

// DispatchResult reports what the dispatcher decided and, when it actually
// invoked the notifier, the raw result.
type DispatchResult struct {
	Outcome  DispatchOutcome
	Notifier core.NotifierResult
}

// Dispatched reports whether the notifier was actually invoked.
func (r DispatchResult) Dispatched() bool {
	return r.Outcome == OutcomeDispatched
}

// Dispatcher implements the Notification Dispatcher (spec §4.7), grounded
// on original_source's health_alarm_execute: it applies the suppression
// law (internal statuses, no-clear-notification, same-status repeats,
// first-ever-clear, silenced alarms) before invoking the notifier, and
// always records the outcome on the log entry.
type Dispatcher struct {
	Log      AlarmLogStore
	Notifier core.Notifier
}

// NewDispatcher returns a Dispatcher backed by the given log store and
// notifier.
func NewDispatcher(log AlarmLogStore, notifier core.Notifier) *Dispatcher {
	return &Dispatcher{Log: log, Notifier: notifier}
}

// Dispatch decides whether to notify for entry and, if so, invokes the
// notifier and records the outcome on entry. host supplies the
// host-wide alarm counts (how many alarms on the host, including a
// itself, are currently warning/critical); a is the alarm the entry
// belongs to.
func (d *Dispatcher) Dispatch(ctx context.Context, host *core.Host, a *core.Alarm, entry *core.AlarmLogEntry, now time.Time) DispatchResult {
	entry.Flags = entry.Flags.Set(core.FlagProcessed)

	if entry.NewStatus < core.StatusClear {
		return DispatchResult{Outcome: OutcomeSuppressedInternalStatus}
	}

	if entry.NewStatus == core.StatusClear && a.NoClearNotification {
		entry.Flags = entry.Flags.Set(core.FlagNoClearNotification)
		return DispatchResult{Outcome: OutcomeSuppressedNoClearNotification}
	}

	if prior, found := d.Log.LastExecRun(a.ID); found {
		if prior.NewStatus == entry.NewStatus {
			return DispatchResult{Outcome: OutcomeSuppressedSameStatus}
		}
	} else if entry.NewStatus == core.StatusClear {
		return DispatchResult{Outcome: OutcomeSuppressedFirstClear}
	}

	if entry.Flags.Has(core.FlagSilenced) {
		return DispatchResult{Outcome: OutcomeSuppressedSilenced}
	}

	nWarn, nCrit := countPeers(host, a)

	req := core.NotificationRequest{
		UniqueID:     entry.UniqueID,
		AlarmID:      a.ID,
		AlarmEventID: entry.AlarmEventID,
		When:         entry.When,
		AlarmName:    a.Name,
		Host:         a.Host,
		Chart:        a.ChartID,
		Family:       a.Family,
		Units:        a.Units,
		Info:         a.Info,
		OldStatus:    entry.OldStatus,
		NewStatus:    entry.NewStatus,
		OldValue:     entry.OldValue,
		NewValue:     entry.NewValue,
		Source:       exprSource(a, entry.NewStatus),
		Duration:     int64(entry.Duration.Seconds()),
		NonClearDur:  int64(entry.NonClearDuration.Seconds()),
		ExprSource:   exprSource(a, entry.NewStatus),
		ExprError:    exprErrMsg(a, entry.NewStatus),
		Recipients:   a.Recipients,
		WarnCount:    nWarn,
		CritCount:    nCrit,
	}

	result := d.Notifier.Notify(ctx, req)

	entry.Flags = entry.Flags.Set(core.FlagExecRun)
	entry.ExecRunTimestamp = now
	entry.ExecCode = result.ExitCode
	if result.Err != nil || result.ExitCode != 0 {
		entry.Flags = entry.Flags.Set(core.FlagExecFailed)
	}

	return DispatchResult{Outcome: OutcomeDispatched, Notifier: result}
}

// exprSource picks which expression's source text to report to the
// notifier. A clear status always reports the warning expression's
// source, never the critical one, even when the alarm is clearing down
// from critical — preserved from original_source as an explicit design
// decision, not an oversight.
func exprSource(a *core.Alarm, status core.Status) string {
	switch status {
	case core.StatusCritical:
		if a.CritExpr != nil {
			return a.CritExpr.Source()
		}
	default:
		if a.WarnExpr != nil {
			return a.WarnExpr.Source()
		}
	}
	return ""
}

// exprErrMsg picks the failure reason from whichever expression exprSource
// would have reported for status, mirroring the same warning-unless-
// critical selection so expr_error always describes the expression whose
// source was reported.
func exprErrMsg(a *core.Alarm, status core.Status) string {
	switch status {
	case core.StatusCritical:
		return a.CritErrMsg
	default:
		return a.WarnErrMsg
	}
}

// countPeers counts how many alarms on the host, including a itself, are
// currently warning or critical (spec §4.7 step 5, health.c:237-253) —
// there is no per-context restriction in the source.
func countPeers(host *core.Host, a *core.Alarm) (nWarn, nCrit int) {
	if host == nil {
		return 0, 0
	}
	host.EachAlarm(func(other *core.Alarm) {
		switch other.Status {
		case core.StatusWarning:
			nWarn++
		case core.StatusCritical:
			nCrit++
		}
	})
	return nWarn, nCrit
}
