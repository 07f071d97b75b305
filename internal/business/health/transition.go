package health

import (
	"context"
	"math"
	"time"

	core "github.com/vitaliisemenov/healthd/internal/core/health"
)

// triState is the intermediate result of evaluating a warning or critical
// expression, mirroring original_source's rrdcalc_value2status: an
// expression result is either undefined (couldn't be evaluated, or
// NaN/Inf), raised (nonzero — the condition is met), or clear (zero).
type triState int

const (
	triUndefined triState = iota
	triClear
	triRaised
)

func value2tri(failed bool, value float64) triState {
	if failed || math.IsNaN(value) || math.IsInf(value, 0) {
		return triUndefined
	}
	if value != 0 {
		return triRaised
	}
	return triClear
}

// TransitionResult reports what the decide phase computed for one alarm on
// one tick.
type TransitionResult struct {
	// Raw is the status implied by this tick's warning/critical evaluation,
	// before hysteresis.
	Raw core.Status
	// Changed is true when a.Status was actually updated this tick. The
	// status itself always commits immediately on a change (spec §4.4);
	// hysteresis only delays the resulting notification, via Delay below.
	Changed bool
	// Delay is the notification delay computed for this change, valid only
	// when Changed is true. The caller stores it on the appended log entry
	// so the dispatch scan can hold the entry until it elapses.
	Delay time.Duration
	// Flags accumulates warn-error/crit-error for this tick.
	Flags core.Flags
}

// TransitionEngine runs the decide phase (spec §4.4): evaluate the
// warning/critical expressions, compose a raw status, commit any change to
// the alarm's live Status, and compute the hysteresis delay for the
// resulting notification.
type TransitionEngine struct{}

// NewTransitionEngine returns a TransitionEngine. It carries no state of
// its own; all transition state lives on the Alarm.
func NewTransitionEngine() *TransitionEngine {
	return &TransitionEngine{}
}

// Decide evaluates a's warning/critical expressions against its current
// Value, composes the raw status, and applies hysteresis. When hysteresis
// allows a change to take effect, a.OldStatus/a.Status/a.LastStatusChange
// are updated and Changed is true; the caller is responsible for appending
// an alarm-log entry when Changed is true.
func (e *TransitionEngine) Decide(ctx context.Context, a *core.Alarm, now time.Time) TransitionResult {
	var flags core.Flags

	warnTri := triUndefined
	if a.WarnExpr != nil {
		res := a.WarnExpr.Eval(ctx, map[string]float64{"this": a.Value})
		a.WarnErrMsg = ""
		if res.Failed {
			flags = flags.Set(core.FlagWarnError)
			a.WarnErrMsg = res.FailureReason
		}
		warnTri = value2tri(res.Failed, res.Value)
	}

	critTri := triUndefined
	if a.CritExpr != nil {
		res := a.CritExpr.Eval(ctx, map[string]float64{"this": a.Value})
		a.CritErrMsg = ""
		if res.Failed {
			flags = flags.Set(core.FlagCritError)
			a.CritErrMsg = res.FailureReason
		}
		critTri = value2tri(res.Failed, res.Value)
	}

	raw := composeStatus(warnTri, critTri)

	changed, delay := e.applyHysteresis(a, raw, now)

	return TransitionResult{Raw: raw, Changed: changed, Delay: delay, Flags: flags}
}

// composeStatus mirrors original_source's status composition: critical
// wins over warning, warning over clear, and the alarm is only undefined
// when neither expression produced a usable result.
func composeStatus(warnTri, critTri triState) core.Status {
	switch {
	case warnTri == triUndefined && critTri == triUndefined:
		return core.StatusUndefined
	case critTri == triRaised:
		return core.StatusCritical
	case warnTri == triRaised:
		return core.StatusWarning
	default:
		return core.StatusClear
	}
}

// applyHysteresis commits a status change the instant it is observed (spec
// §4.4, health.c:808-852): hysteresis never delays the status itself, only
// the notification that follows. On every change, the per-alarm
// DelayUpCurrent/DelayDownCurrent either reset to their configured base
// (DelayUp/DelayDown) — if the previous change's delay window has already
// elapsed — or multiply by Hysteresis.Multiplier, clamped to DelayMax, so a
// rapidly flapping alarm is notified less and less often. The resulting
// delay is handed back for the caller to stamp onto the log entry; the
// dispatch scan (spec §4.6/§4.7) holds the entry until it elapses.
func (e *TransitionEngine) applyHysteresis(a *core.Alarm, raw core.Status, now time.Time) (changed bool, delay time.Duration) {
	if raw == a.Status {
		return false, 0
	}

	if now.After(a.DelayUpToTimestamp) {
		a.DelayUpCurrent = a.Hysteresis.DelayUp
		a.DelayDownCurrent = a.Hysteresis.DelayDown
	} else {
		mult := a.Hysteresis.Multiplier
		if mult <= 0 {
			mult = 1
		}
		a.DelayUpCurrent = scaleDelay(a.DelayUpCurrent, mult, a.Hysteresis.DelayMax)
		a.DelayDownCurrent = scaleDelay(a.DelayDownCurrent, mult, a.Hysteresis.DelayMax)
	}

	if raw.Higher(a.Status) {
		delay = a.DelayUpCurrent
	} else {
		delay = a.DelayDownCurrent
	}

	a.DelayUpToTimestamp = now.Add(delay)

	if raw != core.StatusClear && (a.Status == core.StatusClear || a.LastNonClear.IsZero()) {
		a.LastNonClear = now
	}
	a.OldStatus = a.Status
	a.Status = raw
	a.LastStatusChange = now
	return true, delay
}

// scaleDelay multiplies d by mult and clamps to max (when max > 0),
// mirroring health.c's delay_up_current/delay_down_current backoff.
func scaleDelay(d time.Duration, mult float64, max time.Duration) time.Duration {
	scaled := time.Duration(float64(d) * mult)
	if max > 0 && scaled > max {
		return max
	}
	return scaled
}
