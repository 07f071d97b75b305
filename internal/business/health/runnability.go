package health

import (
	"time"

	core "github.com/vitaliisemenov/healthd/internal/core/health"
)

// Runnable implements the Runnability Predicate (spec §2), grounded on
// original_source's rrdcalc_isrunnable. It reports whether a should be
// evaluated this tick and, when it should not, the time at which it next
// becomes eligible.
func Runnable(chart *core.Chart, a *core.Alarm, now time.Time) (ok bool, nextRun time.Time) {
	if chart == nil {
		return false, a.NextRun
	}

	if a.NextUpdate.After(now) {
		return false, a.NextUpdate
	}

	if a.UpdateEvery <= 0 {
		return false, a.NextRun
	}

	if chart.Obsolete || !chart.Enabled {
		return false, a.NextRun
	}

	if chart.LastCollectedTime.IsZero() || chart.CounterDone < 2 {
		return false, a.NextRun
	}

	updateEvery := time.Duration(a.UpdateEvery) * time.Second
	windowStart := now.Add(-updateEvery)
	windowEnd := now.Add(updateEvery)
	if !windowsOverlap(windowStart, windowEnd, chart.FirstTime, chart.LastTime) {
		return false, a.NextRun
	}

	if a.Lookup.After != 0 || a.Lookup.Before != 0 {
		lookupStart := now.Add(time.Duration(a.Lookup.After) * time.Second)
		lookupEnd := now.Add(time.Duration(a.Lookup.Before) * time.Second)
		if !windowsOverlap(lookupStart, lookupEnd, chart.FirstTime, chart.LastTime) {
			return false, a.NextRun
		}
	}

	return true, now
}

func windowsOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	if aEnd.Before(aStart) {
		aStart, aEnd = aEnd, aStart
	}
	return !aEnd.Before(bStart) && !bEnd.Before(aStart)
}
