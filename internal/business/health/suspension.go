package health

import "time"

// SuspensionDetector notices when the process has been suspended (e.g. the
// host was put to sleep, or a container was paused) by comparing elapsed
// wall-clock time against elapsed monotonic time between samples. It
// mirrors original_source's check_if_resumed_from_suspention: a detector
// with no prior sample never reports a resume, and both samples are always
// updated regardless of the outcome.
type SuspensionDetector struct {
	haveSample    bool
	lastRealtime  time.Time
	lastMonotonic time.Duration

	// Threshold is how many times larger the realtime delta must be than
	// the monotonic delta to count as a suspend/resume; original_source
	// uses a factor of 2.
	Threshold float64
}

// NewSuspensionDetector returns a detector using the default 2x threshold.
func NewSuspensionDetector() *SuspensionDetector {
	return &SuspensionDetector{Threshold: 2}
}

// Sample records realtime/monotonic observations and reports whether the
// gap between them implies the process was suspended since the last
// sample. monotonic is a duration from any fixed, monotonic reference
// point (e.g. time.Since's source), not a wall-clock timestamp.
func (d *SuspensionDetector) Sample(realtime time.Time, monotonic time.Duration) bool {
	resumed := false

	if d.haveSample {
		realtimeDelta := realtime.Sub(d.lastRealtime)
		monotonicDelta := monotonic - d.lastMonotonic
		if monotonicDelta > 0 && float64(realtimeDelta) > d.Threshold*float64(monotonicDelta) {
			resumed = true
		}
	}

	d.lastRealtime = realtime
	d.lastMonotonic = monotonic
	d.haveSample = true

	return resumed
}
